package marketdata

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/volsuite/volsuite/internal/vol"
)

// Bar is one daily OHLCV bar as fetched from the data source. Prices stay
// decimal until the analytics layer needs floats.
type Bar struct {
	Symbol   string          `json:"symbol"`
	Date     time.Time       `json:"date"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	AdjClose decimal.Decimal `json:"adj_close"`
	Volume   int64           `json:"volume"`
}

// Contract is one option chain row.
type Contract struct {
	Symbol            string     `json:"contract_symbol"`
	Strike            float64    `json:"strike"`
	LastPrice         float64    `json:"last_price"`
	Bid               float64    `json:"bid"`
	Ask               float64    `json:"ask"`
	Volume            int        `json:"volume"`
	OpenInterest      int        `json:"open_interest"`
	ImpliedVolatility null.Float `json:"implied_volatility"`
	InTheMoney        bool       `json:"in_the_money"`
	Expiration        time.Time  `json:"expiration"`
}

// Chain is the call and put sides of an option chain for one expiration.
type Chain struct {
	UnderlyingSymbol string     `json:"underlying_symbol"`
	Expiration       time.Time  `json:"expiration"`
	Calls            []Contract `json:"calls"`
	Puts             []Contract `json:"puts"`
}

// NewsArticle is one headline from the news feed.
type NewsArticle struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// PriceSeries converts fetched bars into the analytics price series,
// dropping rows the series constructor rejects.
func PriceSeries(bars []Bar) *vol.PriceSeries {
	rows := make([]vol.PriceRow, len(bars))
	for i, b := range bars {
		rows[i] = vol.PriceRow{
			Date:   b.Date,
			Open:   b.Open.InexactFloat64(),
			High:   b.High.InexactFloat64(),
			Low:    b.Low.InexactFloat64(),
			Close:  b.Close.InexactFloat64(),
			Volume: b.Volume,
		}
	}
	return vol.NewPriceSeries(rows)
}

// VolContracts projects chain rows onto the analytics contract type.
func VolContracts(contracts []Contract) []vol.OptionContract {
	out := make([]vol.OptionContract, len(contracts))
	for i, c := range contracts {
		out[i] = vol.OptionContract{
			Strike:            c.Strike,
			ImpliedVolatility: c.ImpliedVolatility,
			InTheMoney:        c.InTheMoney,
		}
	}
	return out
}
