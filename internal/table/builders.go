package table

import (
	"fmt"
	"strconv"
	"time"

	"github.com/volsuite/volsuite/internal/marketdata"
	"github.com/volsuite/volsuite/internal/vol"
)

const dateLayout = "2006-01-02"

// FromBars builds the price history frame shown by the history command.
func FromBars(bars []marketdata.Bar, ticker, period string) *Frame {
	f := New(Meta{Ticker: ticker, Period: period, Datatype: "history"},
		"date", "open", "high", "low", "close", "adj_close", "volume")
	for _, b := range bars {
		f.Append(
			b.Date.Format(dateLayout),
			b.Open.StringFixed(4),
			b.High.StringFixed(4),
			b.Low.StringFixed(4),
			b.Close.StringFixed(4),
			b.AdjClose.StringFixed(4),
			strconv.FormatInt(b.Volume, 10),
		)
	}
	return f
}

// FromChain builds the option chain frame for one expiration, puts after
// calls with a side column.
func FromChain(chain *marketdata.Chain, ticker string) *Frame {
	f := New(Meta{
		Ticker:   ticker,
		Period:   chain.Expiration.Format(dateLayout),
		Datatype: "option_chain",
	}, "side", "contract", "strike", "last", "bid", "ask", "volume", "open_interest", "iv", "itm")
	appendSide := func(side string, contracts []marketdata.Contract) {
		for _, c := range contracts {
			f.Append(
				side,
				c.Symbol,
				FormatFloat(c.Strike),
				FormatFloat(c.LastPrice),
				FormatFloat(c.Bid),
				FormatFloat(c.Ask),
				strconv.Itoa(c.Volume),
				strconv.Itoa(c.OpenInterest),
				FormatNullFloat(c.ImpliedVolatility),
				strconv.FormatBool(c.InTheMoney),
			)
		}
	}
	appendSide("call", chain.Calls)
	appendSide("put", chain.Puts)
	return f
}

// FromNews builds the headline frame for the news command.
func FromNews(articles []marketdata.NewsArticle, ticker string) *Frame {
	f := New(Meta{Ticker: ticker, Period: "latest", Datatype: "news"},
		"published", "publisher", "title", "link")
	for _, a := range articles {
		published := ""
		if !a.PublishedAt.IsZero() {
			published = a.PublishedAt.Format("2006-01-02 15:04")
		}
		f.Append(published, a.Publisher, a.Title, a.URL)
	}
	return f
}

// FromRolling builds the rolling historical volatility frame. Each window
// becomes one column named like "20d_close"; undefined head cells render
// empty.
func FromRolling(rv *vol.RollingVolatility, ticker, period string) *Frame {
	columns := make([]string, 0, len(rv.Windows)+1)
	columns = append(columns, "date")
	for _, w := range rv.Windows {
		columns = append(columns, fmt.Sprintf("%dd_%s", w, rv.Method))
	}
	f := New(Meta{Ticker: ticker, Period: period, Datatype: "hv_" + string(rv.Method)}, columns...)
	for i, d := range rv.Dates {
		row := make([]string, 0, len(columns))
		row = append(row, d.Format(dateLayout))
		for _, col := range rv.Columns {
			row = append(row, FormatNullFloat(col[i]))
		}
		f.Append(row...)
	}
	return f
}

// FromRealized builds the single-row whole-sample volatility frame.
func FromRealized(rv *vol.RealizedVolatility, ticker, period string) *Frame {
	f := New(Meta{Ticker: ticker, Period: period, Datatype: "hv_realized_" + string(rv.Method)},
		"method", "start", "end", "annualized_vol")
	f.Append(
		string(rv.Method),
		rv.Start.Format(dateLayout),
		rv.End.Format(dateLayout),
		FormatNullFloat(rv.Value),
	)
	return f
}

// FromSkew builds the per-expiration skew frame, one row per OTM strike.
func FromSkew(points []vol.SkewPoint, ticker string, expiration time.Time) *Frame {
	f := New(Meta{
		Ticker:   ticker,
		Period:   expiration.Format(dateLayout),
		Datatype: "iv_skew",
	}, "strike", "iv")
	for _, p := range points {
		f.Append(FormatFloat(p.Strike), FormatFloat(p.ImpliedVolatility))
	}
	return f
}

// FromSurfacePoints builds the flat surface point cloud frame.
func FromSurfacePoints(points []vol.SurfacePoint, ticker string) *Frame {
	f := New(Meta{Ticker: ticker, Period: "all_expirations", Datatype: "iv_surface"},
		"expiration", "dte", "strike", "moneyness", "iv")
	for _, p := range points {
		f.Append(
			p.Expiration.Format(dateLayout),
			strconv.Itoa(p.DaysToExpiry),
			FormatFloat(p.Strike),
			FormatFloat(p.Moneyness),
			FormatFloat(p.ImpliedVolatility),
		)
	}
	return f
}

// FromGrid flattens an interpolated surface mesh into rows of
// (dte, strike, iv). Cells outside the convex hull stay empty.
func FromGrid(grid *vol.Grid, ticker string) *Frame {
	f := New(Meta{Ticker: ticker, Period: "grid", Datatype: "iv_surface_interp"},
		"dte", "strike", "iv")
	for i := range grid.IV {
		for j := range grid.IV[i] {
			f.Append(
				FormatFloat(grid.DTE[i][j]),
				FormatFloat(grid.Strike[i][j]),
				FormatNullFloat(grid.IV[i][j]),
			)
		}
	}
	return f
}
