package marketdata

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/options"
	"github.com/piquette/finance-go/quote"

	"github.com/volsuite/volsuite/config"
)

// periodStarts maps the named lookback periods to their start date.
var periodStarts = map[string]func(now time.Time) time.Time{
	"1d":  func(now time.Time) time.Time { return now.AddDate(0, 0, -1) },
	"5d":  func(now time.Time) time.Time { return now.AddDate(0, 0, -5) },
	"1mo": func(now time.Time) time.Time { return now.AddDate(0, -1, 0) },
	"3mo": func(now time.Time) time.Time { return now.AddDate(0, -3, 0) },
	"6mo": func(now time.Time) time.Time { return now.AddDate(0, -6, 0) },
	"1y":  func(now time.Time) time.Time { return now.AddDate(-1, 0, 0) },
	"2y":  func(now time.Time) time.Time { return now.AddDate(-2, 0, 0) },
	"5y":  func(now time.Time) time.Time { return now.AddDate(-5, 0, 0) },
	"10y": func(now time.Time) time.Time { return now.AddDate(-10, 0, 0) },
	"ytd": func(now time.Time) time.Time {
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	},
	"max": func(now time.Time) time.Time {
		return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	},
}

var intervals = map[string]datetime.Interval{
	"1m":  datetime.OneMin,
	"2m":  datetime.TwoMins,
	"5m":  datetime.FiveMins,
	"15m": datetime.FifteenMins,
	"30m": datetime.ThirtyMins,
	"60m": datetime.SixtyMins,
	"90m": datetime.NinetyMins,
	"1h":  datetime.OneHour,
	"1d":  datetime.OneDay,
	"5d":  datetime.FiveDay,
	// finance-go has no named constant for weekly bars.
	"1wk": datetime.Interval("1wk"),
	"1mo": datetime.OneMonth,
	"3mo": datetime.ThreeMonth,
}

// ValidPeriod reports whether name is a supported lookback period.
func ValidPeriod(name string) bool {
	_, ok := periodStarts[name]
	return ok
}

// ValidInterval reports whether name is a supported bar interval.
func ValidInterval(name string) bool {
	_, ok := intervals[name]
	return ok
}

// PeriodNames returns the supported period names, sorted.
func PeriodNames() []string {
	names := make([]string, 0, len(periodStarts))
	for name := range periodStarts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IntervalNames returns the supported interval names, sorted.
func IntervalNames() []string {
	names := make([]string, 0, len(intervals))
	for name := range intervals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Client fetches prices, option chains and quotes from Yahoo Finance.
type Client struct {
	cache *Cache
	retry *RetryConfig
}

// NewClient creates a Yahoo Finance client with a file cache under the
// configured cache directory.
func NewClient(cfg *config.Config) *Client {
	cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo_finance")
	ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
	return &Client{
		cache: NewCache(cacheDir, ttl, cfg.CacheEnabled),
		retry: DefaultRetryConfig(),
	}
}

// NormalizeSymbol upper-cases and trims a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// History fetches daily (or finer) bars between start and end.
func (c *Client) History(symbol string, start, end time.Time, interval string) ([]Bar, error) {
	symbol = NormalizeSymbol(symbol)
	iv, ok := intervals[interval]
	if !ok {
		return nil, fmt.Errorf("'%s' is not a valid interval, use one of %v", interval, IntervalNames())
	}

	cacheKey := map[string]interface{}{
		"symbol":   symbol,
		"start":    start.Format("2006-01-02"),
		"end":      end.Format("2006-01-02"),
		"interval": interval,
	}
	var cached []Bar
	if c.cache.Get("yahoo", "history", cacheKey, &cached) {
		return cached, nil
	}

	var bars []Bar
	err := WithRetry(c.retry, func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: iv,
		}

		iter := chart.Get(params)
		bars = bars[:0]
		for iter.Next() {
			b := iter.Bar()
			bars = append(bars, Bar{
				Symbol:   symbol,
				Date:     time.Unix(int64(b.Timestamp), 0).UTC(),
				Open:     b.Open,
				High:     b.High,
				Low:      b.Low,
				Close:    b.Close,
				AdjClose: b.AdjClose,
				Volume:   int64(b.Volume),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("fetch history for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set("yahoo", "history", cacheKey, bars)
	return bars, nil
}

// HistoryPeriod fetches bars for a named lookback period ending now.
func (c *Client) HistoryPeriod(symbol, period, interval string) ([]Bar, error) {
	startFn, ok := periodStarts[period]
	if !ok {
		return nil, fmt.Errorf("'%s' is not a valid time period, use one of %v", period, PeriodNames())
	}
	now := time.Now()
	return c.History(symbol, startFn(now), now, interval)
}

// Probe checks that the symbol returns any recent price data.
func (c *Client) Probe(symbol string) error {
	bars, err := c.History(symbol, time.Now().AddDate(0, 0, -7), time.Now(), "1d")
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("no price data for symbol '%s'", NormalizeSymbol(symbol))
	}
	return nil
}

// Spot fetches the current regular market price.
func (c *Client) Spot(symbol string) (float64, error) {
	symbol = NormalizeSymbol(symbol)

	var spot float64
	err := WithRetry(c.retry, func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("fetch quote for %s: %w", symbol, err)
		}
		spot = q.RegularMarketPrice
		return nil
	})
	return spot, err
}

// Expirations lists the available option expiration dates for a symbol,
// ascending.
func (c *Client) Expirations(symbol string) ([]time.Time, error) {
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{"symbol": symbol}
	var cached []time.Time
	if c.cache.Get("yahoo", "expirations", cacheKey, &cached) {
		return cached, nil
	}

	var expirations []time.Time
	err := WithRetry(c.retry, func() error {
		iter := options.GetStraddleP(&options.Params{UnderlyingSymbol: symbol})
		for iter.Next() {
			// Drain the default chain so the iterator metadata is
			// populated.
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("fetch expirations for %s: %w", symbol, err)
		}
		meta := iter.Meta()
		if meta == nil {
			return fmt.Errorf("no option metadata for %s", symbol)
		}

		expirations = expirations[:0]
		for _, ts := range meta.AllExpirationDates {
			expirations = append(expirations, time.Unix(int64(ts), 0).UTC())
		}
		sort.Slice(expirations, func(i, j int) bool { return expirations[i].Before(expirations[j]) })
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set("yahoo", "expirations", cacheKey, expirations)
	return expirations, nil
}

// Chain fetches the call and put chains for one expiration.
func (c *Client) Chain(symbol string, expiration time.Time) (*Chain, error) {
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol":     symbol,
		"expiration": expiration.Format("2006-01-02"),
	}
	var cached Chain
	if c.cache.Get("yahoo", "chain", cacheKey, &cached) {
		return &cached, nil
	}

	result := &Chain{UnderlyingSymbol: symbol, Expiration: expiration}
	err := WithRetry(c.retry, func() error {
		iter := options.GetStraddleP(&options.Params{
			UnderlyingSymbol: symbol,
			Expiration:       datetime.New(&expiration),
		})

		result.Calls = result.Calls[:0]
		result.Puts = result.Puts[:0]
		for iter.Next() {
			straddle := iter.Straddle()
			if straddle.Call != nil {
				result.Calls = append(result.Calls, contractFromFinance(straddle.Call))
			}
			if straddle.Put != nil {
				result.Puts = append(result.Puts, contractFromFinance(straddle.Put))
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("fetch option chain for %s %s: %w",
				symbol, expiration.Format("2006-01-02"), err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set("yahoo", "chain", cacheKey, result)
	return result, nil
}

// contractFromFinance converts a wire contract. Yahoo reports a zero (or
// slightly positive placeholder) implied volatility for unquoted
// contracts; those become undefined values.
func contractFromFinance(fc *finance.Contract) Contract {
	var iv null.Float
	if fc.ImpliedVolatility > 0 {
		iv = null.FloatFrom(fc.ImpliedVolatility)
	}
	return Contract{
		Symbol:            fc.Symbol,
		Strike:            fc.Strike,
		LastPrice:         fc.LastPrice,
		Bid:               fc.Bid,
		Ask:               fc.Ask,
		Volume:            fc.Volume,
		OpenInterest:      fc.OpenInterest,
		ImpliedVolatility: iv,
		InTheMoney:        fc.InTheMoney,
		Expiration:        time.Unix(int64(fc.Expiration), 0).UTC(),
	}
}
