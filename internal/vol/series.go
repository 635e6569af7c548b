package vol

import (
	"math"
	"sort"
	"time"
)

// PriceRow is a single daily OHLCV observation.
type PriceRow struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// PriceSeries is an ordered daily price history. Dates are strictly
// increasing and every row carries positive open/high/low/close prices;
// rows that do not are dropped on construction.
type PriceSeries struct {
	rows []PriceRow
}

// NewPriceSeries builds a PriceSeries from raw rows. Rows with missing or
// non-positive prices are discarded, the remainder is sorted by date and
// duplicate dates are collapsed to the first occurrence.
func NewPriceSeries(rows []PriceRow) *PriceSeries {
	clean := make([]PriceRow, 0, len(rows))
	for _, r := range rows {
		if !validRow(r) {
			continue
		}
		clean = append(clean, r)
	}

	sort.SliceStable(clean, func(i, j int) bool {
		return clean[i].Date.Before(clean[j].Date)
	})

	deduped := clean[:0]
	for _, r := range clean {
		if len(deduped) > 0 && sameDay(deduped[len(deduped)-1].Date, r.Date) {
			continue
		}
		deduped = append(deduped, r)
	}

	return &PriceSeries{rows: deduped}
}

func validRow(r PriceRow) bool {
	for _, v := range []float64{r.Open, r.High, r.Low, r.Close} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// Len returns the number of rows in the series.
func (s *PriceSeries) Len() int {
	return len(s.rows)
}

// Row returns the i-th row of the series.
func (s *PriceSeries) Row(i int) PriceRow {
	return s.rows[i]
}

// Dates returns the ordered dates of the series.
func (s *PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.rows))
	for i, r := range s.rows {
		dates[i] = r.Date
	}
	return dates
}

// DateRange returns the first and last date of the series. Both are zero
// when the series is empty.
func (s *PriceSeries) DateRange() (start, end time.Time) {
	if len(s.rows) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.rows[0].Date, s.rows[len(s.rows)-1].Date
}

// LogReturns computes the close-to-close log return series
// r_t = ln(close_t / close_t-1). The result has one fewer element than the
// series, aligned to dates[1:].
func (s *PriceSeries) LogReturns() []float64 {
	if len(s.rows) < 2 {
		return nil
	}
	returns := make([]float64, len(s.rows)-1)
	for i := 1; i < len(s.rows); i++ {
		returns[i-1] = math.Log(s.rows[i].Close / s.rows[i-1].Close)
	}
	return returns
}

// LogRanges computes the squared high/low log range series
// p_t = ln(high_t / low_t)^2, one element per row.
func (s *PriceSeries) LogRanges() []float64 {
	ranges := make([]float64, len(s.rows))
	for i, r := range s.rows {
		hl := math.Log(r.High / r.Low)
		ranges[i] = hl * hl
	}
	return ranges
}

// GKTerms computes the per-day Garman-Klass variance terms
// g_t = 0.5 ln(high/low)^2 - (2 ln2 - 1) ln(close/open)^2, one element per
// row. Individual terms may be negative.
func (s *PriceSeries) GKTerms() []float64 {
	terms := make([]float64, len(s.rows))
	for i, r := range s.rows {
		hl := math.Log(r.High / r.Low)
		co := math.Log(r.Close / r.Open)
		terms[i] = 0.5*hl*hl - (2*math.Ln2-1)*co*co
	}
	return terms
}
