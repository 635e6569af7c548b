package vol

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

// fixedSeries returns a deterministic 10-day OHLC sample used to
// cross-check the estimators against directly computed references.
func fixedSeries() *PriceSeries {
	opens := []float64{100, 101, 103, 102, 104, 107, 106, 108, 110, 109}
	highs := []float64{102, 104, 105, 105, 108, 109, 109, 111, 112, 112}
	lows := []float64{99, 100, 101, 101, 103, 105, 104, 107, 108, 107}
	closes := []float64{101, 103, 102, 104, 107, 106, 108, 110, 109, 111}

	rows := make([]PriceRow, len(opens))
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		rows[i] = PriceRow{
			Date:   start.AddDate(0, 0, i),
			Open:   opens[i],
			High:   highs[i],
			Low:    lows[i],
			Close:  closes[i],
			Volume: 1000,
		}
	}
	return NewPriceSeries(rows)
}

func TestComputeHVInvalidMethodCheckedFirst(t *testing.T) {
	// An unknown method must fail even on an empty sample, proving the
	// method check happens before any price data is touched.
	_, _, err := ComputeHV(NewPriceSeries(nil), Method("bollinger"), []int{5})

	var invalid *InvalidMethodError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidMethodError, got %v", err)
	}
	if invalid.Method != "bollinger" {
		t.Errorf("expected method 'bollinger' in error, got %q", invalid.Method)
	}
}

func TestComputeHVEmptySample(t *testing.T) {
	_, _, err := ComputeHV(NewPriceSeries(nil), MethodClose, []int{5})

	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestComputeHVCloseRealized(t *testing.T) {
	series := fixedSeries()
	_, realized, err := ComputeHV(series, MethodClose, []int{5})
	if err != nil {
		t.Fatalf("ComputeHV: %v", err)
	}

	// Reference: population stddev of all log returns, annualized.
	returns := series.LogReturns()
	m := 0.0
	for _, r := range returns {
		m += r
	}
	m /= float64(len(returns))
	sumSq := 0.0
	for _, r := range returns {
		sumSq += (r - m) * (r - m)
	}
	want := math.Sqrt(sumSq/float64(len(returns))) * math.Sqrt(252)

	if !realized.Value.Valid {
		t.Fatal("realized volatility should be defined")
	}
	if math.Abs(realized.Value.Float64-want) > 1e-12 {
		t.Errorf("realized close vol = %v, want %v", realized.Value.Float64, want)
	}
}

func TestComputeHVParkinsonRealized(t *testing.T) {
	series := fixedSeries()
	_, realized, err := ComputeHV(series, MethodParkinson, []int{5})
	if err != nil {
		t.Fatalf("ComputeHV: %v", err)
	}

	sum := 0.0
	for i := 0; i < series.Len(); i++ {
		r := series.Row(i)
		hl := math.Log(r.High / r.Low)
		sum += hl * hl
	}
	want := math.Sqrt(sum/float64(series.Len())/(4*math.Ln2)) * math.Sqrt(252)

	if math.Abs(realized.Value.Float64-want) > 1e-12 {
		t.Errorf("realized parkinson vol = %v, want %v", realized.Value.Float64, want)
	}
}

func TestComputeHVGarmanKlassRealized(t *testing.T) {
	series := fixedSeries()
	_, realized, err := ComputeHV(series, MethodGK, []int{5})
	if err != nil {
		t.Fatalf("ComputeHV: %v", err)
	}

	sum := 0.0
	for i := 0; i < series.Len(); i++ {
		r := series.Row(i)
		hl := math.Log(r.High / r.Low)
		co := math.Log(r.Close / r.Open)
		sum += 0.5*hl*hl - (2*math.Ln2-1)*co*co
	}
	want := math.Sqrt(sum/float64(series.Len())) * math.Sqrt(252)

	if math.Abs(realized.Value.Float64-want) > 1e-12 {
		t.Errorf("realized gk vol = %v, want %v", realized.Value.Float64, want)
	}
}

func TestComputeHVRollingWindowCounts(t *testing.T) {
	series := fixedSeries()
	n := series.Len()

	cases := []struct {
		method Method
		window int
		want   int // number of defined cells
	}{
		{MethodClose, 3, n - 1 - 3 + 1},     // differencing loses one date
		{MethodClose, 9, 1},                 // window equals return count
		{MethodClose, 20, 0},                // oversized window
		{MethodParkinson, 3, n - 3 + 1},     // range methods keep the first date
		{MethodParkinson, 10, 1},
		{MethodParkinson, 11, 0},
		{MethodGK, 5, n - 5 + 1},
		{MethodGK, 20, 0},
	}

	for _, tc := range cases {
		table, _, err := ComputeHV(series, tc.method, []int{tc.window})
		if err != nil {
			t.Fatalf("%s w=%d: %v", tc.method, tc.window, err)
		}
		defined := 0
		for _, cell := range table.Columns[0] {
			if cell.Valid {
				defined++
			}
		}
		if defined != tc.want {
			t.Errorf("%s w=%d: %d defined cells, want %d", tc.method, tc.window, defined, tc.want)
		}
	}
}

func TestComputeHVCloseLosesFirstDate(t *testing.T) {
	series := fixedSeries()

	closeTable, _, err := ComputeHV(series, MethodClose, []int{3})
	if err != nil {
		t.Fatalf("ComputeHV close: %v", err)
	}
	if len(closeTable.Dates) != series.Len()-1 {
		t.Errorf("close table has %d dates, want %d", len(closeTable.Dates), series.Len()-1)
	}
	if !closeTable.Dates[0].Equal(series.Row(1).Date) {
		t.Errorf("close table starts at %v, want %v", closeTable.Dates[0], series.Row(1).Date)
	}

	gkTable, _, err := ComputeHV(series, MethodGK, []int{3})
	if err != nil {
		t.Fatalf("ComputeHV gk: %v", err)
	}
	if len(gkTable.Dates) != series.Len() {
		t.Errorf("gk table has %d dates, want %d", len(gkTable.Dates), series.Len())
	}
}

func TestComputeHVGarmanKlassNegativeVariance(t *testing.T) {
	// A day with a tiny high/low range and a large open-to-close move
	// makes the GK term negative; its square root is undefined, not an
	// error.
	rows := []PriceRow{
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Open: 90, High: 100.001, Low: 100, Close: 110},
	}
	table, realized, err := ComputeHV(NewPriceSeries(rows), MethodGK, []int{1})
	if err != nil {
		t.Fatalf("ComputeHV: %v", err)
	}
	if table.Columns[0][0].Valid {
		t.Error("expected undefined rolling cell for negative GK variance")
	}
	if realized.Value.Valid {
		t.Error("expected undefined realized vol for negative GK variance")
	}
}

func TestComputeHVIdempotent(t *testing.T) {
	series := fixedSeries()

	t1, r1, err := ComputeHV(series, MethodParkinson, []int{3, 5})
	if err != nil {
		t.Fatalf("ComputeHV: %v", err)
	}
	t2, r2, err := ComputeHV(series, MethodParkinson, []int{3, 5})
	if err != nil {
		t.Fatalf("ComputeHV: %v", err)
	}

	if !reflect.DeepEqual(t1, t2) {
		t.Error("rolling tables differ between identical runs")
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Error("realized volatility differs between identical runs")
	}
}

func TestNewPriceSeriesDropsInvalidRows(t *testing.T) {
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	rows := []PriceRow{
		{Date: base.AddDate(0, 0, 1), Open: 101, High: 102, Low: 100, Close: 101, Volume: 10},
		{Date: base, Open: 100, High: 101, Low: 99, Close: 100, Volume: 10},
		{Date: base.AddDate(0, 0, 2), Open: 0, High: 102, Low: 100, Close: 101, Volume: 10},   // missing open
		{Date: base.AddDate(0, 0, 3), Open: 101, High: 102, Low: -1, Close: 101, Volume: 10},  // negative low
		{Date: base, Open: 999, High: 999, Low: 999, Close: 999, Volume: 10},                  // duplicate date
	}

	s := NewPriceSeries(rows)
	if s.Len() != 2 {
		t.Fatalf("expected 2 valid rows, got %d", s.Len())
	}
	if !s.Row(0).Date.Equal(base) || !s.Row(1).Date.Equal(base.AddDate(0, 0, 1)) {
		t.Error("rows are not sorted by date")
	}
	if s.Row(0).Open != 100 {
		t.Error("duplicate date should keep the first occurrence")
	}
}
