package vol

import (
	"math"
	"time"

	"github.com/guregu/null/v6"
)

// Method identifies a historical volatility estimator.
type Method string

const (
	MethodClose     Method = "close"
	MethodParkinson Method = "parkinson"
	MethodGK        Method = "gk"
)

// TradingDays is the annualization constant, fixed at 252 trading days.
const TradingDays = 252

const parkinsonFactor = 1 / (4 * math.Ln2)

// RollingVolatility is the per-day rolling estimate table. Columns is
// aligned with Windows; each column is aligned with Dates and holds an
// annualized volatility per date, invalid while the window is not yet
// filled.
type RollingVolatility struct {
	Method  Method
	Dates   []time.Time
	Windows []int
	Columns [][]null.Float
}

// RealizedVolatility is the single annualized estimate over the whole
// sample. Value is invalid when the estimator has no defined result, which
// can happen for Garman-Klass on pathological samples.
type RealizedVolatility struct {
	Method Method
	Value  null.Float
	Start  time.Time
	End    time.Time
}

// ComputeHV applies the requested estimator over every rolling window and
// over the full sample. The method name is validated before any price data
// is touched. A window larger than the sample yields an entirely invalid
// column rather than an error.
func ComputeHV(series *PriceSeries, method Method, windows []int) (*RollingVolatility, *RealizedVolatility, error) {
	switch method {
	case MethodClose, MethodParkinson, MethodGK:
	default:
		return nil, nil, &InvalidMethodError{Method: string(method)}
	}

	if series == nil || series.Len() == 0 {
		return nil, nil, &InsufficientDataError{Reason: "empty price sample"}
	}

	var (
		dates []time.Time
		daily []float64
		roll  func(vals []float64, w int) []null.Float
		whole func(vals []float64) null.Float
	)

	switch method {
	case MethodClose:
		// Differencing loses the first date.
		dates = series.Dates()[1:]
		daily = series.LogReturns()
		roll = func(vals []float64, w int) []null.Float {
			return rollingApply(vals, w, func(win []float64) null.Float {
				return annualize(populationStd(win))
			})
		}
		whole = func(vals []float64) null.Float {
			return annualize(populationStd(vals))
		}

	case MethodParkinson:
		dates = series.Dates()
		daily = series.LogRanges()
		roll = func(vals []float64, w int) []null.Float {
			return rollingApply(vals, w, func(win []float64) null.Float {
				return annualizeVariance(mean(win) * parkinsonFactor)
			})
		}
		whole = func(vals []float64) null.Float {
			return annualizeVariance(mean(vals) * parkinsonFactor)
		}

	case MethodGK:
		dates = series.Dates()
		daily = series.GKTerms()
		roll = func(vals []float64, w int) []null.Float {
			return rollingApply(vals, w, func(win []float64) null.Float {
				return annualizeVariance(mean(win))
			})
		}
		whole = func(vals []float64) null.Float {
			return annualizeVariance(mean(vals))
		}
	}

	table := &RollingVolatility{
		Method:  method,
		Dates:   dates,
		Windows: windows,
		Columns: make([][]null.Float, len(windows)),
	}
	for i, w := range windows {
		table.Columns[i] = roll(daily, w)
	}

	start, end := series.DateRange()
	realized := &RealizedVolatility{
		Method: method,
		Start:  start,
		End:    end,
	}
	if len(daily) > 0 {
		realized.Value = whole(daily)
	}

	return table, realized, nil
}

// rollingApply evaluates fn over each trailing window of length w. The
// first w-1 cells (and every cell of an oversized window) are invalid.
func rollingApply(vals []float64, w int, fn func(win []float64) null.Float) []null.Float {
	out := make([]null.Float, len(vals))
	if w < 1 || w > len(vals) {
		return out
	}
	for i := w - 1; i < len(vals); i++ {
		out[i] = fn(vals[i-w+1 : i+1])
	}
	return out
}

// annualize scales a daily volatility by sqrt(252).
func annualize(dailyVol float64) null.Float {
	v := dailyVol * math.Sqrt(TradingDays)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// annualizeVariance turns a daily variance into an annualized volatility.
// A negative variance, possible for Garman-Klass, has no real square root
// and produces an invalid value instead of an error.
func annualizeVariance(dailyVar float64) null.Float {
	return annualize(math.Sqrt(dailyVar))
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// populationStd is the population standard deviation, dividing by n rather
// than n-1.
func populationStd(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	m := mean(vals)
	sumSq := 0.0
	for _, v := range vals {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)))
}
