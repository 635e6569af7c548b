package vol

import "github.com/guregu/null/v6"

// OptionContract is the projection of a raw option chain row the analytics
// need: strike, implied volatility and the in-the-money flag.
type OptionContract struct {
	Strike            float64
	ImpliedVolatility null.Float
	InTheMoney        bool
}

// SkewPoint is one strike of an implied volatility skew.
type SkewPoint struct {
	Strike            float64
	ImpliedVolatility float64
}

// BuildSkew assembles the implied volatility skew for one expiration from
// the raw call and put chains. Only out-of-the-money contracts contribute,
// puts below spot and calls above it; contracts without a quoted implied
// volatility are dropped. Puts come first, mirroring strike order on a
// typical chain.
func BuildSkew(calls, puts []OptionContract) []SkewPoint {
	skew := make([]SkewPoint, 0, len(calls)+len(puts))
	for _, side := range [][]OptionContract{puts, calls} {
		for _, c := range side {
			if c.InTheMoney || !c.ImpliedVolatility.Valid {
				continue
			}
			skew = append(skew, SkewPoint{
				Strike:            c.Strike,
				ImpliedVolatility: c.ImpliedVolatility.Float64,
			})
		}
	}
	return skew
}
