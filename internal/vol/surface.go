package vol

import "time"

// SurfacePoint is one observation of the implied volatility surface: an
// OTM contract's strike and IV placed at its days-to-expiry, tagged with
// the spot price and moneyness as of the observation date.
type SurfacePoint struct {
	Strike            float64
	DaysToExpiry      int
	ImpliedVolatility float64
	Spot              float64
	Moneyness         float64
	Expiration        time.Time
}

// ChainFunc fetches the call and put chains for one expiration.
type ChainFunc func(expiration time.Time) (calls, puts []OptionContract, err error)

// BuildSurface aggregates OTM implied volatilities across every expiration
// into a flat point cloud for one ticker as of one observation date. A
// strike appearing on both sides of the chain contributes twice; no
// deduplication is performed. Days to expiry may be negative when the
// chain data is stale. The first failing chain fetch aborts the surface
// with a DataFetchError.
func BuildSurface(expirations []time.Time, fetch ChainFunc, spot float64, asOf time.Time) ([]SurfacePoint, error) {
	var points []SurfacePoint

	for _, expiration := range expirations {
		calls, puts, err := fetch(expiration)
		if err != nil {
			return nil, &DataFetchError{Expiration: expiration, Err: err}
		}

		dte := wholeDays(asOf, expiration)
		for _, side := range [][]OptionContract{puts, calls} {
			for _, c := range side {
				if c.InTheMoney || !c.ImpliedVolatility.Valid {
					continue
				}
				points = append(points, SurfacePoint{
					Strike:            c.Strike,
					DaysToExpiry:      dte,
					ImpliedVolatility: c.ImpliedVolatility.Float64,
					Spot:              spot,
					Moneyness:         c.Strike / spot,
					Expiration:        expiration,
				})
			}
		}
	}

	return points, nil
}

// wholeDays counts complete 24h days from asOf to expiration, negative
// when the expiration is already past.
func wholeDays(asOf, expiration time.Time) int {
	d := expiration.Sub(asOf)
	days := int(d / (24 * time.Hour))
	// Truncate toward negative infinity so a partially elapsed stale day
	// still counts as past.
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}
