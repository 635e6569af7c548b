package vol

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/guregu/null/v6"
)

func testChain(spot float64) ChainFunc {
	return func(expiration time.Time) (calls, puts []OptionContract, err error) {
		calls = []OptionContract{
			{Strike: spot + 5, ImpliedVolatility: null.FloatFrom(0.21)},
			{Strike: spot + 10, ImpliedVolatility: null.FloatFrom(0.23)},
			{Strike: spot - 5, ImpliedVolatility: null.FloatFrom(0.2), InTheMoney: true},
		}
		puts = []OptionContract{
			{Strike: spot - 5, ImpliedVolatility: null.FloatFrom(0.24)},
			{Strike: spot - 10, ImpliedVolatility: null.FloatFrom(0.27)},
			{Strike: spot + 5, ImpliedVolatility: null.FloatFrom(0.2), InTheMoney: true},
		}
		return calls, puts, nil
	}
}

func TestBuildSurfaceAggregatesOTM(t *testing.T) {
	asOf := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	expirations := []time.Time{
		asOf.AddDate(0, 0, 7),
		asOf.AddDate(0, 0, 30),
	}

	points, err := BuildSurface(expirations, testChain(100), 100, asOf)
	if err != nil {
		t.Fatalf("BuildSurface: %v", err)
	}

	// Two expirations, each contributing 2 OTM puts and 2 OTM calls.
	if len(points) != 8 {
		t.Fatalf("expected 8 surface points, got %d", len(points))
	}

	prevDTE := points[0].DaysToExpiry
	for _, p := range points {
		if p.DaysToExpiry < prevDTE {
			t.Errorf("days to expiry decreased: %d after %d", p.DaysToExpiry, prevDTE)
		}
		prevDTE = p.DaysToExpiry
		if p.Spot != 100 {
			t.Errorf("spot = %v, want 100", p.Spot)
		}
		if p.Moneyness != p.Strike/100 {
			t.Errorf("moneyness = %v for strike %v", p.Moneyness, p.Strike)
		}
	}

	if points[0].DaysToExpiry != 7 {
		t.Errorf("first expiration dte = %d, want 7", points[0].DaysToExpiry)
	}
	if points[len(points)-1].DaysToExpiry != 30 {
		t.Errorf("last expiration dte = %d, want 30", points[len(points)-1].DaysToExpiry)
	}
}

func TestBuildSurfaceStaleExpiration(t *testing.T) {
	asOf := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	stale := asOf.AddDate(0, 0, -3)

	points, err := BuildSurface([]time.Time{stale}, testChain(100), 100, asOf)
	if err != nil {
		t.Fatalf("BuildSurface: %v", err)
	}
	for _, p := range points {
		if p.DaysToExpiry >= 0 {
			t.Errorf("stale expiration should have negative dte, got %d", p.DaysToExpiry)
		}
	}
}

func TestBuildSurfaceFetchErrorAborts(t *testing.T) {
	asOf := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	good := asOf.AddDate(0, 0, 7)
	bad := asOf.AddDate(0, 0, 30)

	fetchErr := fmt.Errorf("connection reset")
	fetch := func(expiration time.Time) ([]OptionContract, []OptionContract, error) {
		if expiration.Equal(bad) {
			return nil, nil, fetchErr
		}
		return testChain(100)(expiration)
	}

	points, err := BuildSurface([]time.Time{good, bad}, fetch, 100, asOf)
	if points != nil {
		t.Error("expected nil points when any expiration fails")
	}

	var dfe *DataFetchError
	if !errors.As(err, &dfe) {
		t.Fatalf("expected DataFetchError, got %v", err)
	}
	if !dfe.Expiration.Equal(bad) {
		t.Errorf("error expiration = %v, want %v", dfe.Expiration, bad)
	}
	if !errors.Is(err, fetchErr) {
		t.Error("DataFetchError should wrap the source error")
	}
}
