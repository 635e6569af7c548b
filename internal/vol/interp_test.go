package vol

import (
	"errors"
	"math"
	"testing"
)

// planarSurface builds surface points sampling z = base + ax*strike + ay*dte
// so a linear interpolant must reproduce it exactly inside the hull.
func planarSurface(strikes, dtes []float64, spot, base, ax, ay float64) []SurfacePoint {
	var points []SurfacePoint
	for _, k := range strikes {
		for _, d := range dtes {
			points = append(points, SurfacePoint{
				Strike:            k,
				DaysToExpiry:      int(d),
				ImpliedVolatility: base + ax*k + ay*d,
				Spot:              spot,
				Moneyness:         k / spot,
			})
		}
	}
	return points
}

func TestInterpolateSurfaceMeshShape(t *testing.T) {
	points := planarSurface([]float64{90, 100, 110}, []float64{7, 30, 90}, 100, 0.1, 0.001, 0.0002)

	grid, err := InterpolateSurface(points, 0.2, 10)
	if err != nil {
		t.Fatalf("InterpolateSurface: %v", err)
	}

	if len(grid.IV) != 11 {
		t.Fatalf("expected 11 rows, got %d", len(grid.IV))
	}
	for i := range grid.IV {
		if len(grid.IV[i]) != 11 || len(grid.Strike[i]) != 11 || len(grid.DTE[i]) != 11 {
			t.Fatalf("row %d is not 11 wide", i)
		}
	}

	// Axes span the filtered extremes.
	if grid.Strike[0][0] != 90 || grid.Strike[0][10] != 110 {
		t.Errorf("strike axis [%v, %v], want [90, 110]", grid.Strike[0][0], grid.Strike[0][10])
	}
	if grid.DTE[0][0] != 7 || grid.DTE[10][0] != 90 {
		t.Errorf("dte axis [%v, %v], want [7, 90]", grid.DTE[0][0], grid.DTE[10][0])
	}
}

func TestInterpolateSurfaceReproducesPlane(t *testing.T) {
	const base, ax, ay = 0.15, 0.0012, 0.00031
	points := planarSurface([]float64{85, 100, 115}, []float64{10, 45, 120}, 100, base, ax, ay)

	grid, err := InterpolateSurface(points, 0.2, 8)
	if err != nil {
		t.Fatalf("InterpolateSurface: %v", err)
	}

	for i := range grid.IV {
		for j := range grid.IV[i] {
			cell := grid.IV[i][j]
			if !cell.Valid {
				// The rectangular input hull covers the whole mesh.
				t.Fatalf("node (%d,%d) unexpectedly undefined", i, j)
			}
			want := base + ax*grid.Strike[i][j] + ay*grid.DTE[i][j]
			if math.Abs(cell.Float64-want) > 1e-9 {
				t.Errorf("node (%d,%d) = %v, want %v", i, j, cell.Float64, want)
			}
		}
	}
}

func TestInterpolateSurfaceScatteredCloud(t *testing.T) {
	const base, ax, ay = 0.16, 0.0011, 0.00042
	iv := func(k, d float64) float64 { return base + ax*k + ay*d }

	// Corner points pin the hull to the full strike/dte rectangle, the
	// rest is an irregular cloud with chain-style constant-dte rows, so
	// every mesh node lies inside the hull and must come back defined.
	points := []SurfacePoint{
		{Strike: 80, DaysToExpiry: 30, ImpliedVolatility: iv(80, 30), Spot: 100},
		{Strike: 120, DaysToExpiry: 30, ImpliedVolatility: iv(120, 30), Spot: 100},
		{Strike: 80, DaysToExpiry: 365, ImpliedVolatility: iv(80, 365), Spot: 100},
		{Strike: 120, DaysToExpiry: 365, ImpliedVolatility: iv(120, 365), Spot: 100},
	}
	for i, d := range []int{30, 58, 86, 121, 184, 247, 303, 365} {
		for j := 0; j < 6; j++ {
			k := 80 + math.Mod(float64((i+2)*(j+3)*17), 40)
			points = append(points, SurfacePoint{
				Strike:            k,
				DaysToExpiry:      d,
				ImpliedVolatility: iv(k, float64(d)),
				Spot:              100,
			})
		}
	}

	grid, err := InterpolateSurface(points, 0.2, 15)
	if err != nil {
		t.Fatalf("InterpolateSurface: %v", err)
	}

	for i := range grid.IV {
		for j := range grid.IV[i] {
			cell := grid.IV[i][j]
			if !cell.Valid {
				t.Fatalf("node (strike %.3f, dte %.3f) inside the hull is undefined",
					grid.Strike[i][j], grid.DTE[i][j])
			}
			want := iv(grid.Strike[i][j], grid.DTE[i][j])
			if math.Abs(cell.Float64-want) > 1e-9 {
				t.Errorf("node (%d,%d) = %v, want %v", i, j, cell.Float64, want)
			}
		}
	}
}

func TestInterpolateSurfaceStrikeRangeFilter(t *testing.T) {
	points := planarSurface([]float64{90, 100, 110}, []float64{7, 30}, 100, 0.2, 0, 0)
	// An outlier strike outside spot*(1±0.2) must not stretch the axis.
	points = append(points, SurfacePoint{Strike: 150, DaysToExpiry: 7, ImpliedVolatility: 5.0, Spot: 100, Moneyness: 1.5})

	grid, err := InterpolateSurface(points, 0.2, 4)
	if err != nil {
		t.Fatalf("InterpolateSurface: %v", err)
	}
	if max := grid.Strike[0][len(grid.Strike[0])-1]; max != 110 {
		t.Errorf("max strike on axis = %v, want 110 (150 filtered out)", max)
	}
	for i := range grid.IV {
		for j := range grid.IV[i] {
			if grid.IV[i][j].Valid && grid.IV[i][j].Float64 > 1 {
				t.Errorf("outlier IV leaked into the grid at (%d,%d)", i, j)
			}
		}
	}
}

func TestInterpolateSurfaceNoExtrapolation(t *testing.T) {
	// A triangle of points leaves the opposite grid corner outside the
	// convex hull.
	points := []SurfacePoint{
		{Strike: 90, DaysToExpiry: 7, ImpliedVolatility: 0.2, Spot: 100},
		{Strike: 110, DaysToExpiry: 7, ImpliedVolatility: 0.22, Spot: 100},
		{Strike: 90, DaysToExpiry: 90, ImpliedVolatility: 0.25, Spot: 100},
	}

	grid, err := InterpolateSurface(points, 0.2, 10)
	if err != nil {
		t.Fatalf("InterpolateSurface: %v", err)
	}

	// Corner (max strike, max dte) lies across the hypotenuse.
	if grid.IV[10][10].Valid {
		t.Error("node outside the convex hull should be undefined")
	}
	// Corner (min strike, min dte) is a data point.
	if !grid.IV[0][0].Valid {
		t.Error("hull vertex should be defined")
	}
	if math.Abs(grid.IV[0][0].Float64-0.2) > 1e-9 {
		t.Errorf("hull vertex = %v, want 0.2", grid.IV[0][0].Float64)
	}
}

func TestInterpolateSurfaceInsufficientPoints(t *testing.T) {
	points := []SurfacePoint{
		{Strike: 95, DaysToExpiry: 7, ImpliedVolatility: 0.2, Spot: 100},
		{Strike: 105, DaysToExpiry: 30, ImpliedVolatility: 0.22, Spot: 100},
	}

	_, err := InterpolateSurface(points, 0.2, 10)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestInterpolateSurfaceCollinearPoints(t *testing.T) {
	points := []SurfacePoint{
		{Strike: 90, DaysToExpiry: 7, ImpliedVolatility: 0.2, Spot: 100},
		{Strike: 100, DaysToExpiry: 7, ImpliedVolatility: 0.21, Spot: 100},
		{Strike: 110, DaysToExpiry: 7, ImpliedVolatility: 0.22, Spot: 100},
	}

	_, err := InterpolateSurface(points, 0.2, 10)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError for collinear points, got %v", err)
	}
}

func TestInterpolateSurfaceFilterBeforeCount(t *testing.T) {
	// Enough points overall, but only two survive the strike filter.
	points := []SurfacePoint{
		{Strike: 95, DaysToExpiry: 7, ImpliedVolatility: 0.2, Spot: 100},
		{Strike: 105, DaysToExpiry: 30, ImpliedVolatility: 0.22, Spot: 100},
		{Strike: 150, DaysToExpiry: 7, ImpliedVolatility: 0.5, Spot: 100},
		{Strike: 160, DaysToExpiry: 30, ImpliedVolatility: 0.6, Spot: 100},
	}

	_, err := InterpolateSurface(points, 0.2, 10)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}
