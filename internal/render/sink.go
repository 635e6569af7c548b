// Package render draws volatility analytics in the terminal. The analytics
// core prepares arrays and hands them over; nothing in here computes.
package render

import (
	"math"

	"github.com/volsuite/volsuite/internal/vol"
)

// Sink consumes prepared plot data. Surface takes three equal-shaped
// meshes; nodes outside the interpolation hull arrive as NaN. Skew takes
// two parallel arrays.
type Sink interface {
	Surface(strike, dte, iv [][]float64, cmap string) error
	Skew(strike, iv []float64, title string) error
}

// SurfaceMeshes flattens an interpolated grid into the three meshes the
// sink contract expects, mapping undefined cells to NaN.
func SurfaceMeshes(grid *vol.Grid) (strike, dte, iv [][]float64) {
	iv = make([][]float64, len(grid.IV))
	for i, row := range grid.IV {
		iv[i] = make([]float64, len(row))
		for j, v := range row {
			if v.Valid {
				iv[i][j] = v.Float64
			} else {
				iv[i][j] = math.NaN()
			}
		}
	}
	return grid.Strike, grid.DTE, iv
}

// SkewArrays splits skew points into the two parallel arrays the sink
// contract expects.
func SkewArrays(points []vol.SkewPoint) (strike, iv []float64) {
	strike = make([]float64, len(points))
	iv = make([]float64, len(points))
	for i, p := range points {
		strike[i] = p.Strike
		iv[i] = p.ImpliedVolatility
	}
	return strike, iv
}
