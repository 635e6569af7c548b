package render

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/guregu/null/v6"

	"github.com/volsuite/volsuite/internal/vol"
)

func TestSurfaceMeshesMapsUndefinedToNaN(t *testing.T) {
	grid := &vol.Grid{
		Strike: [][]float64{{90, 110}},
		DTE:    [][]float64{{7, 7}},
		IV:     [][]null.Float{{null.FloatFrom(0.2), {}}},
	}

	_, _, iv := SurfaceMeshes(grid)
	if iv[0][0] != 0.2 {
		t.Fatalf("defined node lost: %v", iv[0][0])
	}
	if !math.IsNaN(iv[0][1]) {
		t.Fatalf("undefined node should map to NaN, got %v", iv[0][1])
	}
}

func TestSkewArraysParallel(t *testing.T) {
	points := []vol.SkewPoint{
		{Strike: 95, ImpliedVolatility: 0.3},
		{Strike: 105, ImpliedVolatility: 0.2},
	}
	strike, iv := SkewArrays(points)
	if len(strike) != 2 || len(iv) != 2 {
		t.Fatalf("unexpected lengths %d %d", len(strike), len(iv))
	}
	if strike[1] != 105 || iv[1] != 0.2 {
		t.Fatalf("arrays not parallel: %v %v", strike, iv)
	}
}

func TestSampleCmapEndpoints(t *testing.T) {
	if got := sampleCmap("gray", 0); got != "#000000" {
		t.Fatalf("gray start: %s", got)
	}
	if got := sampleCmap("gray", 1); got != "#FFFFFF" {
		t.Fatalf("gray end: %s", got)
	}
	if got := sampleCmap("jet", 0.5); got == "" {
		t.Fatal("jet midpoint empty")
	}
	// out of range clamps
	if got := sampleCmap("gray", 2); got != "#FFFFFF" {
		t.Fatalf("clamp high: %s", got)
	}
}

func TestTerminalSurfaceRejectsUnknownCmap(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTerminal(&buf)

	mesh := [][]float64{{1, 2}}
	err := sink.Surface(mesh, mesh, mesh, "plasma")
	if err == nil {
		t.Fatal("expected error for unknown colormap")
	}
	if !strings.Contains(err.Error(), "plasma") {
		t.Fatalf("error should name the colormap: %v", err)
	}
}

func TestTerminalSurfaceDrawsHeatmap(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTerminal(&buf)

	strike := [][]float64{{90, 100, 110}, {90, 100, 110}}
	dte := [][]float64{{7, 7, 7}, {30, 30, 30}}
	iv := [][]float64{{0.2, 0.25, 0.3}, {0.22, math.NaN(), 0.28}}

	if err := sink.Surface(strike, dte, iv, "jet"); err != nil {
		t.Fatalf("Surface: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "implied volatility surface") {
		t.Fatalf("missing title in:\n%s", out)
	}
	if !strings.Contains(out, ".") {
		t.Fatal("NaN node should render as a dot")
	}
}

func TestTerminalSurfaceAllNaN(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTerminal(&buf)

	nan := math.NaN()
	mesh := [][]float64{{1, 2}}
	if err := sink.Surface(mesh, mesh, [][]float64{{nan, nan}}, "gray"); err == nil {
		t.Fatal("expected error when no node is defined")
	}
}

func TestTerminalSkew(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTerminal(&buf)

	strike := []float64{90, 95, 100, 105, 110}
	iv := []float64{0.35, 0.30, 0.26, 0.24, 0.25}
	if err := sink.Skew(strike, iv, "AAPL skew 2024-06-21"); err != nil {
		t.Fatalf("Skew: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "AAPL skew 2024-06-21") {
		t.Fatal("missing title")
	}
	if !strings.Contains(out, "o") {
		t.Fatal("missing plotted points")
	}

	if err := sink.Skew(nil, nil, "empty"); err == nil {
		t.Fatal("expected error for empty arrays")
	}
}
