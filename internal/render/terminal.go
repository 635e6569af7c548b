package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	plotTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	axisStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	emptyCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#374151"))
)

// Terminal renders plots as colored character grids.
type Terminal struct {
	out io.Writer
}

// NewTerminal returns a sink writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// Surface draws the interpolated volatility surface as a heatmap, strikes
// across, days to expiry down, color mapped to implied volatility. NaN
// nodes outside the hull render as dots.
func (t *Terminal) Surface(strike, dte, iv [][]float64, cmap string) error {
	if len(iv) == 0 || len(iv[0]) == 0 {
		return fmt.Errorf("empty surface mesh")
	}
	if !ValidCmap(cmap) {
		return fmt.Errorf("unknown colormap %q, valid: %s", cmap, joinedCmapNames())
	}

	lo, hi, any := meshRange(iv)
	if !any {
		return fmt.Errorf("surface mesh has no defined nodes")
	}

	var b strings.Builder
	b.WriteString(plotTitleStyle.Render("implied volatility surface"))
	b.WriteByte('\n')

	for i := len(iv) - 1; i >= 0; i-- {
		b.WriteString(axisStyle.Render(fmt.Sprintf("%7.1fd ", dte[i][0])))
		for j := range iv[i] {
			v := iv[i][j]
			if math.IsNaN(v) {
				b.WriteString(emptyCellStyle.Render(" ."))
				continue
			}
			color := sampleCmap(cmap, normalize(v, lo, hi))
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("██"))
		}
		b.WriteByte('\n')
	}

	cols := len(strike[0])
	b.WriteString(axisStyle.Render(fmt.Sprintf("%9s%-10.1f%*.1f", "", strike[0][0], 2*cols-10, strike[0][cols-1])))
	b.WriteByte('\n')
	b.WriteString(axisStyle.Render(fmt.Sprintf("iv %.4f", lo)))
	b.WriteString(t.legend(cmap))
	b.WriteString(axisStyle.Render(fmt.Sprintf("%.4f", hi)))
	b.WriteByte('\n')

	_, err := fmt.Fprintln(t.out, b.String())
	return err
}

// Skew draws strike against implied volatility as a scaled scatter chart.
func (t *Terminal) Skew(strike, iv []float64, title string) error {
	if len(strike) == 0 || len(strike) != len(iv) {
		return fmt.Errorf("skew arrays empty or mismatched")
	}

	const height = 16
	width := len(strike)
	if width > 70 {
		width = 70
	}

	sLo, sHi := minMax(strike)
	vLo, vHi := minMax(iv)

	grid := make([][]bool, height)
	for i := range grid {
		grid[i] = make([]bool, width)
	}
	for i := range strike {
		col := int(math.Round(normalize(strike[i], sLo, sHi) * float64(width-1)))
		row := int(math.Round(normalize(iv[i], vLo, vHi) * float64(height-1)))
		grid[row][col] = true
	}

	var b strings.Builder
	b.WriteString(plotTitleStyle.Render(title))
	b.WriteByte('\n')
	for r := height - 1; r >= 0; r-- {
		label := ""
		switch r {
		case height - 1:
			label = fmt.Sprintf("%8.4f", vHi)
		case 0:
			label = fmt.Sprintf("%8.4f", vLo)
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%8s |", label)))
		for c := 0; c < width; c++ {
			if grid[r][c] {
				b.WriteString(plotTitleStyle.Render("o"))
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(axisStyle.Render(fmt.Sprintf("%8s +%s", "", strings.Repeat("-", width))))
	b.WriteByte('\n')
	b.WriteString(axisStyle.Render(fmt.Sprintf("%10.2f%*.2f  (strike)", sLo, width-8, sHi)))
	b.WriteByte('\n')

	_, err := fmt.Fprintln(t.out, b.String())
	return err
}

func (t *Terminal) legend(cmap string) string {
	const steps = 24
	var b strings.Builder
	b.WriteByte(' ')
	for i := 0; i < steps; i++ {
		color := sampleCmap(cmap, float64(i)/float64(steps-1))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
	}
	b.WriteByte(' ')
	return b.String()
}

func meshRange(iv [][]float64) (lo, hi float64, any bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range iv {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			any = true
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi, any
}

func minMax(vals []float64) (lo, hi float64) {
	lo, hi = vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func normalize(v, lo, hi float64) float64 {
	if hi == lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}
