package vol

import (
	"fmt"
	"math"

	"github.com/guregu/null/v6"
)

// Grid is a regular (resolution+1)x(resolution+1) mesh sampled over the
// strike and days-to-expiry axes of a surface, with the implied volatility
// interpolated at each node. Nodes outside the convex hull of the input
// points are invalid; no extrapolation is performed. Row index follows the
// days-to-expiry axis, column index the strike axis.
type Grid struct {
	Strike [][]float64
	DTE    [][]float64
	IV     [][]null.Float
}

// Rows returns the mesh side length.
func (g *Grid) Rows() int {
	return len(g.IV)
}

// InterpolateSurface resamples a scattered surface point cloud onto a
// regular mesh for plotting. Points are first filtered to strikes within
// strikeRange of spot (0.2 keeps strikes between 80% and 120% of spot),
// then the remaining (strike, dte, iv) cloud is triangulated and the mesh
// nodes are filled by linear barycentric interpolation. At least three
// non-collinear filtered points are required.
func InterpolateSurface(points []SurfacePoint, strikeRange float64, resolution int) (*Grid, error) {
	if resolution < 1 {
		return nil, fmt.Errorf("resolution must be at least 1, got %d", resolution)
	}
	if len(points) == 0 {
		return nil, &InsufficientDataError{Reason: "empty surface"}
	}

	spot := points[0].Spot
	lower := spot * (1 - strikeRange)
	upper := spot * (1 + strikeRange)

	// Collapse exact (strike, dte) duplicates, keeping the first, so the
	// triangulation input is a proper point set.
	type key struct {
		x, y float64
	}
	seen := make(map[key]bool)
	var pts []triPoint
	for _, p := range points {
		if p.Strike < lower || p.Strike > upper {
			continue
		}
		k := key{p.Strike, float64(p.DaysToExpiry)}
		if seen[k] {
			continue
		}
		seen[k] = true
		pts = append(pts, triPoint{x: p.Strike, y: float64(p.DaysToExpiry), z: p.ImpliedVolatility})
	}

	if len(pts) < 3 {
		return nil, &InsufficientDataError{
			Reason: fmt.Sprintf("interpolation needs at least 3 points inside the strike range, got %d", len(pts)),
		}
	}
	if collinear(pts) {
		return nil, &InsufficientDataError{Reason: "surface points are collinear, cannot interpolate"}
	}

	xAxis := linspace(minX(pts), maxX(pts), resolution+1)
	yAxis := linspace(minY(pts), maxY(pts), resolution+1)

	tris := delaunay(pts)

	n := resolution + 1
	grid := &Grid{
		Strike: make([][]float64, n),
		DTE:    make([][]float64, n),
		IV:     make([][]null.Float, n),
	}
	for i := 0; i < n; i++ {
		grid.Strike[i] = make([]float64, n)
		grid.DTE[i] = make([]float64, n)
		grid.IV[i] = make([]null.Float, n)
		for j := 0; j < n; j++ {
			grid.Strike[i][j] = xAxis[j]
			grid.DTE[i][j] = yAxis[i]
			grid.IV[i][j] = interpolateAt(pts, tris, xAxis[j], yAxis[i])
		}
	}

	return grid, nil
}

type triPoint struct {
	x, y, z float64
}

// triangle holds indices into the point slice.
type triangle struct {
	a, b, c int
}

// delaunay triangulates a point set with the Bowyer-Watson incremental
// algorithm. The input must contain at least three non-collinear points.
// Triangulation happens in coordinates normalized to the unit square so
// the strike and days-to-expiry axes carry equal weight in the
// circumcircle test.
func delaunay(pts []triPoint) []triangle {
	xlo, xhi := minX(pts), maxX(pts)
	ylo, yhi := minY(pts), maxY(pts)
	xs := xhi - xlo
	if xs == 0 {
		xs = 1
	}
	ys := yhi - ylo
	if ys == 0 {
		ys = 1
	}

	// The working set is the normalized input points followed by the
	// three vertices of a super-triangle. The super vertices stand for
	// points at infinity; circumcontains never measures distances to
	// them, only directions.
	work := make([]triPoint, len(pts), len(pts)+3)
	for i, p := range pts {
		work[i] = triPoint{x: (p.x - xlo) / xs, y: (p.y - ylo) / ys}
	}

	superA := len(work)
	work = append(work,
		triPoint{x: -50, y: -50},
		triPoint{x: 0.5, y: 75},
		triPoint{x: 51, y: -50},
	)

	tris := []triangle{{superA, superA + 1, superA + 2}}

	type edge struct {
		u, v int
	}
	normEdge := func(u, v int) edge {
		if u < v {
			return edge{u, v}
		}
		return edge{v, u}
	}

	for p := 0; p < len(pts); p++ {
		var bad []triangle
		var keep []triangle
		for _, t := range tris {
			if circumcontains(work, superA, t, work[p]) {
				bad = append(bad, t)
			} else {
				keep = append(keep, t)
			}
		}

		// The boundary of the cavity is every edge that belongs to
		// exactly one bad triangle.
		edgeCount := make(map[edge]int)
		for _, t := range bad {
			edgeCount[normEdge(t.a, t.b)]++
			edgeCount[normEdge(t.b, t.c)]++
			edgeCount[normEdge(t.c, t.a)]++
		}

		tris = keep
		for e, count := range edgeCount {
			if count == 1 {
				tris = append(tris, triangle{e.u, e.v, p})
			}
		}
	}

	// Drop everything still attached to the super-triangle.
	final := tris[:0]
	for _, t := range tris {
		if t.a >= superA || t.b >= superA || t.c >= superA {
			continue
		}
		final = append(final, t)
	}
	return final
}

// circumcontains reports whether p lies inside the circumdisk of t.
// Triangles touching a super vertex take the limit of the circumcircle as
// that vertex goes to infinity, which degenerates to a half-plane; the
// determinant test never sees super-vertex coordinates.
func circumcontains(pts []triPoint, superA int, t triangle, p triPoint) bool {
	var fin, sup []int
	for _, v := range [3]int{t.a, t.b, t.c} {
		if v >= superA {
			sup = append(sup, v)
		} else {
			fin = append(fin, v)
		}
	}

	switch len(sup) {
	case 0:
		return inCircumcircle(pts, t, p)
	case 1:
		// Open half-plane beside edge ab on the super vertex side,
		// plus the open edge itself.
		a, b := pts[fin[0]], pts[fin[1]]
		side := orient(a, b, p)
		if orient(a, b, pts[sup[0]]) < 0 {
			side = -side
		}
		if side > 0 {
			return true
		}
		if side == 0 {
			return (p.x-a.x)*(p.x-b.x)+(p.y-a.y)*(p.y-b.y) < 0
		}
		return false
	case 2:
		// Open half-plane through the finite vertex facing the
		// combined direction of the two super vertices.
		a := pts[fin[0]]
		ux := (pts[sup[0]].x - a.x) + (pts[sup[1]].x - a.x)
		uy := (pts[sup[0]].y - a.y) + (pts[sup[1]].y - a.y)
		return (p.x-a.x)*ux+(p.y-a.y)*uy > 0
	default:
		return true
	}
}

// inCircumcircle reports whether p lies strictly inside the circumcircle
// of triangle t.
func inCircumcircle(pts []triPoint, t triangle, p triPoint) bool {
	a, b, c := pts[t.a], pts[t.b], pts[t.c]
	if orient(a, b, c) < 0 {
		b, c = c, b
	}

	ax, ay := a.x-p.x, a.y-p.y
	bx, by := b.x-p.x, b.y-p.y
	cx, cy := c.x-p.x, c.y-p.y

	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)
	return det > 0
}

func orient(a, b, c triPoint) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

// interpolateAt evaluates the linear interpolant at (x, y), invalid when
// the point lies outside every triangle.
func interpolateAt(pts []triPoint, tris []triangle, x, y float64) null.Float {
	q := triPoint{x: x, y: y}
	for _, t := range tris {
		a, b, c := pts[t.a], pts[t.b], pts[t.c]
		area := orient(a, b, c)
		if area == 0 {
			continue
		}
		wa := orient(b, c, q) / area
		wb := orient(c, a, q) / area
		wc := orient(a, b, q) / area

		const eps = 1e-9
		if wa < -eps || wb < -eps || wc < -eps {
			continue
		}
		return null.FloatFrom(wa*a.z + wb*b.z + wc*c.z)
	}
	return null.Float{}
}

// collinear reports whether every point of the set lies on one line.
func collinear(pts []triPoint) bool {
	// Find a second distinct point to define the candidate line.
	base := pts[0]
	ref := -1
	for i := 1; i < len(pts); i++ {
		if pts[i].x != base.x || pts[i].y != base.y {
			ref = i
			break
		}
	}
	if ref == -1 {
		return true
	}

	span := math.Max(maxX(pts)-minX(pts), maxY(pts)-minY(pts))
	tol := 1e-12 * span * span
	for i := ref + 1; i < len(pts); i++ {
		if math.Abs(orient(base, pts[ref], pts[i])) > tol {
			return false
		}
	}
	return true
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

func minX(pts []triPoint) float64 {
	m := pts[0].x
	for _, p := range pts {
		m = math.Min(m, p.x)
	}
	return m
}

func maxX(pts []triPoint) float64 {
	m := pts[0].x
	for _, p := range pts {
		m = math.Max(m, p.x)
	}
	return m
}

func minY(pts []triPoint) float64 {
	m := pts[0].y
	for _, p := range pts {
		m = math.Min(m, p.y)
	}
	return m
}

func maxY(pts []triPoint) float64 {
	m := pts[0].y
	for _, p := range pts {
		m = math.Max(m, p.y)
	}
	return m
}
