package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"generic-imaging/internal/pixel"
)

func TestConvexHullSquareWithDuplicate(t *testing.T) {
	hull, err := ConvexHull([]Point{Pt(0, 0), Pt(10, 0), Pt(0, 10), Pt(0, 10)})
	require.NoError(t, err)
	assert.Len(t, hull, 4)
	assert.Equal(t, hull[0], hull[len(hull)-1])
}

func TestConvexHullFourCorners(t *testing.T) {
	hull, err := ConvexHull([]Point{Pt(0, 0), Pt(4, 0), Pt(4, 4), Pt(0, 4), Pt(4, 4)})
	require.NoError(t, err)
	assert.Equal(t, []Point{Pt(0, 0), Pt(4, 0), Pt(4, 4), Pt(0, 4), Pt(0, 0)}, hull)
}

func TestConvexHullInteriorPoints(t *testing.T) {
	points := []Point{
		Pt(3, 1), Pt(3, 4), Pt(1, 2), Pt(5, 2), Pt(2, 3),
		Pt(4, 3), Pt(3, 2), Pt(3, 3), Pt(2, 2),
	}
	hull, err := ConvexHull(points)
	require.NoError(t, err)
	assert.Len(t, hull, 5)
	assert.Equal(t, Pt(3, 1), hull[0])
	assert.ElementsMatch(t, []Point{Pt(3, 1), Pt(5, 2), Pt(3, 4), Pt(1, 2), Pt(3, 1)}, hull)
}

func TestConvexHullDiamond(t *testing.T) {
	a, b, c := Pt(2, 4), Pt(3, 5), Pt(3, 3)
	d, e, f := Pt(4, 6), Pt(4, 4), Pt(4, 2)
	g, h, i := Pt(5, 5), Pt(5, 3), Pt(6, 4)

	hull, err := ConvexHull([]Point{a, b, c, d, e, f, g, h, i})
	require.NoError(t, err)
	assert.Len(t, hull, 5)
	for _, p := range []Point{f, i, d, a} {
		assert.Contains(t, hull, p)
	}
}

func TestConvexHullErrors(t *testing.T) {
	_, err := ConvexHull([]Point{Pt(2, 4), Pt(3, 3), Pt(4, 2)})
	assert.ErrorIs(t, err, pixel.ErrConfig)

	_, err = ConvexHull([]Point{Pt(1, 1), Pt(2, 2), Pt(1, 1)})
	assert.ErrorIs(t, err, pixel.ErrConfig)

	_, err = ConvexHullXY([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, pixel.ErrShapeMismatch)
}

func TestConvexHullXY(t *testing.T) {
	hull, err := ConvexHullXY([]float64{0, 10, 0}, []float64{0, 0, 10})
	require.NoError(t, err)
	assert.Equal(t, []Point{Pt(0, 0), Pt(10, 0), Pt(0, 10), Pt(0, 0)}, hull)
}

func TestLowestPoint(t *testing.T) {
	points := []Point{Pt(2, 4), Pt(6, -1), Pt(-1, -1), Pt(0, 3)}
	assert.Equal(t, Pt(-1, -1), LowestPoint(points))
}

func TestSortedPointSet(t *testing.T) {
	a, b, c := Pt(2, 2), Pt(1, 1), Pt(0, 0)
	d, e, f, g := Pt(2, 0), Pt(1, 0), Pt(0, 1), Pt(0, 2)

	sorted := SortedPointSet([]Point{a, b, c, d, e, f, g, a, d})
	assert.Equal(t, []Point{c, e, d, b, a, f, g}, sorted)
}

func TestTurnOf(t *testing.T) {
	assert.Equal(t, CounterClockwise, TurnOf(Pt(0, 0), Pt(1, 0), Pt(1, 1)))
	assert.Equal(t, Clockwise, TurnOf(Pt(0, 0), Pt(1, 0), Pt(1, -1)))
	assert.Equal(t, Collinear, TurnOf(Pt(0, 0), Pt(1, 1), Pt(3, 3)))
}

func pts(coords ...int) []image.Point {
	out := make([]image.Point, 0, len(coords)/2)
	for i := 0; i < len(coords); i += 2 {
		out = append(out, image.Pt(coords[i], coords[i+1]))
	}
	return out
}

func TestTraceBoundary(t *testing.T) {
	tests := []struct {
		name     string
		area     []image.Point
		expected []image.Point
	}{
		{
			name: "blob",
			area: pts(3, 2, 4, 2, 5, 2, 2, 3, 3, 3, 4, 3, 2, 4, 3, 4, 4, 4, 2, 5, 3, 5, 4, 5),
			expected: pts(2, 3, 2, 4, 2, 5, 3, 5, 4, 5, 4, 4, 4, 3, 5, 2, 4, 2, 3, 2),
		},
		{
			name:     "corner",
			area:     pts(1, 1, 2, 1, 1, 2),
			expected: pts(1, 2, 2, 1, 1, 1),
		},
		{
			name:     "pair",
			area:     pts(1, 1, 1, 2),
			expected: pts(1, 2, 1, 1),
		},
		{
			name:     "negative coordinates",
			area:     pts(-3, -2, -2, -2, -3, -1),
			expected: pts(-3, -1, -2, -2, -3, -2),
		},
		{
			name:     "single point",
			area:     pts(7, 9),
			expected: pts(7, 9),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TraceBoundary(tt.area)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTraceBoundaryRectangle(t *testing.T) {
	var area []image.Point
	for x := 2; x < 6; x++ {
		for y := 1; y < 4; y++ {
			area = append(area, image.Pt(x, y))
		}
	}

	got, err := TraceBoundary(area)
	require.NoError(t, err)
	assert.Len(t, got, 10)

	seen := make(map[image.Point]bool)
	for _, p := range got {
		assert.False(t, seen[p], "visited %v twice", p)
		seen[p] = true
		onEdge := p.X == 2 || p.X == 5 || p.Y == 1 || p.Y == 3
		assert.True(t, onEdge, "%v is not on the perimeter", p)
	}
	assert.Equal(t, image.Pt(2, 1), got[len(got)-1])
}

func TestTraceBoundaryErrors(t *testing.T) {
	_, err := TraceBoundary(nil)
	assert.ErrorIs(t, err, pixel.ErrState)

	_, err = TraceBoundary(pts(0, 0, 5, 5))
	assert.ErrorIs(t, err, pixel.ErrState)
}
