package segment

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/morph"
	"generic-imaging/internal/pixel"
)

func greyImage(t *testing.T, w, h int, value func(x, y int) float64) pixel.Buffer {
	t.Helper()
	b, err := flat.Uint8.Image(h, w, pixel.Greyscale)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.SetValue(x, y, 0, value(x, y))
		}
	}
	return b
}

func countSet(b pixel.Buffer) int {
	n := 0
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			if b.Value(x, y, 0) == pixel.BinarySet {
				n++
			}
		}
	}
	return n
}

func diagonalImage(t *testing.T) pixel.Buffer {
	// bright cells at (1,1) and (2,2) touch only diagonally
	return greyImage(t, 4, 4, func(x, y int) float64 {
		if (x == 1 && y == 1) || (x == 2 && y == 2) {
			return 200
		}
		return 10
	})
}

func TestRegionGrowingTopology(t *testing.T) {
	tests := []struct {
		name      string
		neighbors *morph.Mask
		diagonal  bool
	}{
		{"n4", morph.N4, false},
		{"n8", morph.N8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRegionConfig(image.Pt(1, 1))
			cfg.Neighbors = tt.neighbors
			rg, err := NewRegionGrowing(cfg, flat.Uint8)
			require.NoError(t, err)

			out, err := rg.Apply(diagonalImage(t))
			require.NoError(t, err)
			assert.Same(t, pixel.Binary, out.Layout())
			assert.Equal(t, pixel.BinarySet, out.Value(1, 1, 0))
			assert.Equal(t, tt.diagonal, out.Value(2, 2, 0) == pixel.BinarySet)
		})
	}
}

func TestRegionGrowingSeedOutsideRange(t *testing.T) {
	rg, err := NewRegionGrowing(DefaultRegionConfig(image.Pt(0, 0)), flat.Uint8)
	require.NoError(t, err)

	out, err := rg.Apply(diagonalImage(t))
	require.NoError(t, err)
	assert.Equal(t, 0, countSet(out))
}

func TestRegionGrowingIgnoresSeedsOutsideImage(t *testing.T) {
	rg, err := NewRegionGrowing(DefaultRegionConfig(image.Pt(-1, 0), image.Pt(9, 9)), flat.Uint8)
	require.NoError(t, err)

	out, err := rg.Apply(diagonalImage(t))
	require.NoError(t, err)
	assert.Equal(t, 0, countSet(out))
}

func TestRegionGrowingFloodsConnectedRegion(t *testing.T) {
	// a bright ring of width one around a dark centre plus a detached bright corner
	src := greyImage(t, 6, 6, func(x, y int) float64 {
		switch {
		case x == 5 && y == 5:
			return 255
		case x <= 3 && y <= 3 && (x == 0 || y == 0 || x == 3 || y == 3):
			return 180
		}
		return 0
	})

	cfg := RegionConfig{Seeds: []image.Point{{X: 0, Y: 0}}, Lower: 150, Upper: 200, Neighbors: morph.N4}
	rg, err := NewRegionGrowing(cfg, flat.Uint8)
	require.NoError(t, err)

	out, err := rg.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, 12, countSet(out))
	assert.Equal(t, pixel.BinaryUnset, out.Value(1, 1, 0))
	assert.Equal(t, pixel.BinaryUnset, out.Value(5, 5, 0))
}

func TestRegionGrowingValidation(t *testing.T) {
	_, err := NewRegionGrowing(RegionConfig{Lower: 10, Upper: 5}, flat.Uint8)
	assert.ErrorIs(t, err, pixel.ErrConfig)

	rg, err := NewRegionGrowing(DefaultRegionConfig(), flat.Uint8)
	require.NoError(t, err)
	rgb, err := flat.Uint8.Image(2, 2, pixel.RGB)
	require.NoError(t, err)
	_, err = rg.Apply(rgb)
	assert.ErrorIs(t, err, pixel.ErrType)
}

func TestAdaptiveThresholdTwoLevel(t *testing.T) {
	src := greyImage(t, 40, 20, func(x, y int) float64 {
		if x < 20 {
			return 255
		}
		return 0
	})

	cfg := DefaultThresholdConfig()
	cfg.ClusterSize = 50
	at, err := NewAdaptiveThreshold(cfg, flat.Uint8)
	require.NoError(t, err)

	res, err := at.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{128}}, res.Thresholds)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, pixel.BinarySet, res.Image.Value(0, 0, 0))
	assert.Equal(t, pixel.BinaryUnset, res.Image.Value(39, 19, 0))
}

func TestAdaptiveThresholdClusters(t *testing.T) {
	src := greyImage(t, 60, 60, func(x, y int) float64 {
		if x < 30 {
			return 200
		}
		return 50
	})

	at, err := NewAdaptiveThreshold(DefaultThresholdConfig(), flat.Uint8)
	require.NoError(t, err)

	res, err := at.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{125, 125}, {125, 125}}, res.Thresholds)
	assert.Equal(t, 3, res.Iterations)
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			want := pixel.BinaryUnset
			if x < 30 {
				want = pixel.BinarySet
			}
			require.Equal(t, want, res.Image.Value(x, y, 0), "(%d,%d)", x, y)
		}
	}
}

func TestAdaptiveThresholdFractionalLabels(t *testing.T) {
	src := greyImage(t, 60, 60, func(x, y int) float64 {
		if x < 30 {
			return 200
		}
		return 50
	})

	cfg := DefaultThresholdConfig()
	cfg.Foreground = 200.5
	cfg.Background = 0.5

	tests := []struct {
		factory pixel.Factory
		fg, bg  float64
	}{
		{flat.Uint8, 200, 0},
		{flat.Float64, 200.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(string(tt.factory.Kind()), func(t *testing.T) {
			at, err := NewAdaptiveThreshold(cfg, tt.factory)
			require.NoError(t, err)

			res, err := at.Apply(src)
			require.NoError(t, err)
			assert.Equal(t, [][]int{{125, 125}, {125, 125}}, res.Thresholds)
			assert.Equal(t, 3, res.Iterations)

			assert.Equal(t, tt.fg, res.Image.Value(0, 0, 0))
			assert.Equal(t, tt.bg, res.Image.Value(59, 59, 0))
		})
	}
}

func TestAdaptiveThresholdIterationCap(t *testing.T) {
	src := greyImage(t, 4, 4, func(x, y int) float64 {
		if x < 2 {
			return 10
		}
		return 20
	})

	cfg := DefaultThresholdConfig()
	cfg.MaxIterations = 1
	at, err := NewAdaptiveThreshold(cfg, flat.Uint8)
	require.NoError(t, err)
	_, err = at.Apply(src)
	assert.ErrorIs(t, err, ErrNotConverged)
	assert.ErrorIs(t, err, pixel.ErrState)

	at, err = NewAdaptiveThreshold(DefaultThresholdConfig(), flat.Uint8)
	require.NoError(t, err)
	res, err := at.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{8}}, res.Thresholds)
	assert.Equal(t, 2, res.Iterations)
}

func TestAdaptiveThresholdValidation(t *testing.T) {
	bad := []func(*ThresholdConfig){
		func(c *ThresholdConfig) { c.ClusterSize = 0 },
		func(c *ThresholdConfig) { c.Overlap = 1.5 },
		func(c *ThresholdConfig) { c.Epsilon = -1 },
		func(c *ThresholdConfig) { c.MaxIterations = 0 },
		func(c *ThresholdConfig) { c.Foreground = c.Background },
	}
	for i, mutate := range bad {
		cfg := DefaultThresholdConfig()
		mutate(&cfg)
		_, err := NewAdaptiveThreshold(cfg, flat.Uint8)
		assert.ErrorIs(t, err, pixel.ErrConfig, "case %d", i)
	}

	at, err := NewAdaptiveThreshold(DefaultThresholdConfig(), flat.Uint8)
	require.NoError(t, err)
	rgb, err := flat.Uint8.Image(2, 2, pixel.RGB)
	require.NoError(t, err)
	_, err = at.Apply(rgb)
	assert.ErrorIs(t, err, pixel.ErrType)
}
