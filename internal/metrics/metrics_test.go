package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/pixel"
)

func grey(t *testing.T, w int, vals ...float64) pixel.Buffer {
	t.Helper()
	b, err := flat.Uint8.New(len(vals)/w, w, pixel.Greyscale)
	require.NoError(t, err)
	for i, v := range vals {
		b.SetValue(i%w, i/w, 0, v)
	}
	return b
}

func TestIdenticalImages(t *testing.T) {
	a := grey(t, 3, 10, 50, 90, 130, 170, 210, 250, 20, 60)
	b := grey(t, 3, 10, 50, 90, 130, 170, 210, 250, 20, 60)

	psnr, err := NewPSNR().Calculate(a, b)
	require.NoError(t, err)
	assert.True(t, math.IsInf(psnr, 1))

	mse, err := NewMSE().Calculate(a, b)
	require.NoError(t, err)
	assert.Equal(t, 0.0, mse)

	ssim, err := NewSSIM().Calculate(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ssim, 1e-12)

	sharp, err := NewSharpness().Calculate(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sharp, 1e-12)
}

func TestErrorMetrics(t *testing.T) {
	a := grey(t, 2, 0, 0, 0, 0)
	b := grey(t, 2, 10, 0, 0, 0)

	sse, err := NewSSE().Calculate(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, sse, 1e-9)

	mse, err := NewMSE().Calculate(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, mse, 1e-9)

	psnr, err := NewPSNR().Calculate(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 20*math.Log10(51), psnr, 1e-9)
}

func TestShapeMismatch(t *testing.T) {
	_, err := NewMSE().Calculate(grey(t, 2, 0, 0, 0, 0), grey(t, 3, 0, 0, 0))
	assert.ErrorIs(t, err, pixel.ErrShapeMismatch)
}

func TestColourInputIsReducedToGrey(t *testing.T) {
	rgb, err := pixel.FilledImage(flat.Uint8, 2, 2, pixel.RGB, 100, 100, 100)
	require.NoError(t, err)

	mse, err := NewMSE().Calculate(rgb, grey(t, 2, 100, 100, 100, 100))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, mse, 1e-9)
}

func TestFMeasureAndForeground(t *testing.T) {
	truth := grey(t, 2, 255, 255, 0, 0)
	result := grey(t, 2, 255, 0, 255, 0)

	f, err := NewFMeasure().Calculate(truth, result)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f, 1e-12)

	f, err = NewFMeasure().Calculate(truth, grey(t, 2, 0, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)

	ratio, err := NewForegroundRatio().Calculate(truth, grey(t, 2, 255, 0, 0, 0))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, ratio, 1e-12)
}

func TestContrastRatio(t *testing.T) {
	flatImg := grey(t, 2, 5, 5, 5, 5)
	ratio, err := NewContrastRatio().Calculate(flatImg, grey(t, 2, 0, 10, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, 1.0, ratio)

	ratio, err = NewContrastRatio().Calculate(grey(t, 2, 0, 10, 0, 10), grey(t, 2, 0, 20, 0, 20))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, ratio, 1e-12)
}

func TestEvaluatorCalculate(t *testing.T) {
	e := NewEvaluator()
	assert.Contains(t, e.Names(), "psnr")
	assert.Contains(t, e.Names(), "foreground_ratio")

	_, err := e.Calculate("unknown", grey(t, 1, 0), grey(t, 1, 0))
	assert.ErrorIs(t, err, pixel.ErrConfig)

	all := e.CalculateAll(grey(t, 2, 0, 0, 0, 0), grey(t, 2, 10, 0, 0, 0))
	assert.InDelta(t, 25.0, all["mse"], 1e-9)
	assert.Len(t, e.GetMetricInfo(), len(e.Names()))
}

func TestEvaluateStep(t *testing.T) {
	e := NewEvaluator()
	before := grey(t, 2, 255, 255, 0, 0)
	after := grey(t, 2, 255, 255, 0, 0)

	m := e.EvaluateStep(before, after, "threshold")
	assert.Contains(t, m, "psnr")
	assert.Contains(t, m, "ssim")
	assert.Equal(t, 1.0, m["f_measure"])
	assert.Equal(t, 0.5, m["foreground_ratio"])

	m = e.EvaluateStep(before, after, "dilation")
	assert.Contains(t, m, "edge_preservation")
	assert.NotContains(t, m, "f_measure")
}

func TestDistanceMapFitness(t *testing.T) {
	result, err := flat.Uint8.New(2, 2, pixel.Binary)
	require.NoError(t, err)
	result.SetValue(0, 0, 0, pixel.BinarySet)
	result.SetValue(1, 0, 0, pixel.BinarySet)

	fit, err := NewDistanceMapFitness().Calculate(grey(t, 2, 250, 255, 0, 40), result)
	require.NoError(t, err)
	assert.Equal(t, 25.0, fit)

	m := NewEvaluator().EvaluateStep(grey(t, 2, 255, 255, 0, 0), result, "threshold")
	assert.Equal(t, 0.0, m["distance_map_fitness"])

	_, err = NewDistanceMapFitness().Calculate(grey(t, 2, 0, 0, 0, 0), grey(t, 2, 0, 0, 0, 0))
	assert.ErrorIs(t, err, pixel.ErrType)
}

func TestGenerateReport(t *testing.T) {
	e := NewEvaluator()
	img := grey(t, 3, 10, 50, 90, 130, 170, 210, 250, 20, 60)

	report := e.GenerateReport(img, img)
	// contrast and sharpness ratios of 1 sit mid-range
	assert.InDelta(t, 90.0, report.OverallScore, 1e-9)
	assert.Contains(t, []string{"excellent", "good"}, report.Analysis.QualityLevel)
	assert.Empty(t, report.Analysis.Issues)
	assert.NotEmpty(t, report.Timestamp)

	noisy := grey(t, 3, 250, 10, 200, 0, 255, 0, 10, 240, 0)
	report = e.GenerateReport(img, noisy)
	assert.Less(t, report.OverallScore, 75.0)
	assert.NotEmpty(t, report.Analysis.Issues)
}
