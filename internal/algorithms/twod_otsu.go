// Two-dimensional Otsu thresholding over grey level and local mean
package algorithms

import (
	"math"

	log "github.com/sirupsen/logrus"

	"generic-imaging/internal/pixel"
)

// TwoDOtsu implements 2D Otsu thresholding. Each pixel is classified by
// the pair (grey level, neighbourhood mean), which suppresses isolated
// noise that a 1D histogram cannot separate.
type TwoDOtsu struct{}

// NewTwoDOtsu creates a new 2D Otsu algorithm
func NewTwoDOtsu() *TwoDOtsu {
	return &TwoDOtsu{}
}

func (t *TwoDOtsu) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := t.Validate(params); err != nil {
		return nil, err
	}
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}

	gray, release, err := ensureGrayscale(input)
	if err != nil {
		return nil, err
	}
	defer release()

	w, h := gray.Width(), gray.Height()
	levels := quantize(gray)
	means := boxMeans(levels, w, h, intParam(params, "window_radius", 1))

	stats := newJointStats(levels, means)
	s, th, variance := stats.search()
	log.WithFields(log.Fields{
		"s":        s,
		"t":        th,
		"variance": variance,
	}).Debug("2d otsu thresholds selected")

	out, err := f.Image(h, w, pixel.Binary)
	if err != nil {
		return nil, err
	}
	err = pixel.Apply(out, func(x, y int) {
		i := y*w + x
		v := pixel.BinaryUnset
		if levels[i] > s && means[i] > th {
			v = pixel.BinarySet
		}
		out.SetValue(x, y, 0, v)
	}, pixel.WithParallel(true))
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

func quantize(gray pixel.Buffer) []int {
	w, h := gray.Width(), gray.Height()
	levels := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			levels[y*w+x] = int(math.Max(0, math.Min(255, math.Round(gray.Value(x, y, 0)))))
		}
	}
	return levels
}

// boxMeans averages each (2r+1)^2 window, clipped to the image, through a
// summed-area table.
func boxMeans(levels []int, w, h, r int) []int {
	sat := make([]int, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		row := 0
		for x := 0; x < w; x++ {
			row += levels[y*w+x]
			sat[(y+1)*(w+1)+x+1] = sat[y*(w+1)+x+1] + row
		}
	}

	means := make([]int, w*h)
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-r), min(h, y+r+1)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-r), min(w, x+r+1)
			sum := sat[y1*(w+1)+x1] - sat[y0*(w+1)+x1] - sat[y1*(w+1)+x0] + sat[y0*(w+1)+x0]
			n := (y1 - y0) * (x1 - x0)
			means[y*w+x] = int(math.Round(float64(sum) / float64(n)))
		}
	}
	return means
}

// jointStats holds inclusive prefix sums over the normalised joint
// histogram, indexed [grey][mean].
type jointStats struct {
	p, muG, muF [256][256]float64
}

func newJointStats(levels, means []int) *jointStats {
	js := &jointStats{}
	inv := 1 / float64(len(levels))
	for i, g := range levels {
		js.p[g][means[i]] += inv
	}

	for g := 0; g < 256; g++ {
		for f := 0; f < 256; f++ {
			prob := js.p[g][f]
			js.muG[g][f] = float64(g) * prob
			js.muF[g][f] = float64(f) * prob
			if g > 0 {
				js.p[g][f] += js.p[g-1][f]
				js.muG[g][f] += js.muG[g-1][f]
				js.muF[g][f] += js.muF[g-1][f]
			}
			if f > 0 {
				js.p[g][f] += js.p[g][f-1]
				js.muG[g][f] += js.muG[g][f-1]
				js.muF[g][f] += js.muF[g][f-1]
			}
			if g > 0 && f > 0 {
				js.p[g][f] -= js.p[g-1][f-1]
				js.muG[g][f] -= js.muG[g-1][f-1]
				js.muF[g][f] -= js.muF[g-1][f-1]
			}
		}
	}
	return js
}

// region returns the mass and mean vector of the inclusive block
// [g1..g2] x [f1..f2].
func (js *jointStats) region(g1, f1, g2, f2 int) (w, mg, mf float64) {
	if g1 > g2 || f1 > f2 {
		return 0, 0, 0
	}
	sum := func(t *[256][256]float64) float64 {
		v := t[g2][f2]
		if g1 > 0 {
			v -= t[g1-1][f2]
		}
		if f1 > 0 {
			v -= t[g2][f1-1]
		}
		if g1 > 0 && f1 > 0 {
			v += t[g1-1][f1-1]
		}
		return v
	}
	w = sum(&js.p)
	if w > 1e-10 {
		mg = sum(&js.muG) / w
		mf = sum(&js.muF) / w
	}
	return w, mg, mf
}

// variance scores the split at (s, t). Off-diagonal mass, mostly edges and
// noise, is penalised against the main separation.
func (js *jointStats) variance(s, t int) float64 {
	w0, g0, f0 := js.region(0, 0, s, t)
	w3, g3, f3 := js.region(s+1, t+1, 255, 255)
	if w0 <= 1e-10 || w3 <= 1e-10 {
		return 0
	}
	w1, _, _ := js.region(s+1, 0, 255, t)
	w2, _, _ := js.region(0, t+1, s, 255)

	dist := (g0-g3)*(g0-g3) + (f0-f3)*(f0-f3)
	between := w0*w3*dist - 0.05*(w1+w2)*dist
	coherence := (w0 + w3) / (1 + 0.01*math.Abs(float64(s-t)))
	return between + 0.1*coherence
}

// search returns the best (s, t) with the earliest pair winning ties.
func (js *jointStats) search() (int, int, float64) {
	best, bestS, bestT := 0.0, 0, 0
	for s := 1; s < 255; s++ {
		for t := 1; t < 255; t++ {
			if v := js.variance(s, t); v > best {
				best, bestS, bestT = v, s, t
			}
		}
	}
	return bestS, bestT, best
}

func (t *TwoDOtsu) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"window_radius": 1.0,
	}
}

func (t *TwoDOtsu) GetName() string {
	return "2D Otsu Threshold"
}

func (t *TwoDOtsu) GetDescription() string {
	return "Otsu thresholding over the joint histogram of grey level and local mean"
}

func (t *TwoDOtsu) Validate(params map[string]interface{}) error {
	return checkRange(params, "window_radius", 1, 15)
}

func (t *TwoDOtsu) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "window_radius",
			Type:        "int",
			Min:         1.0,
			Max:         15.0,
			Default:     1.0,
			Description: "Radius of the local mean window",
		},
		representationInfo(),
	}
}
