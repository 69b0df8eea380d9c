// Colour space and greyscale conversions between channel layouts
package convert

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"generic-imaging/internal/pixel"
)

// GreyscaleMethod reduces an 8-bit RGB triple to one grey level.
type GreyscaleMethod func(r, g, b float64) float64

// Luminosity weights the channels by perceived brightness.
func Luminosity(r, g, b float64) float64 {
	return 0.21*r + 0.72*g + 0.07*b
}

// Average is the unweighted channel mean.
func Average(r, g, b float64) float64 {
	return (r + g + b) / 3
}

// Lightness is the midpoint of the brightest and darkest channel.
func Lightness(r, g, b float64) float64 {
	return (math.Max(r, math.Max(g, b)) + math.Min(r, math.Min(g, b))) / 2
}

// rgbOf reads the colour at (x, y) as 8-bit RGB regardless of channel order.
func rgbOf(src pixel.Buffer, x, y int) (r, g, b float64) {
	switch src.Layout() {
	case pixel.BGR, pixel.BGRA:
		return src.Value(x, y, 2), src.Value(x, y, 1), src.Value(x, y, 0)
	case pixel.Greyscale, pixel.Binary:
		v := src.Value(x, y, 0)
		return v, v, v
	case pixel.HSV:
		c := colorful.Hsv(src.Value(x, y, 0), src.Value(x, y, 1), src.Value(x, y, 2)).Clamped()
		return c.R * 255, c.G * 255, c.B * 255
	case pixel.LUV:
		c := colorful.Luv(src.Value(x, y, 0)/100, src.Value(x, y, 1)/100, src.Value(x, y, 2)/100).Clamped()
		return c.R * 255, c.G * 255, c.B * 255
	default:
		return src.Value(x, y, 0), src.Value(x, y, 1), src.Value(x, y, 2)
	}
}

func toColorful(src pixel.Buffer, x, y int) colorful.Color {
	r, g, b := rgbOf(src, x, y)
	return colorful.Color{R: r / 255, G: g / 255, B: b / 255}
}

// convert allocates an out-layout buffer and fills it pixel by pixel.
func convert(src pixel.Buffer, f pixel.Factory, out *pixel.Layout, fn func(x, y int) []float64) (pixel.Buffer, error) {
	dst, err := f.Image(src.Height(), src.Width(), out)
	if err != nil {
		return nil, err
	}
	err = pixel.Apply(dst, func(x, y int) {
		dst.SetValues(x, y, fn(x, y))
	}, pixel.WithParallel(pixel.ParallelSafe(src, dst)))
	if err != nil {
		dst.Release()
		return nil, err
	}
	return dst, nil
}

// ToGreyscale reduces a colour buffer to GREYSCALE. Greyscale and binary
// input is copied unchanged.
func ToGreyscale(src pixel.Buffer, f pixel.Factory, method GreyscaleMethod) (pixel.Buffer, error) {
	if err := pixel.RequireLayout(src, pixel.Greyscale, pixel.Binary,
		pixel.RGB, pixel.BGR, pixel.RGBA, pixel.BGRA); err != nil {
		return nil, fmt.Errorf("greyscale: %w", err)
	}
	if method == nil {
		method = Luminosity
	}

	if l := src.Layout(); l == pixel.Greyscale || l == pixel.Binary {
		return pixel.CreateCopy(src, f)
	}
	return convert(src, f, pixel.Greyscale, func(x, y int) []float64 {
		return []float64{method(rgbOf(src, x, y))}
	})
}

// ToRGB converts any supported layout to RGB.
func ToRGB(src pixel.Buffer, f pixel.Factory) (pixel.Buffer, error) {
	if err := pixel.RequireLayout(src, pixel.RGB, pixel.BGR, pixel.RGBA, pixel.BGRA,
		pixel.Greyscale, pixel.Binary, pixel.HSV, pixel.LUV); err != nil {
		return nil, fmt.Errorf("to rgb: %w", err)
	}

	if src.Layout() == pixel.RGB {
		return pixel.CreateCopy(src, f)
	}
	return convert(src, f, pixel.RGB, func(x, y int) []float64 {
		r, g, b := rgbOf(src, x, y)
		return []float64{r, g, b}
	})
}

// ToHSV converts colour or grey input to HSV (hue in degrees, saturation
// and value in 0..1).
func ToHSV(src pixel.Buffer, f pixel.Factory) (pixel.Buffer, error) {
	if err := pixel.RequireLayout(src, pixel.RGB, pixel.BGR, pixel.RGBA, pixel.BGRA,
		pixel.Greyscale, pixel.LUV); err != nil {
		return nil, fmt.Errorf("to hsv: %w", err)
	}

	return convert(src, f, pixel.HSV, func(x, y int) []float64 {
		h, s, v := toColorful(src, x, y).Hsv()
		return []float64{h, s, v}
	})
}

// ToLUV converts colour or grey input to CIE L*u*v* with L in 0..100.
func ToLUV(src pixel.Buffer, f pixel.Factory) (pixel.Buffer, error) {
	if err := pixel.RequireLayout(src, pixel.RGB, pixel.BGR, pixel.RGBA, pixel.BGRA,
		pixel.Greyscale, pixel.HSV); err != nil {
		return nil, fmt.Errorf("to luv: %w", err)
	}

	return convert(src, f, pixel.LUV, func(x, y int) []float64 {
		l, u, v := toColorful(src, x, y).Luv()
		return []float64{l * 100, u * 100, v * 100}
	})
}
