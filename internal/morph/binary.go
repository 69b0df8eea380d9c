// Binary dilation, erosion and their compositions
package morph

import (
	"fmt"

	"generic-imaging/internal/pixel"
)

// Dilate sets every cell that has a set cell under the plus-shaped element
// centred on it. Out-of-image neighbours are ignored.
func Dilate(src pixel.Buffer, f pixel.Factory) (pixel.Buffer, error) {
	return spread(src, f, pixel.BinarySet, pixel.BinaryUnset)
}

// Erode keeps a cell set only when it and every in-image plus neighbour is
// set, which is dilation of the complement.
func Erode(src pixel.Buffer, f pixel.Factory) (pixel.Buffer, error) {
	return spread(src, f, pixel.BinaryUnset, pixel.BinarySet)
}

// Open erodes then dilates.
func Open(src pixel.Buffer, f pixel.Factory) (pixel.Buffer, error) {
	return compose(src, f, Erode, Dilate)
}

// Close dilates then erodes.
func Close(src pixel.Buffer, f pixel.Factory) (pixel.Buffer, error) {
	return compose(src, f, Dilate, Erode)
}

type binaryOp func(pixel.Buffer, pixel.Factory) (pixel.Buffer, error)

func compose(src pixel.Buffer, f pixel.Factory, first, second binaryOp) (pixel.Buffer, error) {
	tmp, err := first(src, f)
	if err != nil {
		return nil, err
	}
	defer tmp.Release()
	return second(tmp, f)
}

// spread writes grow wherever the element touches a grow cell, else rest.
func spread(src pixel.Buffer, f pixel.Factory, grow, rest float64) (pixel.Buffer, error) {
	if err := pixel.RequireLayout(src, pixel.Binary); err != nil {
		return nil, fmt.Errorf("binary morphology: %w", err)
	}

	w, h := src.Width(), src.Height()
	out, err := f.Image(h, w, pixel.Binary)
	if err != nil {
		return nil, err
	}

	err = pixel.Apply(out, func(x, y int) {
		v := rest
		for dx := -1; dx <= 1 && v == rest; dx++ {
			for dy := -1; dy <= 1; dy++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h || !N4.Contains(dx, dy) {
					continue
				}
				if src.Value(nx, ny, 0) == grow {
					v = grow
					break
				}
			}
		}
		out.SetValue(x, y, 0, v)
	}, pixel.WithParallel(pixel.ParallelSafe(src, out)))
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}
