// OpenCV backed image loading and saving
package io

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/backend/matbuf"
	"generic-imaging/internal/convert"
	"generic-imaging/internal/pixel"
)

// ImageLoader handles image file operations through OpenCV. Loaded
// images are matrix buffers in BGR or GREYSCALE layout.
type ImageLoader struct {
	logger *logrus.Logger
}

func NewImageLoader(logger *logrus.Logger) *ImageLoader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImageLoader{
		logger: logger,
	}
}

func (il *ImageLoader) Extensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}
}

// Load reads a colour image.
func (il *ImageLoader) Load(path string) (pixel.Buffer, error) {
	return il.read(path, gocv.IMReadColor, pixel.BGR)
}

// LoadGrayscale reads an image and reduces it to one channel.
func (il *ImageLoader) LoadGrayscale(path string) (pixel.Buffer, error) {
	return il.read(path, gocv.IMReadGrayScale, pixel.Greyscale)
}

func (il *ImageLoader) read(path string, flags gocv.IMReadFlag, l *pixel.Layout) (pixel.Buffer, error) {
	il.logger.WithField("filepath", path).Debug("loading image")

	if err := checkExtension(il, path); err != nil {
		return nil, err
	}

	mat := gocv.IMRead(path, flags)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to load image: %s", path)
	}

	b, err := matbuf.Default.Wrap(mat.Rows(), mat.Cols(), l, mat)
	if err != nil {
		mat.Close()
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    b.Width(),
		"height":   b.Height(),
		"layout":   l.Name(),
	}).Info("image loaded")
	return b, nil
}

// Save writes b. Buffers that are not already 8-bit BGR or GREYSCALE
// matrices are converted into a temporary matrix first.
func (il *ImageLoader) Save(b pixel.Buffer, path string) error {
	il.logger.WithField("filepath", path).Debug("saving image")

	if b.Width() == 0 || b.Height() == 0 {
		return fmt.Errorf("%w: cannot save empty image", pixel.ErrConfig)
	}
	if err := checkExtension(il, path); err != nil {
		return err
	}

	mb, release, err := toMat(b)
	if err != nil {
		return err
	}
	defer release()

	if !gocv.IMWrite(path, mb.Mat()) {
		return fmt.Errorf("failed to save image: %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    b.Width(),
		"height":   b.Height(),
		"layout":   b.Layout().Name(),
	}).Info("image saved")
	return nil
}

// toMat returns b itself when it is already writable by OpenCV and a
// temporary BGR or GREYSCALE matrix otherwise.
func toMat(b pixel.Buffer) (*matbuf.Buffer, func(), error) {
	if mb, ok := b.(*matbuf.Buffer); ok && (b.Layout() == pixel.BGR || b.Layout() == pixel.Greyscale) {
		return mb, func() {}, nil
	}

	l := b.Layout()
	if l == pixel.Greyscale || l == pixel.Binary {
		tmp, err := matbuf.Default.Image(b.Height(), b.Width(), pixel.Greyscale)
		if err != nil {
			return nil, nil, err
		}
		if err := pixel.CopyTo(b, tmp); err != nil {
			tmp.Release()
			return nil, nil, err
		}
		return tmp.(*matbuf.Buffer), tmp.Release, nil
	}

	rgb, err := convert.ToRGB(b, flat.Uint8)
	if err != nil {
		return nil, nil, err
	}
	defer rgb.Release()

	tmp, err := matbuf.Default.Image(b.Height(), b.Width(), pixel.BGR)
	if err != nil {
		return nil, nil, err
	}
	_ = pixel.Apply(tmp, func(x, y int) {
		tmp.SetValues(x, y, []float64{rgb.Value(x, y, 2), rgb.Value(x, y, 1), rgb.Value(x, y, 0)})
	})
	return tmp.(*matbuf.Buffer), tmp.Release, nil
}

// ValidateImageFile checks that path decodes to a non-empty image.
func (il *ImageLoader) ValidateImageFile(path string) error {
	if err := checkExtension(il, path); err != nil {
		return err
	}

	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer mat.Close()

	if mat.Empty() {
		return fmt.Errorf("invalid or corrupted image file: %s", path)
	}
	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid image dimensions: %s", path)
	}
	return nil
}
