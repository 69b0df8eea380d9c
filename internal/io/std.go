package io

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/sirupsen/logrus"

	"generic-imaging/internal/backend/bitmap"
	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/convert"
	"generic-imaging/internal/pixel"
)

// StdCodec reads and writes PNG and JPEG with the Go image decoders.
// Loaded images are bitmap buffers.
type StdCodec struct {
	// Quality is the JPEG quality, 1 to 100.
	Quality int

	logger *logrus.Logger
}

func NewStdCodec(logger *logrus.Logger) *StdCodec {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StdCodec{Quality: jpeg.DefaultQuality, logger: logger}
}

func (sc *StdCodec) Extensions() []string {
	return []string{".png", ".jpg", ".jpeg"}
}

func (sc *StdCodec) Load(path string) (pixel.Buffer, error) {
	if err := checkExtension(sc, path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	b, err := bitmap.FromImage(img)
	if err != nil {
		return nil, err
	}

	sc.logger.WithFields(logrus.Fields{
		"filepath": path,
		"format":   format,
		"width":    b.Width(),
		"height":   b.Height(),
		"layout":   b.Layout().Name(),
	}).Info("image loaded")
	return b, nil
}

func (sc *StdCodec) Save(b pixel.Buffer, path string) error {
	if err := checkExtension(sc, path); err != nil {
		return err
	}

	img, err := toImage(b)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch extension(path) {
	case ".png":
		err = png.Encode(f, img)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: sc.Quality})
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	sc.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    b.Width(),
		"height":   b.Height(),
		"layout":   b.Layout().Name(),
	}).Info("image saved")
	return nil
}

// toImage returns the bitmap behind b when it has one and a converted
// *image.Gray or *image.RGBA otherwise.
func toImage(b pixel.Buffer) (image.Image, error) {
	if bb, ok := b.(*bitmap.Buffer); ok && b.Layout() != pixel.BGR && b.Layout() != pixel.BGRA {
		return bb.Image(), nil
	}

	l := b.Layout()
	if l == pixel.Greyscale || l == pixel.Binary {
		dst, err := bitmap.Default.Image(b.Height(), b.Width(), pixel.Greyscale)
		if err != nil {
			return nil, err
		}
		if err := pixel.CopyTo(b, dst); err != nil {
			return nil, err
		}
		return dst.(*bitmap.Buffer).Image(), nil
	}

	src := b
	if l != pixel.RGBA {
		rgb, err := convert.ToRGB(b, flat.Uint8)
		if err != nil {
			return nil, err
		}
		src = rgb
	}
	dst, err := bitmap.Default.Image(b.Height(), b.Width(), src.Layout())
	if err != nil {
		return nil, err
	}
	if err := pixel.CopyTo(src, dst); err != nil {
		return nil, err
	}
	return dst.(*bitmap.Buffer).Image(), nil
}
