// Image load and save boundary
package io

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"generic-imaging/internal/pixel"
)

// ErrFormat is returned for a file extension no codec handles.
var ErrFormat = errors.New("unsupported image format")

// Loader reads an image into a pixel buffer owned by the caller.
type Loader interface {
	Load(source string) (pixel.Buffer, error)
}

// Saver writes a pixel buffer. The buffer is not released.
type Saver interface {
	Save(b pixel.Buffer, target string) error
}

// Codec loads and saves one family of formats.
type Codec interface {
	Loader
	Saver
	Extensions() []string
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func checkExtension(c Codec, path string) error {
	if !slices.Contains(c.Extensions(), extension(path)) {
		return fmt.Errorf("%w: %s", ErrFormat, path)
	}
	return nil
}

// CodecFor picks the codec for path by extension. PNG and JPEG go
// through the Go decoders unless native is set, in which case every
// format OpenCV reads is handled by it.
func CodecFor(path string, native bool, logger *logrus.Logger) (Codec, error) {
	candidates := []Codec{NewRawCodec(nil, logger)}
	if native {
		candidates = append(candidates, NewImageLoader(logger))
	} else {
		candidates = append(candidates, NewStdCodec(logger), NewImageLoader(logger))
	}

	ext := extension(path)
	var known []string
	for _, c := range candidates {
		if slices.Contains(c.Extensions(), ext) {
			return c, nil
		}
		known = append(known, c.Extensions()...)
	}
	slices.Sort(known)
	return nil, fmt.Errorf("%w: %s (known: %s)", ErrFormat, path, strings.Join(slices.Compact(known), " "))
}
