package io

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/pixel"
)

// ErrCorrupt is returned for raw snapshots that fail to decode.
var ErrCorrupt = errors.New("corrupt raw image")

var rawMagic = [4]byte{'P', 'X', 'Z', '1'}

// samples above this count are rejected before allocation
const maxRawSamples = 1 << 28

// rawHeader precedes the samples inside the compressed stream.
type rawHeader struct {
	Width    uint32
	Height   uint32
	Channels uint16
	NameLen  uint16
	KindLen  uint16
}

// RawCodec stores every sample as a little-endian float64 in a zstd
// stream, so buffers of any layout and range round-trip exactly.
type RawCodec struct {
	// Factory receives loaded images. Nil uses the representation the
	// snapshot was taken from when it is registered, flat float64 otherwise.
	Factory pixel.Factory

	logger *logrus.Logger
}

func NewRawCodec(f pixel.Factory, logger *logrus.Logger) *RawCodec {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RawCodec{Factory: f, logger: logger}
}

func (rc *RawCodec) Extensions() []string {
	return []string{".pxz"}
}

func (rc *RawCodec) Save(b pixel.Buffer, path string) error {
	if err := checkExtension(rc, path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = rc.Encode(f, b)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	rc.logger.WithFields(logrus.Fields{
		"filepath": path,
		"buffer":   pixel.Describe(b),
	}).Info("raw image saved")
	return nil
}

// Encode writes b to w.
func (rc *RawCodec) Encode(w io.Writer, b pixel.Buffer) error {
	if _, err := w.Write(rawMagic[:]); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(runtime.NumCPU()))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)

	name, kind := b.Layout().Name(), string(b.Kind())
	hdr := rawHeader{
		Width:    uint32(b.Width()),
		Height:   uint32(b.Height()),
		Channels: uint16(pixel.Channels(b)),
		NameLen:  uint16(len(name)),
		KindLen:  uint16(len(kind)),
	}
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		enc.Close()
		return err
	}
	bw.WriteString(name)
	bw.WriteString(kind)

	var sample [8]byte
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			for _, v := range b.Values(x, y) {
				binary.LittleEndian.PutUint64(sample[:], math.Float64bits(v))
				if _, err := bw.Write(sample[:]); err != nil {
					enc.Close()
					return err
				}
			}
		}
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func (rc *RawCodec) Load(path string) (pixel.Buffer, error) {
	if err := checkExtension(rc, path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := rc.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	rc.logger.WithFields(logrus.Fields{
		"filepath": path,
		"buffer":   pixel.Describe(b),
	}).Info("raw image loaded")
	return b, nil
}

// Decode reads one snapshot from r.
func (rc *RawCodec) Decode(r io.Reader) (pixel.Buffer, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != rawMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	var hdr rawHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	strs := make([]byte, int(hdr.NameLen)+int(hdr.KindLen))
	if _, err := io.ReadFull(br, strs); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	name, kind := string(strs[:hdr.NameLen]), string(strs[hdr.NameLen:])

	l, err := pixel.LayoutByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if l.Channels() != int(hdr.Channels) {
		return nil, fmt.Errorf("%w: %s with %d channels", ErrCorrupt, name, hdr.Channels)
	}
	w, h, ch := int(hdr.Width), int(hdr.Height), int(hdr.Channels)
	if uint64(w)*uint64(h)*uint64(ch) > maxRawSamples {
		return nil, fmt.Errorf("%w: %dx%dx%d exceeds sample limit", ErrCorrupt, w, h, ch)
	}

	b, err := rc.factoryFor(pixel.Kind(kind)).Image(h, w, l)
	if err != nil {
		return nil, err
	}

	var sample [8]byte
	vals := make([]float64, ch)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := range vals {
				if _, err := io.ReadFull(br, sample[:]); err != nil {
					b.Release()
					return nil, fmt.Errorf("%w: samples: %v", ErrCorrupt, err)
				}
				vals[c] = math.Float64frombits(binary.LittleEndian.Uint64(sample[:]))
			}
			b.SetValues(x, y, vals)
		}
	}
	return b, nil
}

func (rc *RawCodec) factoryFor(kind pixel.Kind) pixel.Factory {
	if rc.Factory != nil {
		return rc.Factory
	}
	if f, err := pixel.Lookup(kind); err == nil {
		return f
	}
	rc.logger.WithField("kind", kind).Debug("snapshot representation not registered, using flat float64")
	return flat.Float64
}
