// Channel layout catalogue shared by every pixel representation
package pixel

import (
	"fmt"
	"sync"
)

// ChannelRange is the declared numeric range of one channel.
type ChannelRange struct {
	Min float64
	Max float64
}

// Layout names a pixel format: its channel count and per-channel ranges.
// Layouts are singletons, so two buffers share a layout iff their
// Layout() pointers are equal.
type Layout struct {
	name   string
	ranges []ChannelRange
}

var byteRange = ChannelRange{Min: 0, Max: 255}

var (
	Greyscale = newLayout("GREYSCALE", byteRange)
	Binary    = newLayout("BINARY", byteRange)
	RGB       = newLayout("RGB", byteRange, byteRange, byteRange)
	BGR       = newLayout("BGR", byteRange, byteRange, byteRange)
	RGBA      = newLayout("RGBA", byteRange, byteRange, byteRange, byteRange)
	BGRA      = newLayout("BGRA", byteRange, byteRange, byteRange, byteRange)
	HSV       = newLayout("HSV",
		ChannelRange{Min: 0, Max: 360},
		ChannelRange{Min: 0, Max: 1},
		ChannelRange{Min: 0, Max: 1})
	LUV = newLayout("LUV",
		ChannelRange{Min: 0, Max: 100},
		ChannelRange{Min: -134, Max: 220},
		ChannelRange{Min: -140, Max: 122})
)

// Values used by binary layouts for set and unset pixels.
const (
	BinarySet   = 255.0
	BinaryUnset = 0.0
)

var (
	unknownMu sync.Mutex
	unknown   = make(map[int]*Layout)
)

func newLayout(name string, ranges ...ChannelRange) *Layout {
	return &Layout{name: name, ranges: ranges}
}

// Unknown returns the cached UNKNOWN_n_CHANNEL layout for n channels.
func Unknown(n int) *Layout {
	unknownMu.Lock()
	defer unknownMu.Unlock()

	if l, ok := unknown[n]; ok {
		return l
	}

	ranges := make([]ChannelRange, n)
	for i := range ranges {
		ranges[i] = byteRange
	}
	l := newLayout(fmt.Sprintf("UNKNOWN_%d_CHANNEL", n), ranges...)
	unknown[n] = l
	return l
}

// ForChannels picks the default layout for a bare channel count.
func ForChannels(n int) *Layout {
	switch n {
	case 1:
		return Greyscale
	case 3:
		return RGB
	case 4:
		return RGBA
	default:
		return Unknown(n)
	}
}

func (l *Layout) Name() string {
	return l.name
}

func (l *Layout) String() string {
	return l.name
}

func (l *Layout) Channels() int {
	return len(l.ranges)
}

// Range returns the declared range of channel c.
func (l *Layout) Range(c int) (ChannelRange, error) {
	if c < 0 || c >= len(l.ranges) {
		return ChannelRange{}, fmt.Errorf("%w: channel %d of %s", ErrBounds, c, l.name)
	}
	return l.ranges[c], nil
}

// Min is the unchecked lower bound of channel c.
func (l *Layout) Min(c int) float64 {
	return l.ranges[c].Min
}

// Max is the unchecked upper bound of channel c.
func (l *Layout) Max(c int) float64 {
	return l.ranges[c].Max
}

// IsByteRange reports whether every channel spans 0..255.
func (l *Layout) IsByteRange() bool {
	for _, r := range l.ranges {
		if r != byteRange {
			return false
		}
	}
	return true
}

var named = map[string]*Layout{}

func init() {
	for _, l := range []*Layout{Greyscale, Binary, RGB, BGR, RGBA, BGRA, HSV, LUV} {
		named[l.name] = l
	}
}

// LayoutByName resolves a layout from its Name, including the
// UNKNOWN_n_CHANNEL family.
func LayoutByName(name string) (*Layout, error) {
	if l, ok := named[name]; ok {
		return l, nil
	}
	var n int
	if _, err := fmt.Sscanf(name, "UNKNOWN_%d_CHANNEL", &n); err == nil && n > 0 {
		return Unknown(n), nil
	}
	return nil, fmt.Errorf("%w: unknown layout %q", ErrType, name)
}
