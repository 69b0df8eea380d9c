package pipeline

import (
	"fmt"
	"image"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"generic-imaging/internal/pixel"
)

// Config is the on-disk form of a pipeline.
//
//	debug = true
//	representation = "flat/uint8"
//
//	[[steps]]
//	algorithm = "greyscale"
//
//	[[steps]]
//	algorithm = "adaptive_threshold"
//	parameters = { cluster_size = 16 }
//
//	[[layers]]
//	name = "patch"
//	algorithm = "dilation"
//	region = [10, 10, 64, 64]
//	blend = "overlay"
//	opacity = 0.5
type Config struct {
	Debug          bool          `toml:"debug"`
	Representation string        `toml:"representation"`
	Steps          []StepConfig  `toml:"steps"`
	Layers         []LayerConfig `toml:"layers"`
}

// StepConfig describes one sequential step. Enabled defaults to true.
type StepConfig struct {
	Algorithm  string                 `toml:"algorithm"`
	Parameters map[string]interface{} `toml:"parameters"`
	Enabled    *bool                  `toml:"enabled"`
}

// LayerConfig describes one layer. Region is x, y, width, height; an
// absent region covers the whole image. Opacity defaults to 1.
type LayerConfig struct {
	Name       string                 `toml:"name"`
	Algorithm  string                 `toml:"algorithm"`
	Parameters map[string]interface{} `toml:"parameters"`
	Region     []int                  `toml:"region"`
	Blend      string                 `toml:"blend"`
	Opacity    *float64               `toml:"opacity"`
}

// LoadConfig decodes a TOML pipeline file. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", pixel.ErrConfig, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys in %s: %s", pixel.ErrConfig, path, strings.Join(keys, ", "))
	}
	return &cfg, nil
}

func (lc LayerConfig) region() (image.Rectangle, error) {
	switch len(lc.Region) {
	case 0:
		return image.Rectangle{}, nil
	case 4:
		x, y, w, h := lc.Region[0], lc.Region[1], lc.Region[2], lc.Region[3]
		if w <= 0 || h <= 0 {
			return image.Rectangle{}, fmt.Errorf("%w: empty region %v", pixel.ErrConfig, lc.Region)
		}
		return image.Rect(x, y, x+w, y+h), nil
	default:
		return image.Rectangle{}, fmt.Errorf("%w: region needs x, y, width and height, got %v", pixel.ErrConfig, lc.Region)
	}
}

// Build creates a pipeline from the configuration. Layers switch the
// pipeline to layer mode.
func (c *Config) Build(logger *logrus.Logger) (*Pipeline, error) {
	p := New(logger)
	if err := p.SetRepresentation(c.Representation); err != nil {
		return nil, err
	}

	for i, sc := range c.Steps {
		if err := p.AddStep(sc.Algorithm, sc.Parameters); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		if sc.Enabled != nil && !*sc.Enabled {
			if err := p.SetStepEnabled(i, false); err != nil {
				return nil, err
			}
		}
	}

	for i, lc := range c.Layers {
		region, err := lc.region()
		if err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
		mode, err := ParseBlendMode(lc.Blend)
		if err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
		opacity := 1.0
		if lc.Opacity != nil {
			opacity = *lc.Opacity
		}

		id, err := p.AddLayer(lc.Name, lc.Algorithm, lc.Parameters, region)
		if err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
		if err := p.Layers().SetBlend(id, mode, opacity); err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
	}

	if len(c.Layers) > 0 {
		p.SetProcessingMode(true)
	}
	return p, nil
}
