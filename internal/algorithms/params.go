package algorithms

import (
	"fmt"
	"image"
	"slices"

	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/pixel"
)

// Parameter maps arrive from JSON-like sources (float64) or from TOML
// (int64); both are accepted.
func number(params map[string]interface{}, name string) (float64, bool) {
	return toNumber(params[name])
}

func toNumber(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func floatParam(params map[string]interface{}, name string, def float64) float64 {
	if v, ok := number(params, name); ok {
		return v
	}
	return def
}

func intParam(params map[string]interface{}, name string, def int) int {
	if v, ok := number(params, name); ok {
		return int(v)
	}
	return def
}

func stringParam(params map[string]interface{}, name string, def string) string {
	if v, ok := params[name].(string); ok {
		return v
	}
	return def
}

// checkRange validates an optional numeric parameter.
func checkRange(params map[string]interface{}, name string, lo, hi float64) error {
	if _, present := params[name]; !present {
		return nil
	}
	v, ok := number(params, name)
	if !ok {
		return fmt.Errorf("%w: %s must be a number", pixel.ErrConfig, name)
	}
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s must be between %v and %v", pixel.ErrConfig, name, lo, hi)
	}
	return nil
}

// checkOption validates an optional enum parameter.
func checkOption(params map[string]interface{}, name string, options ...string) error {
	val, present := params[name]
	if !present {
		return nil
	}
	v, ok := val.(string)
	if !ok || !slices.Contains(options, v) {
		return fmt.Errorf("%w: %s must be one of %v", pixel.ErrConfig, name, options)
	}
	return nil
}

// pointsParam reads a list of [x, y] pairs.
func pointsParam(params map[string]interface{}, name string) ([]image.Point, error) {
	val, present := params[name]
	if !present {
		return nil, nil
	}

	switch v := val.(type) {
	case []image.Point:
		return slices.Clone(v), nil
	case [][]int:
		points := make([]image.Point, 0, len(v))
		for _, p := range v {
			if len(p) != 2 {
				return nil, fmt.Errorf("%w: %s entries must be [x, y]", pixel.ErrConfig, name)
			}
			points = append(points, image.Pt(p[0], p[1]))
		}
		return points, nil
	case []interface{}:
		points := make([]image.Point, 0, len(v))
		for _, entry := range v {
			pair, ok := entry.([]interface{})
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("%w: %s entries must be [x, y]", pixel.ErrConfig, name)
			}
			x, okX := toNumber(pair[0])
			y, okY := toNumber(pair[1])
			if !okX || !okY {
				return nil, fmt.Errorf("%w: %s coordinates must be numbers", pixel.ErrConfig, name)
			}
			points = append(points, image.Pt(int(x), int(y)))
		}
		return points, nil
	}
	return nil, fmt.Errorf("%w: %s must be a list of [x, y] pairs", pixel.ErrConfig, name)
}

// outputFactory picks the representation results are allocated in: the
// "representation" parameter if given, else the input's own kind, else
// fallback.
func outputFactory(input pixel.Buffer, params map[string]interface{}, fallback pixel.Factory) (pixel.Factory, error) {
	if kind, ok := params["representation"].(string); ok {
		return pixel.Lookup(pixel.Kind(kind))
	}
	if fallback != nil {
		return fallback, nil
	}
	if f, err := pixel.Lookup(input.Kind()); err == nil {
		return f, nil
	}
	return flat.Float64, nil
}

func representationInfo() ParameterInfo {
	return ParameterInfo{
		Name:        "representation",
		Type:        "string",
		Default:     "",
		Description: "Registered representation for the result (defaults to the input's)",
	}
}

func boolParam(params map[string]interface{}, name string, def bool) bool {
	if v, ok := params[name].(bool); ok {
		return v
	}
	return def
}

// checkBool validates an optional boolean parameter.
func checkBool(params map[string]interface{}, name string) error {
	val, present := params[name]
	if !present {
		return nil
	}
	if _, ok := val.(bool); !ok {
		return fmt.Errorf("%w: %s must be true or false", pixel.ErrConfig, name)
	}
	return nil
}

// kernelParam reads a matrix given as a list of numeric rows.
func kernelParam(params map[string]interface{}, name string) ([][]float64, error) {
	val, present := params[name]
	if !present {
		return nil, nil
	}

	switch v := val.(type) {
	case [][]float64:
		rows := make([][]float64, len(v))
		for i, row := range v {
			rows[i] = slices.Clone(row)
		}
		return rows, nil
	case []interface{}:
		rows := make([][]float64, 0, len(v))
		for _, entry := range v {
			cells, ok := entry.([]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: %s rows must be lists", pixel.ErrConfig, name)
			}
			row := make([]float64, 0, len(cells))
			for _, cell := range cells {
				n, ok := toNumber(cell)
				if !ok {
					return nil, fmt.Errorf("%w: %s entries must be numbers", pixel.ErrConfig, name)
				}
				row = append(row, n)
			}
			rows = append(rows, row)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w: %s must be a list of rows", pixel.ErrConfig, name)
}
