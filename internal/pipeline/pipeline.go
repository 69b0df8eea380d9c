// Sequential and layer-based processing over pixel buffers
package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"generic-imaging/internal/algorithms"
	"generic-imaging/internal/metrics"
	"generic-imaging/internal/pixel"
)

// Step represents a sequential processing step
type Step struct {
	Algorithm  string
	Parameters map[string]interface{}
	Enabled    bool
}

// Result is the outcome of one Process call. The caller owns Image.
type Result struct {
	Image    pixel.Buffer
	Metrics  map[string]float64
	Duration time.Duration
}

// Pipeline runs either its sequential steps or its layer stack.
type Pipeline struct {
	mu          sync.RWMutex
	steps       []Step
	layerStack  *LayerStack
	metricsEval *metrics.Evaluator
	logger      *logrus.Logger

	representation string
	useLayerMode   bool
}

// New creates an empty pipeline logging through logger.
func New(logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	eval := metrics.NewEvaluator()
	eval.RegisterDefaultMetrics()

	return &Pipeline{
		steps:       make([]Step, 0),
		layerStack:  NewLayerStack(),
		metricsEval: eval,
		logger:      logger,
	}
}

// SetRepresentation sets the output kind used by steps and layers that do
// not name their own "representation" parameter. Empty keeps each
// algorithm's default.
func (p *Pipeline) SetRepresentation(kind string) error {
	if kind != "" {
		if _, err := pixel.Lookup(pixel.Kind(kind)); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.representation = kind
	return nil
}

// SetProcessingMode switches between sequential and layer-based processing
func (p *Pipeline) SetProcessingMode(useLayerMode bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.useLayerMode = useLayerMode
	p.logger.WithField("mode", modeName(useLayerMode)).Info("processing mode changed")
}

func modeName(useLayerMode bool) string {
	if useLayerMode {
		return "layer"
	}
	return "sequential"
}

// AddStep appends a validated sequential step.
func (p *Pipeline) AddStep(algorithm string, parameters map[string]interface{}) error {
	if err := validate(algorithm, parameters); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.steps = append(p.steps, Step{
		Algorithm:  algorithm,
		Parameters: parameters,
		Enabled:    true,
	})
	p.logger.WithFields(logrus.Fields{
		"algorithm": algorithm,
		"index":     len(p.steps) - 1,
	}).Debug("sequential step added")
	return nil
}

func validate(algorithm string, parameters map[string]interface{}) error {
	if !algorithms.IsValidAlgorithm(algorithm) {
		return fmt.Errorf("%w: unknown algorithm: %s", pixel.ErrConfig, algorithm)
	}
	if err := algorithms.ValidateParameters(algorithm, parameters); err != nil {
		return fmt.Errorf("invalid parameters for %s: %w", algorithm, err)
	}
	return nil
}

// SetStepEnabled toggles the step at index.
func (p *Pipeline) SetStepEnabled(index int, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.steps) {
		return fmt.Errorf("%w: step %d of %d", pixel.ErrBounds, index, len(p.steps))
	}
	p.steps[index].Enabled = enabled
	return nil
}

// AddLayer appends a validated layer covering region. An empty region
// covers the whole image.
func (p *Pipeline) AddLayer(name, algorithm string, params map[string]interface{}, region image.Rectangle) (string, error) {
	if err := validate(algorithm, params); err != nil {
		return "", err
	}

	id := p.layerStack.AddLayer(name, algorithm, params, region)
	p.logger.WithFields(logrus.Fields{
		"layer":     id,
		"algorithm": algorithm,
		"region":    region.String(),
	}).Debug("layer added")
	return id, nil
}

// Layers exposes the layer stack for blend and opacity changes.
func (p *Pipeline) Layers() *LayerStack {
	return p.layerStack
}

// GetSteps returns a copy of the steps.
func (p *Pipeline) GetSteps() []Step {
	p.mu.RLock()
	defer p.mu.RUnlock()

	steps := make([]Step, len(p.steps))
	copy(steps, p.steps)
	return steps
}

// ClearAll removes every step and layer.
func (p *Pipeline) ClearAll() {
	p.mu.Lock()
	p.steps = p.steps[:0]
	p.mu.Unlock()

	p.layerStack.Clear()
	p.logger.Debug("pipeline cleared")
}

// Process runs the pipeline on input. The input is never released; every
// intermediate buffer is released on all exit paths.
func (p *Pipeline) Process(ctx context.Context, input pixel.Buffer) (*Result, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: nil input", pixel.ErrConfig)
	}

	p.mu.RLock()
	steps := make([]Step, len(p.steps))
	copy(steps, p.steps)
	useLayerMode := p.useLayerMode
	representation := p.representation
	p.mu.RUnlock()

	start := time.Now()
	logger := p.logger.WithFields(logrus.Fields{
		"mode":  modeName(useLayerMode),
		"input": pixel.Describe(input),
	})
	logger.Info("processing started")

	var (
		out         pixel.Buffer
		stepMetrics map[string]float64
		err         error
	)
	if useLayerMode {
		out, err = p.layerStack.Process(ctx, input, representation)
		stepMetrics = map[string]float64{}
	} else {
		out, stepMetrics, err = p.processSequential(ctx, input, steps, representation)
	}
	if err != nil {
		logger.WithError(err).Error("processing failed")
		return nil, err
	}

	result := &Result{
		Image:    out,
		Metrics:  stepMetrics,
		Duration: time.Since(start),
	}
	logger.WithFields(logrus.Fields{
		"output":      pixel.Describe(out),
		"duration_ms": result.Duration.Milliseconds(),
	}).Info("processing completed")
	return result, nil
}

func (p *Pipeline) processSequential(ctx context.Context, input pixel.Buffer, steps []Step, representation string) (pixel.Buffer, map[string]float64, error) {
	allMetrics := make(map[string]float64)

	current := input
	release := func() {
		if current != input {
			current.Release()
		}
	}

	for i, step := range steps {
		select {
		case <-ctx.Done():
			release()
			return nil, nil, ctx.Err()
		default:
		}

		if !step.Enabled {
			continue
		}

		stepStart := time.Now()
		next, err := algorithms.Apply(step.Algorithm, current, withRepresentation(step.Parameters, representation))
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("step %d (%s): %w", i, step.Algorithm, err)
		}

		stepMetrics := p.metricsEval.EvaluateStep(current, next, step.Algorithm)
		for k, v := range stepMetrics {
			allMetrics[fmt.Sprintf("%s_%s", step.Algorithm, k)] = v
		}

		p.logger.WithFields(logrus.Fields{
			"step":        i,
			"algorithm":   step.Algorithm,
			"output":      pixel.Describe(next),
			"duration_ms": time.Since(stepStart).Milliseconds(),
		}).Debug("step completed")

		release()
		current = next
	}

	if current == input {
		// Nothing ran; hand back a copy so the caller always owns the result.
		f, err := pixel.Lookup(input.Kind())
		if err != nil {
			return nil, nil, err
		}
		out, err := pixel.CreateCopy(input, f)
		if err != nil {
			return nil, nil, err
		}
		return out, allMetrics, nil
	}
	return current, allMetrics, nil
}

// withRepresentation returns params with the pipeline-wide representation
// filled in when the step does not set one.
func withRepresentation(params map[string]interface{}, representation string) map[string]interface{} {
	if representation == "" {
		return params
	}
	if _, ok := params["representation"]; ok {
		return params
	}

	merged := make(map[string]interface{}, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	merged["representation"] = representation
	return merged
}
