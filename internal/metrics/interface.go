// Comprehensive metrics system for image quality assessment
package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"generic-imaging/internal/pixel"
)

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed pixel.Buffer) (float64, error)

	// GetName returns the metric name
	GetName() string

	// GetDescription returns the metric description
	GetDescription() string

	// GetRange returns the value range (min, max)
	GetRange() (float64, float64)

	// IsHigherBetter returns true if higher values indicate better quality
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates a new metrics evaluator
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}

	e.RegisterDefaultMetrics()

	return e
}

// RegisterDefaultMetrics registers all default metrics
func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("psnr", NewPSNR())
	e.Register("ssim", NewSSIM())
	e.Register("mse", NewMSE())
	e.Register("sse", NewSSE())
	e.Register("f_measure", NewFMeasure())
	e.Register("foreground_ratio", NewForegroundRatio())
	e.Register("contrast_ratio", NewContrastRatio())
	e.Register("sharpness", NewSharpness())
	e.Register("distance_map_fitness", NewDistanceMapFitness())
}

// Register registers a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names lists the registered metrics in sorted order.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed pixel.Buffer) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("%w: metric not found: %s", pixel.ErrConfig, name)
	}

	return metric.Calculate(original, processed)
}

// CalculateAll calculates all registered metrics, skipping those that fail
func (e *Evaluator) CalculateAll(original, processed pixel.Buffer) map[string]float64 {
	results := make(map[string]float64)

	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}

	return results
}

// EvaluateStep calculates metrics for a processing step
func (e *Evaluator) EvaluateStep(before, after pixel.Buffer, stepName string) map[string]float64 {
	metrics := make(map[string]float64)

	if psnr, err := e.Calculate("psnr", before, after); err == nil {
		metrics["psnr"] = psnr
	}

	if ssim, err := e.Calculate("ssim", before, after); err == nil {
		metrics["ssim"] = ssim
	}

	// Add step-specific metrics based on algorithm type
	switch stepName {
	case "adaptive_threshold", "threshold", "region_growing":
		if fMeasure, err := e.Calculate("f_measure", before, after); err == nil {
			metrics["f_measure"] = fMeasure
		}
		if ratio, err := e.Calculate("foreground_ratio", before, after); err == nil {
			metrics["foreground_ratio"] = ratio
		}
		if fit, err := e.Calculate("distance_map_fitness", before, after); err == nil {
			metrics["distance_map_fitness"] = fit
		}

	case "rigid_transform", "greyscale", "chamfer_distance", "histogram_equalization", "gamma_correction", "scale":
		if contrast, err := e.Calculate("contrast_ratio", before, after); err == nil {
			metrics["contrast_preservation"] = contrast
		}

	case "erosion", "dilation", "opening", "closing", "generic_morph", "convolve", "edge_detection":
		if sharpness, err := e.Calculate("sharpness", before, after); err == nil {
			metrics["edge_preservation"] = sharpness
		}
	}

	return metrics
}

// GetMetricInfo returns information about all metrics
func (e *Evaluator) GetMetricInfo() map[string]MetricInfo {
	info := make(map[string]MetricInfo)

	for name, metric := range e.metrics {
		lo, hi := metric.GetRange()
		info[name] = MetricInfo{
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Range:        [2]float64{lo, hi},
			HigherBetter: metric.IsHigherBetter(),
		}
	}

	return info
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name         string
	Description  string
	Range        [2]float64 // [min, max]
	HigherBetter bool
}

// QualityReport contains comprehensive quality assessment
type QualityReport struct {
	OverallScore float64            `json:"overall_score"`
	Metrics      map[string]float64 `json:"metrics"`
	Analysis     QualityAnalysis    `json:"analysis"`
	Timestamp    string             `json:"timestamp"`
}

// QualityAnalysis provides interpretation of metrics
type QualityAnalysis struct {
	QualityLevel string   `json:"quality_level"` // "excellent", "good", "fair", "poor"
	Issues       []string `json:"issues"`
	Suggestions  []string `json:"suggestions"`
}

// GenerateReport generates a comprehensive quality report
func (e *Evaluator) GenerateReport(original, processed pixel.Buffer) QualityReport {
	metrics := e.CalculateAll(original, processed)

	return QualityReport{
		OverallScore: e.calculateOverallScore(metrics),
		Metrics:      metrics,
		Analysis:     e.analyzeQuality(metrics),
		Timestamp:    time.Now().Format("2006-01-02 15:04:05"),
	}
}

var scoreWeights = map[string]float64{
	"psnr":           0.3,
	"ssim":           0.3,
	"f_measure":      0.2,
	"contrast_ratio": 0.1,
	"sharpness":      0.1,
}

// calculateOverallScore calculates a weighted overall quality score
func (e *Evaluator) calculateOverallScore(metrics map[string]float64) float64 {
	totalWeight := 0.0
	weightedSum := 0.0

	for name, weight := range scoreWeights {
		if value, exists := metrics[name]; exists {
			weightedSum += e.normalizeMetric(name, value) * weight
			totalWeight += weight
		}
	}

	if totalWeight == 0 {
		return 0
	}

	return (weightedSum / totalWeight) * 100
}

// normalizeMetric normalizes a metric value to 0-1 range
func (e *Evaluator) normalizeMetric(name string, value float64) float64 {
	metric, exists := e.metrics[name]
	if !exists {
		return 0
	}

	lo, hi := metric.GetRange()
	value = math.Max(lo, math.Min(hi, value))

	if hi == lo {
		return 1.0
	}

	normalized := (value - lo) / (hi - lo)

	if !metric.IsHigherBetter() {
		normalized = 1.0 - normalized
	}

	return normalized
}

// analyzeQuality analyzes quality metrics and provides insights
func (e *Evaluator) analyzeQuality(metrics map[string]float64) QualityAnalysis {
	analysis := QualityAnalysis{
		Issues:      make([]string, 0),
		Suggestions: make([]string, 0),
	}

	overallScore := e.calculateOverallScore(metrics)

	switch {
	case overallScore >= 90:
		analysis.QualityLevel = "excellent"
	case overallScore >= 75:
		analysis.QualityLevel = "good"
	case overallScore >= 60:
		analysis.QualityLevel = "fair"
	default:
		analysis.QualityLevel = "poor"
	}

	if psnr, exists := metrics["psnr"]; exists && psnr < 20 {
		analysis.Issues = append(analysis.Issues, "Low PSNR indicates significant noise or distortion")
		analysis.Suggestions = append(analysis.Suggestions, "Check interpolation and background settings of geometric steps")
	}

	if ssim, exists := metrics["ssim"]; exists && ssim < 0.7 {
		analysis.Issues = append(analysis.Issues, "Low SSIM indicates poor structural similarity")
		analysis.Suggestions = append(analysis.Suggestions, "Use a smaller structuring element or fewer morphology passes")
	}

	if fMeasure, exists := metrics["f_measure"]; exists && fMeasure < 0.8 {
		analysis.Issues = append(analysis.Issues, "Low F-measure indicates poor foreground/background separation")
		analysis.Suggestions = append(analysis.Suggestions, "Adjust the threshold cluster size or the region growing bounds")
	}

	return analysis
}
