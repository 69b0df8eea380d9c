// Command line front end for the pixel processing pipeline

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"

	_ "generic-imaging/internal/backend/dense"
	"generic-imaging/internal/io"
	"generic-imaging/internal/metrics"
	"generic-imaging/internal/pipeline"
)

const (
	AppName    = "generic-imaging"
	AppVersion = "1.0.0"
)

func main() {
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	configPath := flag.String("config", "", "TOML pipeline file")
	steps := flag.String("steps", "", "Comma separated algorithms to run with default parameters when no config is given")
	representation := flag.String("representation", "", "Output representation kind, e.g. flat/float64")
	input := flag.String("input", "", "Input image (.png, .jpg, .tif, .bmp, .pxz)")
	output := flag.String("output", "", "Output image")
	native := flag.Bool("native", false, "Use OpenCV for PNG and JPEG as well")
	report := flag.Bool("report", false, "Log a quality report comparing input and output")
	profileMode := flag.String("profile", "", "Write a cpu or mem profile to the current directory")
	flag.Parse()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q\n", *profileMode)
		os.Exit(2)
	}

	cfg := &pipeline.Config{Representation: *representation}
	if *configPath != "" {
		loaded, err := pipeline.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
		if *representation != "" {
			cfg.Representation = *representation
		}
	} else if *steps != "" {
		for _, name := range strings.Split(*steps, ",") {
			cfg.Steps = append(cfg.Steps, pipeline.StepConfig{Algorithm: strings.TrimSpace(name)})
		}
	}

	logger := initLogger(*debugMode || cfg.Debug)
	// library packages log through the standard logger
	logrus.SetOutput(logger.Out)
	logrus.SetLevel(logger.GetLevel())
	logrus.SetFormatter(logger.Formatter)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode || cfg.Debug,
	}).Info("starting " + AppName)

	if *input == "" || *output == "" {
		logger.Error("both -input and -output are required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, logger, cfg, *input, *output, *native, *report)
	stop()
	if err != nil {
		logger.WithError(err).Error("processing failed")
		os.Exit(1)
	}
	logger.Info("done")
}

func run(ctx context.Context, logger *logrus.Logger, cfg *pipeline.Config, input, output string, native, report bool) error {
	p, err := cfg.Build(logger)
	if err != nil {
		return err
	}

	loader, err := io.CodecFor(input, native, logger)
	if err != nil {
		return err
	}
	saver, err := io.CodecFor(output, native, logger)
	if err != nil {
		return err
	}

	src, err := loader.Load(input)
	if err != nil {
		return err
	}
	defer src.Release()

	result, err := p.Process(ctx, src)
	if err != nil {
		return err
	}
	defer result.Image.Release()

	if len(result.Metrics) > 0 {
		fields := make(logrus.Fields, len(result.Metrics))
		for k, v := range result.Metrics {
			fields[k] = v
		}
		logger.WithFields(fields).Info("step metrics")
	}

	if report {
		eval := metrics.NewEvaluator()
		eval.RegisterDefaultMetrics()
		r := eval.GenerateReport(src, result.Image)
		logger.WithFields(logrus.Fields{
			"overall_score": r.OverallScore,
			"level":         r.Analysis.QualityLevel,
			"issues":        r.Analysis.Issues,
			"suggestions":   r.Analysis.Suggestions,
		}).Info("quality report")
	}

	return saver.Save(result.Image, output)
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
