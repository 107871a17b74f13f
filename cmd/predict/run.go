package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kula-app/sb-predictor/internal/artifact"
	"github.com/kula-app/sb-predictor/internal/config"
	"github.com/kula-app/sb-predictor/internal/inference"
	"github.com/kula-app/sb-predictor/internal/logging"
)

const usage = `Usage:
  %s [options] <json>

Classifies one urinalysis record. <json> is a single argument holding an
object with the keys age, gender, leukocyte_count, nitrite, protein,
bacterial_count, ph and specific_gravity.

Prints exactly one JSON document on stdout and exits 1 on any failure.

Options:
`

// The run function is like the main function, except that it takes in operating system fundamentals as arguments, and returns an error.
//
// If the run function finishes without an error, the prediction was written to stdout.
// If the run function returns an error, the error document was written to stdout instead.
//
// The environment is not consulted: the artifact locations are fixed or come from flags.
func run(ctx context.Context, args []string, _ func(key string) string, stdout, stderr io.Writer) (err error) {
	out := &countingWriter{w: stdout}

	// Every path out of here, panics included, emits exactly one document.
	// A failed write of the success document leaves stdout as it is.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: unexpected panic: %v", inference.ErrInference, r)
		}
		if err != nil && out.n == 0 {
			if emitErr := inference.Emit(out, inference.NewErrorResult(err)); emitErr != nil {
				err = errors.Join(err, emitErr)
			}
		}
	}()

	cfg, input, extra, err := parseArgs(args, stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", inference.ErrInputParse, err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", inference.ErrInputParse, err)
	}
	logger := slog.New(logging.NewTerminalHandler(stderr, level)).
		With("invocation_id", uuid.NewString())

	logger.Info("predictor starting",
		"model_path", cfg.ModelPath,
		"scaler_path", cfg.ScalerPath,
		"recommend", cfg.Recommend)
	if extra > 0 {
		logger.Warn("ignoring extra arguments", "count", extra)
	}

	source := artifact.NewFileSource(cfg.ModelPath, cfg.ScalerPath, logger)
	pipeline := inference.NewPipeline(source, logger, cfg.Recommend)

	result, err := pipeline.Run(ctx, input)
	if err != nil {
		logger.Error("prediction failed", "error", err)
		return err
	}

	return inference.Emit(out, result)
}

// countingWriter records how many bytes reached the underlying writer
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// parseArgs resolves the configuration and the JSON argument.
// Precedence is defaults, then the -config file, then explicit flags.
func parseArgs(args []string, stderr io.Writer) (*config.Config, string, int, error) {
	name := "predict"
	if len(args) > 0 {
		name = args[0]
		args = args[1:]
	}

	defaults := config.DefaultConfig()

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), usage, name)
		flags.PrintDefaults()
	}

	configPath := flags.String("config", "", "Path to an optional YAML config file")
	modelPath := flags.String("model", defaults.ModelPath, "Path to the classifier artifact")
	scalerPath := flags.String("scaler", defaults.ScalerPath, "Path to the scaler artifact")
	logLevel := flags.String("log-level", defaults.LogLevel, "Diagnostics level on stderr: debug, info, warn or error")
	recommend := flags.Bool("recommend", defaults.Recommend, "Add risk level and recommendations to the result")

	if err := flags.Parse(args); err != nil {
		return nil, "", 0, fmt.Errorf("failed to parse flags: %w", err)
	}

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			return nil, "", 0, err
		}
		cfg = loaded
	}

	// Explicit flags win over the config file
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.ModelPath = *modelPath
		case "scaler":
			cfg.ScalerPath = *scalerPath
		case "log-level":
			cfg.LogLevel = *logLevel
		case "recommend":
			cfg.Recommend = *recommend
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, "", 0, err
	}

	if flags.NArg() == 0 {
		return nil, "", 0, errors.New("missing JSON input argument")
	}

	return cfg, flags.Arg(0), flags.NArg() - 1, nil
}
