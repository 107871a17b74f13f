package inference

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kula-app/sb-predictor/internal/features"
)

// ArtifactSource provides the pre-trained artifacts for a run.
// Implementations load fresh on every call; nothing is cached.
type ArtifactSource interface {
	LoadClassifier() (Classifier, error)
	LoadScaler() (Scaler, error)
}

// Pipeline runs parse, load, assemble, scale and predict in order.
// The first failing step ends the run.
type Pipeline struct {
	source    ArtifactSource
	logger    *slog.Logger
	recommend bool
}

// NewPipeline creates a new pipeline
func NewPipeline(source ArtifactSource, logger *slog.Logger, recommend bool) *Pipeline {
	return &Pipeline{
		source:    source,
		logger:    logger,
		recommend: recommend,
	}
}

// Run produces a prediction for the raw JSON input. Every returned error
// wraps exactly one of the ErrXxx kinds.
func (p *Pipeline) Run(ctx context.Context, input string) (*PredictionResult, error) {
	startTime := time.Now()

	// 1. Parse the JSON argument
	record, err := features.ParseRecord(input)
	if err != nil {
		return nil, wrap(ErrInputParse, err)
	}
	p.logger.Debug("input parsed", "keys", len(record))

	if err := ctx.Err(); err != nil {
		return nil, wrap(ErrInference, fmt.Errorf("run canceled: %w", err))
	}

	// 2. Load the artifacts, classifier first
	classifier, err := p.source.LoadClassifier()
	if err != nil {
		return nil, wrap(ErrArtifactLoad, err)
	}
	scaler, err := p.source.LoadScaler()
	if err != nil {
		return nil, wrap(ErrArtifactLoad, err)
	}
	p.logger.Debug("artifacts loaded")

	// 3. Assemble the feature row in training order
	row, err := record.Vector()
	if err != nil {
		return nil, wrap(ErrFeatureValidation, err)
	}

	// 4. Scale and predict
	predictor := NewPredictor(scaler, classifier, p.logger, p.recommend)
	result, err := predictor.Predict(row)
	if err != nil {
		return nil, err
	}

	p.logger.Info("prediction completed",
		"diagnosis", result.Diagnosis,
		"confidence", result.Confidence,
		"feature_order_version", features.OrderVersion,
		"duration", time.Since(startTime))

	return result, nil
}
