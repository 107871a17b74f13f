package artifact

import (
	"fmt"
	"log/slog"

	"github.com/kula-app/sb-predictor/internal/inference"
)

// FileSource loads artifacts from two file paths on every call
type FileSource struct {
	modelPath  string
	scalerPath string
	logger     *slog.Logger
}

// NewFileSource creates a new file source
func NewFileSource(modelPath, scalerPath string, logger *slog.Logger) *FileSource {
	return &FileSource{
		modelPath:  modelPath,
		scalerPath: scalerPath,
		logger:     logger,
	}
}

// LoadClassifier reads the classifier artifact
func (s *FileSource) LoadClassifier() (inference.Classifier, error) {
	env, err := ReadFile(s.modelPath)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", s.modelPath, err)
	}

	classifier, err := env.Classifier()
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", s.modelPath, err)
	}

	s.logger.Debug("classifier loaded", "path", s.modelPath, "kind", env.Kind)
	return classifier, nil
}

// LoadScaler reads the scaler artifact
func (s *FileSource) LoadScaler() (inference.Scaler, error) {
	env, err := ReadFile(s.scalerPath)
	if err != nil {
		return nil, fmt.Errorf("scaler %s: %w", s.scalerPath, err)
	}

	scaler, err := env.Scaler()
	if err != nil {
		return nil, fmt.Errorf("scaler %s: %w", s.scalerPath, err)
	}

	s.logger.Debug("scaler loaded", "path", s.scalerPath, "kind", env.Kind)
	return scaler, nil
}
