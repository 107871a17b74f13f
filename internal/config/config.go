package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Artifact file names written by the training pipeline
const (
	// DefaultModelPath is the trained classifier, relative to the working directory
	DefaultModelPath = "realistic_sb_model.pkl"

	// DefaultScalerPath is the feature scaler paired with the classifier
	DefaultScalerPath = "realistic_scaler.pkl"
)

// Config represents the predictor configuration
type Config struct {
	// ModelPath is the classifier artifact location
	ModelPath string `yaml:"modelPath" validate:"required"`

	// ScalerPath is the scaler artifact location
	ScalerPath string `yaml:"scalerPath" validate:"required"`

	// LogLevel controls diagnostics written to stderr
	LogLevel string `yaml:"logLevel" validate:"required,oneof=debug info warn error"`

	// Recommend adds risk level and follow-up recommendations to a successful result
	Recommend bool `yaml:"recommend"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		ModelPath:  DefaultModelPath,
		ScalerPath: DefaultScalerPath,
		LogLevel:   "warn",
		Recommend:  false,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its struct constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config field %s: failed %q constraint", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadFile reads a YAML config file on top of the defaults.
// Keys missing from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes YAML from r on top of the defaults
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}
