// Package artifact reads the pre-trained scaler and classifier files
// produced by the training pipeline.
//
// An artifact is a JSON envelope naming its kind and carrying the fitted
// parameters. The file may be stored raw, gzip or zstd compressed; the
// codec is detected from the leading magic bytes.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kula-app/sb-predictor/internal/inference"
)

// Envelope header values accepted by this loader
const (
	Format  = "sb-artifact"
	Version = 1
)

// Kind identifies the fitted estimator stored in an artifact
type Kind string

const (
	KindStandardScaler     Kind = "standard_scaler"
	KindMinMaxScaler       Kind = "minmax_scaler"
	KindLogisticRegression Kind = "logistic_regression"
	KindDecisionTree       Kind = "decision_tree"
	KindRandomForest       Kind = "random_forest"
)

// Envelope is the on-disk artifact document
type Envelope struct {
	Format  string          `json:"format"`
	Version int             `json:"version"`
	Kind    Kind            `json:"kind"`
	Params  json.RawMessage `json:"params"`
}

// ReadFile reads and validates the envelope stored at path
func ReadFile(path string) (*Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return Decode(data)
}

// Decode parses an artifact file's contents
func Decode(data []byte) (*Envelope, error) {
	payload, codec, err := decompress(data)
	if err != nil {
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("failed to decode artifact (codec %s): %w", codec, err)
	}

	if env.Format != Format {
		return nil, fmt.Errorf("unsupported artifact format %q, want %q", env.Format, Format)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("unsupported artifact version %d, want %d", env.Version, Version)
	}
	if len(env.Params) == 0 {
		return nil, fmt.Errorf("artifact %q has no params", env.Kind)
	}

	return &env, nil
}

// Encode renders params as an artifact of the given kind, compressed with codec
func Encode(kind Kind, params any, codec Codec) ([]byte, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s params: %w", kind, err)
	}

	payload, err := json.Marshal(Envelope{
		Format:  Format,
		Version: Version,
		Kind:    kind,
		Params:  raw,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifact: %w", err)
	}

	return compress(payload, codec)
}

// decodeParams strictly decodes the envelope params into v
func (e *Envelope) decodeParams(v any) error {
	dec := json.NewDecoder(bytes.NewReader(e.Params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid %s params: %w", e.Kind, err)
	}
	return nil
}

// Scaler builds the feature scaler described by the envelope
func (e *Envelope) Scaler() (inference.Scaler, error) {
	switch e.Kind {
	case KindStandardScaler:
		var p StandardScalerParams
		if err := e.decodeParams(&p); err != nil {
			return nil, err
		}
		v, err := NewStandardScaler(p)
		if err != nil {
			return nil, err
		}
		return v, nil
	case KindMinMaxScaler:
		var p MinMaxScalerParams
		if err := e.decodeParams(&p); err != nil {
			return nil, err
		}
		v, err := NewMinMaxScaler(p)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("artifact kind %q is not a scaler", e.Kind)
	}
}

// Classifier builds the classifier described by the envelope
func (e *Envelope) Classifier() (inference.Classifier, error) {
	switch e.Kind {
	case KindLogisticRegression:
		var p LogisticRegressionParams
		if err := e.decodeParams(&p); err != nil {
			return nil, err
		}
		v, err := NewLogisticRegression(p)
		if err != nil {
			return nil, err
		}
		return v, nil
	case KindDecisionTree:
		var p DecisionTreeParams
		if err := e.decodeParams(&p); err != nil {
			return nil, err
		}
		v, err := NewDecisionTreeClassifier(p)
		if err != nil {
			return nil, err
		}
		return v, nil
	case KindRandomForest:
		var p RandomForestParams
		if err := e.decodeParams(&p); err != nil {
			return nil, err
		}
		v, err := NewRandomForest(p)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("artifact kind %q is not a classifier", e.Kind)
	}
}
