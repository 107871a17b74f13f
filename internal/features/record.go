// Package features turns the raw JSON argument into the fixed-order
// feature vector the scaler and classifier were trained on.
package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"
)

// OrderVersion identifies the column layout in Order. It changes whenever
// the training pipeline reorders, adds or removes a column.
const OrderVersion = 1

// Feature names in the column order used at training time
const (
	Age             = "age"
	Gender          = "gender"
	LeukocyteCount  = "leukocyte_count"
	Nitrite         = "nitrite"
	Protein         = "protein"
	BacterialCount  = "bacterial_count"
	PH              = "ph"
	SpecificGravity = "specific_gravity"
)

// Order is the positional layout of the feature vector, version OrderVersion
var Order = [...]string{
	Age,
	Gender,
	LeukocyteCount,
	Nitrite,
	Protein,
	BacterialCount,
	PH,
	SpecificGravity,
}

// Width is the number of columns in a feature vector
const Width = len(Order)

var (
	// ErrMissingFeature is returned when a required key is absent
	ErrMissingFeature = errors.New("missing required feature")

	// ErrInvalidFeature is returned when a value cannot be coerced to a number
	ErrInvalidFeature = errors.New("invalid feature value")
)

// Record is a parsed input object keyed by feature name
type Record map[string]any

// ParseRecord decodes a JSON object. Numbers are kept as json.Number so no
// precision is lost before coercion.
func ParseRecord(raw string) (Record, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var record Record
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}
	if record == nil {
		return nil, errors.New("invalid JSON input: expected an object, got null")
	}
	// Reject trailing garbage such as `{"age":1} x`
	if _, err := dec.Token(); err == nil {
		return nil, errors.New("invalid JSON input: unexpected data after object")
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}

	return record, nil
}

// Vector assembles the feature row in Order. The record is not modified.
func (r Record) Vector() ([]float64, error) {
	row := make([]float64, Width)
	for i, name := range Order {
		value, ok := r[name]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingFeature, name)
		}

		f, err := coerce(name, value)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidFeature, name, err)
		}
		row[i] = f
	}
	return row, nil
}

// coerce converts a decoded JSON value to float64.
//
// Beyond plain numbers it accepts numeric strings, booleans (the backend
// sends nitrite as a truthy flag) and "male"/"female" for gender.
func coerce(name string, value any) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, errors.New("value is null")
	case map[string]any, []any:
		return 0, fmt.Errorf("value of type %T is not a scalar", v)
	case string:
		s := strings.TrimSpace(v)
		if name == Gender {
			switch strings.ToLower(s) {
			case "male":
				return 1, nil
			case "female":
				return 0, nil
			}
		}
		if s == "" {
			return 0, errors.New("value is an empty string")
		}
		return cast.ToFloat64E(s)
	case json.Number:
		return v.Float64()
	default:
		return cast.ToFloat64E(v)
	}
}
