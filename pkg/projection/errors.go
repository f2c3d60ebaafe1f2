package projection

import (
	"errors"
	"fmt"
	"math"
)

// Projection errors.
var (
	ErrInvalidParameter     = errors.New("invalid parameter")
	ErrMalformedResolution  = errors.New("malformed resolution token")
	ErrUnknownTextureSource = errors.New("unknown texture source")
)

// ParamError reports a rejected parameter value.
type ParamError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidParameter) hold.
func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

func requirePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return &ParamError{Field: field, Value: v, Reason: "must be a finite value > 0"}
	}
	return nil
}

func requireFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ParamError{Field: field, Value: v, Reason: "must be finite"}
	}
	return nil
}

func requireShift(field string, v float64) error {
	if err := requireFinite(field, v); err != nil {
		return err
	}
	if v < -MaxShiftPercent || v > MaxShiftPercent {
		return &ParamError{Field: field, Value: v, Reason: "must be within [-100, 100] percent"}
	}
	return nil
}

// requireSize validates a resolution pair.
func requireSize(width, height float64) error {
	if err := requirePositive("width", width); err != nil {
		return err
	}
	return requirePositive("height", height)
}
