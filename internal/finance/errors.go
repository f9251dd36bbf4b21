package finance

import (
	"errors"
	"fmt"
	"math"
)

// --- Sentinel errors ---

// ErrInvalidRange is returned when a gearing or tax rate falls outside the
// interval a formula is defined on.
var ErrInvalidRange = errors.New("value out of range")

// ErrNonFiniteInput is returned when an input is NaN or ±Inf.
var ErrNonFiniteInput = errors.New("non-finite input")

// ErrUnknownBasis is returned for a basis other than real or nominal.
var ErrUnknownBasis = errors.New("unknown basis")

// InputError names the offending input of a rejected calculation.
type InputError struct {
	Field string
	Value float64
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s = %v: %v", e.Field, e.Value, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// field pairs an input name with its value for validation.
type field struct {
	name  string
	value float64
}

// checkFinite returns an *InputError for the first non-finite field.
func checkFinite(fields ...field) error {
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &InputError{Field: f.name, Value: f.value, Err: ErrNonFiniteInput}
		}
	}
	return nil
}

// checkUnit rejects values outside [0,1].
func checkUnit(field string, v float64) error {
	if v < 0 || v > 1 {
		return &InputError{Field: field, Value: v, Err: ErrInvalidRange}
	}
	return nil
}
