package quantization

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when a dimension, subvector or
	// centroid count is out of range.
	ErrInvalidConfiguration = errors.New("quantization: invalid configuration")

	// ErrDimensionMismatch is returned when training input does not match the
	// configured dimension under the active validation policy.
	ErrDimensionMismatch = errors.New("quantization: dimension mismatch")

	// ErrNotTrained is returned by Encode and Decode before the first
	// successful Train.
	ErrNotTrained = errors.New("quantization: quantizer not trained")

	// ErrIndexOutOfRange is returned for codes outside [0, K), for a code
	// slice of the wrong length, and for vectors too short to cover every slot.
	ErrIndexOutOfRange = errors.New("quantization: index out of range")
)

// ConfigError describes a rejected configuration value.
//
// It matches ErrInvalidConfiguration via errors.Is.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// DimensionError indicates a training vector of unexpected length.
// Index is the offending vector, or -1 when no vector matched at all.
//
// It matches ErrDimensionMismatch via errors.Is.
type DimensionError struct {
	Index    int
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("dimension mismatch: no vector has dimension %d", e.Expected)
	}
	return fmt.Sprintf("dimension mismatch: vector %d: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// RangeError reports an index outside its valid range.
// Subject names what was indexed ("code", "code count", "vector length").
//
// It matches ErrIndexOutOfRange via errors.Is.
type RangeError struct {
	Subject string
	Slot    int
	Value   int
	Limit   int
}

func (e *RangeError) Error() string {
	if e.Slot < 0 {
		return fmt.Sprintf("%s %d out of range (limit %d)", e.Subject, e.Value, e.Limit)
	}
	return fmt.Sprintf("slot %d: %s %d out of range (limit %d)", e.Slot, e.Subject, e.Value, e.Limit)
}

func (e *RangeError) Unwrap() error { return ErrIndexOutOfRange }
