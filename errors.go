package pqvec

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pqvec/quantization"
)

var (
	// ErrInvalidConfiguration indicates a non-positive dimension, subvector or
	// centroid count, or more than 256 centroids.
	ErrInvalidConfiguration = quantization.ErrInvalidConfiguration

	// ErrDimensionMismatch indicates training input whose lengths do not
	// match the configured dimension.
	ErrDimensionMismatch = quantization.ErrDimensionMismatch

	// ErrNotTrained indicates Encode or Decode before a successful Train.
	ErrNotTrained = quantization.ErrNotTrained

	// ErrIndexOutOfRange indicates a code outside [0, K), a code slice of the
	// wrong length, or a vector too short to cover every slot.
	ErrIndexOutOfRange = quantization.ErrIndexOutOfRange
)

// ErrBatchItem reports the first failing item of EncodeBatch or DecodeBatch.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrBatchItem struct {
	Op    string
	Index int
	cause error
}

func (e *ErrBatchItem) Error() string {
	return fmt.Sprintf("%s batch: item %d: %v", e.Op, e.Index, e.cause)
}

func (e *ErrBatchItem) Unwrap() error { return e.cause }

func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	var be *ErrBatchItem
	if errors.As(err, &be) {
		return err
	}

	switch {
	case errors.Is(err, ErrInvalidConfiguration),
		errors.Is(err, ErrDimensionMismatch),
		errors.Is(err, ErrNotTrained),
		errors.Is(err, ErrIndexOutOfRange):
		return fmt.Errorf("pqvec: %s: %w", op, err)
	}

	return err
}
