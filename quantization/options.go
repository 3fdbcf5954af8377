package quantization

import (
	"fmt"

	"github.com/hupe1980/pqvec/internal/kmeans"
)

const (
	// DefaultNumCentroids gives one-byte codes.
	DefaultNumCentroids = 256

	// MaxNumCentroids is the largest K whose indices fit in a byte.
	MaxNumCentroids = 256

	// DefaultSeed seeds codebook initialization when no seed is configured.
	DefaultSeed int64 = 1
)

// ValidationPolicy selects how Train checks input vector lengths.
type ValidationPolicy int

const (
	// ValidationStrict rejects training input if any vector's length differs
	// from the configured dimension.
	ValidationStrict ValidationPolicy = iota

	// ValidationLegacy rejects training input only when every vector has the
	// wrong length. Longer vectors are then read over the covered range and
	// vectors too short for the slot layout fail with ErrIndexOutOfRange.
	ValidationLegacy
)

func (p ValidationPolicy) String() string {
	switch p {
	case ValidationStrict:
		return "strict"
	case ValidationLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// TailPolicy decides what happens to the trailing D mod M dimensions.
type TailPolicy int

const (
	// TailTruncate caps the last slot at subDim dimensions. The trailing
	// D mod M dimensions are ignored by Train and Encode and Decode returns
	// M*floor(D/M) values.
	TailTruncate TailPolicy = iota

	// TailExtend widens the last slot to end at D, so Decode returns D values.
	TailExtend
)

func (p TailPolicy) String() string {
	switch p {
	case TailTruncate:
		return "truncate"
	case TailExtend:
		return "extend"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// Config is the immutable configuration of a ProductQuantizer.
type Config struct {
	Dimension     int              // D: vector length
	NumSubvectors int              // M: number of slots
	NumCentroids  int              // K: centroids per slot
	MaxIterations int              // k-means iteration cap
	Tolerance     float64          // k-means convergence threshold
	Seed          int64            // seed for centroid initialization
	Validation    ValidationPolicy // training input check
	Tail          TailPolicy       // handling of D mod M trailing dimensions
}

// Option configures a ProductQuantizer.
type Option func(*Config)

// WithNumCentroids sets K. Must be in [1, 256].
func WithNumCentroids(k int) Option {
	return func(c *Config) {
		c.NumCentroids = k
	}
}

// WithMaxIterations sets the k-means iteration cap (default 100).
func WithMaxIterations(n int) Option {
	return func(c *Config) {
		c.MaxIterations = n
	}
}

// WithTolerance sets the k-means convergence threshold (default 1e-6).
func WithTolerance(tol float64) Option {
	return func(c *Config) {
		c.Tolerance = tol
	}
}

// WithSeed sets the seed for centroid initialization.
// Training the same data with the same seed yields identical codebooks.
func WithSeed(seed int64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// WithValidationPolicy selects the training input check (default ValidationStrict).
func WithValidationPolicy(p ValidationPolicy) Option {
	return func(c *Config) {
		c.Validation = p
	}
}

// WithTailPolicy selects how a non-divisible dimension is partitioned
// (default TailTruncate).
func WithTailPolicy(p TailPolicy) Option {
	return func(c *Config) {
		c.Tail = p
	}
}

func newConfig(dimension, numSubvectors int, optFns []Option) Config {
	c := Config{
		Dimension:     dimension,
		NumSubvectors: numSubvectors,
		NumCentroids:  DefaultNumCentroids,
		MaxIterations: kmeans.DefaultMaxIterations,
		Tolerance:     kmeans.DefaultTolerance,
		Seed:          DefaultSeed,
		Validation:    ValidationStrict,
		Tail:          TailTruncate,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&c)
		}
	}
	return c
}

// Validate reports the first invalid field as a *ConfigError.
func (c Config) Validate() error {
	switch {
	case c.Dimension <= 0:
		return &ConfigError{Field: "dimension", Value: c.Dimension, Reason: "must be positive"}
	case c.NumSubvectors <= 0:
		return &ConfigError{Field: "numSubvectors", Value: c.NumSubvectors, Reason: "must be positive"}
	case c.NumSubvectors > c.Dimension:
		return &ConfigError{Field: "numSubvectors", Value: c.NumSubvectors, Reason: "must not exceed dimension"}
	case c.NumCentroids <= 0:
		return &ConfigError{Field: "numCentroids", Value: c.NumCentroids, Reason: "must be positive"}
	case c.NumCentroids > MaxNumCentroids:
		return &ConfigError{Field: "numCentroids", Value: c.NumCentroids, Reason: "codes are one byte, must be <= 256"}
	case c.MaxIterations <= 0:
		return &ConfigError{Field: "maxIterations", Value: c.MaxIterations, Reason: "must be positive"}
	case c.Tolerance < 0:
		return &ConfigError{Field: "tolerance", Value: c.Tolerance, Reason: "must not be negative"}
	case c.Validation != ValidationStrict && c.Validation != ValidationLegacy:
		return &ConfigError{Field: "validation", Value: c.Validation, Reason: "unknown policy"}
	case c.Tail != TailTruncate && c.Tail != TailExtend:
		return &ConfigError{Field: "tail", Value: c.Tail, Reason: "unknown policy"}
	}
	return nil
}
