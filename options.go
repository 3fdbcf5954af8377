package pqvec

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/pqvec/quantization"
)

// Re-exported partitioning and validation policies.
type (
	ValidationPolicy = quantization.ValidationPolicy
	TailPolicy       = quantization.TailPolicy
)

const (
	ValidationStrict = quantization.ValidationStrict
	ValidationLegacy = quantization.ValidationLegacy
	TailTruncate     = quantization.TailTruncate
	TailExtend       = quantization.TailExtend
)

type options struct {
	pqOptions         []quantization.Option
	metricsCollector  MetricsCollector
	logger            *Logger
	encodeConcurrency int
}

// Option configures a Quantizer.
type Option func(*options)

// WithNumCentroids sets the number of centroids per slot (K, default 256).
// K must not exceed 256 since codes are one byte.
func WithNumCentroids(k int) Option {
	return func(o *options) {
		o.pqOptions = append(o.pqOptions, quantization.WithNumCentroids(k))
	}
}

// WithMaxIterations caps k-means iterations per slot (default 100).
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.pqOptions = append(o.pqOptions, quantization.WithMaxIterations(n))
	}
}

// WithTolerance sets the k-means convergence threshold (default 1e-6).
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.pqOptions = append(o.pqOptions, quantization.WithTolerance(tol))
	}
}

// WithSeed fixes the seed used for centroid initialization.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.pqOptions = append(o.pqOptions, quantization.WithSeed(seed))
	}
}

// WithValidationPolicy selects how training input lengths are checked.
//
// ValidationStrict (default) rejects the input if any vector has the wrong
// length. ValidationLegacy only rejects it if every vector does.
func WithValidationPolicy(p ValidationPolicy) Option {
	return func(o *options) {
		o.pqOptions = append(o.pqOptions, quantization.WithValidationPolicy(p))
	}
}

// WithTailPolicy selects how the trailing D mod M dimensions are handled.
//
// TailTruncate (default) drops them, TailExtend folds them into the last slot.
func WithTailPolicy(p TailPolicy) Option {
	return func(o *options) {
		o.pqOptions = append(o.pqOptions, quantization.WithTailPolicy(p))
	}
}

// WithEncodeConcurrency limits the goroutines used by EncodeBatch and
// DecodeBatch. Values <= 0 use GOMAXPROCS.
func WithEncodeConcurrency(n int) Option {
	return func(o *options) {
		o.encodeConcurrency = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pqvec.BasicMetricsCollector{}
//	q, _ := pqvec.New(128, 8, pqvec.WithMetricsCollector(metrics))
//	// ... use q ...
//	stats := metrics.GetStats()
//	fmt.Printf("Encodes: %d, Avg latency: %dns\n", stats.EncodeCount, stats.EncodeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pqvec.NewJSONLogger(slog.LevelInfo)
//	q, _ := pqvec.New(128, 8, pqvec.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.encodeConcurrency <= 0 {
		o.encodeConcurrency = runtime.GOMAXPROCS(0)
	}
	return o
}
