package pqvec

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/pqvec/quantization"
)

// Logger wraps slog.Logger with pqvec-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithSlot adds a slot field to the logger.
func (l *Logger) WithSlot(slot int) *Logger {
	return &Logger{
		Logger: l.Logger.With("slot", slot),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogTrainStart logs the beginning of a training run.
func (l *Logger) LogTrainStart(ctx context.Context, cfg quantization.Config, vectors int) {
	l.InfoContext(ctx, "training started",
		"dimension", cfg.Dimension,
		"subvectors", cfg.NumSubvectors,
		"centroids", cfg.NumCentroids,
		"vectors", vectors,
		"validation", cfg.Validation.String(),
		"tail", cfg.Tail.String(),
	)
}

// LogTrain logs the outcome of a training run.
func (l *Logger) LogTrain(ctx context.Context, vectors int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "training failed",
			"vectors", vectors,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "training completed",
			"vectors", vectors,
			"duration", duration,
		)
	}
}

// LogSlot logs the k-means outcome of one slot.
func (l *Logger) LogSlot(ctx context.Context, s quantization.SlotStats) {
	if !s.Converged {
		l.WarnContext(ctx, "slot reached iteration cap",
			"slot", s.Slot,
			"iterations", s.Iterations,
			"inertia", s.Inertia,
		)
		return
	}
	l.DebugContext(ctx, "slot converged",
		"slot", s.Slot,
		"iterations", s.Iterations,
		"inertia", s.Inertia,
	)
}

// LogBatch logs a batch encode or decode operation.
func (l *Logger) LogBatch(ctx context.Context, op string, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch completed with failures",
			"op", op,
			"total", count,
			"failed", failed,
		)
	} else {
		l.DebugContext(ctx, "batch completed",
			"op", op,
			"count", count,
		)
	}
}
