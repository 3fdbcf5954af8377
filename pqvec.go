package pqvec

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pqvec/quantization"
)

// Quantizer is a product quantizer with logging, metrics and batch helpers.
//
// Train, Encode and Decode are safe for concurrent use. Concurrent Train
// calls race on which codebooks are kept (last writer wins), but readers
// always see one complete set.
type Quantizer struct {
	pq                *quantization.ProductQuantizer
	logger            *Logger
	metrics           MetricsCollector
	encodeConcurrency int
}

// New creates an untrained Quantizer for dimension-length vectors split into
// numSubvectors slots.
func New(dimension, numSubvectors int, optFns ...Option) (*Quantizer, error) {
	o := applyOptions(optFns)

	pq, err := quantization.NewProductQuantizer(dimension, numSubvectors, o.pqOptions...)
	if err != nil {
		return nil, translateError("new", err)
	}

	return &Quantizer{
		pq:                pq,
		logger:            o.logger.WithDimension(dimension),
		metrics:           o.metricsCollector,
		encodeConcurrency: o.encodeConcurrency,
	}, nil
}

// Train learns one codebook per slot from vectors, replacing any previous
// codebooks. On error the previous codebooks are kept.
func (q *Quantizer) Train(ctx context.Context, vectors [][]float32) error {
	q.logger.LogTrainStart(ctx, q.pq.Config(), len(vectors))

	start := time.Now()
	err := q.pq.TrainContext(ctx, vectors)
	duration := time.Since(start)

	q.metrics.RecordTrain(len(vectors), duration, err)
	q.logger.LogTrain(ctx, len(vectors), duration, err)

	if err != nil {
		return translateError("train", err)
	}

	for _, s := range q.pq.TrainingStats() {
		q.logger.LogSlot(ctx, s)
	}

	return nil
}

// Encode returns the M-byte code of vec.
func (q *Quantizer) Encode(vec []float32) ([]byte, error) {
	start := time.Now()
	codes, err := q.pq.Encode(vec)
	q.metrics.RecordEncode(time.Since(start), err)

	return codes, translateError("encode", err)
}

// Decode reconstructs a vector from its code.
func (q *Quantizer) Decode(codes []byte) ([]float32, error) {
	start := time.Now()
	vec, err := q.pq.Decode(codes)
	q.metrics.RecordDecode(time.Since(start), err)

	return vec, translateError("decode", err)
}

// EncodeBatch encodes vectors concurrently. The result is index-aligned with
// the input. The first failure cancels the remaining work and is returned as
// an *ErrBatchItem.
func (q *Quantizer) EncodeBatch(ctx context.Context, vectors [][]float32) ([][]byte, error) {
	out := make([][]byte, len(vectors))

	err := q.runBatch(ctx, "encode", len(vectors), func(i int) error {
		codes, err := q.pq.Encode(vectors[i])
		if err != nil {
			return err
		}
		out[i] = codes
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// DecodeBatch decodes codes concurrently. The result is index-aligned with
// the input. The first failure cancels the remaining work and is returned as
// an *ErrBatchItem.
func (q *Quantizer) DecodeBatch(ctx context.Context, codes [][]byte) ([][]float32, error) {
	out := make([][]float32, len(codes))

	err := q.runBatch(ctx, "decode", len(codes), func(i int) error {
		vec, err := q.pq.Decode(codes[i])
		if err != nil {
			return err
		}
		out[i] = vec
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (q *Quantizer) runBatch(ctx context.Context, op string, n int, fn func(i int) error) error {
	start := time.Now()

	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(q.encodeConcurrency)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return &ErrBatchItem{Op: op, Index: i, cause: translateError(op, err)}
			}
			done.Add(1)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		// Cancellation observed by the loop before any worker failed.
		err = ctx.Err()
	}

	failed := n - int(done.Load())
	q.metrics.RecordBatch(op, n, failed, time.Since(start))
	q.logger.LogBatch(ctx, op, n, failed)

	return err
}

// IsTrained reports whether Train has completed successfully at least once.
func (q *Quantizer) IsTrained() bool {
	return q.pq.IsTrained()
}

// Config returns the quantizer configuration.
func (q *Quantizer) Config() quantization.Config {
	return q.pq.Config()
}

// Export returns the configuration and a copy of the current codebooks.
func (q *Quantizer) Export() quantization.Export {
	return q.pq.Export()
}

// Codebooks returns a copy of the current codebooks, or nil before training.
func (q *Quantizer) Codebooks() [][][]float32 {
	return q.pq.Codebooks()
}

// TrainingStats returns per-slot statistics of the last successful Train.
func (q *Quantizer) TrainingStats() []quantization.SlotStats {
	return q.pq.TrainingStats()
}

// DecodedDimension returns the length of vectors produced by Decode.
func (q *Quantizer) DecodedDimension() int {
	return q.pq.DecodedDimension()
}

// ProductQuantizer returns the underlying quantizer.
func (q *Quantizer) ProductQuantizer() *quantization.ProductQuantizer {
	return q.pq
}
