package pqvec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hupe1980/pqvec/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainedQuantizer(t *testing.T, optFns ...Option) *Quantizer {
	t.Helper()

	q, err := New(4, 2, append([]Option{WithNumCentroids(2)}, optFns...)...)
	require.NoError(t, err)

	train := testutil.Repeat(2, []float32{0, 0, 10, 10}, []float32{5, 5, 0, 0})
	require.NoError(t, q.Train(context.Background(), train))

	return q
}

func TestQuantizer(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		q := trainedQuantizer(t)
		assert.True(t, q.IsTrained())

		for _, v := range [][]float32{{0, 0, 10, 10}, {5, 5, 0, 0}} {
			codes, err := q.Encode(v)
			require.NoError(t, err)
			decoded, err := q.Decode(codes)
			require.NoError(t, err)
			assert.Equal(t, v, decoded)
		}
	})

	t.Run("Export", func(t *testing.T) {
		q := trainedQuantizer(t)

		exp := q.Export()
		assert.Equal(t, 4, exp.Dimension)
		assert.Equal(t, 2, exp.NumSubvectors)
		assert.Equal(t, 2, exp.NumCentroids)
		assert.Equal(t, q.Codebooks(), exp.Codebooks)
		assert.Len(t, q.TrainingStats(), 2)
		assert.Equal(t, 4, q.DecodedDimension())
		assert.Equal(t, 2, q.Config().NumCentroids)
		assert.NotNil(t, q.ProductQuantizer())
	})

	t.Run("DefaultCentroids", func(t *testing.T) {
		q, err := New(16, 4)
		require.NoError(t, err)
		assert.Equal(t, 256, q.Config().NumCentroids)
		assert.False(t, q.IsTrained())
	})
}

func TestQuantizerErrors(t *testing.T) {
	t.Run("InvalidConfiguration", func(t *testing.T) {
		_, err := New(0, 1)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)

		_, err = New(8, 2, WithNumCentroids(257))
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("NotTrained", func(t *testing.T) {
		q, err := New(4, 2)
		require.NoError(t, err)

		_, err = q.Encode([]float32{1, 2, 3, 4})
		assert.ErrorIs(t, err, ErrNotTrained)

		_, err = q.Decode([]byte{0, 0})
		assert.ErrorIs(t, err, ErrNotTrained)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		q, err := New(4, 2, WithNumCentroids(2))
		require.NoError(t, err)

		err = q.Train(context.Background(), [][]float32{{1, 2, 3, 4}, {1, 2, 3}})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
		assert.Contains(t, err.Error(), "pqvec: train")
	})

	t.Run("LegacyValidation", func(t *testing.T) {
		q, err := New(4, 2, WithNumCentroids(2), WithValidationPolicy(ValidationLegacy))
		require.NoError(t, err)

		err = q.Train(context.Background(), [][]float32{{1, 2, 3, 4}, {1, 2, 3, 4}, {1, 2, 3, 4, 5}})
		assert.NoError(t, err)
	})

	t.Run("IndexOutOfRange", func(t *testing.T) {
		q := trainedQuantizer(t)

		_, err := q.Decode([]byte{0, 9})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)

		_, err = q.Encode([]float32{1})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})
}

func TestTailPolicy(t *testing.T) {
	ctx := context.Background()
	v := []float32{1, 2, 3, 4, 5, 6, 7}

	truncate, err := New(7, 3, WithNumCentroids(1))
	require.NoError(t, err)
	require.NoError(t, truncate.Train(ctx, [][]float32{v}))

	codes, err := truncate.Encode(v)
	require.NoError(t, err)
	decoded, err := truncate.Decode(codes)
	require.NoError(t, err)
	assert.Equal(t, v[:6], decoded)

	extend, err := New(7, 3, WithNumCentroids(1), WithTailPolicy(TailExtend))
	require.NoError(t, err)
	require.NoError(t, extend.Train(ctx, [][]float32{v}))

	codes, err = extend.Encode(v)
	require.NoError(t, err)
	decoded, err = extend.Decode(codes)
	require.NoError(t, err)
	assert.Equal(t, v, decoded)
}

func TestEncodeBatch(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(42)
	data := rng.UniformVectors(300, 16)

	q, err := New(16, 4, WithNumCentroids(16), WithEncodeConcurrency(3))
	require.NoError(t, err)
	require.NoError(t, q.Train(ctx, data))

	batch, err := q.EncodeBatch(ctx, data)
	require.NoError(t, err)
	require.Len(t, batch, len(data))

	for i, v := range data {
		codes, err := q.Encode(v)
		require.NoError(t, err)
		assert.Equal(t, codes, batch[i])
	}

	decoded, err := q.DecodeBatch(ctx, batch)
	require.NoError(t, err)
	require.Len(t, decoded, len(data))

	for i, codes := range batch {
		v, err := q.Decode(codes)
		require.NoError(t, err)
		assert.Equal(t, v, decoded[i])
	}

	t.Run("Empty", func(t *testing.T) {
		out, err := q.EncodeBatch(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestEncodeBatchErrors(t *testing.T) {
	ctx := context.Background()
	q := trainedQuantizer(t, WithEncodeConcurrency(1))

	t.Run("ItemFailure", func(t *testing.T) {
		_, err := q.EncodeBatch(ctx, [][]float32{{0, 0, 10, 10}, {1}, {5, 5, 0, 0}})
		require.Error(t, err)

		var be *ErrBatchItem
		require.ErrorAs(t, err, &be)
		assert.Equal(t, 1, be.Index)
		assert.Equal(t, "encode", be.Op)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	t.Run("DecodeFailure", func(t *testing.T) {
		_, err := q.DecodeBatch(ctx, [][]byte{{0, 0}, {0, 7}})
		require.Error(t, err)

		var be *ErrBatchItem
		require.ErrorAs(t, err, &be)
		assert.Equal(t, 1, be.Index)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	t.Run("Canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := q.EncodeBatch(cctx, [][]float32{{0, 0, 10, 10}})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMetricsCollector(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}

	q, err := New(4, 2, WithNumCentroids(2), WithMetricsCollector(metrics))
	require.NoError(t, err)

	_, err = q.Encode([]float32{0, 0, 10, 10})
	require.Error(t, err)

	train := testutil.Repeat(2, []float32{0, 0, 10, 10}, []float32{5, 5, 0, 0})
	require.NoError(t, q.Train(ctx, train))
	require.Error(t, q.Train(ctx, nil))

	codes, err := q.Encode([]float32{0, 0, 10, 10})
	require.NoError(t, err)
	_, err = q.Decode(codes)
	require.NoError(t, err)

	_, err = q.EncodeBatch(ctx, train)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.TrainCount)
	assert.Equal(t, int64(1), stats.TrainErrors)
	assert.Equal(t, int64(4), stats.TrainVectors)
	assert.Equal(t, int64(2), stats.EncodeCount)
	assert.Equal(t, int64(1), stats.EncodeErrors)
	assert.Equal(t, int64(1), stats.DecodeCount)
	assert.Equal(t, int64(0), stats.DecodeErrors)
	assert.Equal(t, int64(1), stats.BatchCount)
	assert.Equal(t, int64(4), stats.BatchItems)
	assert.Equal(t, int64(0), stats.BatchFailed)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	q := trainedQuantizer(t, WithLogger(logger))
	require.True(t, q.IsTrained())

	out := buf.String()
	assert.Contains(t, out, `"msg":"training started"`)
	assert.Contains(t, out, `"msg":"training completed"`)
	assert.Contains(t, out, `"msg":"slot converged"`)
	assert.Contains(t, out, `"dimension":4`)

	buf.Reset()
	err := q.Train(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"msg":"training failed"`)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError("op", nil))

	plain := errors.New("boom")
	assert.Same(t, plain, translateError("op", plain))

	wrapped := translateError("decode", ErrNotTrained)
	assert.ErrorIs(t, wrapped, ErrNotTrained)
	assert.Equal(t, "pqvec: decode: quantization: quantizer not trained", wrapped.Error())
}
