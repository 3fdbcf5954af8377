// Package quantization provides Product Quantization (PQ) for vector compression.
//
// PQ splits a D-dimensional vector into M slots of floor(D/M) dimensions,
// learns K centroids per slot with k-means, and stores a vector as the M
// indices of its nearest centroids:
//
//	pq, err := quantization.NewProductQuantizer(128, 8) // K defaults to 256
//	if err != nil {
//	    return err
//	}
//	if err := pq.Train(trainingVectors); err != nil {
//	    return err
//	}
//	codes, _ := pq.Encode(vec)    // 128 floats → 8 bytes
//	approx, _ := pq.Decode(codes) // 8 bytes → 128 floats
//
// Memory reduction:
//   - 128-dim float32 = 512 bytes
//   - PQ(8, 256) = 8 bytes (64x compression)
//   - PQ(16, 256) = 16 bytes (32x compression)
//
// # Non-divisible dimensions
//
// With the default TailTruncate policy the last slot is capped, so when D is
// not a multiple of M the trailing D mod M dimensions are never trained,
// encoded or decoded and Decode returns M*floor(D/M) values. TailExtend
// widens the last slot to D instead.
//
// # Validation
//
// ValidationStrict (default) rejects training input when any vector has the
// wrong length. ValidationLegacy only rejects it when no vector has the
// configured length.
//
// # Errors
//
// All failures match one of ErrInvalidConfiguration, ErrDimensionMismatch,
// ErrNotTrained or ErrIndexOutOfRange via errors.Is.
package quantization
