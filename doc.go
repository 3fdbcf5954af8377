// Package pqvec provides product quantization (PQ) for compressing float32
// vectors into short byte codes.
//
// A D-dimensional vector is split into M slots of floor(D/M) dimensions. For
// each slot a codebook of K centroids (K <= 256) is learned with Lloyd's
// k-means, and a vector is stored as the M indices of its nearest centroids,
// one byte each.
//
// # Quick Start
//
//	ctx := context.Background()
//	q, err := pqvec.New(128, 8) // 128 dims, 8 slots, 256 centroids per slot
//	if err != nil {
//	    panic(err)
//	}
//	if err := q.Train(ctx, trainingVectors); err != nil {
//	    panic(err)
//	}
//
//	codes, _ := q.Encode(vec)      // 512 bytes → 8 bytes
//	approx, _ := q.Decode(codes)   // 8 bytes → 128 floats
//
//	all, _ := q.EncodeBatch(ctx, vectors) // concurrent encode
//
// # Observability
//
//	q, _ := pqvec.New(128, 8,
//	    pqvec.WithLogger(pqvec.NewJSONLogger(slog.LevelDebug)),
//	    pqvec.WithMetricsCollector(&pqvec.BasicMetricsCollector{}),
//	)
//
// See the promcollector package for a Prometheus collector.
//
// # Non-divisible dimensions
//
// By default the trailing D mod M dimensions belong to no slot and are not
// reproduced by Decode (TailTruncate). Use WithTailPolicy(TailExtend) to
// fold them into the last slot.
//
// # Persistence
//
// Export returns the configuration and codebooks as plain Go values; the
// caller chooses how to store them.
package pqvec
