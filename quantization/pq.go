package quantization

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/pqvec/internal/conv"
	"github.com/hupe1980/pqvec/internal/kmeans"
)

// ProductQuantizer implements Product Quantization (PQ).
// PQ splits vectors into subvectors and quantizes each independently using k-means clustering.
//
// Example: 128-dim vector with M=8 subvectors → 8 uint8 codes = 8 bytes (64x compression vs float32)
//
// Encode and Decode may be called concurrently with each other and with
// Train; a reader always sees one complete set of codebooks.
type ProductQuantizer struct {
	cfg Config

	mu        sync.RWMutex
	codebooks [][][]float32 // M codebooks, each with K centroids; nil until trained
	stats     []SlotStats
}

// SlotStats summarizes codebook training for one slot.
type SlotStats struct {
	Slot       int
	Iterations int     // Lloyd iterations executed
	Converged  bool    // stopped on tolerance rather than the iteration cap
	Inertia    float64 // sum of squared distances to the assigned centroids
}

// Export is a snapshot of a quantizer's configuration and codebooks.
// Callers needing persistence serialize it themselves.
type Export struct {
	Dimension     int           `json:"dimension"`
	NumSubvectors int           `json:"numSubvectors"`
	NumCentroids  int           `json:"numCentroids"`
	Codebooks     [][][]float32 `json:"codebooks"`
}

// NewProductQuantizer creates a new PQ quantizer.
// Parameters:
//   - dimension: Vector dimensionality (D)
//   - numSubvectors: Number of subvectors to split into (M, typically 8, 16, or 32)
//
// The number of centroids per subspace defaults to 256; see WithNumCentroids.
func NewProductQuantizer(dimension, numSubvectors int, optFns ...Option) (*ProductQuantizer, error) {
	cfg := newConfig(dimension, numSubvectors, optFns)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &ProductQuantizer{cfg: cfg}, nil
}

// Train learns one codebook per slot. Any previous codebooks are replaced.
func (pq *ProductQuantizer) Train(vectors [][]float32) error {
	return pq.TrainContext(context.Background(), vectors)
}

// TrainContext is Train with cancellation between k-means iterations.
//
// Codebooks are published only after every slot has been trained; on error
// the quantizer keeps its previous state.
func (pq *ProductQuantizer) TrainContext(ctx context.Context, vectors [][]float32) error {
	if err := pq.validate(vectors); err != nil {
		return err
	}

	m := pq.cfg.NumSubvectors
	codebooks := make([][][]float32, m)
	stats := make([]SlotStats, m)

	opts := kmeans.Options{
		MaxIterations: pq.cfg.MaxIterations,
		Tolerance:     pq.cfg.Tolerance,
		Rand:          rand.New(rand.NewSource(pq.cfg.Seed)), // nolint gosec
	}

	subvectors := make([][]float32, len(vectors))

	for slot := 0; slot < m; slot++ {
		start, end := pq.SlotRange(slot)
		for i, vec := range vectors {
			if len(vec) < end {
				return &RangeError{Subject: "vector length", Slot: slot, Value: len(vec), Limit: end}
			}
			subvectors[i] = vec[start:end]
		}

		res, err := kmeans.Train(ctx, subvectors, pq.cfg.NumCentroids, opts)
		if err != nil {
			return fmt.Errorf("quantization: training slot %d: %w", slot, err)
		}

		codebooks[slot] = res.Centroids
		stats[slot] = SlotStats{
			Slot:       slot,
			Iterations: res.Iterations,
			Converged:  res.Converged,
			Inertia:    res.Inertia,
		}
	}

	pq.mu.Lock()
	pq.codebooks = codebooks
	pq.stats = stats
	pq.mu.Unlock()

	return nil
}

func (pq *ProductQuantizer) validate(vectors [][]float32) error {
	if len(vectors) == 0 {
		return &DimensionError{Index: -1, Expected: pq.cfg.Dimension}
	}

	switch pq.cfg.Validation {
	case ValidationLegacy:
		for _, vec := range vectors {
			if len(vec) == pq.cfg.Dimension {
				return nil
			}
		}
		return &DimensionError{Index: -1, Expected: pq.cfg.Dimension}
	default:
		for i, vec := range vectors {
			if len(vec) != pq.cfg.Dimension {
				return &DimensionError{Index: i, Expected: pq.cfg.Dimension, Actual: len(vec)}
			}
		}
		return nil
	}
}

// Encode quantizes a vector into PQ codes.
// Returns M uint8 codes (one per subvector).
//
// Vectors longer than the configured dimension are accepted; only the
// dimensions covered by a slot are read.
func (pq *ProductQuantizer) Encode(vec []float32) ([]byte, error) {
	codebooks := pq.snapshot()
	if codebooks == nil {
		return nil, ErrNotTrained
	}

	if need := pq.DecodedDimension(); len(vec) < need {
		return nil, &RangeError{Subject: "vector length", Slot: -1, Value: len(vec), Limit: need}
	}

	codes := make([]byte, pq.cfg.NumSubvectors)

	for m := range codes {
		start, end := pq.SlotRange(m)

		nearestIdx, _ := kmeans.Nearest(vec[start:end], codebooks[m])

		code, err := conv.IntToUint8(nearestIdx)
		if err != nil {
			return nil, &RangeError{Subject: "code", Slot: m, Value: nearestIdx, Limit: pq.cfg.NumCentroids}
		}
		codes[m] = code
	}

	return codes, nil
}

// Decode reconstructs an approximate vector from PQ codes.
// The result has DecodedDimension() values.
func (pq *ProductQuantizer) Decode(codes []byte) ([]float32, error) {
	codebooks := pq.snapshot()
	if codebooks == nil {
		return nil, ErrNotTrained
	}

	if len(codes) != pq.cfg.NumSubvectors {
		return nil, &RangeError{Subject: "code count", Slot: -1, Value: len(codes), Limit: pq.cfg.NumSubvectors}
	}

	reconstructed := make([]float32, 0, pq.DecodedDimension())

	for m, c := range codes {
		centroidIdx := int(c)
		if centroidIdx >= len(codebooks[m]) {
			return nil, &RangeError{Subject: "code", Slot: m, Value: centroidIdx, Limit: len(codebooks[m])}
		}
		reconstructed = append(reconstructed, codebooks[m][centroidIdx]...)
	}

	return reconstructed, nil
}

func (pq *ProductQuantizer) snapshot() [][][]float32 {
	pq.mu.RLock()
	defer pq.mu.RUnlock()
	return pq.codebooks
}

// Config returns the quantizer configuration.
func (pq *ProductQuantizer) Config() Config {
	return pq.cfg
}

// NumSubvectors returns the number of subvectors (M).
func (pq *ProductQuantizer) NumSubvectors() int {
	return pq.cfg.NumSubvectors
}

// NumCentroids returns the number of centroids per subspace (K).
func (pq *ProductQuantizer) NumCentroids() int {
	return pq.cfg.NumCentroids
}

// IsTrained returns whether the quantizer has been trained.
func (pq *ProductQuantizer) IsTrained() bool {
	return pq.snapshot() != nil
}

// Codebooks returns a copy of the PQ codebooks, or nil before training.
// Returns M codebooks, each with K centroids.
func (pq *ProductQuantizer) Codebooks() [][][]float32 {
	return cloneCodebooks(pq.snapshot())
}

// TrainingStats returns per-slot statistics of the last successful Train.
func (pq *ProductQuantizer) TrainingStats() []SlotStats {
	pq.mu.RLock()
	defer pq.mu.RUnlock()
	if pq.stats == nil {
		return nil
	}
	out := make([]SlotStats, len(pq.stats))
	copy(out, pq.stats)
	return out
}

// Export returns the configuration together with a copy of the codebooks.
func (pq *ProductQuantizer) Export() Export {
	return Export{
		Dimension:     pq.cfg.Dimension,
		NumSubvectors: pq.cfg.NumSubvectors,
		NumCentroids:  pq.cfg.NumCentroids,
		Codebooks:     pq.Codebooks(),
	}
}

// BytesPerVector returns the compressed size per vector in bytes.
func (pq *ProductQuantizer) BytesPerVector() int {
	return pq.cfg.NumSubvectors // One uint8 per subvector
}

// CompressionRatio returns the theoretical compression ratio.
func (pq *ProductQuantizer) CompressionRatio() float64 {
	originalBytes := pq.cfg.Dimension * 4 // float32 = 4 bytes
	return float64(originalBytes) / float64(pq.BytesPerVector())
}

func cloneCodebooks(src [][][]float32) [][][]float32 {
	if src == nil {
		return nil
	}
	dst := make([][][]float32, len(src))
	for m, book := range src {
		dst[m] = make([][]float32, len(book))
		for k, c := range book {
			dst[m][k] = append([]float32(nil), c...)
		}
	}
	return dst
}
