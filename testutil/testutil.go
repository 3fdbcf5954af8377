package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// ClusteredVectors generates vectors around clusters random centers drawn
// from [-scale, scale). Vector i belongs to cluster i%clusters and deviates
// from its center by Gaussian noise with standard deviation spread.
// Returns the vectors and the centers.
func (r *RNG) ClusteredVectors(num, dim, clusters int, scale, spread float32) ([][]float32, [][]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([][]float32, clusters)
	for c := range centers {
		centers[c] = make([]float32, dim)
		for j := range centers[c] {
			centers[c][j] = (r.rand.Float32()*2 - 1) * scale
		}
	}

	data := make([]float32, num*dim)
	vectors := make([][]float32, num)

	for i := range num {
		center := centers[i%clusters]
		vec := data[i*dim : (i+1)*dim]

		for j := range dim {
			vec[j] = center[j] + float32(r.rand.NormFloat64())*spread
		}
		vectors[i] = vec
	}

	return vectors, centers
}

// Repeat returns each pattern copied times times, in pattern order.
// Every returned vector is an independent copy.
func Repeat(times int, patterns ...[]float32) [][]float32 {
	out := make([][]float32, 0, times*len(patterns))
	for _, p := range patterns {
		for range times {
			out = append(out, append([]float32(nil), p...))
		}
	}
	return out
}

// MSE returns the mean squared error between a and b over the shorter length.
func MSE(a, b []float32) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}

	var sum float64
	for i := range n {
		d := float64(a[i] - b[i])
		sum += d * d
	}

	return sum / float64(n)
}
