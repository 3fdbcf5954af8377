package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/pqvec/internal/math32"
)

const (
	// DefaultMaxIterations caps the number of Lloyd iterations.
	DefaultMaxIterations = 100

	// DefaultTolerance is the maximum squared centroid displacement below
	// which training is considered converged.
	DefaultTolerance = 1e-6
)

var (
	// ErrNoPoints is returned when training is attempted on an empty set.
	ErrNoPoints = errors.New("kmeans: no points to cluster")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("kmeans: k must be positive")
)

// Options configures a training run.
type Options struct {
	// MaxIterations limits Lloyd iterations. Values <= 0 use DefaultMaxIterations.
	MaxIterations int

	// Tolerance is the convergence threshold on the largest squared centroid
	// displacement between two iterations. Negative values use DefaultTolerance.
	Tolerance float64

	// Rand drives seeding. A nil source is replaced by one seeded with 1.
	Rand *rand.Rand
}

// DefaultOptions returns the options used for codebook training.
func DefaultOptions() Options {
	return Options{
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

func (o Options) normalize() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Tolerance < 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(1)) // nolint gosec
	}
	return o
}

// Result holds the outcome of a training run.
type Result struct {
	// Centroids are the k learned centroids, in stable order.
	Centroids [][]float32
	// Assignments maps every input point to its nearest centroid.
	Assignments []int
	// Iterations is the number of Lloyd iterations executed.
	Iterations int
	// Converged reports whether training stopped on the tolerance check
	// rather than on the iteration cap.
	Converged bool
	// Inertia is the sum of squared distances of the points to their
	// assigned centroids.
	Inertia float64
}

// Train learns k centroids from points using Lloyd's algorithm.
//
// All points must have the same length. When there are fewer points than
// centroids the surplus centroids duplicate existing points; an empty
// cluster keeps its previous centroid.
func Train(ctx context.Context, points [][]float32, k int, opts Options) (*Result, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	n := len(points)
	if n == 0 {
		return nil, ErrNoPoints
	}

	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("kmeans: point %d has length %d, expected %d", i, len(p), dim)
		}
	}

	opts = opts.normalize()

	centroids := seedPlusPlus(points, k, dim, opts.Rand)

	res := &Result{
		Centroids:   centroids,
		Assignments: make([]int, n),
	}

	counts := make([]int, k)
	sums := make([]float64, k*dim)
	next := make([]float32, dim)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Assignment step
		for i, p := range points {
			res.Assignments[i], _ = Nearest(p, centroids)
		}

		// Update step
		clear(sums)
		clear(counts)

		for i, p := range points {
			c := res.Assignments[i]
			counts[c]++
			math32.AccumulateInPlace(sums[c*dim:(c+1)*dim], p)
		}

		var shift float64
		for j := range centroids {
			if counts[j] == 0 {
				continue
			}
			math32.MeanInto(next, sums[j*dim:(j+1)*dim], counts[j])
			if d := float64(math32.SquaredL2(next, centroids[j])); d > shift {
				shift = d
			}
			copy(centroids[j], next)
		}

		res.Iterations = iter + 1

		if shift <= opts.Tolerance {
			res.Converged = true
			break
		}
	}

	// Final assignment against the centroids actually returned.
	res.Inertia = 0
	for i, p := range points {
		idx, dist := Nearest(p, centroids)
		res.Assignments[i] = idx
		res.Inertia += float64(dist)
	}

	return res, nil
}

// Nearest returns the index of the centroid closest to vec by squared L2
// distance, together with that distance. Ties resolve to the lowest index.
func Nearest(vec []float32, centroids [][]float32) (int, float32) {
	best := 0
	minDist := float32(math.Inf(1))

	for i, c := range centroids {
		if d := math32.SquaredL2(vec, c); d < minDist {
			minDist = d
			best = i
		}
	}

	return best, minDist
}

// seedPlusPlus picks initial centroids with k-means++. A point that
// coincides with an already chosen seed has zero weight, so duplicates are
// only produced once every distinct point has been used.
func seedPlusPlus(points [][]float32, k, dim int, rng *rand.Rand) [][]float32 {
	n := len(points)

	flat := make([]float32, k*dim)
	centroids := make([][]float32, k)
	for i := range centroids {
		centroids[i] = flat[i*dim : (i+1)*dim : (i+1)*dim]
	}

	copy(centroids[0], points[rng.Intn(n)])

	minDistSq := make([]float64, n)
	for i, p := range points {
		minDistSq[i] = float64(math32.SquaredL2(p, centroids[0]))
	}

	for c := 1; c < k; c++ {
		if c >= n {
			copy(centroids[c], points[c%n])
			continue
		}

		var sum float64
		for _, d := range minDistSq {
			sum += d
		}

		chosen := -1
		if sum == 0 {
			chosen = rng.Intn(n)
		} else {
			target := rng.Float64() * sum
			var cumsum float64
			last := -1
			for i, d := range minDistSq {
				if d == 0 {
					continue
				}
				last = i
				cumsum += d
				if cumsum >= target {
					chosen = i
					break
				}
			}
			if chosen < 0 {
				// Rounding left target just above the running sum.
				chosen = last
			}
		}

		copy(centroids[c], points[chosen])

		for i, p := range points {
			if d := float64(math32.SquaredL2(p, centroids[c])); d < minDistSq[i] {
				minDistSq[i] = d
			}
		}
	}

	return centroids
}
