package benchmark_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/pqvec"
	"github.com/hupe1980/pqvec/testutil"
)

var benchShapes = []struct {
	dim, subvectors, centroids int
}{
	{128, 8, 256},
	{768, 96, 256},
	{1536, 192, 64},
}

func trainedQuantizer(b *testing.B, dim, m, k int) (*pqvec.Quantizer, [][]float32) {
	b.Helper()

	rng := testutil.NewRNG(1)
	data, _ := rng.ClusteredVectors(2048, dim, 32, 1, 0.05)

	q, err := pqvec.New(dim, m, pqvec.WithNumCentroids(k), pqvec.WithMaxIterations(10))
	if err != nil {
		b.Fatal(err)
	}
	if err := q.Train(context.Background(), data); err != nil {
		b.Fatal(err)
	}

	return q, data
}

func BenchmarkProductQuantizer_Train(b *testing.B) {
	rng := testutil.NewRNG(1)
	data, _ := rng.ClusteredVectors(2048, 128, 32, 1, 0.05)

	b.ReportAllocs()
	for b.Loop() {
		q, err := pqvec.New(128, 8, pqvec.WithNumCentroids(64), pqvec.WithMaxIterations(10))
		if err != nil {
			b.Fatal(err)
		}
		if err := q.Train(context.Background(), data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkProductQuantizer_Encode(b *testing.B) {
	for _, s := range benchShapes {
		b.Run(fmt.Sprintf("dim=%d/m=%d/k=%d", s.dim, s.subvectors, s.centroids), func(b *testing.B) {
			q, data := trainedQuantizer(b, s.dim, s.subvectors, s.centroids)

			b.ReportAllocs()
			b.ResetTimer()
			i := 0
			for b.Loop() {
				if _, err := q.Encode(data[i%len(data)]); err != nil {
					b.Fatal(err)
				}
				i++
			}
		})
	}
}

func BenchmarkProductQuantizer_Decode(b *testing.B) {
	for _, s := range benchShapes {
		b.Run(fmt.Sprintf("dim=%d/m=%d/k=%d", s.dim, s.subvectors, s.centroids), func(b *testing.B) {
			q, data := trainedQuantizer(b, s.dim, s.subvectors, s.centroids)

			codes, err := q.Encode(data[0])
			if err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				if _, err := q.Decode(codes); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkProductQuantizer_EncodeBatch(b *testing.B) {
	q, data := trainedQuantizer(b, 128, 8, 256)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := q.EncodeBatch(ctx, data); err != nil {
			b.Fatal(err)
		}
	}
}
