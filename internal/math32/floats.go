// Package math32 provides float32 vector kernels shared by clustering and encoding.
// This is an internal package.
package math32

// SquaredL2 calculates the squared L2 distance.
// Assumes len(b) >= len(a) (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	b = b[:len(a)]

	var s0, s1, s2, s3 float32

	n := len(a) &^ 3
	for i := 0; i < n; i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
	}

	for i := n; i < len(a); i++ {
		d := a[i] - b[i]
		s0 += d * d
	}

	return (s0 + s1) + (s2 + s3)
}

// AccumulateInPlace adds src to dst element-wise, widening to float64.
// Used to build centroid sums without float32 drift on large clusters.
func AccumulateInPlace(dst []float64, src []float32) {
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] += float64(v)
	}
}

// MeanInto writes sum/count into dst.
func MeanInto(dst []float32, sum []float64, count int) {
	c := float64(count)
	for i := range dst {
		dst[i] = float32(sum[i] / c)
	}
}
