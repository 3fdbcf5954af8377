package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(0.0))
}

func TestClusteredVectors(t *testing.T) {
	rng := NewRNG(4711)

	v, centers := rng.ClusteredVectors(100, 32, 5, 10, 0.1)

	require.Equal(t, 100, len(v))
	assert.Equal(t, 32, len(v[0]))
	require.Len(t, centers, 5)

	for i, vec := range v {
		assert.Less(t, MSE(vec, centers[i%5]), 0.1)
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformVectors(1, 10)

	rng.Reset()
	v2 := rng.UniformVectors(1, 10)

	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestRepeat(t *testing.T) {
	a := []float32{1, 2}
	b := []float32{3, 4}

	out := Repeat(2, a, b)
	assert.Equal(t, [][]float32{{1, 2}, {1, 2}, {3, 4}, {3, 4}}, out)

	out[0][0] = 9
	assert.Equal(t, float32(1), a[0])
}

func TestMSE(t *testing.T) {
	assert.Equal(t, 0.0, MSE(nil, nil))
	assert.Equal(t, 0.0, MSE([]float32{1, 2}, []float32{1, 2}))
	assert.InDelta(t, 2.5, MSE([]float32{0, 0}, []float32{1, 2}), 1e-9)
	assert.InDelta(t, 1.0, MSE([]float32{0, 0}, []float32{1}), 1e-9)
}
