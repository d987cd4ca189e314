package sampler

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func randomDistribution(rng *rand.Rand, n int) []float64 {
	d := make([]float64, n)
	for i := range d {
		// mix of exact zeros, tiny and ordinary mass
		switch rng.IntN(4) {
		case 0:
			d[i] = 0
		case 1:
			d[i] = rng.Float64() * 1e-9
		default:
			d[i] = rng.Float64()
		}
	}
	s := sum(d)
	if s == 0 {
		d[0] = 1
		return d
	}
	for i := range d {
		d[i] /= s
	}
	return d
}

func TestRescaleThenNormalizeIsAProbabilityVector(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	temps := []float64{1e-6, 0.1, 0.5, 0.9, 1.0, 1.3, 2.0, 10}

	for trial := 0; trial < 200; trial++ {
		d := randomDistribution(rng, 1+rng.IntN(64))
		for _, temp := range temps {
			r, err := Rescale(d, temp)
			require.NoError(t, err)
			n, err := Normalize(r)
			require.NoError(t, err)

			for i, p := range n {
				if p < 0 || p > 1 {
					t.Fatalf("trial %d temp %v: entry %d = %v outside [0,1]", trial, temp, i, p)
				}
			}
			assert.InDelta(t, 1.0, sum(n), 1e-6, "trial %d temp %v", trial, temp)
		}
	}
}

func TestRescaleTemperatureOneIsIdentity(t *testing.T) {
	d := []float64{0, 0.25, 0.7, 0.05}

	r, err := Rescale(d, 1.0)
	require.NoError(t, err)
	assert.Equal(t, d, r)

	viaRescale, err := Normalize(r)
	require.NoError(t, err)
	direct, err := Normalize(d)
	require.NoError(t, err)
	assert.Equal(t, direct, viaRescale)
}

func TestRescaleDoesNotMutateInput(t *testing.T) {
	d := []float64{0.1, 0.9}
	_, err := Rescale(d, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.9}, d)
}

func TestRescaleSharpensAndFlattens(t *testing.T) {
	d := []float64{0.2, 0.8}

	sharp, err := Rescale(d, 0.5)
	require.NoError(t, err)
	assert.Greater(t, sharp[1], 0.8)

	flat, err := Rescale(d, 2.0)
	require.NoError(t, err)
	assert.Less(t, flat[1], 0.8)
	assert.Greater(t, flat[1], 0.5)
}

func TestRescaleTinyTemperatureIsOneHot(t *testing.T) {
	d := []float64{0.2, 0.5, 0.3}

	r, err := Rescale(d, 1e-12)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r[1], 1e-12)
	assert.InDelta(t, 1.0, sum(r), 1e-12)
	for _, p := range r {
		assert.False(t, math.IsNaN(p))
	}
}

func TestRescaleRejectsBadTemperature(t *testing.T) {
	for _, temp := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Rescale([]float64{1}, temp)
		assert.ErrorIs(t, err, ErrInvalidTemperature, "temp %v", temp)
	}
}

func TestNormalizeFloorsZeros(t *testing.T) {
	n, err := Normalize([]float64{0, 1})
	require.NoError(t, err)
	assert.Greater(t, n[0], 0.0)
	assert.InDelta(t, MinProb, n[0], 1e-12)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize(nil)
	assert.ErrorIs(t, err, ErrEmptyDistribution)

	_, err = Normalize([]float64{0.5, math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidDistribution)

	_, err = Rescale([]float64{math.NaN()}, 0.5)
	assert.ErrorIs(t, err, ErrInvalidDistribution)
}

func TestChooseFollowsSingleDraw(t *testing.T) {
	d := []float64{0.25, 0.25, 0.5}

	a := rand.New(rand.NewPCG(42, 0))
	b := rand.New(rand.NewPCG(42, 0))
	for i := 0; i < 100; i++ {
		r := b.Float64()
		want := 2
		if r < 0.25 {
			want = 0
		} else if r < 0.5 {
			want = 1
		}
		assert.Equal(t, want, Choose(a, d))
	}
}

func TestChooseNeverPicksZeroWeight(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	d := []float64{0, 1, 0}
	for i := 0; i < 1000; i++ {
		assert.Equal(t, 1, Choose(rng, d))
	}
}
