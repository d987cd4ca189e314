// Package sampler reshapes predictor distributions and draws token ids from them.
package sampler

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	// MinProb is the floor applied before taking logs and when renormalising.
	MinProb = 1e-7
	// MaxProb is the ceiling applied alongside MinProb.
	MaxProb = 1.0
)

var (
	ErrEmptyDistribution   = errors.New("empty distribution")
	ErrInvalidDistribution = errors.New("invalid distribution")
	ErrInvalidTemperature  = errors.New("temperature must be positive and finite")
)

func clip(p float64) float64 {
	if p < MinProb {
		return MinProb
	}
	if p > MaxProb {
		return MaxProb
	}
	return p
}

// Rescale applies temperature to dist and returns a new normalised vector.
// A temperature of exactly 1 returns an unmodified copy. Otherwise each entry
// is clipped to [MinProb, MaxProb], mapped through log(p)/temperature,
// exponentiated and renormalised. The logits are shifted by their maximum
// before exponentiating, so very small temperatures collapse to a one-hot
// vector instead of underflowing to zero.
func Rescale(dist []float64, temperature float64) ([]float64, error) {
	if len(dist) == 0 {
		return nil, ErrEmptyDistribution
	}
	if !(temperature > 0) || math.IsInf(temperature, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemperature, temperature)
	}

	out := make([]float64, len(dist))
	if temperature == 1.0 {
		copy(out, dist)
		return out, nil
	}

	maxLogit := math.Inf(-1)
	for i, p := range dist {
		if math.IsNaN(p) {
			return nil, fmt.Errorf("%w: NaN at index %d", ErrInvalidDistribution, i)
		}
		out[i] = math.Log(clip(p)) / temperature
		if out[i] > maxLogit {
			maxLogit = out[i]
		}
	}

	var sum float64
	for i, l := range out {
		out[i] = math.Exp(l - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out, nil
}

// Normalize clips every entry to [MinProb, MaxProb] and divides by the sum,
// absorbing floating drift from the predictor. It fails on vectors whose sum
// is not a positive finite number.
func Normalize(dist []float64) ([]float64, error) {
	if len(dist) == 0 {
		return nil, ErrEmptyDistribution
	}

	out := make([]float64, len(dist))
	var sum float64
	for i, p := range dist {
		if math.IsNaN(p) {
			return nil, fmt.Errorf("%w: NaN at index %d", ErrInvalidDistribution, i)
		}
		out[i] = clip(p)
		sum += out[i]
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("%w: sum %v", ErrInvalidDistribution, sum)
	}
	for i := range out {
		out[i] /= sum
	}
	return out, nil
}

// Choose draws one index from dist, which must be normalised. It consumes
// exactly one Float64 from rng.
func Choose(rng *rand.Rand, dist []float64) int {
	r := rng.Float64()
	var cum float64
	for i, p := range dist {
		cum += p
		if r < cum {
			return i
		}
	}
	// r landed in the rounding gap above the final cumulative sum
	for i := len(dist) - 1; i >= 0; i-- {
		if dist[i] > 0 {
			return i
		}
	}
	return len(dist) - 1
}
