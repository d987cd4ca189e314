package inference

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// UniformPredictor returns the uniform distribution over Size ids.
type UniformPredictor struct {
	Size  int
	Delay time.Duration
}

func (u *UniformPredictor) Predict(ctx context.Context, window []int) ([]float64, error) {
	if u.Delay > 0 {
		select {
		case <-time.After(u.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if u.Size <= 0 {
		return nil, fmt.Errorf("uniform predictor: size %d", u.Size)
	}
	out := make([]float64, u.Size)
	for i := range out {
		out[i] = 1 / float64(u.Size)
	}
	return out, nil
}

// FixedPredictor returns the same distribution for every window.
type FixedPredictor struct {
	Distribution []float64
}

func (f *FixedPredictor) Predict(ctx context.Context, window []int) ([]float64, error) {
	out := make([]float64, len(f.Distribution))
	copy(out, f.Distribution)
	return out, nil
}

// FuncPredictor adapts a function to the Predictor interface.
type FuncPredictor func(ctx context.Context, window []int) ([]float64, error)

func (f FuncPredictor) Predict(ctx context.Context, window []int) ([]float64, error) {
	return f(ctx, window)
}

// FailingPredictor fails every call after the first After successful ones,
// which are answered uniformly over Size ids.
type FailingPredictor struct {
	Size  int
	After int
	Err   error

	calls atomic.Int64
}

func (f *FailingPredictor) Predict(ctx context.Context, window []int) ([]float64, error) {
	n := f.calls.Add(1)
	if n > int64(f.After) {
		if f.Err != nil {
			return nil, f.Err
		}
		return nil, fmt.Errorf("failing predictor: call %d", n)
	}
	return (&UniformPredictor{Size: f.Size}).Predict(ctx, window)
}
