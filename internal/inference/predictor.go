package inference

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the predictor cannot serve requests at all,
// as opposed to failing a single call.
var ErrUnavailable = errors.New("predictor unavailable")

// Predictor returns a probability distribution over the vocabulary for a
// context window of token ids. Implementations must not retain or modify
// window and must be safe for concurrent use.
type Predictor interface {
	Predict(ctx context.Context, window []int) ([]float64, error)
}
