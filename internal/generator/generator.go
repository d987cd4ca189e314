package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/melodygen/internal/inference"
	"github.com/RenatoCabral2022/melodygen/internal/metrics"
	"github.com/RenatoCabral2022/melodygen/internal/ringbuffer"
	"github.com/RenatoCabral2022/melodygen/internal/sampler"
	"github.com/RenatoCabral2022/melodygen/internal/vocab"
)

var (
	// ErrModelUnavailable means no predictor is loaded; generation never starts.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrGenerationFailed wraps every fault that aborts the sampling loop.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmptyResult is returned by callers when a generation produced no symbols.
	ErrEmptyResult = errors.New("generation produced no notes")
)

// GenerationError describes the step at which the sampling loop aborted.
type GenerationError struct {
	Step int
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at step %d: %v", e.Step, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Err}
}

// Step records one iteration of the sampling loop.
type Step struct {
	Window   []int // context window fed to the predictor
	Sampled  int   // id drawn from the distribution
	Appended int   // id pushed into the window (0 on fallback)
	Symbol   string
	Fallback bool
}

// Generator drives a predictor autoregressively over a fixed vocabulary.
// It holds no per-request state and may be shared between goroutines as long
// as the predictor supports concurrent calls.
type Generator struct {
	predictor inference.Predictor
	vocab     *vocab.Vocabulary
	logger    *zap.Logger
}

// New creates a Generator. A nil predictor is accepted; Generate then fails
// with ErrModelUnavailable.
func New(p inference.Predictor, v *vocab.Vocabulary, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{predictor: p, vocab: v, logger: logger}
}

// Generate samples numNotes symbols. temperature must be positive; 1.0 leaves
// the predictor's distribution untouched. A non-nil seed makes the output
// reproducible for the same predictor and vocabulary. No partial sequence is
// ever returned.
func (g *Generator) Generate(ctx context.Context, numNotes int, temperature float64, seed *int64) ([]string, error) {
	symbols, _, err := g.run(ctx, numNotes, temperature, seed, false)
	return symbols, err
}

// GenerateTrace is Generate that also returns every loop step.
func (g *Generator) GenerateTrace(ctx context.Context, numNotes int, temperature float64, seed *int64) ([]string, []Step, error) {
	return g.run(ctx, numNotes, temperature, seed, true)
}

func (g *Generator) run(ctx context.Context, numNotes int, temperature float64, seed *int64, trace bool) ([]string, []Step, error) {
	if g.predictor == nil || g.vocab == nil {
		return nil, nil, ErrModelUnavailable
	}
	if !(temperature > 0) {
		return nil, nil, fmt.Errorf("%w: %v", sampler.ErrInvalidTemperature, temperature)
	}

	rng := NewRand(seed)

	initial := make([]int, g.vocab.SequenceLength())
	for i := range initial {
		initial[i] = rng.IntN(g.vocab.Size())
	}
	window := ringbuffer.NewWindow(initial)
	input := make([]int, window.Len())

	symbols := make([]string, 0, max(numNotes, 0))
	var steps []Step
	if trace {
		steps = make([]Step, 0, max(numNotes, 0))
	}
	fallbacks := 0

	for step := 0; step < numNotes; step++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, &GenerationError{Step: step, Err: err}
		}

		input = window.SnapshotInto(input)
		dist, err := g.predictor.Predict(ctx, input)
		if err != nil {
			if errors.Is(err, inference.ErrUnavailable) {
				return nil, nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
			}
			return nil, nil, &GenerationError{Step: step, Err: err}
		}

		if temperature != 1.0 {
			dist, err = sampler.Rescale(dist, temperature)
			if err != nil {
				return nil, nil, &GenerationError{Step: step, Err: err}
			}
		}
		dist, err = sampler.Normalize(dist)
		if err != nil {
			return nil, nil, &GenerationError{Step: step, Err: err}
		}

		sampled := sampler.Choose(rng, dist)
		symbol, appended, ok := g.vocab.Lookup(sampled)
		if !ok {
			fallbacks++
			metrics.SymbolFallbacksTotal.Inc()
			g.logger.Debug("sampled id not in vocabulary, using default symbol",
				zap.Int("step", step),
				zap.Int("id", sampled),
				zap.String("symbol", symbol),
			)
		}

		if trace {
			steps = append(steps, Step{
				Window:   append([]int(nil), input...),
				Sampled:  sampled,
				Appended: appended,
				Symbol:   symbol,
				Fallback: !ok,
			})
		}

		symbols = append(symbols, symbol)
		window.Push(appended)
	}

	metrics.NotesGeneratedTotal.Add(float64(len(symbols)))
	if fallbacks > 0 {
		g.logger.Info("generation used default symbol",
			zap.Int("fallbacks", fallbacks),
			zap.Int("notes", len(symbols)),
		)
	}
	return symbols, steps, nil
}

// NewRand returns the random source used for window initialisation and
// sampling. A nil seed draws one from the clock.
func NewRand(seed *int64) *rand.Rand {
	var s uint64
	if seed != nil {
		s = uint64(*seed)
	} else {
		s = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}
