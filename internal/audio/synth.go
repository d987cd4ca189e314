package audio

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

const (
	DefaultSampleRate = 22050
	// DefaultMaxSymbols caps how many symbols are rendered to audio.
	DefaultMaxSymbols = 60
)

var (
	// ErrSynthesisFailed means no audio could be produced. Callers treat audio
	// as optional and keep the symbolic result.
	ErrSynthesisFailed = errors.New("synthesis produced no audio")
	ErrInvalidTempo    = errors.New("tempo must be positive")
)

// Synthesizer renders note symbols to mono PCM, one fixed-length segment per
// symbol. It is stateless and safe for concurrent use.
type Synthesizer struct {
	SampleRate int
	MaxSymbols int
	// Workers bounds how many segments render in parallel; <= 0 means GOMAXPROCS.
	Workers int
}

// NewSynthesizer returns a synthesizer with the default cap and worker count.
func NewSynthesizer(sampleRate int) *Synthesizer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Synthesizer{SampleRate: sampleRate, MaxSymbols: DefaultMaxSymbols}
}

// NoteDuration is the length in seconds of every rendered symbol: one beat.
func NoteDuration(tempoBPM int) float64 {
	return 60.0 / float64(tempoBPM)
}

// SegmentSamples is the number of samples each symbol occupies.
func (s *Synthesizer) SegmentSamples(tempoBPM int) int {
	return int(float64(s.SampleRate) * NoteDuration(tempoBPM))
}

// Synthesize renders the first MaxSymbols symbols at tempoBPM. Symbols missing
// from the frequency table, rests included, render as silence of the same
// length so timing is preserved.
func (s *Synthesizer) Synthesize(symbols []string, tempoBPM int) (*PCMBuffer, error) {
	if tempoBPM <= 0 {
		return nil, fmt.Errorf("%w: %w: %d", ErrSynthesisFailed, ErrInvalidTempo, tempoBPM)
	}
	if s.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrSynthesisFailed, s.SampleRate)
	}

	if s.MaxSymbols > 0 && len(symbols) > s.MaxSymbols {
		symbols = symbols[:s.MaxSymbols]
	}
	segLen := s.SegmentSamples(tempoBPM)
	if len(symbols) == 0 || segLen == 0 {
		return nil, ErrSynthesisFailed
	}

	out := make([]int16, len(symbols)*segLen)

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}

	// each segment owns out[i*segLen:(i+1)*segLen], so order is fixed by index
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s.renderSegment(out[i*segLen:(i+1)*segLen], symbols[i])
			}
		}()
	}
	for i := range symbols {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return &PCMBuffer{Samples: out, SampleRate: s.SampleRate}, nil
}

func (s *Synthesizer) renderSegment(dst []int16, symbol string) {
	hz, ok := Frequency(symbol)
	if !ok {
		// already zero
		return
	}

	seg := acquireSegment(len(dst))
	defer releaseSegment(seg)

	renderTone(seg.samples, hz, s.SampleRate)
	quantizeInto(dst, seg.samples)
}
