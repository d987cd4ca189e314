package composer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RenatoCabral2022/melodygen/internal/audio"
	"github.com/RenatoCabral2022/melodygen/internal/cache"
	"github.com/RenatoCabral2022/melodygen/internal/generator"
	"github.com/RenatoCabral2022/melodygen/internal/metrics"
	"github.com/RenatoCabral2022/melodygen/internal/midiexport"
	"github.com/RenatoCabral2022/melodygen/internal/storage"
	"github.com/RenatoCabral2022/melodygen/internal/vocab"
)

const (
	MinNotes       = 20
	MaxNotes       = 200
	MinTemperature = 0.1
	MaxTemperature = 2.0
	MinTempo       = 60
	MaxTempo       = 200

	previewLength = 10
	filePrefix    = "generated_music_"
)

var (
	// ErrBusy means every generation slot is taken.
	ErrBusy = errors.New("too many concurrent generations")
	// ErrExportFailed means the MIDI file could not be produced or stored.
	ErrExportFailed = errors.New("failed to create MIDI file")
)

// Request holds raw parameters; Compose clamps them.
type Request struct {
	NumNotes    int
	Temperature float64
	Tempo       int
	Seed        *int64
}

// Params returns the request with every parameter clamped to its range.
func (r Request) Params() Request {
	r.NumNotes = clamp(r.NumNotes, MinNotes, MaxNotes)
	r.Temperature = clamp(r.Temperature, MinTemperature, MaxTemperature)
	r.Tempo = clamp(r.Tempo, MinTempo, MaxTempo)
	return r
}

type Result struct {
	ID          string
	MidiName    string
	MidiURL     string
	AudioName   string // empty when synthesis failed
	AudioURL    string
	Symbols     []string
	Params      Request
	CacheHit    bool
	AudioLength time.Duration
}

// Preview returns the first ten symbols.
func (r *Result) Preview() []string {
	if len(r.Symbols) <= previewLength {
		return r.Symbols
	}
	return r.Symbols[:previewLength]
}

// Composer runs one full request: generate, export, synthesize, store.
type Composer struct {
	gen    *generator.Generator
	vocab  *vocab.Vocabulary
	synth  *audio.Synthesizer
	store  storage.Store
	cache  cache.Cache
	logger *zap.Logger
	sem    chan struct{}
}

type Option func(*Composer)

func WithCache(c cache.Cache) Option {
	return func(cp *Composer) {
		if c != nil {
			cp.cache = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(cp *Composer) {
		if l != nil {
			cp.logger = l
		}
	}
}

// WithMaxConcurrent bounds in-flight generations; extra requests fail fast
// with ErrBusy.
func WithMaxConcurrent(n int) Option {
	return func(cp *Composer) {
		if n > 0 {
			cp.sem = make(chan struct{}, n)
		}
	}
}

func New(gen *generator.Generator, v *vocab.Vocabulary, synth *audio.Synthesizer, store storage.Store, opts ...Option) *Composer {
	c := &Composer{
		gen:    gen,
		vocab:  v,
		synth:  synth,
		store:  store,
		cache:  cache.NopCache{},
		logger: zap.NewNop(),
		sem:    make(chan struct{}, 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Composer) acquire() bool {
	select {
	case c.sem <- struct{}{}:
		metrics.GenerationSemUsed.Inc()
		return true
	default:
		return false
	}
}

func (c *Composer) release() {
	<-c.sem
	metrics.GenerationSemUsed.Dec()
}

// Compose handles one generation request end to end.
func (c *Composer) Compose(ctx context.Context, req Request) (*Result, error) {
	if !c.acquire() {
		metrics.GenerationsTotal.WithLabelValues("busy").Inc()
		return nil, ErrBusy
	}
	defer c.release()

	metrics.ActiveGenerations.Inc()
	defer metrics.ActiveGenerations.Dec()

	res, err := c.compose(ctx, req.Params())
	metrics.GenerationsTotal.WithLabelValues(outcome(res, err)).Inc()
	return res, err
}

func (c *Composer) compose(ctx context.Context, p Request) (*Result, error) {
	start := time.Now()
	id := uuid.New().String()[:8]
	log := c.logger.With(zap.String("generation", id))

	symbols, hit, err := c.sequence(ctx, p)
	if err != nil {
		log.Error("generation failed", zap.Error(err))
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, generator.ErrEmptyResult
	}

	res := &Result{ID: id, Symbols: symbols, Params: p, CacheHit: hit}

	midiStart := time.Now()
	midi, err := midiexport.Export(symbols, p.Tempo)
	if err != nil {
		log.Error("midi export failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	res.MidiName = filePrefix + id + ".mid"
	res.MidiURL, err = c.store.Put(ctx, res.MidiName, storage.ContentType(res.MidiName), midi)
	if err != nil {
		log.Error("failed to store midi", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	metrics.StageLatency.WithLabelValues("midi").Observe(msSince(midiStart))

	c.renderAudio(ctx, log, res)

	log.Info("generation complete",
		zap.Int("notes", len(symbols)),
		zap.Float64("temperature", p.Temperature),
		zap.Int("tempo", p.Tempo),
		zap.Bool("cache_hit", hit),
		zap.Bool("audio", res.AudioURL != ""),
		zap.Duration("elapsed", time.Since(start)),
	)
	metrics.StageLatency.WithLabelValues("total").Observe(msSince(start))
	return res, nil
}

// sequence returns generated symbols, consulting the cache for seeded requests.
func (c *Composer) sequence(ctx context.Context, p Request) ([]string, bool, error) {
	var key string
	if p.Seed != nil {
		key = cache.Key(cache.Params{
			Fingerprint: c.vocab.Fingerprint(),
			NumNotes:    p.NumNotes,
			Temperature: p.Temperature,
			Seed:        *p.Seed,
		})
		symbols, err := c.cache.Get(ctx, key)
		switch {
		case err == nil && len(symbols) > 0:
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			return symbols, true, nil
		case err != nil && !errors.Is(err, cache.ErrMiss):
			metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
			c.logger.Warn("cache lookup failed", zap.Error(err))
		default:
			metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		}
	}

	genStart := time.Now()
	symbols, err := c.gen.Generate(ctx, p.NumNotes, p.Temperature, p.Seed)
	if err != nil {
		return nil, false, err
	}
	metrics.StageLatency.WithLabelValues("generate").Observe(msSince(genStart))

	if key != "" && len(symbols) > 0 {
		if err := c.cache.Set(ctx, key, symbols); err != nil {
			c.logger.Warn("cache store failed", zap.Error(err))
		}
	}
	return symbols, false, nil
}

// renderAudio is best effort: on failure the result simply has no audio.
func (c *Composer) renderAudio(ctx context.Context, log *zap.Logger, res *Result) {
	synthStart := time.Now()
	pcm, err := c.synth.Synthesize(res.Symbols, res.Params.Tempo)
	if err == nil {
		var wav []byte
		wav, err = audio.WAVBytes(pcm)
		if err == nil {
			name := filePrefix + res.ID + ".wav"
			var url string
			url, err = c.store.Put(ctx, name, storage.ContentType(name), wav)
			if err == nil {
				res.AudioName = name
				res.AudioURL = url
				res.AudioLength = pcm.Duration()
				metrics.AudioSecondsTotal.Add(pcm.Duration().Seconds())
			}
		}
	}
	if err != nil {
		metrics.SynthesisFailuresTotal.Inc()
		log.Warn("audio unavailable", zap.Error(err))
		return
	}
	metrics.StageLatency.WithLabelValues("synthesize").Observe(msSince(synthStart))
}

func outcome(res *Result, err error) string {
	switch {
	case err == nil && res.AudioURL == "":
		return "no_audio"
	case err == nil:
		return "ok"
	case errors.Is(err, generator.ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, generator.ErrEmptyResult):
		return "empty"
	case errors.Is(err, ErrExportFailed):
		return "export_failed"
	default:
		return "failed"
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

func clamp[T int | float64](v, lo, hi T) T {
	return max(lo, min(hi, v))
}
