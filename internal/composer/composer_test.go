package composer

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RenatoCabral2022/melodygen/internal/audio"
	"github.com/RenatoCabral2022/melodygen/internal/cache"
	"github.com/RenatoCabral2022/melodygen/internal/generator"
	"github.com/RenatoCabral2022/melodygen/internal/inference"
	"github.com/RenatoCabral2022/melodygen/internal/storage"
	"github.com/RenatoCabral2022/melodygen/internal/testutil"
	"github.com/RenatoCabral2022/melodygen/internal/vocab"
)

var symbols = []string{"C4", "D4", "E4", "F4", "G4", "A4", "B4", "REST"}

type fixture struct {
	composer *Composer
	store    *storage.LocalStore
	vocab    *vocab.Vocabulary
}

func newFixture(t *testing.T, p inference.Predictor, store storage.Store, opts ...Option) *fixture {
	t.Helper()
	v, err := vocab.New(symbols, 5)
	require.NoError(t, err)

	local, err := storage.NewLocalStore(t.TempDir(), "/static")
	require.NoError(t, err)
	if store == nil {
		store = local
	}

	gen := generator.New(p, v, nil)
	synth := audio.NewSynthesizer(8000)
	return &fixture{
		composer: New(gen, v, synth, store, opts...),
		store:    local,
		vocab:    v,
	}
}

func seed(v int64) *int64 { return &v }

func TestParamsClamp(t *testing.T) {
	p := Request{NumNotes: 5, Temperature: 9, Tempo: 1000}.Params()
	assert.Equal(t, MinNotes, p.NumNotes)
	assert.Equal(t, MaxTemperature, p.Temperature)
	assert.Equal(t, MaxTempo, p.Tempo)

	p = Request{NumNotes: 500, Temperature: 0, Tempo: -4}.Params()
	assert.Equal(t, MaxNotes, p.NumNotes)
	assert.Equal(t, MinTemperature, p.Temperature)
	assert.Equal(t, MinTempo, p.Tempo)

	p = Request{NumNotes: 64, Temperature: 0.7, Tempo: 96}.Params()
	assert.Equal(t, Request{NumNotes: 64, Temperature: 0.7, Tempo: 96}, p)
}

func TestComposeWritesArtifacts(t *testing.T) {
	f := newFixture(t, &inference.UniformPredictor{Size: len(symbols)}, nil)

	res, err := f.composer.Compose(context.Background(), Request{NumNotes: 30, Temperature: 1.0, Tempo: 120, Seed: seed(7)})
	require.NoError(t, err)

	assert.Len(t, res.ID, 8)
	assert.Len(t, res.Symbols, 30)
	assert.Len(t, res.Preview(), 10)
	assert.Equal(t, res.Symbols[:10], res.Preview())
	assert.Equal(t, "generated_music_"+res.ID+".mid", res.MidiName)
	assert.Equal(t, "/static/"+res.MidiName, res.MidiURL)
	assert.Equal(t, "/static/generated_music_"+res.ID+".wav", res.AudioURL)
	assert.Greater(t, res.AudioLength.Seconds(), 0.0)

	for _, name := range []string{res.MidiName, res.AudioName} {
		rc, err := f.store.Open(context.Background(), name)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}
}

func TestComposeClampsBeforeGenerating(t *testing.T) {
	f := newFixture(t, &inference.UniformPredictor{Size: len(symbols)}, nil)

	res, err := f.composer.Compose(context.Background(), Request{NumNotes: 3, Temperature: 1.0, Tempo: 10})
	require.NoError(t, err)
	assert.Len(t, res.Symbols, MinNotes)
	assert.Equal(t, MinTempo, res.Params.Tempo)
}

func TestComposeSeededIsReproducible(t *testing.T) {
	f := newFixture(t, &inference.UniformPredictor{Size: len(symbols)}, nil)
	req := Request{NumNotes: 40, Temperature: 0.8, Tempo: 100, Seed: seed(42)}

	a, err := f.composer.Compose(context.Background(), req)
	require.NoError(t, err)
	b, err := f.composer.Compose(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.Symbols, b.Symbols)
	assert.NotEqual(t, a.ID, b.ID)
}

type countingPredictor struct {
	inner inference.Predictor
	calls atomic.Int64
}

func (c *countingPredictor) Predict(ctx context.Context, window []int) ([]float64, error) {
	c.calls.Add(1)
	return c.inner.Predict(ctx, window)
}

func TestComposeUsesCacheForSeededRequests(t *testing.T) {
	p := &countingPredictor{inner: &inference.UniformPredictor{Size: len(symbols)}}
	f := newFixture(t, p, nil, WithCache(cache.NewMemoryCache()))
	req := Request{NumNotes: 25, Temperature: 1.0, Tempo: 120, Seed: seed(3)}

	first, err := f.composer.Compose(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	calls := p.calls.Load()
	assert.Equal(t, int64(25), calls)

	second, err := f.composer.Compose(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Symbols, second.Symbols)
	assert.Equal(t, calls, p.calls.Load())

	// unseeded requests never hit the cache
	unseeded := req
	unseeded.Seed = nil
	third, err := f.composer.Compose(context.Background(), unseeded)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
	assert.Equal(t, calls+25, p.calls.Load())
}

func TestComposeModelUnavailable(t *testing.T) {
	f := newFixture(t, nil, nil)
	_, err := f.composer.Compose(context.Background(), Request{NumNotes: 20, Temperature: 1, Tempo: 120})
	assert.ErrorIs(t, err, generator.ErrModelUnavailable)
}

func TestComposeGenerationFault(t *testing.T) {
	boom := errors.New("boom")
	f := newFixture(t, &inference.FailingPredictor{Size: len(symbols), After: 3, Err: boom}, nil)

	res, err := f.composer.Compose(context.Background(), Request{NumNotes: 20, Temperature: 1, Tempo: 120})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, generator.ErrGenerationFailed)
}

// failingStore rejects names with the given suffix.
type failingStore struct {
	storage.Store
	suffix string
}

func (s *failingStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if strings.HasSuffix(name, s.suffix) {
		return "", errors.New("disk full")
	}
	return s.Store.Put(ctx, name, contentType, data)
}

func TestComposeAudioFailureIsSoft(t *testing.T) {
	local, err := storage.NewLocalStore(t.TempDir(), "/static")
	require.NoError(t, err)
	f := newFixture(t, &inference.UniformPredictor{Size: len(symbols)}, &failingStore{Store: local, suffix: ".wav"})

	res, err := f.composer.Compose(context.Background(), Request{NumNotes: 20, Temperature: 1, Tempo: 120})
	require.NoError(t, err)
	assert.NotEmpty(t, res.MidiURL)
	assert.Empty(t, res.AudioURL)
	assert.Empty(t, res.AudioName)
}

func TestComposeMidiFailureIsFatal(t *testing.T) {
	local, err := storage.NewLocalStore(t.TempDir(), "/static")
	require.NoError(t, err)
	f := newFixture(t, &inference.UniformPredictor{Size: len(symbols)}, &failingStore{Store: local, suffix: ".mid"})

	res, err := f.composer.Compose(context.Background(), Request{NumNotes: 20, Temperature: 1, Tempo: 120})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrExportFailed)
}

func TestComposeFailsFastWhenBusy(t *testing.T) {
	testutil.CheckGoroutines(t, 2)

	started := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once
	uniform := &inference.UniformPredictor{Size: len(symbols)}
	p := inference.FuncPredictor(func(ctx context.Context, window []int) ([]float64, error) {
		once.Do(func() { close(started) })
		<-unblock
		return uniform.Predict(ctx, window)
	})
	f := newFixture(t, p, nil, WithMaxConcurrent(1))

	done := make(chan error, 1)
	go func() {
		_, err := f.composer.Compose(context.Background(), Request{NumNotes: 20, Temperature: 1, Tempo: 120})
		done <- err
	}()
	<-started

	_, err := f.composer.Compose(context.Background(), Request{NumNotes: 20, Temperature: 1, Tempo: 120})
	assert.ErrorIs(t, err, ErrBusy)

	close(unblock)
	require.NoError(t, <-done)

	// slot released
	_, err = f.composer.Compose(context.Background(), Request{NumNotes: 20, Temperature: 1, Tempo: 120})
	assert.NoError(t, err)
}

func TestComposeConcurrentRequests(t *testing.T) {
	testutil.CheckGoroutines(t, 2)

	f := newFixture(t, &inference.UniformPredictor{Size: len(symbols)}, nil, WithMaxConcurrent(8))

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.composer.Compose(context.Background(), Request{NumNotes: 20, Temperature: 1, Tempo: 150, Seed: seed(99)})
		}(i)
	}
	wg.Wait()

	ids := map[string]bool{}
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Symbols, results[i].Symbols)
		ids[results[i].ID] = true
	}
	assert.Len(t, ids, 8)
}
