package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	ActiveGenerations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "melodygen_active_generations",
		Help: "Number of in-flight generation requests",
	})
	GenerationSemUsed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "melodygen_generation_sem_used",
		Help: "Number of generation semaphore slots currently in use",
	})
)

// Counters
var (
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "melodygen_generations_total",
		Help: "Total generation requests by outcome",
	}, []string{"outcome"})
	SymbolFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "melodygen_symbol_fallbacks_total",
		Help: "Sampled ids that did not resolve and were replaced by the default symbol",
	})
	NotesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "melodygen_notes_generated_total",
		Help: "Total symbols produced by the sequence generator",
	})
	AudioSecondsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "melodygen_audio_seconds_total",
		Help: "Seconds of PCM audio rendered",
	})
	SynthesisFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "melodygen_synthesis_failures_total",
		Help: "Requests whose audio rendering produced no samples",
	})
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "melodygen_cache_lookups_total",
		Help: "Seeded sequence cache lookups by result",
	}, []string{"result"})
)

// Histograms
var (
	StageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "melodygen_stage_duration_ms",
		Help:    "Generation request duration in milliseconds by stage",
		Buckets: []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	}, []string{"stage"})
)
