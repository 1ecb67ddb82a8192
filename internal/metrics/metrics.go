package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "translator_sessions_active",
		Help: "Currently active streaming sessions",
	})

	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "translator_sessions_total",
		Help: "Total streaming sessions opened",
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "translator_stage_duration_seconds",
		Help:    "Per-stage latency",
		Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.8, 1.0, 2.0, 5.0},
	}, []string{"stage"})

	E2EDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "translator_e2e_duration_seconds",
		Help:    "Duration of a periodic ProcessIter step that produced a committed segment",
		Buckets: []float64{0.1, 0.2, 0.5, 0.8, 1.0, 1.5, 2.0, 3.0, 5.0},
	})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translator_errors_total",
		Help: "Error counts by stage and error kind",
	}, []string{"stage", "error_type"})

	AudioChunksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "translator_audio_chunks_total",
		Help: "Total audio chunks received over all sessions",
	})

	VACUtterancesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "translator_vac_utterances_total",
		Help: "Speech utterances bounded by VAC start/end events",
	})

	AudioBufferSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "translator_audio_buffer_seconds",
		Help: "Current re-transcription window length across active sessions",
	})

	HypothesisCommitLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "translator_commit_latency_seconds",
		Help:    "Duration of each periodic ProcessIter (re-transcription and commit) step",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 4.0, 8.0},
	})

	TranslationQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "translator_queue_depth",
		Help: "Pending translation tasks in a session's shared queue, labelled by source language",
	}, []string{"language"})

	TranslationDropsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translator_translation_drops_total",
		Help: "Translation tasks refused because the queue was full, labelled by source language",
	}, []string{"language"})
)
