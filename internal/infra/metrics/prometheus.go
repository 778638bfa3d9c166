package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "v2f_conversions_total",
		Help: "Total number of conversions, by outcome",
	}, []string{"outcome"})

	ConversionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "v2f_conversion_duration_seconds",
		Help:    "Duration of conversion stages",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "v2f_frames_extracted_total",
		Help: "Total number of frames written across all conversions",
	})

	ActiveConversions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "v2f_active_conversions",
		Help: "Number of conversions currently running",
	})

	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "v2f_requests_total",
		Help: "Queued conversion requests handled, by result",
	}, []string{"result"})
)
