package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		extractionLatencyMs,
		summarizeLatencyMs,
	)
}

var extractionLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "extraction_latency_ms",
		Help:    "Extraction latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
	},
	[]string{"parser", "success"},
)

var summarizeLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "summarize_latency_ms",
		Help:    "Summarization latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
	},
	[]string{"provider", "success"},
)

func ObserveExtraction(parser string, latencyMs int, success bool) {
	extractionLatencyMs.WithLabelValues(norm(parser), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func ObserveSummarize(provider string, latencyMs int, success bool) {
	summarizeLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
