package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		queueDepth,
		queuePending,
		enqueueFailuresTotal,
	)
}

var queueDepth = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "work_queue_depth",
		Help: "Number of entries currently in the work queue stream.",
	},
)

var queuePending = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "work_queue_pending",
		Help: "Number of claimed-but-unacknowledged entries in the consumer group.",
	},
)

var enqueueFailuresTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "enqueue_failures_total",
		Help: "Count of queue writes that failed after the record write, leaving records queued.",
	},
)

func SetQueueDepth(n int64)   { queueDepth.Set(float64(n)) }
func SetQueuePending(n int64) { queuePending.Set(float64(n)) }
func IncEnqueueFailure()      { enqueueFailuresTotal.Inc() }
