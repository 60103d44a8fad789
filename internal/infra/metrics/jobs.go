package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		documentsSubmittedTotal,
		documentJobsTotal,
		jobRedeliveriesTotal,
	)
}

var documentsSubmittedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "documents_submitted_total",
		Help: "Total number of documents accepted by the dispatcher, labeled by parser.",
	},
	[]string{"parser"},
)

var documentJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "document_jobs_total",
		Help: "Total number of document jobs reaching a terminal state, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var jobRedeliveriesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "job_redeliveries_total",
		Help: "Total number of stale queue entries reclaimed for redelivery.",
	},
)

func IncSubmitted(parser string) {
	documentsSubmittedTotal.WithLabelValues(norm(parser)).Inc()
}

func IncJob(status string) {
	documentJobsTotal.WithLabelValues(norm(status)).Inc()
}

func AddRedeliveries(n int) {
	jobRedeliveriesTotal.Add(float64(n))
}
