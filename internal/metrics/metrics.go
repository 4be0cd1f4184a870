// Package metrics exposes Prometheus metrics for download jobs and the HTTP surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeCompleted      = "completed"
	OutcomeError          = "error"
	RejectInvalidInput    = "invalid_input"
	RejectMetadataFailure = "metadata"
)

var (
	// JobsStartedTotal counts accepted jobs.
	JobsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediafetch_jobs_started_total",
		Help: "Total number of accepted download jobs.",
	})

	// JobsRejectedTotal counts start requests that did not create a job, by reason.
	JobsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediafetch_jobs_rejected_total",
		Help: "Total number of rejected download requests, by reason.",
	}, []string{"reason"})

	// JobsFinishedTotal counts jobs that reached a terminal state, by outcome.
	JobsFinishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediafetch_jobs_finished_total",
		Help: "Total number of finished download jobs, by outcome (completed/error).",
	}, []string{"outcome"})

	// JobsActive tracks transfers currently running.
	JobsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mediafetch_jobs_active",
		Help: "Current number of running transfers.",
	})

	// DownloadedBytesTotal counts bytes of completed files.
	DownloadedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediafetch_downloaded_bytes_total",
		Help: "Total size in bytes of completed downloads.",
	})

	// HTTPRequestsTotal counts served requests by route pattern and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediafetch_http_requests_total",
		Help: "Total number of HTTP requests, by route and status.",
	}, []string{"route", "status"})
)

func RecordStarted() {
	JobsStartedTotal.Inc()
	JobsActive.Inc()
}

func RecordRejected(reason string) {
	JobsRejectedTotal.WithLabelValues(reason).Inc()
}

func RecordCompleted(size int64) {
	JobsActive.Dec()
	JobsFinishedTotal.WithLabelValues(OutcomeCompleted).Inc()
	if size > 0 {
		DownloadedBytesTotal.Add(float64(size))
	}
}

func RecordFailed() {
	JobsActive.Dec()
	JobsFinishedTotal.WithLabelValues(OutcomeError).Inc()
}
