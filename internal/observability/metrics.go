package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Synthesis metrics
	synthesisRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_studio_synthesis_requests_total",
		Help: "Total number of per-segment synthesis requests",
	}, []string{"status"})

	synthesisLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tts_studio_synthesis_latency_seconds",
		Help:    "Synthesis provider latency in seconds",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	})

	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tts_studio_batches_total",
		Help: "Total number of generation batches started",
	})

	batchSegments = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tts_studio_batch_segments",
		Help:    "Number of segments per generation batch",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})

	// Quota metrics
	quotaDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_studio_quota_denials_total",
		Help: "Total number of quota denials",
	}, []string{"kind"}) // kind: "voice" or "generation"

	// Assembly metrics
	artifactsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_studio_artifacts_total",
		Help: "Total number of final artifacts produced",
	}, []string{"type"}) // type: "merged" or "archive"

	mergeFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tts_studio_merge_fallbacks_total",
		Help: "Total number of merges that fell back to archive packaging",
	})

	// Voice clone metrics
	cloneRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_studio_clone_requests_total",
		Help: "Total number of voice clone attempts",
	}, []string{"status"}) // status: "success", "denied", "failed"

	cloneCompensations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tts_studio_clone_compensations_total",
		Help: "Total number of compensating provider-side voice deletions",
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_studio_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})
)

// RecordSynthesis records the outcome and latency of one synthesis call
func RecordSynthesis(success bool, seconds float64) {
	status := "success"
	if !success {
		status = "error"
	}
	synthesisRequests.WithLabelValues(status).Inc()
	synthesisLatency.Observe(seconds)
}

// RecordBatchStart records the start of a generation batch
func RecordBatchStart(segments int) {
	batchesTotal.Inc()
	batchSegments.Observe(float64(segments))
}

// RecordQuotaDenial records a quota denial by kind ("voice" or "generation")
func RecordQuotaDenial(kind string) {
	quotaDenials.WithLabelValues(kind).Inc()
}

// RecordArtifact records a produced artifact by type ("merged" or "archive")
func RecordArtifact(artifactType string) {
	artifactsBuilt.WithLabelValues(artifactType).Inc()
}

// RecordMergeFallback records a merge that fell back to archive packaging
func RecordMergeFallback() {
	mergeFallbacks.Inc()
}

// RecordClone records the outcome of a voice clone attempt
func RecordClone(status string) {
	cloneRequests.WithLabelValues(status).Inc()
}

// RecordCloneCompensation records a compensating provider-side voice deletion
func RecordCloneCompensation() {
	cloneCompensations.Inc()
}

// RecordError records an error
func RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}
