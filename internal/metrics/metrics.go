package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ReportKindSession = "session"
	ReportKindAudit   = "audit"
)

var (
	responsesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_responses_submitted_total",
		Help: "Number of feedback responses accepted across all sessions.",
	})
	responsesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_responses_rejected_total",
		Help: "Number of feedback responses rejected, by reason (expired, inactive, incomplete).",
	}, []string{"reason"})
	auditsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_audits_submitted_total",
		Help: "Number of clarity audit results persisted.",
	})
	reportsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_reports_sent_total",
		Help: "Number of reports delivered by email, by kind (session, audit).",
	}, []string{"kind"})
	reportsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_reports_failed_total",
		Help: "Number of report deliveries that failed, by kind (session, audit).",
	}, []string{"kind"})
	expiredProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_expired_sessions_processed_total",
		Help: "Number of expired sessions whose report was sent and which were closed.",
	})
	processingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_expired_processing_duration_seconds",
		Help:    "Duration of one expired-session processing run.",
		Buckets: prometheus.DefBuckets,
	})
)

func ResponseSubmitted() { responsesSubmitted.Inc() }

func ResponseRejected(reason string) { responsesRejected.WithLabelValues(reason).Inc() }

func AuditSubmitted() { auditsSubmitted.Inc() }

func ReportSent(kind string) { reportsSent.WithLabelValues(kind).Inc() }

func ReportFailed(kind string) { reportsFailed.WithLabelValues(kind).Inc() }

func ExpiredSessionProcessed() { expiredProcessed.Inc() }

// ObserveProcessingRun records how long a processing run took since start
func ObserveProcessingRun(start time.Time) {
	processingDuration.Observe(time.Since(start).Seconds())
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
