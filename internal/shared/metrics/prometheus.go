package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	processesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "legal_processes_created_total",
			Help: "Total number of legal processes created",
		},
	)

	idsAllocatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ids_allocated_total",
			Help: "Total number of identifiers allocated per counter",
		},
		[]string{"counter"},
	)

	remindersScheduledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_scheduled_total",
			Help: "Total number of reminders scheduled",
		},
	)

	reminderEmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_emails_total",
			Help: "Total number of reminder emails by outcome",
		},
		[]string{"outcome"},
	)

	authDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_decisions_total",
			Help: "Total number of authentication decisions",
		},
		[]string{"decision"},
	)
)

// Middleware records request counts and latencies
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrapped.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// Handler exposes the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordProcessCreated increments the process creation counter
func RecordProcessCreated() {
	processesCreatedTotal.Inc()
}

// RecordIDAllocated increments the allocation counter for the named sequence
func RecordIDAllocated(counter string) {
	idsAllocatedTotal.WithLabelValues(counter).Inc()
}

// RecordReminderScheduled increments the reminder scheduling counter
func RecordReminderScheduled() {
	remindersScheduledTotal.Inc()
}

// RecordReminderEmail records a reminder delivery outcome ("sent" or "failed")
func RecordReminderEmail(outcome string) {
	reminderEmailsTotal.WithLabelValues(outcome).Inc()
}

// RecordAuthDecision records an authentication decision ("granted" or "denied")
func RecordAuthDecision(decision string) {
	authDecisionsTotal.WithLabelValues(decision).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
