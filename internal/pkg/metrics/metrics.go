package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hris_ledger"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	attendanceCheckIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attendance",
			Name:      "check_ins_total",
			Help:      "Accepted check-ins by derived status.",
		},
		[]string{"status"},
	)

	attendanceCheckOuts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attendance",
			Name:      "check_outs_total",
			Help:      "Accepted check-outs.",
		},
	)

	attendanceRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attendance",
			Name:      "rejections_total",
			Help:      "Refused check-in/check-out attempts by operation and reason.",
		},
		[]string{"operation", "reason"},
	)

	leaveSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leave",
			Name:      "submissions_total",
			Help:      "Leave requests submitted by leave type.",
		},
		[]string{"leave_type"},
	)

	leaveDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leave",
			Name:      "decisions_total",
			Help:      "Leave decisions by outcome.",
		},
		[]string{"decision"},
	)

	ledgerDaysUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "days_used_total",
			Help:      "Leave days charged to balances by category.",
		},
		[]string{"category"},
	)

	outboxPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_total",
			Help:      "Outbox relay results by event type and outcome.",
		},
		[]string{"event_type", "result"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		attendanceCheckIns,
		attendanceCheckOuts,
		attendanceRejections,
		leaveSubmissions,
		leaveDecisions,
		ledgerDaysUsed,
		outboxPublished,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request count and latency labelled by the chi route pattern,
// so path parameters do not explode label cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func RecordCheckIn(status string) {
	attendanceCheckIns.WithLabelValues(status).Inc()
}

func RecordCheckOut() {
	attendanceCheckOuts.Inc()
}

func RecordAttendanceRejection(operation, reason string) {
	attendanceRejections.WithLabelValues(operation, reason).Inc()
}

func RecordLeaveSubmission(leaveType string) {
	leaveSubmissions.WithLabelValues(leaveType).Inc()
}

func RecordLeaveDecision(decision string) {
	leaveDecisions.WithLabelValues(decision).Inc()
}

func RecordLedgerUsage(category string, days int) {
	ledgerDaysUsed.WithLabelValues(category).Add(float64(days))
}

func RecordOutboxResult(eventType string, ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	outboxPublished.WithLabelValues(eventType, result).Inc()
}
