package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	SubmissionsEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_enqueued_total",
			Help: "Total number of submissions enqueued for evaluation",
		},
		[]string{"type"},
	)
	SubmissionsProcessing = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "submissions_processing",
			Help: "Number of submissions currently being evaluated",
		},
		[]string{"type"},
	)
	SubmissionsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_completed_total",
			Help: "Total number of submissions evaluated successfully",
		},
		[]string{"type"},
	)
	SubmissionsFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_failed_total",
			Help: "Total number of submissions that failed evaluation",
		},
		[]string{"type"},
	)

	EvaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_duration_seconds",
			Help:    "Time taken to score one submission",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// Score outcome distributions
	CompositeScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_composite_score",
			Help:    "Distribution of composite scores ([0,10])",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)
	GradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluation_grades_total",
			Help: "Count of evaluations by assigned grade band",
		},
		[]string{"grade"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(SubmissionsEnqueuedTotal)
	prometheus.MustRegister(SubmissionsProcessing)
	prometheus.MustRegister(SubmissionsCompletedTotal)
	prometheus.MustRegister(SubmissionsFailedTotal)
	prometheus.MustRegister(EvaluationDuration)
	prometheus.MustRegister(CompositeScoreHistogram)
	prometheus.MustRegister(GradesTotal)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

func EnqueueSubmission(kind string) {
	SubmissionsEnqueuedTotal.WithLabelValues(kind).Inc()
}

func StartEvaluation(kind string) {
	SubmissionsProcessing.WithLabelValues(kind).Inc()
}

func CompleteEvaluation(kind string) {
	SubmissionsProcessing.WithLabelValues(kind).Dec()
	SubmissionsCompletedTotal.WithLabelValues(kind).Inc()
}

func FailEvaluation(kind string) {
	SubmissionsProcessing.WithLabelValues(kind).Dec()
	SubmissionsFailedTotal.WithLabelValues(kind).Inc()
}

// ObserveScore records the outcome of one completed evaluation.
func ObserveScore(composite float64, grade string, elapsed time.Duration) {
	if composite >= 0 && composite <= 10 {
		CompositeScoreHistogram.Observe(composite)
	}
	if grade != "" {
		GradesTotal.WithLabelValues(grade).Inc()
	}
	EvaluationDuration.Observe(elapsed.Seconds())
}
