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

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "operation"},
	)
	AIFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_failures_total",
			Help: "Total number of failed AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)

	ExtractionLayerTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_layer_total",
			Help: "Structured-response extractions by the layer that succeeded",
		},
		[]string{"layer"},
	)
	HeuristicFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heuristic_fallback_total",
			Help: "Evaluations that fell back to the keyword heuristic",
		},
		[]string{"operation"},
	)
	FingerprintDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fingerprint_decisions_total",
			Help: "Resume uniqueness decisions by outcome",
		},
		[]string{"outcome"},
	)

	// Evaluation outcome distributions
	AnswerScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_answer_score",
			Help:    "Distribution of interview answer scores ([0,10])",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)
	ResumeScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_resume_score",
			Help:    "Distribution of composite resume scores ([0,10])",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(AIFailuresTotal)
	prometheus.MustRegister(ExtractionLayerTotal)
	prometheus.MustRegister(HeuristicFallbackTotal)
	prometheus.MustRegister(FingerprintDecisionsTotal)
	prometheus.MustRegister(AnswerScoreHistogram)
	prometheus.MustRegister(ResumeScoreHistogram)
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
			// fallback when route pattern is unavailable
			route = r.URL.Path
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

// ObserveAIRequest records one provider call and its outcome.
func ObserveAIRequest(provider, operation string, dur time.Duration, err error) {
	AIRequestsTotal.WithLabelValues(provider, operation).Inc()
	AIRequestDuration.WithLabelValues(provider, operation).Observe(dur.Seconds())
	if err != nil {
		AIFailuresTotal.WithLabelValues(provider, operation).Inc()
	}
}

// ObserveScores records resulting evaluation scores when in range.
func ObserveScores(answerScore, resumeScore float64) {
	if answerScore >= 0 && answerScore <= 10 {
		AnswerScoreHistogram.Observe(answerScore)
	}
	if resumeScore >= 0 && resumeScore <= 10 {
		ResumeScoreHistogram.Observe(resumeScore)
	}
}
