// Package app wires configuration, middleware and routes into the HTTP
// handler served by cmd/server.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/hireloop/ai-hiring-evaluator/internal/adapter/httpserver"
	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/observability"
	"github.com/hireloop/ai-hiring-evaluator/internal/config"
)

// ParseOrigins normalizes the configured origin list, trimming spaces.
// An empty input allows every origin.
func ParseOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(2 * time.Minute))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limit the provider-backed endpoints
	r.Group(func(wr chi.Router) {
		wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))
		wr.Post("/v1/interview/answer", srv.AnalyzeAnswerHandler())
		wr.Post("/v1/interview/feedback", srv.OverallFeedbackHandler())
		wr.Post("/v1/questions", srv.GenerateQuestionsHandler())
		wr.Post("/v1/questions/next", srv.NextQuestionHandler())
		wr.Post("/v1/assignments/grade", srv.GradeAssignmentHandler())
		wr.Post("/v1/recommendations", srv.RecommendHandler())
		wr.Post("/v1/resumes/analyze", srv.AnalyzeResumeHandler())
		wr.Post("/v1/resumes/screen", srv.ScreenResumeHandler())
		wr.Post("/v1/proctor/session", srv.ProctorSessionHandler())
		wr.Post("/v1/proctor/integrity", srv.ProctorIntegrityHandler())
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", srv.ReadyzHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })

	return httpserver.SecurityHeaders(r)
}
