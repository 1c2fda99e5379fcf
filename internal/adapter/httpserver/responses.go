// Package httpserver contains HTTP handlers and middleware.
//
// It provides the REST API for interview answer analysis, question
// generation, assignment grading, resume analysis and screening, and
// proctoring sessions. HTTP concerns stay here; business logic lives in
// the usecase layer.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, _ *http.Request, err error, details interface{}) {
	code := http.StatusInternalServerError
	codeStr := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
		codeStr = "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
		codeStr = "NOT_FOUND"
	case errors.Is(err, domain.ErrAllProvidersExhausted):
		code = http.StatusBadGateway
		codeStr = "PROVIDERS_EXHAUSTED"
	case errors.Is(err, domain.ErrProviderUnavailable):
		code = http.StatusServiceUnavailable
		codeStr = "PROVIDER_UNAVAILABLE"
	case errors.Is(err, domain.ErrProviderCallFailed):
		code = http.StatusBadGateway
		codeStr = "PROVIDER_CALL_FAILED"
	case errors.Is(err, domain.ErrMalformedResponse):
		code = http.StatusBadGateway
		codeStr = "MALFORMED_RESPONSE"
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: err.Error(), Details: details}})
}
