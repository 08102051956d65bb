package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"traveldesk-service/internal/domain/entity"
)

// APIResponse is the envelope every JSON endpoint answers with.
type APIResponse[T any] struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      *T        `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := APIResponse[T]{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	resp := APIResponse[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// statusFor maps pipeline errors onto transport codes: bad input is
// 422, upstream trouble maps to the gateway codes, unknown records are
// 404. Anything unrecognized is a plain 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrNoFlightsExtracted),
		errors.Is(err, entity.ErrNoJSONFound),
		errors.Is(err, entity.ErrMalformedJSON):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, entity.ErrUpstreamUnavailable),
		errors.Is(err, entity.ErrEmptyCompletion):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
