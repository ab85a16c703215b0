package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"internship-scraper/internal/poll"
	"internship-scraper/internal/store"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// WriteFailure maps an engine error to its status and code.
func WriteFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	WriteError(w, r, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, poll.ErrAlreadyRunning):
		return http.StatusConflict, "already_running"
	case errors.Is(err, poll.ErrClosed):
		return http.StatusServiceUnavailable, "shutting_down"
	case errors.Is(err, store.ErrStorage):
		return http.StatusServiceUnavailable, "storage_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		// nginx's "client closed request"
		return 499, "canceled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
