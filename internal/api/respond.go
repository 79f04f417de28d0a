package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/progressr/internal/logger"
	"github.com/mark3labs/progressr/internal/progress"
)

type messageResponse struct {
	Message string `json:"message"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps a service error onto its HTTP status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *progress.Error
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		switch domainErr.Kind {
		case progress.KindNotFound:
			status = http.StatusNotFound
		case progress.KindConflict:
			status = http.StatusConflict
		}
		writeMessage(w, status, domainErr.Message)
		return
	}

	logger.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

// decodeBody reads a JSON object into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// param returns a decoded path parameter. chi matches against RawPath when the
// request has one, and against the already decoded Path otherwise.
func param(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value
	}
	if decoded, err := url.PathUnescape(value); err == nil {
		return decoded
	}
	return value
}
