// Package web holds the JSON response helpers and request middleware shared by the HTTP handlers.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smart-menu/internal/logger"
)

// MaxBodyBytes caps request bodies accepted by the JSON decoders
const MaxBodyBytes = 1 << 20

type contextKey string

const requestIDKey contextKey = "request_id"

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error     string      `json:"error"`
	Kind      string      `json:"kind,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id"`
}

// RequestID returns the request id assigned by WithLogging
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WriteJSON writes v with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes a plain error envelope
func WriteError(w http.ResponseWriter, statusCode int, message, requestID string) {
	WriteErrorResponse(w, statusCode, ErrorResponse{Error: message}, requestID)
}

// WriteErrorResponse fills in the timestamp and request id and writes resp
func WriteErrorResponse(w http.ResponseWriter, statusCode int, resp ErrorResponse, requestID string) {
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
	resp.RequestID = requestID
	WriteJSON(w, statusCode, resp)
}

// DecodeJSON decodes a JSON request body into dst, rejecting other content types,
// unknown fields and trailing data
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return errors.New("content type must be application/json")
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}
	if decoder.More() {
		return errors.New("invalid JSON format: unexpected data after body")
	}
	return nil
}

// PathID parses a positive integer path value
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, r.PathValue(name))
	}
	return id, nil
}

// WithLogging assigns a request id and logs the start and completion of every request
func WithLogging(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))

		log.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.Header.Get("User-Agent"),
			})

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		log.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
			})
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
