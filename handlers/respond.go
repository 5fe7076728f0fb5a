package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/middleware"
)

const maxBodyBytes = 1 << 20

// envelope is the shape of every API response.
type envelope struct {
	Success bool                `json:"success"`
	Data    interface{}         `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already sent; an encode failure means the client
	// went away.
	_ = json.NewEncoder(w).Encode(body)
}

func logFor(r *http.Request) logrus.FieldLogger {
	return middleware.LoggerFromContext(r.Context())
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an error envelope. Internal errors and wrapped driver
// failures are logged and reach the caller only as a generic message.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Wrap(apperr.Internal, "Server error", err)
	}
	status := statusOf(ae.Kind)
	body := envelope{Success: false, Message: ae.Message, Errors: ae.Fields}
	switch ae.Kind {
	case apperr.Internal:
		logFor(r).WithError(err).WithField("path", r.URL.Path).Error("request failed")
		body.Message = "Server error"
	case apperr.Unavailable:
		if ae.Err != nil {
			logFor(r).WithError(err).WithField("path", r.URL.Path).Warn("store unavailable")
			w.Header().Set("Retry-After", "1")
			body.Message = "Service temporarily unavailable, please retry"
		}
	}
	writeJSON(w, status, body)
}

// readJSON decodes a single JSON object from the request body into dst.
func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.Validation, "Request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.New(apperr.Validation, "Request body too large")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.Invalid(apperr.FieldError{Field: typeErr.Field, Message: typeErr.Field + " has the wrong type"})
		}
		return apperr.Wrap(apperr.Validation, "Invalid JSON body", err)
	}
	return nil
}
