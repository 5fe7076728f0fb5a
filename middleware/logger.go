package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const loggerKey contextKey = "logger"

// LoggerFromContext returns the request-scoped logger installed by
// RequestLogger, or the standard logger outside a request.
func LoggerFromContext(ctx context.Context) logrus.FieldLogger {
	if log, ok := ctx.Value(loggerKey).(logrus.FieldLogger); ok {
		return log
	}
	return logrus.StandardLogger()
}

// RequestLogger logs one line per request with the chi request id and makes
// log, tagged with that id, available to handlers via LoggerFromContext.
func RequestLogger(log logrus.FieldLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.WithField("request_id", chimw.GetReqID(r.Context()))
			r = r.WithContext(context.WithValue(r.Context(), loggerKey, reqLog))
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := reqLog.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   status,
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).String(),
				"remote":   r.RemoteAddr,
			})
			switch {
			case status >= 500:
				entry.Error("request")
			case status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
		})
	}
}
