package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-devblog/internal/logging"
	"github.com/goliatone/go-devblog/pkg/interfaces"
)

const requestIDHeader = "X-Request-ID"

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(p []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(p)
	s.bytes += n
	return n, err
}

// requestLogger tags the request context with a request id, method and path
// and logs one entry per request. An incoming X-Request-ID is reused.
func requestLogger(logger interfaces.Logger, now func() time.Time, newID func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := now()
			requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if requestID == "" {
				requestID = newID()
			}
			w.Header().Set(requestIDHeader, requestID)
			r = r.WithContext(logging.WithRequest(r.Context(), requestID, r.Method, r.URL.Path))

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			logger.WithContext(r.Context()).Info("http.request",
				"status", rec.status,
				"bytes", rec.bytes,
				"duration", now().Sub(start),
			)
		})
	}
}
