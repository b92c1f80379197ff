package frontend

import (
	"net/http"
	"time"

	"github.com/freelog/freelog/internal/log"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// LogRequests logs each request with its status and duration.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		kv := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.bytes,
			"duration", time.Since(start),
		}
		switch {
		case sw.status >= http.StatusInternalServerError:
			log.Error(log.CatHTTP, "Request", kv...)
		case r.URL.Path == "/api/health":
			log.Debug(log.CatHTTP, "Request", kv...)
		default:
			log.Info(log.CatHTTP, "Request", kv...)
		}
	})
}
