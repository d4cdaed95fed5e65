package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dshills/gridcanvas/internal/app"
)

// requestLogger logs one line per request at debug level, and at warn
// level for server errors.
func requestLogger(log *app.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			l := log.WithField("requestID", middleware.GetReqID(r.Context()))
			args := []any{
				"method", r.Method, "path", r.URL.Path,
				"status", ww.Status(), "bytes", ww.BytesWritten(), "took", time.Since(start),
			}
			if ww.Status() >= http.StatusInternalServerError {
				l.Warn("request", args...)
				return
			}
			l.Debug("request", args...)
		})
	}
}
