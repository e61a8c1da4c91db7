package accesslog

import (
	"net/http"
	"time"

	"github.com/eatsapp/order-service/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler returns a middleware that logs every HTTP request with its
// status, byte count and duration.
func Handler(logger logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.With(r.Context(),
				"duration", time.Since(start).String(),
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"remote", r.RemoteAddr,
			).Infof("%s %s %s", r.Method, r.URL.Path, r.Proto)
		}

		return http.HandlerFunc(f)
	}
}
