package middleware

import (
	"net/http"
	"time"

	"homegraph/pkg/common"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logger creates a logging middleware. It stamps the request ID and
// start time into the request context so handlers can correlate their
// own logs and responses with the access log line.
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// An inbound request ID (proxy or API gateway) wins over the
			// one chi generated.
			requestID := common.ExtractRequestID(r)
			if requestID == "" {
				requestID = middleware.GetReqID(r.Context())
			}

			ctx := common.WithRequestID(r.Context(), requestID)
			ctx = common.WithStartTime(ctx, time.Now())

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", common.GetElapsedTime(ctx)),
				zap.String("requestID", requestID),
				zap.String("remoteAddr", r.RemoteAddr),
			)
		})
	}
}
