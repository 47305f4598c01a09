package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"homegraph/pkg/common"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerStampsRequestContext(t *testing.T) {
	var gotRequestID string
	var hadStartTime bool

	handler := Logger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID, _ = common.GetRequestID(r.Context())
		_, hadStartTime = common.GetStartTime(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("inbound header wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/search", nil)
		req.Header.Set("X-Request-ID", "req-abc-123")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "req-abc-123", gotRequestID)
		assert.True(t, hadStartTime)
		assert.Equal(t, "req-abc-123", rec.Header().Get("X-Request-ID"))
	})

	t.Run("falls back to generated id", func(t *testing.T) {
		// RequestID runs first in the router, so the fallback path sees
		// a chi-generated id.
		chained := chimiddleware.RequestID(handler)
		req := httptest.NewRequest(http.MethodGet, "/search", nil)
		rec := httptest.NewRecorder()

		chained.ServeHTTP(rec, req)

		require.NotEmpty(t, gotRequestID)
		assert.Equal(t, gotRequestID, rec.Header().Get("X-Request-ID"))
	})
}

func TestLoggerElapsedTime(t *testing.T) {
	handler := Logger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.GreaterOrEqual(t, common.GetElapsedTime(r.Context()).Nanoseconds(), int64(0))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// A context without a stamped start time reports zero elapsed.
	assert.Zero(t, common.GetElapsedTime(req.Context()))
}
