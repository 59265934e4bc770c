package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerRecordsRouteAndStatus(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(InjectLoggerMiddleware(logger))
	r.Use(RequestLoggerMiddleware)
	r.Get("/result/{viewID}/image", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("handler log")
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/result/abc/image", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	handlerLogs := logs.FilterMessage("handler log").All()
	require.Len(t, handlerLogs, 1)
	require.NotEmpty(t, handlerLogs[0].ContextMap()["request_id"], "handler logger must carry request id")

	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 1)
	entry := completed[0]
	require.Equal(t, zapcore.WarnLevel, entry.Level, "4xx responses log at warn")
	fields := entry.ContextMap()
	require.Equal(t, "/result/{viewID}/image", fields["route"])
	require.EqualValues(t, http.StatusNotFound, fields["status"])
}

func TestRecoveryMiddlewareReturns500(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	handler := InjectLoggerMiddleware(zap.New(core))(RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestFromContextDefaultsToNoop(t *testing.T) {
	t.Parallel()

	require.Same(t, NoopLogger(), FromContext(context.Background()))
}
