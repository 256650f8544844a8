package middlewarex_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"propinvest/pkg/contextx"
	"propinvest/pkg/middlewarex"
)

func TestLogger(t *testing.T) {
	rq := require.New(t)

	var buf bytes.Buffer

	base := slog.New(slog.NewJSONHandler(&buf, nil))

	h := middlewarex.TraceID(middlewarex.Logger(base)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		log, err := contextx.LoggerFromContext(r.Context())
		rq.NoError(err)
		log.Info("handled")
	})))

	r := httptest.NewRequest(http.MethodGet, "/v1/factors", nil)
	r.Header.Set("X-Trace-Id", "trace-42")

	h.ServeHTTP(httptest.NewRecorder(), r)

	rq.Contains(buf.String(), `"trace-id":"trace-42"`)
	rq.Contains(buf.String(), `"url":"/v1/factors"`)
	rq.Contains(buf.String(), `"http-method":"GET"`)
}
