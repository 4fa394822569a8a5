package loggingmw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	"github.com/Skotchmaster/yummy_recipes/internal/metrics"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := metrics.New()

	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter("debug", &buf), m))
	e.GET("/ok", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside_handler")
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError, "nope")
	})

	for _, path := range []string{"/ok", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(echo.HeaderXRequestID, "req-"+strings.TrimPrefix(path, "/"))
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	var lines []map[string]any
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var line map[string]any
		require.NoError(t, json.Unmarshal(raw, &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 3)

	assert.Equal(t, "inside_handler", lines[0]["msg"])
	assert.Equal(t, "req-ok", lines[0]["request_id"])

	assert.Equal(t, "request completed", lines[1]["msg"])
	assert.Equal(t, float64(http.StatusOK), lines[1]["status"])

	assert.Equal(t, "ERROR", lines[2]["level"])
	assert.Equal(t, float64(http.StatusInternalServerError), lines[2]["status"])
	assert.Equal(t, "req-boom", lines[2]["request_id"])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/boom", "500")))
}
