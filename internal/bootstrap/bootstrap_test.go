package bootstrap

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/skyresults/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingHandler struct{}

func (pingHandler) Register(router gin.IRoutes) {
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func TestNewRouter_HealthMetricsAndHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(pingHandler{})

	for path, want := range map[string]string{
		"/health":  `"status":"ok"`,
		"/ping":    "pong",
		"/metrics": "go_goroutines",
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), want, path)
	}
}

func TestNewLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "route", "DEL|BOM")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"route":"DEL|BOM"`)
}
