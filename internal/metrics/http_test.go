package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetricsRouter(t *testing.T) (*gin.Engine, *Provider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("test_app")
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "test_app"))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/v1/patients/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	router.POST("/v1/patients", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"message": "created"})
	})
	router.GET("/error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error"})
	})
	return router, provider
}

func serve(router *gin.Engine, method, path string) int {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w.Code
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	t.Run("Success_RecordsRequestsByStatus", func(t *testing.T) {
		router, provider := newMetricsRouter(t)

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/v1/patients"))
		}
		assert.Equal(t, http.StatusInternalServerError, serve(router, http.MethodGet, "/error"))

		output := scrape(t, provider)
		assertMetricLine(t, output, "test_app_http_requests_total",
			`method="POST".*path="/v1/patients".*status_code="201"`, "3")
		assertMetricLine(t, output, "test_app_http_requests_total",
			`path="/error".*status_code="500"`, "1")
		assert.Regexp(t, `test_app_http_requests_in_flight(\{[^}]*\})? 0`, output)
	})

	t.Run("Success_UsesRoutePatternNotPatientID", func(t *testing.T) {
		router, provider := newMetricsRouter(t)

		patientID := "0190a8b2-7c1e-7000-8000-000000000001"
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/v1/patients/"+patientID))
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/v1/patients/another"))

		output := scrape(t, provider)
		assertMetricLine(t, output, "test_app_http_requests_total", `path="/v1/patients/:id"`, "2")
		assert.NotContains(t, output, patientID)
	})

	t.Run("Success_SkipsProbes", func(t *testing.T) {
		router, provider := newMetricsRouter(t)

		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health"))

		assert.NotContains(t, scrape(t, provider), `path="/health"`)
	})

	t.Run("Success_UnmatchedRouteIsUnknown", func(t *testing.T) {
		router, provider := newMetricsRouter(t)

		assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/nope"))

		assertMetricLine(t, scrape(t, provider), "test_app_http_requests_total", `path="unknown"`, "1")
	})
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "RoutePattern",
			input:    "/v1/patients/:id",
			expected: "/v1/patients/:id",
		},
		{
			name:     "EmptyPath",
			input:    "",
			expected: "unknown",
		},
		{
			name:     "RootPath",
			input:    "/",
			expected: "/",
		},
		{
			name:     "WildcardPath",
			input:    "/v1/admin/patients/*rest",
			expected: "/v1/admin/patients/*rest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizePath(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}
