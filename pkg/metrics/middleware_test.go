package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/sales/:id", normalizePath("/sales/:id", "/sales/123"))
	assert.Equal(t, "unmatched", normalizePath("", "/random/abc"))
	assert.Equal(t, "/", normalizePath("", ""))
}

func TestGinPrometheusMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-test"))
	router.GET("/sales/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, id := range []string{"a", "b", "c"} {
		req, _ := http.NewRequest(http.MethodGet, "/sales/"+id, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	counter := HttpRequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "/sales/:id", "200")
	assert.Equal(t, float64(3), testutil.ToFloat64(counter))
}

func TestGinPrometheusMiddleware_SkipsHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-skip-test"))
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	counter := HttpRequestsTotal.WithLabelValues("metrics-skip-test", http.MethodGet, "/health", "200")
	assert.Equal(t, float64(0), testutil.ToFloat64(counter))
}

func TestRecordRejected(t *testing.T) {
	before := testutil.ToFloat64(OperationsRejected.WithLabelValues("insufficient_stock"))
	RecordRejected("insufficient_stock")
	assert.Equal(t, before+1, testutil.ToFloat64(OperationsRejected.WithLabelValues("insufficient_stock")))
}
