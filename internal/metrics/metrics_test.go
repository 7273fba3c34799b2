package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/payments/:email", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/payments/a@x.com", "/payments/b@x.com", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/payments/:email", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestObserveDenial(t *testing.T) {
	m := New()
	m.ObserveDenial("admin", http.StatusForbidden)
	m.ObserveDenial("admin", http.StatusForbidden)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.denials.WithLabelValues("admin", "403")))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveDenial("authenticate", http.StatusUnauthorized)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `classroom_guard_denials_total{guard="authenticate",status="401"} 1`)
}
