package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/discussions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/discussions/1", "/discussions/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/discussions/:id"`)
	assert.Contains(t, w.Body.String(), `route="unmatched"`)
}

func TestCounters(t *testing.T) {
	m := New()
	m.LoginSuccess.Inc()
	m.LoginFailure.WithLabelValues("bad_credentials").Inc()
	m.LoginFailure.WithLabelValues("bad_credentials").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginSuccess))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginFailure.WithLabelValues("bad_credentials")))
}
