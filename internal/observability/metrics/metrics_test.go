package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGeneration_Success(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(Config{ServiceName: "invoicesheet", Environment: "test"}, reg)
	require.NoError(t, err)

	m.RecordGeneration("QUARTER_PAGE", OutcomeSuccess, 7, 2, 150*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("QUARTER_PAGE", OutcomeSuccess)))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.invoicesRendered.WithLabelValues("QUARTER_PAGE")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pagesRendered.WithLabelValues("QUARTER_PAGE")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestRecordGeneration_FailureDoesNotCountOutput(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(Config{}, reg)
	require.NoError(t, err)

	m.RecordGeneration("", OutcomeValidationError, 101, 0, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("unknown", OutcomeValidationError)))
	assert.Equal(t, 0, testutil.CollectAndCount(m.invoicesRendered))
	assert.Equal(t, 0, testutil.CollectAndCount(m.pagesRendered))
}

func TestRecordGeneration_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGeneration("FULL_PAGE", OutcomeSuccess, 1, 1, time.Second)
	})
}

func TestNew_DuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(Config{}, reg)
	require.NoError(t, err)

	_, err = New(Config{}, reg)
	assert.Error(t, err)
}

func TestHTTPMetrics_GinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(Config{}, reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/health", http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unknown", http.MethodGet, "404")))
}
