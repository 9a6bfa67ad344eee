package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector("qt_test")

	c.ObserveTranscription(OutcomeOK, 3)
	c.ObserveTranscription(OutcomeDegraded, 1)
	c.ObserveStore("insert_memo", nil)
	c.ObserveStore("insert_memo", errors.New("boom"))
	c.ObserveHTTP("POST", "/api/transcribe", "200", 10*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.Transcriptions.WithLabelValues(OutcomeOK)))
	assert.Equal(t, float64(4), testutil.ToFloat64(c.ThoughtsProduced))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.StoreOperations.WithLabelValues("insert_memo", "failure")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "qt_test_transcriptions_total")
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveTranscription(OutcomeFailed, 0)
		c.ObserveAI(time.Second)
		c.ObserveStore("delete_memo", nil)
		c.ObserveHTTP("GET", "/", "200", time.Millisecond)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel("debug").String())
	assert.Equal(t, "info", ParseLevel("nonsense").String())
}
