package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CountersExposed(t *testing.T) {
	r := NewRegistry()
	r.CacheHits.Inc()
	r.Fallbacks.WithLabelValues("parse").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(r.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Fallbacks.WithLabelValues("parse")))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "scanner_cache_hits_total 1")
	assert.Contains(t, string(body), `scanner_fallbacks_total{reason="parse"} 1`)
}

func TestRegistry_NilSafe(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.Hit()
		r.Miss()
		r.Fallback("upstream")
		r.StorageError("get")
		r.ObserveSearch(0.2)
	})
}
