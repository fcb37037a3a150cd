package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveHTTPRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveHTTPRequest("GET", "/ping", 200, 0.01)
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequests))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveHTTPRequest("GET", "/", 200, 0) })
}
