package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.CandidatesReceived.Add(3)
	m.CandidatesDropped.WithLabelValues("decode").Inc()
	m.CandidatesDropped.WithLabelValues("decode").Inc()
	m.BundlesSubmitted.Inc()

	assert.Equal(t, float64(3), testutil.ToFloat64(m.CandidatesReceived))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CandidatesDropped.WithLabelValues("decode")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BundlesSubmitted))

	// independent registries
	other := NewMetrics()
	assert.Equal(t, float64(0), testutil.ToFloat64(other.CandidatesReceived))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.InFlight.Set(4)
	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "solana_sandwich_pipeline_in_flight 4")
}
