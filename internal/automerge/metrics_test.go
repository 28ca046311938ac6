package automerge

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsGatherer(t *testing.T) {
	m := NewMetrics()

	m.candidateFound()
	m.checksEvaluated(true)
	m.checksEvaluated(false)
	m.mergeAttempted(false)
	m.runFailed()

	expected := `
# HELP automerge_merge_attempts_total count of merge requests by result
# TYPE automerge_merge_attempts_total counter
automerge_merge_attempts_total{result="not_merged"} 1
# HELP automerge_runs_total count of runs by result
# TYPE automerge_runs_total counter
automerge_runs_total{result="failure"} 1
`
	err := testutil.GatherAndCompare(
		m.Gatherer(),
		strings.NewReader(expected),
		"automerge_merge_attempts_total",
		"automerge_runs_total",
	)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.candidates))
	assert.Equal(t, 2, testutil.CollectAndCount(m.checkEvaluations))
}

func TestMetricsPush(t *testing.T) {
	var method, path string
	var body []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)

		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(func() {
		srv.Close()
		http.DefaultClient.CloseIdleConnections()
	})

	m := NewMetrics()
	m.candidateFound()
	m.runSucceeded()

	err := m.Push(context.Background(), srv.URL, testRepo)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/automerge/repository@base64/dGVzdG1hbi9yZXBv", path)
	assert.NotEmpty(t, body)
}

func TestMetricsPushFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(func() {
		srv.Close()
		http.DefaultClient.CloseIdleConnections()
	})

	m := NewMetrics()

	err := m.Push(context.Background(), srv.URL, testRepo)
	assert.Error(t, err)
}
