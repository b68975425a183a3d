package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue returns the value of the counter family name whose labels
// match want.
func counterValue(t *testing.T, r *Recorder, name string, want map[string]string) float64 {
	t.Helper()

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if v, ok := want[lp.GetName()]; ok && v != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecorder_RecordRun(t *testing.T) {
	r := New()

	r.RecordRun("ktlint", OutcomeOK, 2*time.Second)
	r.RecordRun("ktlint", OutcomeOK, time.Second)
	r.RecordRun("ktlint", OutcomeSuperseded, 10*time.Millisecond)
	r.RecordRun("detekt", OutcomeError, time.Second)

	assert.Equal(t, 2.0, counterValue(t, r, "symkt_runs_total", map[string]string{"tool": "ktlint", "outcome": OutcomeOK}))
	assert.Equal(t, 1.0, counterValue(t, r, "symkt_runs_total", map[string]string{"tool": "ktlint", "outcome": OutcomeSuperseded}))
	assert.Equal(t, 1.0, counterValue(t, r, "symkt_runs_total", map[string]string{"tool": "detekt", "outcome": OutcomeError}))
}

func TestRecorder_RecordDiagnostics(t *testing.T) {
	r := New()

	r.RecordDiagnostics("detekt", 3)
	r.RecordDiagnostics("detekt", 0)
	r.RecordDiagnostics("detekt", 4)

	assert.Equal(t, 7.0, counterValue(t, r, "symkt_diagnostics_total", map[string]string{"tool": "detekt"}))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordRun("ktlint", OutcomeOK, time.Second)
		r.RecordDiagnostics("ktlint", 1)
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.RecordRun("ktfmt", OutcomeOK, time.Second)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `symkt_runs_total{outcome="ok",tool="ktfmt"} 1`)
	assert.Contains(t, string(body), "symkt_run_duration_seconds_bucket")
}
