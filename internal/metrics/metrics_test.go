package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pipecheck "github.com/akalinux/pipe-check"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func failedReport() *pipecheck.Report {
	return &pipecheck.Report{
		Errors: 2,
		Deviations: []pipecheck.Deviation{
			{Stage: 2, Kind: pipecheck.DEVIATION_SEMANTIC},
			{Stage: 3, Kind: pipecheck.DEVIATION_SYSCALL},
		},
		Stages: []pipecheck.StageReport{
			{Stage: 2, Poll: pipecheck.PollObservation{Returned: pipecheck.IN_HANGUP | pipecheck.CAN_READ}},
		},
		Finished: time.Unix(1700000000, 0),
	}
}

func TestNewRecorderTwice(t *testing.T) {
	// own registries, so this must not panic on duplicate registration
	NewRecorder()
	NewRecorder()
}

func TestObserve(t *testing.T) {
	rec := NewRecorder()
	rec.Observe(&pipecheck.Report{Finished: time.Now()})
	rec.Observe(failedReport())

	if v := testutil.ToFloat64(rec.RunsTotal.WithLabelValues("pass")); v != 1 {
		t.Errorf("Expected 1 passing run, got: %v", v)
	}
	if v := testutil.ToFloat64(rec.RunsTotal.WithLabelValues("fail")); v != 1 {
		t.Errorf("Expected 1 failed run, got: %v", v)
	}
	if v := testutil.ToFloat64(rec.DeviationsTotal.WithLabelValues("2", "semantic")); v != 1 {
		t.Errorf("Expected 1 semantic deviation at stage 2, got: %v", v)
	}
	if v := testutil.ToFloat64(rec.LastRunErrors); v != 2 {
		t.Errorf("Expected 2 errors in the last run, got: %v", v)
	}
	if v := testutil.ToFloat64(rec.LastPollRevents.WithLabelValues("2")); v != 0x11 {
		t.Errorf("Expected revents 0x11, got: %v", v)
	}
	if v := testutil.ToFloat64(rec.LastRunTimestamp); v != 1700000000 {
		t.Errorf("Unexpected timestamp: %v", v)
	}
}

func TestWriteTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.Observe(failedReport())
	path := filepath.Join(t.TempDir(), "pipecheck.prom")
	if err := rec.WriteTextfile(path); err != nil {
		t.Fatalf("Failed to write metrics: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read metrics: %v", err)
	}
	for _, want := range []string{
		`pipecheck_runs_total{verdict="fail"} 1`,
		`pipecheck_runs_total{verdict="pass"} 0`,
		`pipecheck_deviations_total{kind="syscall",stage="3"} 1`,
		`pipecheck_last_run_errors 2`,
	} {
		if !strings.Contains(string(b), want) {
			t.Errorf("Missing %q in:\n%s", want, b)
		}
	}
}
