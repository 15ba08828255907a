// Prometheus metrics for pipe-check runs, exported through the node_exporter textfile collector.
package metrics

import (
	"strconv"

	pipecheck "github.com/akalinux/pipe-check"
	"github.com/prometheus/client_golang/prometheus"
)

type Recorder struct {
	registry *prometheus.Registry

	// RunsTotal counts completed runs by verdict (pass, fail)
	RunsTotal *prometheus.CounterVec

	// DeviationsTotal counts deviations by stage and kind (syscall, semantic)
	DeviationsTotal *prometheus.CounterVec

	// LastRunErrors is the error count of the most recent run
	LastRunErrors prometheus.Gauge

	// LastPollRevents is the raw revents mask seen at each stage of the most recent run
	LastPollRevents *prometheus.GaugeVec

	// LastRunTimestamp records the Unix time the most recent run finished
	LastRunTimestamp prometheus.Gauge
}

// Creates a Recorder on its own registry, so repeated construction never collides.
func NewRecorder() *Recorder {
	s := &Recorder{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipecheck_runs_total",
			Help: "Completed FIFO lifecycle runs by verdict.",
		}, []string{"verdict"}),
		DeviationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipecheck_deviations_total",
			Help: "Deviations from expected FIFO semantics by stage and kind.",
		}, []string{"stage", "kind"}),
		LastRunErrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pipecheck_last_run_errors",
			Help: "Error count of the most recent run.",
		}),
		LastPollRevents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pipecheck_last_poll_revents",
			Help: "Poll revents mask returned at each stage of the most recent run.",
		}, []string{"stage"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pipecheck_last_run_timestamp_seconds",
			Help: "Unix timestamp of the most recent completed run.",
		}),
	}
	s.registry.MustRegister(
		s.RunsTotal,
		s.DeviationsTotal,
		s.LastRunErrors,
		s.LastPollRevents,
		s.LastRunTimestamp,
	)

	// Present in the output before the first run
	s.RunsTotal.WithLabelValues("pass")
	s.RunsTotal.WithLabelValues("fail")
	return s
}

func (s *Recorder) Registry() *prometheus.Registry {
	return s.registry
}

// Folds a finished run into the metrics.
func (s *Recorder) Observe(report *pipecheck.Report) {
	verdict := "pass"
	if !report.Passed() {
		verdict = "fail"
	}
	s.RunsTotal.WithLabelValues(verdict).Inc()
	s.LastRunErrors.Set(float64(report.Errors))
	s.LastRunTimestamp.Set(float64(report.Finished.Unix()))

	for _, d := range report.Deviations {
		s.DeviationsTotal.WithLabelValues(strconv.Itoa(d.Stage), d.Kind.String()).Inc()
	}
	for _, stage := range report.Stages {
		s.LastPollRevents.WithLabelValues(strconv.Itoa(stage.Stage)).Set(float64(stage.Poll.Returned))
	}
}

// Atomically writes the current metrics to path in the text exposition format.
func (s *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, s.registry)
}
