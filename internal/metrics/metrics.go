// Package metrics records bootstrap run metrics and pushes them to a
// Prometheus Pushgateway when one is configured. finsightctl is a one-shot
// CLI, so push is the only emission path; there is no metrics server.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder collects per-step timings and verification outcomes for one run.
// A nil Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	stepDuration *prometheus.GaugeVec
	stepSuccess  *prometheus.GaugeVec
	checks       *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with its own registry, keeping run metrics
// separate from any process-default collectors.
func NewRecorder() *Recorder {
	recorder := &Recorder{
		registry: prometheus.NewRegistry(),
		stepDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finsight_bootstrap_step_duration_seconds",
				Help: "Wall-clock duration of each bootstrap step.",
			},
			[]string{"step"},
		),
		stepSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finsight_bootstrap_step_success",
				Help: "Whether the bootstrap step completed without error (1) or failed (0).",
			},
			[]string{"step"},
		),
		checks: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finsight_bootstrap_verification_checks",
				Help: "Verification check counts for the run, by status.",
			},
			[]string{"status"},
		),
	}

	recorder.registry.MustRegister(recorder.stepDuration, recorder.stepSuccess, recorder.checks)
	return recorder
}

// ObserveStep records the duration and outcome of one bootstrap step.
func (r *Recorder) ObserveStep(step string, duration time.Duration, success bool) {
	if r == nil {
		return
	}
	r.stepDuration.WithLabelValues(step).Set(duration.Seconds())
	value := 0.0
	if success {
		value = 1.0
	}
	r.stepSuccess.WithLabelValues(step).Set(value)
}

// ObserveChecks records the verification tallies for the run.
func (r *Recorder) ObserveChecks(passed, failed, warnings int) {
	if r == nil {
		return
	}
	r.checks.WithLabelValues("passed").Set(float64(passed))
	r.checks.WithLabelValues("failed").Set(float64(failed))
	r.checks.WithLabelValues("warning").Set(float64(warnings))
}

// Push sends the recorded metrics to the gateway, grouped by cluster. It is
// a no-op when the recorder is nil or the gateway URL is empty.
func (r *Recorder) Push(gatewayURL, cluster string) error {
	if r == nil || gatewayURL == "" {
		return nil
	}

	pusher := push.New(gatewayURL, "finsight_bootstrap").Gatherer(r.registry)
	if cluster != "" {
		pusher = pusher.Grouping("cluster", cluster)
	}
	if err := pusher.Push(); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
