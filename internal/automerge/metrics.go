package automerge

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"github.com/simplesurance/automerge/internal/logfields"
)

const metricNamespace = "automerge"

// pushJobName is the job label of metrics sent to the Pushgateway.
const pushJobName = "automerge"

const (
	candidatesMetricName       = "candidate_pull_requests_total"
	checkEvaluationsMetricName = "check_evaluations_total"
	mergeAttemptsMetricName    = "merge_attempts_total"
	runsMetricName             = "runs_total"
	lastSuccessMetricName      = "last_success_timestamp_seconds"
)

const (
	repositoryLabel = "repository"
	verdictLabel    = "verdict"
	resultLabel     = "result"
)

const (
	verdictPassedVal = "passed"
	verdictFailedVal = "failed"

	resultMergedVal    = "merged"
	resultNotMergedVal = "not_merged"
	resultSuccessVal   = "success"
	resultFailureVal   = "failure"
)

// Metrics records statistics of a run in a dedicated registry.
type Metrics struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	candidates       prometheus.Counter
	checkEvaluations *prometheus.CounterVec
	mergeAttempts    *prometheus.CounterVec
	runs             *prometheus.CounterVec
	lastSuccess      prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		logger:   zap.L().Named(loggerName).Named("metrics"),
		registry: reg,
		candidates: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      candidatesMetricName,
				Help:      "count of found dependabot pull requests",
			},
		),
		checkEvaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      checkEvaluationsMetricName,
				Help:      "count of check run evaluations by verdict",
			},
			[]string{verdictLabel},
		),
		mergeAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      mergeAttemptsMetricName,
				Help:      "count of merge requests by result",
			},
			[]string{resultLabel},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      runsMetricName,
				Help:      "count of runs by result",
			},
			[]string{resultLabel},
		),
		lastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricNamespace,
				Name:      lastSuccessMetricName,
				Help:      "unix time of the last run that finished without an error",
			},
		),
	}
}

func (m *Metrics) logGetMetricFailed(metricName string, err error) {
	m.logger.Warn(
		"could not record metric",
		zap.String("metric", metricName),
		logfields.Event("recording_metric_failed"),
		zap.Error(err),
	)
}

func (m *Metrics) inc(vec *prometheus.CounterVec, metricName, label, val string) {
	cnt, err := vec.GetMetricWith(prometheus.Labels{label: val})
	if err != nil {
		m.logGetMetricFailed(metricName, err)
		return
	}

	cnt.Inc()
}

func (m *Metrics) candidateFound() {
	m.candidates.Inc()
}

func (m *Metrics) checksEvaluated(passed bool) {
	verdict := verdictFailedVal
	if passed {
		verdict = verdictPassedVal
	}

	m.inc(m.checkEvaluations, checkEvaluationsMetricName, verdictLabel, verdict)
}

func (m *Metrics) mergeAttempted(merged bool) {
	result := resultNotMergedVal
	if merged {
		result = resultMergedVal
	}

	m.inc(m.mergeAttempts, mergeAttemptsMetricName, resultLabel, result)
}

func (m *Metrics) runSucceeded() {
	m.inc(m.runs, runsMetricName, resultLabel, resultSuccessVal)
	m.lastSuccess.Set(float64(time.Now().Unix()))
}

func (m *Metrics) runFailed() {
	m.inc(m.runs, runsMetricName, resultLabel, resultFailureVal)
}

// Gatherer returns the registry containing the metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Push sends the metrics to the Prometheus Pushgateway at pushgatewayURL,
// grouped by the repository.
func (m *Metrics) Push(ctx context.Context, pushgatewayURL string, repo Repository) error {
	return push.New(pushgatewayURL, pushJobName).
		Gatherer(m.registry).
		Grouping(repositoryLabel, repo.String()).
		PushContext(ctx)
}
