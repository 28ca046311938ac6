package automerge

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/simplesurance/automerge/internal/logfields"
)

//go:generate mockgen -package mocks -destination mocks/githubclient.go github.com/simplesurance/automerge/internal/automerge GithubClient

const loggerName = "automerge"

// GithubClient sends requests to the GitHub REST API.
// urlStr is relative to the API base URL, the returned byte slice is the
// response body.
type GithubClient interface {
	GetWithRetries(ctx context.Context, urlStr string, maxRetries uint64, retryDelay time.Duration) ([]byte, error)
	PutWithRetries(ctx context.Context, urlStr string, body any, maxRetries uint64, retryDelay time.Duration) ([]byte, error)
}

// RetryPolicy defines how often and in which interval failed API requests
// are repeated.
type RetryPolicy struct {
	MaxRetries uint64
	Delay      time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	Delay:      200 * time.Millisecond,
}

// Orchestrator squash-merges dependabot pull requests of a repository whose
// check runs all succeeded.
// Pull requests are processed sequentially, the first error aborts the run.
type Orchestrator struct {
	ghClient    GithubClient
	retryPolicy RetryPolicy
	filter      *FilterQuery
	metrics     *Metrics
	logger      *zap.Logger
}

type Option func(*Orchestrator)

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *Orchestrator) {
		o.retryPolicy = policy
	}
}

// WithFilterQuery restricts the candidates to pull requests for which the
// query evaluates to true.
func WithFilterQuery(query *FilterQuery) Option {
	return func(o *Orchestrator) {
		o.filter = query
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func NewOrchestrator(ghClient GithubClient, opts ...Option) *Orchestrator {
	o := Orchestrator{
		ghClient:    ghClient,
		retryPolicy: DefaultRetryPolicy,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.metrics == nil {
		o.metrics = NewMetrics()
	}

	if o.logger == nil {
		o.logger = zap.L().Named(loggerName)
	}

	return &o
}

// RunSummary counts what happened during a run.
type RunSummary struct {
	Candidates   int
	Checked      int
	ChecksPassed int
	Merged       int
	NotMerged    int
}

func (s *RunSummary) logFields() []zap.Field {
	return []zap.Field{
		zap.Int("candidates", s.Candidates),
		zap.Int("checked", s.Checked),
		zap.Int("checks_passed", s.ChecksPassed),
		zap.Int("merged", s.Merged),
		zap.Int("not_merged", s.NotMerged),
	}
}

// Run lists the dependabot pull requests of repo, evaluates their check runs
// and merges the ones with succeeded checks.
// The returned RunSummary is never nil, on error it contains the counts up to
// the failure.
func (o *Orchestrator) Run(ctx context.Context, repo Repository) (*RunSummary, error) {
	summary, err := o.run(ctx, repo)
	if err != nil {
		o.metrics.runFailed()
		return summary, err
	}

	o.metrics.runSucceeded()

	return summary, nil
}

func (o *Orchestrator) run(ctx context.Context, repo Repository) (*RunSummary, error) {
	var summary RunSummary

	logger := o.logger.With(logfields.Repository(repo.String()))

	candidates, err := o.ListCandidatePullRequests(ctx, repo)
	if err != nil {
		return &summary, err
	}

	summary.Candidates = len(candidates)

	for _, pr := range candidates {
		prLogger := logger.With(
			logfields.PullRequest(pr.Number),
			logfields.Branch(pr.HeadRef),
			logfields.Commit(pr.HeadSHA),
		)

		prLogger.Info("checking pull request", logfields.Event("pull_request_checking"))

		passed, err := o.ChecksPassed(ctx, repo, pr.HeadSHA)
		if err != nil {
			return &summary, fmt.Errorf("evaluating check runs of pull request #%d failed: %w", pr.Number, err)
		}

		summary.Checked++

		if !passed {
			prLogger.Info(
				"not all check runs succeeded, skipping pull request",
				logfields.Event("pull_request_checks_not_passed"),
			)

			continue
		}

		summary.ChecksPassed++

		prLogger.Info("merging pull request", logfields.Event("pull_request_merging"))

		outcome, err := o.MergePullRequest(ctx, repo, pr.Number)
		if err != nil {
			return &summary, fmt.Errorf("merging pull request #%d failed: %w", pr.Number, err)
		}

		if outcome.Merged {
			summary.Merged++
		} else {
			summary.NotMerged++
		}
	}

	logger.Info("run finished", append(summary.logFields(), logfields.Event("run_finished"))...)

	return &summary, nil
}
