package automerge

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/simplesurance/automerge/internal/automergeerr"
	"github.com/simplesurance/automerge/internal/logfields"
	"github.com/simplesurance/automerge/internal/maputils"
)

const (
	CheckRunStatusCompleted   = "completed"
	CheckRunConclusionSuccess = "success"
)

// CheckRun is the result of a CI job that reported its status for a commit.
// Fields that are missing in the API response are empty.
type CheckRun struct {
	Name       string
	Status     string
	Conclusion string
}

// Succeeded returns true if the check run completed with a successful
// conclusion.
func (c *CheckRun) Succeeded() bool {
	return c.Status == CheckRunStatusCompleted && c.Conclusion == CheckRunConclusionSuccess
}

// allSucceeded returns true if every check run succeeded.
// It is true for an empty slice, commits without any check runs are
// mergeable.
func allSucceeded(runs []*CheckRun) bool {
	for _, run := range runs {
		if !run.Succeeded() {
			return false
		}
	}

	return true
}

// ChecksPassed returns true if all check runs of the commit sha succeeded.
// Every check run is logged.
// If the response contains fewer check runs than its total_count field
// announces, false is returned.
// If the check_runs field of the response is not a JSON array, an
// *automergeerr.UnexpectedResponseError is returned.
func (o *Orchestrator) ChecksPassed(ctx context.Context, repo Repository, sha string) (bool, error) {
	urlStr := repo.checkRunsURL(sha)
	logger := o.logger.With(
		logfields.Repository(repo.String()),
		logfields.Commit(sha),
	)

	payload, err := o.ghClient.GetWithRetries(ctx, urlStr, o.retryPolicy.MaxRetries, o.retryPolicy.Delay)
	if err != nil {
		return false, fmt.Errorf("retrieving check runs failed: %w", err)
	}

	runs, totalCount, err := parseCheckRuns(urlStr, payload)
	if err != nil {
		return false, err
	}

	for _, run := range runs {
		logger.Info(
			"check run",
			logfields.Event("check_run_status"),
			logfields.CheckRun(run.Name),
			zap.String("status", run.Status),
			zap.String("conclusion", run.Conclusion),
		)
	}

	passed := allSucceeded(runs)

	// runs on further pages are unknown, they must not be treated as
	// succeeded
	if passed && totalCount > uint64(len(runs)) {
		logger.Warn(
			"response does not contain all check runs, treating checks as not passed",
			logfields.Event("check_runs_incomplete"),
			zap.Uint64("total_count", totalCount),
			zap.Int("received_count", len(runs)),
		)

		passed = false
	}

	o.metrics.checksEvaluated(passed)

	return passed, nil
}

// parseCheckRuns returns the check runs in payload and its total_count
// value. If total_count is missing, the number of returned runs is used.
func parseCheckRuns(urlStr string, payload []byte) ([]*CheckRun, uint64, error) {
	var decoded map[string]any

	// a payload that is not an object decodes into a nil map or fails,
	// both are reported because check_runs is then missing
	_ = json.Unmarshal(payload, &decoded)

	entries, ok := maputils.SliceVal(decoded, "check_runs")
	if !ok {
		return nil, 0, automergeerr.NewUnexpectedResponseError(urlStr, "json object with check_runs array", payload)
	}

	result := make([]*CheckRun, 0, len(entries))
	for _, entry := range entries {
		obj, _ := entry.(map[string]any)

		result = append(result, &CheckRun{
			Name:       maputils.StrValOrEmpty(obj, "name"),
			Status:     maputils.StrValOrEmpty(obj, "status"),
			Conclusion: maputils.StrValOrEmpty(obj, "conclusion"),
		})
	}

	totalCount, ok := maputils.UintVal(decoded, "total_count")
	if !ok {
		totalCount = uint64(len(result))
	}

	return result, totalCount, nil
}
