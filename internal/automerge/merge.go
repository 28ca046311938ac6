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

// MergeMethodSquash is the only merge method that is used.
const MergeMethodSquash = "squash"

type mergeRequest struct {
	MergeMethod string `json:"merge_method"`
}

// MergeOutcome is the result of a merge request reported by GitHub.
type MergeOutcome struct {
	Merged  bool
	Message string
}

// MergePullRequest squash-merges the pull request.
// A pull request that GitHub did not merge is not an error, it is reported
// via MergeOutcome.Merged.
func (o *Orchestrator) MergePullRequest(ctx context.Context, repo Repository, prNumber int) (*MergeOutcome, error) {
	urlStr := repo.mergeURL(prNumber)

	payload, err := o.ghClient.PutWithRetries(
		ctx,
		urlStr,
		&mergeRequest{MergeMethod: MergeMethodSquash},
		o.retryPolicy.MaxRetries,
		o.retryPolicy.Delay,
	)
	if err != nil {
		return nil, fmt.Errorf("merge request failed: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, automergeerr.NewUnexpectedResponseError(urlStr, "json object", payload)
	}

	obj, _ := decoded.(map[string]any)
	merged, _ := maputils.BoolVal(obj, "merged")

	outcome := MergeOutcome{
		Merged:  merged,
		Message: maputils.StrValOrEmpty(obj, "message"),
	}

	o.logger.Info(
		"merge result",
		logfields.Event("pull_request_merge_result"),
		logfields.Repository(repo.String()),
		logfields.PullRequest(prNumber),
		zap.Bool("merged", outcome.Merged),
		zap.String("message", outcome.Message),
	)

	o.metrics.mergeAttempted(outcome.Merged)

	return &outcome, nil
}
