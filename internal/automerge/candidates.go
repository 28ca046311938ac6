package automerge

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/simplesurance/automerge/internal/automergeerr"
	"github.com/simplesurance/automerge/internal/logfields"
	"github.com/simplesurance/automerge/internal/maputils"
)

// BotLogin is the login of the GitHub user that authors dependency update
// pull requests. Only pull requests of this user are merged.
const BotLogin = "dependabot[bot]"

// PullRequestCandidate is an open pull request authored by BotLogin.
type PullRequestCandidate struct {
	Number      int
	HeadSHA     string
	HeadRef     string
	AuthorLogin string
}

// ListCandidatePullRequests returns the open pull requests of repo that were
// created by BotLogin, in the order the API returned them.
// Pull requests that lack the number, head sha or head ref field are
// skipped.
// If the response is not a JSON array, an
// *automergeerr.UnexpectedResponseError is returned.
func (o *Orchestrator) ListCandidatePullRequests(ctx context.Context, repo Repository) ([]*PullRequestCandidate, error) {
	urlStr := repo.pullRequestsURL()
	logger := o.logger.With(logfields.Repository(repo.String()))

	payload, err := o.ghClient.GetWithRetries(ctx, urlStr, o.retryPolicy.MaxRetries, o.retryPolicy.Delay)
	if err != nil {
		return nil, fmt.Errorf("listing pull requests failed: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, automergeerr.NewUnexpectedResponseError(urlStr, "json array", payload)
	}

	prs, ok := decoded.([]any)
	if !ok {
		return nil, automergeerr.NewUnexpectedResponseError(urlStr, "json array", payload)
	}

	result := make([]*PullRequestCandidate, 0, len(prs))

	for i, entry := range prs {
		pr, ok := entry.(map[string]any)
		if !ok {
			logger.Debug(
				"ignoring pull request list entry, it is not a json object",
				logfields.Event("pull_request_entry_ignored"),
				zap.Int("index", i),
			)

			continue
		}

		if login, _ := maputils.StrVal(pr, "user", "login"); login != BotLogin {
			continue
		}

		candidate, ok := toCandidate(pr)
		if !ok {
			logger.Debug(
				"ignoring pull request, number, head sha or head ref field is missing",
				logfields.Event("pull_request_entry_ignored"),
				zap.Int("index", i),
			)

			continue
		}

		if o.filter != nil {
			match, err := o.filter.Match(ctx, pr)
			if err != nil {
				return nil, fmt.Errorf("filtering pull request #%d failed: %w", candidate.Number, err)
			}

			if !match {
				logger.Info(
					"pull request does not match filter query, ignoring it",
					logfields.Event("pull_request_filtered"),
					logfields.PullRequest(candidate.Number),
					zap.Stringer("filter_query", o.filter),
				)

				continue
			}
		}

		logger.Info(
			"found candidate pull request",
			logfields.Event("pull_request_candidate_found"),
			logfields.PullRequest(candidate.Number),
			logfields.Author(candidate.AuthorLogin),
			logfields.Branch(candidate.HeadRef),
			logfields.Commit(candidate.HeadSHA),
		)

		o.metrics.candidateFound()

		result = append(result, candidate)
	}

	return result, nil
}

func toCandidate(pr map[string]any) (*PullRequestCandidate, bool) {
	number, ok := maputils.UintVal(pr, "number")
	if !ok || number > math.MaxInt32 {
		return nil, false
	}

	sha, ok := maputils.StrVal(pr, "head", "sha")
	if !ok {
		return nil, false
	}

	ref, ok := maputils.StrVal(pr, "head", "ref")
	if !ok {
		return nil, false
	}

	return &PullRequestCandidate{
		Number:      int(number),
		HeadSHA:     sha,
		HeadRef:     ref,
		AuthorLogin: maputils.StrValOrEmpty(pr, "user", "login"),
	}, true
}
