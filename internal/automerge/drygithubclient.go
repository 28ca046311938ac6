package automerge

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// DryRunMergeMessage is the message of the simulated merge response.
const DryRunMergeMessage = "dry run: merge simulated"

// DryGithubClient is a github-client that does not do any changes on github.
// PUT requests are simulated and reported as not merged.
// GET requests are forwarded to the wrapped GithubClient.
type DryGithubClient struct {
	clt    GithubClient
	logger *zap.Logger
}

func NewDryGithubClient(clt GithubClient, logger *zap.Logger) *DryGithubClient {
	return &DryGithubClient{
		clt:    clt,
		logger: logger.Named("dry_github_client"),
	}
}

func (c *DryGithubClient) GetWithRetries(ctx context.Context, urlStr string, maxRetries uint64, retryDelay time.Duration) ([]byte, error) {
	return c.clt.GetWithRetries(ctx, urlStr, maxRetries, retryDelay)
}

func (c *DryGithubClient) PutWithRetries(_ context.Context, urlStr string, _ any, _ uint64, _ time.Duration) ([]byte, error) {
	c.logger.Info(
		"simulated merging of pull request, no changes done on github",
		zap.String("http.url", urlStr),
	)

	return json.Marshal(map[string]any{
		"merged":  false,
		"message": DryRunMergeMessage,
	})
}
