package automerge

import (
	"testing"

	"github.com/golang/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/simplesurance/automerge/internal/automerge/mocks"
)

const repoOwner = "testman"
const repoName = "repo"

var testRepo = Repository{Owner: repoOwner, RepositoryName: repoName}

const (
	pullsURL = "repos/testman/repo/pulls?per_page=100"
)

func checkRunsURL(sha string) string {
	return "repos/testman/repo/commits/" + sha + "/check-runs?per_page=100"
}

func newTestOrchestrator(t *testing.T, opts ...Option) (*Orchestrator, *mocks.MockGithubClient) {
	t.Helper()

	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	mockctrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockctrl)

	return NewOrchestrator(clt, opts...), clt
}

// newObservedOrchestrator returns an orchestrator whose info log messages
// are recorded in the returned ObservedLogs.
func newObservedOrchestrator(t *testing.T, opts ...Option) (*Orchestrator, *mocks.MockGithubClient, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.InfoLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))

	mockctrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockctrl)

	return NewOrchestrator(clt, opts...), clt, logs
}

// mockGetCall configures the mock to return payload for exactly 1 GET
// request to urlStr with the default retry policy.
func mockGetCall(clt *mocks.MockGithubClient, urlStr, payload string) *gomock.Call {
	return clt.
		EXPECT().
		GetWithRetries(gomock.Any(), gomock.Eq(urlStr), gomock.Eq(uint64(3)), gomock.Eq(DefaultRetryPolicy.Delay)).
		Return([]byte(payload), nil)
}

func mockFailedGetCall(clt *mocks.MockGithubClient, urlStr string, err error) *gomock.Call {
	return clt.
		EXPECT().
		GetWithRetries(gomock.Any(), gomock.Eq(urlStr), gomock.Any(), gomock.Any()).
		Return(nil, err)
}

// mockMergeCall configures the mock to return payload for exactly 1 squash
// merge request of the pull request prNumber.
func mockMergeCall(clt *mocks.MockGithubClient, prNumber int, payload string) *gomock.Call {
	return clt.
		EXPECT().
		PutWithRetries(
			gomock.Any(),
			gomock.Eq(testRepo.mergeURL(prNumber)),
			gomock.Eq(&mergeRequest{MergeMethod: "squash"}),
			gomock.Eq(uint64(3)),
			gomock.Eq(DefaultRetryPolicy.Delay),
		).
		Return([]byte(payload), nil)
}

func mockFailedMergeCall(clt *mocks.MockGithubClient, prNumber int, err error) *gomock.Call {
	return clt.
		EXPECT().
		PutWithRetries(gomock.Any(), gomock.Eq(testRepo.mergeURL(prNumber)), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, err)
}

const checksSucceededPayload = `{"total_count":2,"check_runs":[
	{"name":"ci","status":"completed","conclusion":"success"},
	{"name":"lint","status":"completed","conclusion":"success"}
]}`

const checksFailedPayload = `{"total_count":2,"check_runs":[
	{"name":"ci","status":"completed","conclusion":"success"},
	{"name":"lint","status":"completed","conclusion":"failure"}
]}`

const mergedPayload = `{"sha":"6dcb09b5b57875f334f61aebed695e2e4193db5e","merged":true,"message":"Pull Request successfully merged"}`
