// Package automerge squash-merges dependabot Pull-Requests of a GitHub
// repository.
//
// A run lists the open Pull-Requests of the repository and keeps the ones
// that were created by the dependabot[bot] user. For every candidate the
// check runs of its head commit are retrieved. When all of them completed
// successfully, the Pull-Request is merged via the squash merge method.
// Commits without any check runs are treated as passed.
//
// Candidates are processed sequentially in the order returned by GitHub.
// The first error terminates the run, remaining candidates are not
// evaluated. A Pull-Request that GitHub refuses to merge is not an error.
//
// The GitHub API is accessed via the GithubClient interface. Requests are
// retried according to the RetryPolicy of the Orchestrator.
package automerge
