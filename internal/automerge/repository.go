package automerge

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/simplesurance/automerge/internal/automergeerr"
)

type Repository struct {
	Owner          string
	RepositoryName string
}

// ParseRepository parses a repository identifier in owner/name notation.
// An *automergeerr.ConfigError is returned if s is not in this format.
func ParseRepository(s string) (Repository, error) {
	owner, name, found := strings.Cut(s, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, automergeerr.NewConfigError(
			fmt.Errorf("invalid repository %q, expected owner/name", s),
		)
	}

	return Repository{Owner: owner, RepositoryName: name}, nil
}

func (r *Repository) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.RepositoryName)
}

// perPage is the page size requested from list endpoints, it is the
// maximum that GitHub allows.
const perPage = 100

func (r *Repository) pullRequestsURL() string {
	return fmt.Sprintf(
		"repos/%s/%s/pulls?per_page=%d",
		url.PathEscape(r.Owner), url.PathEscape(r.RepositoryName), perPage,
	)
}

func (r *Repository) checkRunsURL(sha string) string {
	return fmt.Sprintf(
		"repos/%s/%s/commits/%s/check-runs?per_page=%d",
		url.PathEscape(r.Owner), url.PathEscape(r.RepositoryName), url.PathEscape(sha), perPage,
	)
}

func (r *Repository) mergeURL(prNumber int) string {
	return fmt.Sprintf("repos/%s/%s/pulls/%d/merge", url.PathEscape(r.Owner), url.PathEscape(r.RepositoryName), prNumber)
}
