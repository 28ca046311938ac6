package automerge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/simplesurance/automerge/internal/automergeerr"
)

// FilterQuery is a jq query that is evaluated against the JSON object of a
// pull request, as returned by the GitHub pull request list endpoint.
type FilterQuery struct {
	query *gojq.Query
}

// NewFilterQuery parses jqQuery.
// An *automergeerr.ConfigError is returned if it is not a valid jq query.
func NewFilterQuery(jqQuery string) (*FilterQuery, error) {
	query, err := gojq.Parse(jqQuery)
	if err != nil {
		return nil, automergeerr.NewConfigError(fmt.Errorf("parsing filter query %q failed: %w", jqQuery, err))
	}

	return &FilterQuery{query: query}, nil
}

func goJQIterToSlice(iter gojq.Iter) ([]any, []error) {
	var result []any
	var errs []error

	for {
		res, ok := iter.Next()
		if !ok {
			return result, errs
		}

		if err, isErr := res.(error); isErr {
			errs = append(errs, err)
			continue
		}

		result = append(result, res)
	}
}

func errString(errs []error) string {
	var result strings.Builder

	for i, err := range errs {
		if i > 0 {
			result.WriteString("; ")
		}

		result.WriteString(fmt.Sprintf("error %d: %s", i, err))
	}

	return result.String()
}

// Match evaluates the query for pr.
// The query must produce exactly 1 boolean result, otherwise an
// *automergeerr.FilterQueryError is returned.
func (f *FilterQuery) Match(ctx context.Context, pr map[string]any) (bool, error) {
	result, errs := goJQIterToSlice(f.query.RunWithContext(ctx, pr))
	if len(errs) != 0 {
		return false, f.queryError(fmt.Errorf("query returned errors: %s", errString(errs)))
	}

	if len(result) == 0 {
		return false, f.queryError(errors.New("query returned 0 results, expected 1"))
	}

	if len(result) > 1 {
		return false, f.queryError(fmt.Errorf("query returned multiple results, expected 1, result: '%+v'", result))
	}

	val, ok := result[0].(bool)
	if !ok {
		return false, f.queryError(fmt.Errorf("query returned non-bool result: %+v (%T)", result[0], result[0]))
	}

	return val, nil
}

func (f *FilterQuery) queryError(err error) error {
	return &automergeerr.FilterQueryError{
		Query: f.query.String(),
		Err:   err,
	}
}

func (f *FilterQuery) String() string {
	return f.query.String()
}
