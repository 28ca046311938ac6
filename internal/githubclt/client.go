// Package githubclt provides a github REST API client that retries requests
// failing with transient errors.
package githubclt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/go-github/v72/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/simplesurance/automerge/internal/automergeerr"
	"github.com/simplesurance/automerge/internal/logfields"
)

const DefaultHTTPClientTimeout = time.Minute

// DefaultBaseURL is the address of the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com/"

// UserAgent is sent as User-Agent header with every request.
const UserAgent = "automerge"

// tokenType is the authorization scheme, requests are sent with the header
// "Authorization: token <TOKEN>".
const tokenType = "token"

const loggerName = "github_client"

// Client is a github REST API client.
// Every request is sent with the authorization and user-agent headers.
type Client struct {
	restClt *github.Client
	logger  *zap.Logger
}

// New returns a new github api client that authenticates with apiToken.
// If baseURL is empty, DefaultBaseURL is used.
func New(apiToken, baseURL string) (*Client, error) {
	restClt := github.NewClient(newHTTPClient(apiToken))
	restClt.UserAgent = UserAgent

	if baseURL != "" {
		u, err := parseBaseURL(baseURL)
		if err != nil {
			return nil, err
		}

		restClt.BaseURL = u
	}

	return &Client{
		restClt: restClt,
		logger:  zap.L().Named(loggerName),
	}, nil
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing github api url failed: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("github api url %q is not absolute", baseURL)
	}

	return u, nil
}

func newHTTPClient(apiToken string) *http.Client {
	if apiToken == "" {
		return &http.Client{
			Timeout: DefaultHTTPClientTimeout,
		}
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: apiToken, TokenType: tokenType},
	)

	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = DefaultHTTPClientTimeout

	return tc
}

// GetWithRetries sends a GET request to urlStr and returns the response body.
// urlStr is resolved relative to the base URL of the client.
// Transient failures are retried up to maxRetries times, waiting retryDelay
// between attempts.
// If the request did not succeed, an *automergeerr.RequestError is returned.
func (clt *Client) GetWithRetries(ctx context.Context, urlStr string, maxRetries uint64, retryDelay time.Duration) ([]byte, error) {
	return clt.doWithRetries(ctx, http.MethodGet, urlStr, nil, maxRetries, retryDelay)
}

// PutWithRetries sends a PUT request with body encoded as JSON to urlStr and
// returns the response body.
// The retry behaviour is the same then for GetWithRetries.
func (clt *Client) PutWithRetries(ctx context.Context, urlStr string, body any, maxRetries uint64, retryDelay time.Duration) ([]byte, error) {
	return clt.doWithRetries(ctx, http.MethodPut, urlStr, body, maxRetries, retryDelay)
}

func (clt *Client) doWithRetries(
	ctx context.Context,
	method, urlStr string,
	body any,
	maxRetries uint64,
	retryDelay time.Duration,
) ([]byte, error) {
	var payload bytes.Buffer
	var attempts uint64

	logger := clt.logger.With(
		zap.String("http.method", method),
		zap.String("http.url", urlStr),
	)

	op := func() error {
		attempts++
		payload.Reset()

		// the request is recreated on every attempt, the body
		// reader of a sent request is consumed
		req, err := clt.restClt.NewRequest(method, urlStr, body)
		if err != nil {
			return backoff.Permanent(err)
		}

		_, err = clt.restClt.Do(ctx, req, &payload)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		err = clt.wrapRetryableErrors(err)

		var retryErr *automergeerr.RetryableError
		if errors.As(err, &retryErr) {
			return err
		}

		return backoff.Permanent(err)
	}

	bo := backoff.WithContext(retryBackOff(maxRetries, retryDelay), ctx)

	err := backoff.RetryNotify(op, bo, func(err error, retryIn time.Duration) {
		logger.Warn(
			"request failed, retry scheduled",
			logfields.Event("github_request_retry_scheduled"),
			zap.Uint64("attempt", attempts),
			zap.Uint64("max_retries", maxRetries),
			zap.Duration("retry_in", retryIn),
			zap.Error(err),
		)
	})
	if err != nil {
		var retryErr *automergeerr.RetryableError
		if errors.As(err, &retryErr) {
			err = retryErr.Err
		}

		logger.Debug(
			"request failed",
			logfields.Event("github_request_failed"),
			zap.Uint64("attempts", attempts),
			zap.Error(err),
		)

		return nil, &automergeerr.RequestError{
			Method:   method,
			URL:      urlStr,
			Attempts: attempts,
			Err:      err,
		}
	}

	logger.Debug(
		"request succeeded",
		logfields.Event("github_request_succeeded"),
		zap.Uint64("attempts", attempts),
	)

	return payload.Bytes(), nil
}

// retryBackOff returns a constant backoff that allows maxRetries retries.
func retryBackOff(maxRetries uint64, retryDelay time.Duration) backoff.BackOff {
	if maxRetries == 0 {
		// WithMaxRetries interprets 0 as unlimited
		return &backoff.StopBackOff{}
	}

	return backoff.WithMaxRetries(backoff.NewConstantBackOff(retryDelay), maxRetries)
}

// wrapRetryableErrors wraps err into an automergeerr.RetryableError if the
// request can be repeated.
// Transport errors, rate limit errors and 5xx or 429 responses are
// retryable.
func (clt *Client) wrapRetryableErrors(err error) error {
	switch v := err.(type) {
	case *github.RateLimitError:
		clt.logger.Info(
			"rate limit exceeded",
			logfields.Event("github_api_rate_limit_exceeded"),
			zap.Int("github_api_rate_limit", v.Rate.Limit),
			zap.Time("github_api_rate_limit_reset_time", v.Rate.Reset.Time),
		)

		return automergeerr.NewRetryableError(err)

	case *github.AbuseRateLimitError:
		clt.logger.Info(
			"secondary rate limit exceeded",
			logfields.Event("github_api_secondary_rate_limit_exceeded"),
		)

		return automergeerr.NewRetryableError(err)

	case *github.ErrorResponse:
		if v.Response == nil {
			return err
		}

		if v.Response.StatusCode == http.StatusTooManyRequests ||
			(v.Response.StatusCode >= 500 && v.Response.StatusCode < 600) {
			return automergeerr.NewRetryableError(err)
		}

		return err

	case *url.Error:
		return automergeerr.NewRetryableError(err)
	}

	return err
}
