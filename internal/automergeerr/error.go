// Package automergeerr defines the error types that terminate an automerge
// run.
package automergeerr

import (
	"fmt"
)

// RetryableError marks a failure as transient. The operation that returned
// it can be repeated.
type RetryableError struct {
	// Err is the wrapped original error
	Err error
}

func NewRetryableError(originalErr error) *RetryableError {
	return &RetryableError{Err: originalErr}
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s", e.Err)
}

// ConfigError is returned when the process is misconfigured, e.g. a required
// environment variable is missing. It is raised before any API call is made.
type ConfigError struct {
	Err error
}

func NewConfigError(originalErr error) *ConfigError {
	return &ConfigError{Err: originalErr}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Err)
}

// RequestError is returned when an HTTP request did not succeed, either
// because all retries were exhausted or because the failure was permanent.
type RequestError struct {
	Method string
	URL    string
	// Attempts is the number of times the request was sent.
	Attempts uint64
	// Err is the error of the last attempt.
	Err error
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempt(s): %s", e.Method, e.URL, e.Attempts, e.Err)
}

// UnexpectedResponseError is returned when the top-level structure of a
// response payload does not match what the endpoint is documented to return.
type UnexpectedResponseError struct {
	URL      string
	Expected string
	Payload  []byte
}

func NewUnexpectedResponseError(url, expected string, payload []byte) *UnexpectedResponseError {
	return &UnexpectedResponseError{
		URL:      url,
		Expected: expected,
		Payload:  payload,
	}
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response from %s, expected %s: %s", e.URL, e.Expected, e.Payload)
}

// FilterQueryError is returned when the pull request filter query can not be
// evaluated to a single boolean.
type FilterQueryError struct {
	Query string
	Err   error
}

func (e *FilterQueryError) Unwrap() error {
	return e.Err
}

func (e *FilterQueryError) Error() string {
	return fmt.Sprintf("evaluating filter query %q failed: %s", e.Query, e.Err)
}
