package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TransientError marks a generation failure worth retrying: network errors,
// timeouts, rate limits, server-side failures
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient generation failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PolicyError marks content rejected by the backend. Retrying the same
// prompt cannot succeed; the section is marked failed instead.
type PolicyError struct {
	Err error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("content rejected by backend: %v", e.Err)
}

func (e *PolicyError) Unwrap() error { return e.Err }

// IsTransient reports whether the error is eligible for retry
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsPolicy reports whether the error is a content-policy rejection
func IsPolicy(err error) bool {
	var p *PolicyError
	return errors.As(err, &p)
}

// policyMarkers appear in API error types/codes when content is rejected
var policyMarkers = []string{
	"content_policy", "content_filter", "moderation", "policy_violation",
}

// classifyHTTP maps an API error to the retry taxonomy based on HTTP status
// and the backend's error type/message
func classifyHTTP(status int, detail string, err error) error {
	lower := strings.ToLower(detail)
	for _, marker := range policyMarkers {
		if strings.Contains(lower, marker) {
			return &PolicyError{Err: err}
		}
	}

	switch {
	case status == http.StatusTooManyRequests,
		status == http.StatusRequestTimeout,
		status >= 500:
		return &TransientError{Err: err}
	}
	return err
}

// classifyCallError maps transport-level failures (no HTTP status available).
// Caller cancellation propagates as-is; everything else (DNS, connection
// reset, deadline) is treated as transient.
func classifyCallError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &TransientError{Err: err}
}
