package git

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	ferrors "git.home.luguber.info/inful/swaybuild/internal/foundation/errors"
)

// Typed git errors enabling structured classification without string parsing upstream.
type AuthError struct {
	Op, URL string
	Err     error
}

func (e *AuthError) Error() string { return fmt.Sprintf("%s auth error for %s: %v", e.Op, e.URL, e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Op, URL string
	Err     error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found %s: %v", e.Op, e.URL, e.Err) }
func (e *NotFoundError) Unwrap() error { return e.Err }

type UnsupportedProtocolError struct {
	Op, URL string
	Err     error
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("%s unsupported protocol %s: %v", e.Op, e.URL, e.Err)
}
func (e *UnsupportedProtocolError) Unwrap() error { return e.Err }

type RateLimitError struct {
	Op, URL string
	Err     error
}

func (e *RateLimitError) Error() string { return fmt.Sprintf("%s rate limited %s: %v", e.Op, e.URL, e.Err) }
func (e *RateLimitError) Unwrap() error { return e.Err }

type NetworkTimeoutError struct {
	Op, URL string
	Err     error
}

func (e *NetworkTimeoutError) Error() string {
	return fmt.Sprintf("%s network timeout %s: %v", e.Op, e.URL, e.Err)
}
func (e *NetworkTimeoutError) Unwrap() error { return e.Err }

// classifyCloneError wraps go-git errors into typed variants when possible.
func classifyCloneError(url string, err error) error {
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired), errors.Is(err, transport.ErrAuthorizationFailed):
		return &AuthError{Op: "clone", URL: url, Err: err}
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return &NotFoundError{Op: "clone", URL: url, Err: err}
	}

	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication") || strings.Contains(l, "auth fail") || strings.Contains(l, "invalid username or password"):
		return &AuthError{Op: "clone", URL: url, Err: err}
	case strings.Contains(l, "not found") || strings.Contains(l, "repository does not exist") || strings.Contains(l, "no such file or directory"):
		return &NotFoundError{Op: "clone", URL: url, Err: err}
	case strings.Contains(l, "unsupported protocol") || strings.Contains(l, "protocol not supported") || strings.Contains(l, "unsupported scheme"):
		return &UnsupportedProtocolError{Op: "clone", URL: url, Err: err}
	case strings.Contains(l, "rate limit") || strings.Contains(l, "too many requests"):
		return &RateLimitError{Op: "clone", URL: url, Err: err}
	case strings.Contains(l, "timeout") || strings.Contains(l, "i/o timeout"):
		return &NetworkTimeoutError{Op: "clone", URL: url, Err: err}
	}
	return fmt.Errorf("failed to clone repository %s: %w", url, err)
}

// isPermanent reports whether retrying err cannot succeed without user action.
func isPermanent(err error) bool {
	var (
		authErr  *AuthError
		notFound *NotFoundError
		proto    *UnsupportedProtocolError
	)
	return errors.As(err, &authErr) || errors.As(err, &notFound) || errors.As(err, &proto)
}

// Classify converts a clone error into a ClassifiedError carrying repository context.
func Classify(err error, repoName, url string) error {
	if err == nil {
		return nil
	}
	if ferrors.IsClassified(err) {
		return err
	}

	b := ferrors.WrapError(err, ferrors.CategoryGit, "clone failed").
		WithContext("repository", repoName).
		WithContext("url", url)

	var (
		authErr  *AuthError
		notFound *NotFoundError
		proto    *UnsupportedProtocolError
		rate     *RateLimitError
		timeout  *NetworkTimeoutError
	)
	switch {
	case errors.As(err, &authErr):
		b.WithCategory(ferrors.CategoryAuth).UserAction()
	case errors.As(err, &notFound):
		b.WithCategory(ferrors.CategoryNotFound).WithRetry(ferrors.RetryNever)
	case errors.As(err, &proto):
		b.WithCategory(ferrors.CategoryConfig).WithRetry(ferrors.RetryNever)
	case errors.As(err, &rate):
		b.WithCategory(ferrors.CategoryNetwork).RateLimit()
	case errors.As(err, &timeout):
		b.WithCategory(ferrors.CategoryNetwork).Retryable()
	default:
		b.Retryable()
	}
	return b.Build()
}
