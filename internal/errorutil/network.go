package errorutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	neturl "net/url"
	"strings"
)

// NetworkError wraps a failed call to one of the outbound providers
// (forecast or geocoding) with enough context to log it structurally and
// to decide whether retrying is worthwhile.
type NetworkError struct {
	Operation  string // what was being attempted, e.g. "forecast request"
	URL        string
	Underlying error
	Retryable  bool
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Operation, e.URL, e.Underlying)
}

func (e *NetworkError) Unwrap() error {
	return e.Underlying
}

// IsRetryable reports whether the failure looks transient.
func (e *NetworkError) IsRetryable() bool {
	return e.Retryable
}

// NewNetworkError classifies err and wraps it with the operation and URL.
func NewNetworkError(operation, url string, err error) *NetworkError {
	return &NetworkError{
		Operation:  operation,
		URL:        url,
		Underlying: err,
		Retryable:  isTransient(err),
	}
}

// LogNetworkError logs the error with structured context and returns it.
// Transient failures log as warnings since the breaker and retry policy
// will handle them; everything else is an error.
func LogNetworkError(logger *slog.Logger, netErr *NetworkError) *NetworkError {
	if logger == nil {
		return netErr
	}

	attrs := []any{
		slog.String("operation", netErr.Operation),
		slog.String("url", netErr.URL),
		slog.String("error", netErr.Underlying.Error()),
		slog.Bool("retryable", netErr.Retryable),
	}

	level := slog.LevelError
	if netErr.Retryable {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "Network operation failed", attrs...)
	return netErr
}

// isTransient reports whether an outbound failure is likely to clear on
// its own: timeouts, DNS hiccups, and a service that is not accepting
// connections yet.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if isTimeout(err) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return strings.Contains(err.Error(), "connection refused")
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *neturl.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// RetryableHTTPError marks a provider response whose status code suggests
// the same request could succeed later: rate limiting or a 5xx.
type RetryableHTTPError struct {
	StatusCode int
	URL        string
	Method     string
	Underlying error
}

func (e *RetryableHTTPError) Error() string {
	return fmt.Sprintf("%s %s failed with HTTP %d: %v", e.Method, e.URL, e.StatusCode, e.Underlying)
}

func (e *RetryableHTTPError) Unwrap() error {
	return e.Underlying
}

// IsRetryableStatus reports whether a status code belongs in a
// RetryableHTTPError.
func IsRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError
}

func NewRetryableHTTPError(method, url string, statusCode int, err error) *RetryableHTTPError {
	return &RetryableHTTPError{
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
		Underlying: err,
	}
}
