package errorutil

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestNewNetworkErrorClassifiesTransientFailures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"timeout", timeoutErr{}, true},
		{"context deadline", context.DeadlineExceeded, true},
		{"dns failure", &net.DNSError{Name: "api.open-meteo.com", Err: "no such host"}, true},
		{"connection refused", errors.New("dial tcp 127.0.0.1:80: connect: connection refused"), true},
		{"tls failure", errors.New("x509: certificate signed by unknown authority"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			netErr := NewNetworkError("forecast request", "https://api.open-meteo.com/v1/forecast", tt.err)
			if netErr.IsRetryable() != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", netErr.IsRetryable(), tt.retryable)
			}
			if !errors.Is(netErr, tt.err) {
				t.Error("NetworkError doesn't unwrap to the original error")
			}
		})
	}
}

func TestLogNetworkErrorLevel(t *testing.T) {
	var logOutput strings.Builder
	logger := slog.New(slog.NewTextHandler(&logOutput, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogNetworkError(logger, NewNetworkError("forecast request", "https://example.test", timeoutErr{}))
	if !strings.Contains(logOutput.String(), "level=WARN") {
		t.Errorf("transient failure should log as a warning, got: %s", logOutput.String())
	}

	logOutput.Reset()
	LogNetworkError(logger, NewNetworkError("forecast request", "https://example.test", errors.New("broken pipe")))
	if !strings.Contains(logOutput.String(), "level=ERROR") {
		t.Errorf("non-transient failure should log as an error, got: %s", logOutput.String())
	}
}

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
		{http.StatusOK, false},
	}

	for _, tt := range tests {
		if got := IsRetryableStatus(tt.status); got != tt.want {
			t.Errorf("IsRetryableStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
