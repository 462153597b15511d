package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewScrapeError_Retryability(t *testing.T) {
	tests := []struct {
		code      string
		retryable bool
	}{
		{ErrCodeValidation, false},
		{ErrCodeBrowserLaunch, true},
		{ErrCodeNavTimeout, true},
		{ErrCodeSelector, false},
		{ErrCodeAntibot, false},
		{ErrCodeNoResults, true},
		{ErrCodeUnexpected, true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			se := NewScrapeError(tt.code, "boom", nil)
			if se.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", se.Retryable, tt.retryable)
			}
		})
	}
}

func TestAsScrapeError(t *testing.T) {
	orig := NewScrapeError(ErrCodeNavTimeout, "page load exceeded budget", errors.New("context deadline exceeded"))

	if got := AsScrapeError(orig); got != orig {
		t.Error("bare ScrapeError should pass through unchanged")
	}

	wrapped := fmt.Errorf("step navigate: %w", orig)
	if got := AsScrapeError(wrapped); got != orig {
		t.Error("wrapped ScrapeError should unwrap to the original")
	}

	plain := AsScrapeError(errors.New("something else"))
	if plain.Code != ErrCodeUnexpected {
		t.Errorf("foreign error code = %s, want %s", plain.Code, ErrCodeUnexpected)
	}
	if !plain.Retryable {
		t.Error("UNEXPECTED errors are retryable by default")
	}
}

func TestScrapeError_Unwrap(t *testing.T) {
	cause := errors.New("net down")
	se := NewScrapeError(ErrCodeBrowserLaunch, "launch failed", cause)
	if !errors.Is(se, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}
