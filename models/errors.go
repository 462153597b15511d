package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeBrowserLaunch = "BROWSER_LAUNCH_FAILED"
	ErrCodeNavTimeout    = "NAVIGATION_TIMEOUT"
	ErrCodeSelector      = "SELECTOR_NOT_FOUND"
	ErrCodeAntibot       = "ANTIBOT_BLOCK"
	ErrCodeNoResults     = "NO_RESULTS"
	ErrCodeUnexpected    = "UNEXPECTED"
)

// HTTP-surface codes used only by middleware responses; they never occur
// inside the scrape pipeline.
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeRateLimited  = "RATE_LIMITED"
)

// retryableByCode records the default retryability of each error code.
// VALIDATION_ERROR is never retryable (the input itself is wrong),
// SELECTOR_NOT_FOUND means the target markup changed and needs selector
// maintenance, and ANTIBOT_BLOCK means retrying the same strategy is
// pointless. Everything else is a transient condition worth retrying.
var retryableByCode = map[string]bool{
	ErrCodeValidation:    false,
	ErrCodeBrowserLaunch: true,
	ErrCodeNavTimeout:    true,
	ErrCodeSelector:      false,
	ErrCodeAntibot:       false,
	ErrCodeNoResults:     true,
	ErrCodeUnexpected:    true,
}

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// ScrapeError is the internal error type carrying an error code and a
// retryability hint. It implements the error interface and supports error
// wrapping via Unwrap.
type ScrapeError struct {
	Code      string
	Message   string
	Retryable bool
	Err       error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError. Retryability is derived from
// the code's default.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{
		Code:      code,
		Message:   message,
		Retryable: retryableByCode[code],
		Err:       err,
	}
}

// AsScrapeError returns err as a *ScrapeError, downgrading anything
// unclassified to UNEXPECTED. This is the pipeline-boundary catch-all.
func AsScrapeError(err error) *ScrapeError {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return NewScrapeError(ErrCodeUnexpected, err.Error(), err)
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message, Retryable: e.Retryable}
}
