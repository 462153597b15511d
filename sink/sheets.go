package sink

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// SheetsSink posts flat quote records to the spreadsheet-persistence
// endpoint. The endpoint appends one row per record.
type SheetsSink struct {
	client *resty.Client
	url    string
}

// NewSheetsSink creates a sink with its own bounded-timeout HTTP client.
func NewSheetsSink(url string, timeout time.Duration) *SheetsSink {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)
	return &SheetsSink{client: client, url: url}
}

// Append sends one record. Non-2xx responses are errors so the caller can
// log them; records are never retried.
func (s *SheetsSink) Append(quoteType string, formData map[string]any) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"quoteType": quoteType,
			"formData":  formData,
		}).
		Post(s.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("sheets sink returned %s", resp.Status())
	}
	return nil
}
