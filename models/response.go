package models

import "time"

// QuoteResult is one insurance plan discovered on the results page.
// Produced only by the result extractor, never mutated afterward.
type QuoteResult struct {
	PlanName string `json:"planName"`
	Monthly  int64  `json:"monthly"`
	Currency string `json:"currency"`
	Details  string `json:"details,omitempty"`
	// Franchise is the deductible text as shown on the plan card.
	Franchise string `json:"franchise,omitempty"`
}

// QuoteMetadata describes one completed scrape run.
type QuoteMetadata struct {
	QuotedAt   time.Time `json:"quotedAt"`
	DurationMs int64     `json:"durationMs"`
	TraceID    string    `json:"traceId"`
}

// DebugInfo is attached to responses when the caller requested debug output.
type DebugInfo struct {
	Steps            []string `json:"steps"`
	ScreenshotBase64 string   `json:"screenshotBase64,omitempty"`
	HTMLSnippet      string   `json:"htmlSnippet,omitempty"`
}

// QuoteResponse is the response for POST /api/v1/quote.
type QuoteResponse struct {
	Success bool   `json:"success"`
	Insurer string `json:"insurer,omitempty"`

	// InputsEcho echoes the request back so callers can correlate
	// asynchronous results without keeping their own copy.
	InputsEcho *QuoteRequest `json:"inputsEcho,omitempty"`

	Results  []QuoteResult `json:"results,omitempty"`
	Metadata QuoteMetadata `json:"metadata"`

	Debug *DebugInfo `json:"debug,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status         string `json:"status"` // "healthy" or "degraded"
	Uptime         string `json:"uptime"`
	ActiveSessions int    `json:"active_sessions"`
	Version        string `json:"version"`
}

// SnapshotResponse is the response for GET /api/v1/debug/snapshot.
type SnapshotResponse struct {
	Success          bool         `json:"success"`
	URL              string       `json:"url"`
	Title            string       `json:"title"`
	FinalURL         string       `json:"final_url"`
	State            PageState    `json:"state"`
	ScreenshotBase64 string       `json:"screenshotBase64,omitempty"`
	Error            *ErrorDetail `json:"error,omitempty"`
}

// PageState summarises the interactive surface of a rendered page. Used by
// the snapshot endpoint to help maintain the selector tables when the
// insurer changes its markup.
type PageState struct {
	Inputs  int `json:"inputs"`
	Selects int `json:"selects"`
	Buttons int `json:"buttons"`
	IFrames int `json:"iframes"`
	Forms   int `json:"forms"`
}
