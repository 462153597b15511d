// Package scraper implements the quote pipeline: browser session →
// form-filling sequencer → result extraction, with classified errors and a
// per-request trace.
package scraper

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"github.com/segubroker/cotizador/browser"
	"github.com/segubroker/cotizador/config"
	"github.com/segubroker/cotizador/locator"
	"github.com/segubroker/cotizador/models"
	"github.com/segubroker/cotizador/sink"
)

const clickButton = proto.InputMouseButtonLeft

// Scraper runs quote requests against the insurer's page. It is stateless
// across requests: every call to Quote launches and tears down its own
// isolated browser session.
type Scraper struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	table      locator.Table
	sinks      *sink.Sinks
}

// New creates a Scraper. The selector table is validated once here so a
// malformed entry surfaces at startup, not mid-request.
func New(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, table locator.Table, sinks *sink.Sinks) (*Scraper, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("selector table: %w", err)
	}
	return &Scraper{
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
		table:      table,
		sinks:      sinks,
	}, nil
}

// Quote runs one end-to-end scrape.
//
// Lifecycle:
//
//  1. Validate          – malformed requests never reach browser launch
//  2. Timeout guard     – hard deadline on the entire operation
//  3. Launch session    – isolated browser, DEFER close (leak prevention)
//  4. Sequence          – navigate, fill, submit (state machine)
//  5. Extract           – plan cards or terminal classification
//  6. Persist           – fire-and-forget sinks, never blocks the response
//
// Any error escaping the steps is downgraded to a classified ScrapeError;
// the deferred session close runs on every path.
func (s *Scraper) Quote(ctx context.Context, req *models.QuoteRequest) (resp *models.QuoteResponse, err error) {
	startedAt := time.Now()
	traceID := uuid.NewString()
	trace := models.NewTraceLog()

	// ── 1. Validate ───────────────────────────────────────────────────
	req.Defaults()
	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	// ── 2. Timeout guard ──────────────────────────────────────────────
	timeout := s.scraperCfg.DefaultTimeout
	if timeout > s.scraperCfg.MaxTimeout {
		timeout = s.scraperCfg.MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Boundary catch-all: anything panicking below becomes UNEXPECTED
	// instead of killing the process. The deferred session close has
	// already run by the time this fires.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("quote pipeline panic", "traceId", traceID, "panic", r)
			err = models.NewScrapeError(models.ErrCodeUnexpected, fmt.Sprintf("pipeline panic: %v", r), nil)
			resp = nil
		}
	}()

	// ── 3. Launch session ─────────────────────────────────────────────
	trace.Add("launching browser session")
	session, launchErr := browser.Launch(ctx, s.browserCfg)
	if launchErr != nil {
		return nil, launchErr
	}
	defer session.Close()

	page := session.Page().Context(ctx)

	// ── 4. Sequence ───────────────────────────────────────────────────
	loc := locator.New(s.table, trace)
	seq := newSequencer(page, loc, trace, req, s.scraperCfg)
	if seqErr := seq.Run(ctx); seqErr != nil {
		return nil, s.attachDebug(models.AsScrapeError(seqErr), req, trace)
	}

	// ── 5. Extract ────────────────────────────────────────────────────
	ex := &extractor{trace: trace}
	results, capture, exErr := ex.Extract(page, req.Debug)
	if exErr != nil {
		return nil, s.attachDebug(models.AsScrapeError(exErr), req, trace)
	}

	resp = &models.QuoteResponse{
		Success:    true,
		Insurer:    s.scraperCfg.Insurer,
		InputsEcho: req,
		Results:    results,
		Metadata: models.QuoteMetadata{
			QuotedAt:   startedAt.UTC(),
			DurationMs: time.Since(startedAt).Milliseconds(),
			TraceID:    traceID,
		},
	}
	if req.Debug {
		resp.Debug = &models.DebugInfo{Steps: trace.Steps()}
		if capture != nil {
			resp.Debug.ScreenshotBase64 = capture.ScreenshotBase64
			resp.Debug.HTMLSnippet = capture.HTMLSnippet
		}
	}

	// ── 6. Persist (fire-and-forget) ─────────────────────────────────
	if s.sinks != nil {
		go s.sinks.RecordQuote(sink.QuoteRecord{
			Request:  req,
			Results:  results,
			TraceID:  traceID,
			Duration: time.Since(startedAt),
			Source:   seq.targetURL(),
		})
	}

	slog.Info("quote completed",
		"traceId", traceID,
		"mode", req.Mode,
		"results", len(results),
		"durationMs", resp.Metadata.DurationMs,
	)
	return resp, nil
}

// attachDebug logs the failure and, for debug-mode callers, wraps the
// error in a DebugError so the handler can attach the step trace to the
// response.
func (s *Scraper) attachDebug(serr *models.ScrapeError, req *models.QuoteRequest, trace *models.TraceLog) error {
	slog.Warn("quote failed",
		"code", serr.Code,
		"retryable", serr.Retryable,
		"steps", trace.Len(),
		"error", serr.Message,
	)
	if req.Debug {
		return &DebugError{ScrapeError: serr, Steps: trace.Steps()}
	}
	return serr
}

// DebugError wraps a ScrapeError together with the step trace so error
// responses can carry debug output when the caller asked for it.
type DebugError struct {
	*models.ScrapeError
	Steps []string
}

func (e *DebugError) Unwrap() error { return e.ScrapeError }

// Snapshot navigates to the target page and reports its interactive
// surface plus a screenshot. Used for selector-table maintenance when the
// insurer ships new markup.
func (s *Scraper) Snapshot(ctx context.Context, sourceURL string) (*models.SnapshotResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.scraperCfg.DefaultTimeout)
	defer cancel()

	session, err := browser.Launch(ctx, s.browserCfg)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	url := sourceURL
	if url == "" {
		url = s.scraperCfg.TargetURL
	}

	page := session.Page().Context(ctx)
	if err := page.Timeout(s.scraperCfg.NavigationTimeout).Navigate(url); err != nil {
		return nil, classifyNavError(err)
	}
	_ = page.WaitDOMStable(300*time.Millisecond, 0.1)

	res, err := page.Eval(`() => ({
		inputs: document.querySelectorAll('input').length,
		selects: document.querySelectorAll('select').length,
		buttons: document.querySelectorAll('button, input[type="submit"]').length,
		iframes: document.querySelectorAll('iframe').length,
		forms: document.querySelectorAll('form').length,
		title: document.title,
		href: window.location.href
	})`)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeUnexpected, "failed to inspect page", err)
	}

	v := res.Value
	snap := &models.SnapshotResponse{
		Success:  true,
		URL:      url,
		Title:    v.Get("title").Str(),
		FinalURL: v.Get("href").Str(),
		State: models.PageState{
			Inputs:  v.Get("inputs").Int(),
			Selects: v.Get("selects").Int(),
			Buttons: v.Get("buttons").Int(),
			IFrames: v.Get("iframes").Int(),
			Forms:   v.Get("forms").Int(),
		},
	}

	if shot, err := page.Screenshot(false, nil); err == nil {
		snap.ScreenshotBase64 = base64.StdEncoding.EncodeToString(shot)
	}
	return snap, nil
}
