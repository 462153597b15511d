// Package sink sends quote outcomes to best-effort collaborator services:
// a spreadsheet-persistence endpoint and an email notifier. Sink calls run
// under their own short timeout and their failures are logged, never
// surfaced; they must not alter the primary response.
package sink

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segubroker/cotizador/config"
	"github.com/segubroker/cotizador/models"
)

// QuoteRecord is the flat outcome record handed to the sinks after a
// successful quote.
type QuoteRecord struct {
	Request  *models.QuoteRequest
	Results  []models.QuoteResult
	TraceID  string
	Duration time.Duration
	Source   string
}

// Sinks bundles the configured collaborators. Either may be nil when its
// configuration is absent.
type Sinks struct {
	sheets *SheetsSink
	email  *EmailSink
}

// New builds the sink set from config; unconfigured sinks are skipped.
func New(cfg config.SinkConfig) *Sinks {
	s := &Sinks{}
	if cfg.SheetsURL != "" {
		s.sheets = NewSheetsSink(cfg.SheetsURL, cfg.Timeout)
	}
	if cfg.SMTPHost != "" && cfg.EmailTo != "" {
		s.email = NewEmailSink(cfg)
	}
	return s
}

// RecordQuote persists the quote and sends a notification. Designed to be
// called from a fire-and-forget goroutine; every failure path just logs.
func (s *Sinks) RecordQuote(rec QuoteRecord) {
	if s == nil {
		return
	}
	if s.sheets != nil {
		if err := s.sheets.Append("Meridional Auto Quotes", flatten(rec)); err != nil {
			slog.Warn("sheets sink failed", "traceId", rec.TraceID, "error", err)
		}
	}
	if s.email != nil {
		subject := fmt.Sprintf("Nueva cotización (%d planes)", len(rec.Results))
		if err := s.email.Send(subject, summaryText(rec)); err != nil {
			slog.Warn("email sink failed", "traceId", rec.TraceID, "error", err)
		}
	}
}

// flatten turns a quote outcome into the flat key/value record the
// persistence endpoint stores as one spreadsheet row.
func flatten(rec QuoteRecord) map[string]any {
	data := map[string]any{
		"mode":          rec.Request.Mode,
		"licensePlate":  rec.Request.LicensePlate,
		"paymentMethod": rec.Request.PaymentMethod,
		"isParticular":  rec.Request.Usage.IsParticular,
		"isZeroKm":      rec.Request.Flags != nil && rec.Request.Flags.IsZeroKm,
		"hasGNC":        rec.Request.Flags != nil && rec.Request.Flags.HasGNC,
		"resultsCount":  len(rec.Results),
		"durationMs":    rec.Duration.Milliseconds(),
		"traceId":       rec.TraceID,
		"sourceUrl":     rec.Source,
	}
	if v := rec.Request.Vehicle; v != nil {
		data["year"] = v.Year
		data["brand"] = v.Brand
		data["model"] = v.Model
		data["version"] = v.Version
	}
	if len(rec.Results) > 0 {
		top := rec.Results[0]
		data["topPlanName"] = top.PlanName
		data["topPlanMonthly"] = top.Monthly
		data["currency"] = top.Currency
	}
	return data
}

func summaryText(rec QuoteRecord) string {
	if len(rec.Results) == 0 {
		return fmt.Sprintf("Cotización %s sin resultados (trace %s)", rec.Request.Mode, rec.TraceID)
	}
	top := rec.Results[0]
	return fmt.Sprintf(
		"Cotización %s: %d planes, mejor plan %q a %d %s/mes (trace %s, %dms)",
		rec.Request.Mode, len(rec.Results), top.PlanName, top.Monthly, top.Currency,
		rec.TraceID, rec.Duration.Milliseconds(),
	)
}
