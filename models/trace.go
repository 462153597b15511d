package models

import (
	"fmt"
	"time"
)

// TraceLog is an ordered, append-only sequence of human-readable step
// descriptions accumulated during one scrape run. The sequencer is
// single-threaded, so no locking is needed; a fresh TraceLog is created
// per request and never shared across flows.
type TraceLog struct {
	start   time.Time
	entries []string
}

// NewTraceLog creates a TraceLog anchored at the current time.
func NewTraceLog() *TraceLog {
	return &TraceLog{start: time.Now()}
}

// Add appends a step description, prefixed with the elapsed time since the
// run started.
func (t *TraceLog) Add(format string, args ...any) {
	elapsed := time.Since(t.start).Round(time.Millisecond)
	t.entries = append(t.entries, fmt.Sprintf("[%s] %s", elapsed, fmt.Sprintf(format, args...)))
}

// Steps returns a copy of the accumulated entries.
func (t *TraceLog) Steps() []string {
	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of recorded steps.
func (t *TraceLog) Len() int { return len(t.entries) }
