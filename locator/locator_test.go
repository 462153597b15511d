package locator

import (
	"testing"
	"time"

	"github.com/segubroker/cotizador/models"
)

func TestLocateQuick_CandidatesOnly(t *testing.T) {
	trace := models.NewTraceLog()
	tbl := Table{
		FieldCookieAccept: {
			// No candidate selectors, but a scan query and profile that the
			// full strategy would run against the page.
			Scan: scanButtons,
			Profile: Profile{
				Positive: map[string]float64{"aceptar": 5},
				Floor:    3,
			},
		},
	}
	l := New(tbl, trace)

	// A nil page panics the moment anything dereferences it. The quick
	// path must give up after the candidate list without touching the
	// heuristic scan or iframe recursion.
	m, err := l.LocateQuick(nil, FieldCookieAccept, time.Second)
	if m != nil {
		t.Fatal("expected a miss")
	}
	if err == nil {
		t.Fatal("expected SELECTOR_NOT_FOUND")
	}
	se := models.AsScrapeError(err)
	if se.Code != models.ErrCodeSelector {
		t.Errorf("code = %s, want %s", se.Code, models.ErrCodeSelector)
	}
	if se.Retryable {
		t.Error("selector misses are not retryable")
	}
}

func TestLocateQuick_UnknownField(t *testing.T) {
	l := New(Table{}, models.NewTraceLog())
	if _, err := l.LocateQuick(nil, FieldGNC, time.Second); err == nil {
		t.Fatal("expected error for field missing from the table")
	}
}
