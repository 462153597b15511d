package locator

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"

	"github.com/segubroker/cotizador/models"
)

// minCandidateTimeout is the smallest per-candidate wait; below this a
// selector barely gets a chance on a slow page.
const minCandidateTimeout = 300 * time.Millisecond

// Match is a successfully located element, tagged with how it was found.
type Match struct {
	Element *rod.Element

	// Selector is the candidate that resolved, or "heuristic" when the
	// scored fallback produced the element.
	Selector string

	// Frame is empty for the main document, or "iframe[i]" when the
	// element was found inside a same-origin iframe.
	Frame string
}

// Locator resolves semantic fields against a live page using a fixed
// fallback chain: static candidate selectors, then the heuristic scorer,
// then the same two stages inside same-origin iframes (depth one).
// Every outcome is recorded in the trace.
type Locator struct {
	table Table
	trace *models.TraceLog
}

// New creates a Locator over an explicit field table. The table is shared
// read-only; the trace belongs to the current request.
func New(table Table, trace *models.TraceLog) *Locator {
	return &Locator{table: table, trace: trace}
}

// Locate maps a semantic field to a visible, enabled element within the
// given total budget. Failure returns a non-retryable SELECTOR_NOT_FOUND;
// callers treat that as fatal for required fields and as skip-and-continue
// for optional ones.
func (l *Locator) Locate(page *rod.Page, field Field, budget time.Duration) (*Match, error) {
	spec, ok := l.table[field]
	if !ok {
		return nil, models.NewScrapeError(
			models.ErrCodeSelector,
			fmt.Sprintf("no selector table entry for field %s", field),
			nil,
		)
	}

	if m := l.locateIn(page, field, spec, budget, ""); m != nil {
		return m, nil
	}

	// Same-origin iframes, bounded depth of one.
	if m := l.locateInFrames(page, field, spec, budget); m != nil {
		return m, nil
	}

	l.trace.Add("locate %s: not found (tried %d selectors + heuristic + iframes)",
		field, len(spec.Selectors))
	return nil, models.NewScrapeError(
		models.ErrCodeSelector,
		fmt.Sprintf("field %s not found on page", field),
		nil,
	)
}

// LocateQuick resolves a field from its candidate selectors only, skipping
// the heuristic scan and the iframe recursion. Meant for optional controls
// like consent banners, where absence is a normal page state and the small
// budget must not grow into a full-page search.
func (l *Locator) LocateQuick(page *rod.Page, field Field, budget time.Duration) (*Match, error) {
	spec, ok := l.table[field]
	if !ok {
		return nil, models.NewScrapeError(
			models.ErrCodeSelector,
			fmt.Sprintf("no selector table entry for field %s", field),
			nil,
		)
	}

	if m := l.tryCandidates(page, field, spec, budget, ""); m != nil {
		return m, nil
	}

	l.trace.Add("locate %s: not found (candidates only)", field)
	return nil, models.NewScrapeError(
		models.ErrCodeSelector,
		fmt.Sprintf("field %s not found on page", field),
		nil,
	)
}

// locateIn runs the two-stage strategy (candidates, then scorer) inside one
// frame context. frameTag is "" for the main document.
func (l *Locator) locateIn(page *rod.Page, field Field, spec Spec, budget time.Duration, frameTag string) *Match {
	if m := l.tryCandidates(page, field, spec, budget, frameTag); m != nil {
		return m
	}
	if m := l.tryHeuristic(page, field, spec, frameTag); m != nil {
		return m
	}
	return nil
}

// tryCandidates walks the ordered selector list, dividing the budget
// across candidates so one dead selector cannot starve the rest.
func (l *Locator) tryCandidates(page *rod.Page, field Field, spec Spec, budget time.Duration, frameTag string) *Match {
	if len(spec.Selectors) == 0 {
		return nil
	}
	sub := budget / time.Duration(len(spec.Selectors))
	if sub < minCandidateTimeout {
		sub = minCandidateTimeout
	}

	for _, sel := range spec.Selectors {
		el, err := page.Timeout(sub).Element(sel)
		if err != nil {
			continue
		}
		el = el.CancelTimeout()
		if !usable(el) {
			continue
		}
		l.trace.Add("locate %s: matched selector %q%s", field, sel, frameSuffix(frameTag))
		return &Match{Element: el, Selector: sel, Frame: frameTag}
	}
	return nil
}

// tryHeuristic enumerates plausible candidates and picks the best-scoring
// profile above the field's confidence floor. Heuristic results are logged
// loudly since they are educated guesses, not selector matches.
func (l *Locator) tryHeuristic(page *rod.Page, field Field, spec Spec, frameTag string) *Match {
	if spec.Scan == "" {
		return nil
	}
	els, err := page.Elements(spec.Scan)
	if err != nil || len(els) == 0 {
		return nil
	}

	profiles := make([]ElementProfile, 0, len(els))
	for i, el := range els {
		p, err := profileOf(el, i)
		if err != nil {
			continue
		}
		profiles = append(profiles, p)
	}

	best, ok := Best(profiles, spec.Profile)
	if !ok {
		return nil
	}

	el := els[best.Index]
	l.trace.Add("locate %s: heuristic pick #%d (tag=%s id=%q name=%q)%s",
		field, best.Index, best.Tag, best.ID, best.Name, frameSuffix(frameTag))
	return &Match{Element: el, Selector: "heuristic", Frame: frameTag}
}

// locateInFrames reapplies the two-stage strategy inside each iframe.
// Frames that cannot be entered (cross-origin, detached) are skipped.
// A deliberately small per-frame budget keeps a page full of ad iframes
// from consuming the whole request.
func (l *Locator) locateInFrames(page *rod.Page, field Field, spec Spec, budget time.Duration) *Match {
	frames, err := page.Elements("iframe")
	if err != nil || len(frames) == 0 {
		return nil
	}

	frameBudget := budget / time.Duration(len(frames)*2)
	if frameBudget < minCandidateTimeout {
		frameBudget = minCandidateTimeout
	}

	for i, frameEl := range frames {
		framePage, err := frameEl.Frame()
		if err != nil {
			continue
		}
		tag := fmt.Sprintf("iframe[%d]", i)
		if m := l.locateIn(framePage, field, spec, frameBudget, tag); m != nil {
			return m
		}
	}
	return nil
}

// profileOf extracts the stable attribute record for one element in a
// single round-trip, plus a visibility check.
func profileOf(el *rod.Element, index int) (ElementProfile, error) {
	res, err := el.Eval(`() => ({
		tag: this.tagName ? this.tagName.toLowerCase() : '',
		type: (this.getAttribute('type') || '').toLowerCase(),
		id: this.id || '',
		name: this.getAttribute('name') || '',
		placeholder: this.getAttribute('placeholder') || '',
		class: this.className || '',
		aria: this.getAttribute('aria-label') || '',
		maxlength: parseInt(this.getAttribute('maxlength') || '0', 10) || 0,
		text: (this.innerText || this.value || '').slice(0, 120)
	})`)
	if err != nil {
		return ElementProfile{}, err
	}

	visible, err := el.Visible()
	if err != nil {
		visible = false
	}

	v := res.Value
	return ElementProfile{
		Tag:         v.Get("tag").Str(),
		Type:        v.Get("type").Str(),
		ID:          v.Get("id").Str(),
		Name:        v.Get("name").Str(),
		Placeholder: v.Get("placeholder").Str(),
		Class:       v.Get("class").Str(),
		AriaLabel:   v.Get("aria").Str(),
		Text:        v.Get("text").Str(),
		MaxLength:   v.Get("maxlength").Int(),
		Visible:     visible,
		Index:       index,
	}, nil
}

// usable reports whether an element is currently visible and enabled.
func usable(el *rod.Element) bool {
	visible, err := el.Visible()
	if err != nil || !visible {
		return false
	}
	disabled, err := el.Property("disabled")
	if err == nil && disabled.Bool() {
		return false
	}
	return true
}

func frameSuffix(frameTag string) string {
	if frameTag == "" {
		return ""
	}
	return " in " + frameTag
}
