package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/segubroker/cotizador/config"
	"github.com/segubroker/cotizador/locator"
	"github.com/segubroker/cotizador/models"
)

// State names a checkpoint in the form-filling sequence. Transitions are
// strictly forward; there are no backward edges.
type State int

const (
	StateIdle State = iota
	StateBrowserReady
	StateNavigated
	StateCookiesHandled
	StateModeSelected
	StatePrimaryFieldsFilled
	StatePaymentSet
	StateFlagsSet
	StateSubmitted
	StateAwaitingResult
	StateAdditionalInfoFilled
	StateResubmitted
)

var stateNames = map[State]string{
	StateIdle:                 "Idle",
	StateBrowserReady:         "BrowserReady",
	StateNavigated:            "Navigated",
	StateCookiesHandled:       "CookiesHandled",
	StateModeSelected:         "ModeSelected",
	StatePrimaryFieldsFilled:  "PrimaryFieldsFilled",
	StatePaymentSet:           "PaymentSet",
	StateFlagsSet:             "FlagsSet",
	StateSubmitted:            "Submitted",
	StateAwaitingResult:       "AwaitingResult",
	StateAdditionalInfoFilled: "AdditionalInfoFilled",
	StateResubmitted:          "Resubmitted",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// cookieBudget is deliberately short: a missing banner is a valid page
// state, not a fault, so we don't spend the request budget waiting for one.
const cookieBudget = 2500 * time.Millisecond

// sequencer drives the fixed, ordered interaction script against the
// insurer's form, one state at a time, using the locator for every
// interaction.
type sequencer struct {
	page  *rod.Page
	loc   *locator.Locator
	trace *models.TraceLog
	req   *models.QuoteRequest
	cfg   config.ScraperConfig
	state State
}

func newSequencer(page *rod.Page, loc *locator.Locator, trace *models.TraceLog, req *models.QuoteRequest, cfg config.ScraperConfig) *sequencer {
	return &sequencer{
		page:  page,
		loc:   loc,
		trace: trace,
		req:   req,
		cfg:   cfg,
		state: StateBrowserReady,
	}
}

// advance records a forward transition in the trace.
func (s *sequencer) advance(next State) {
	s.trace.Add("state %s -> %s", s.state, next)
	s.state = next
}

// Run executes the whole sequence up to the point where results (or a
// definitive failure) can be read. On return with nil error the page is in
// AwaitingResult with the settle delay already elapsed.
func (s *sequencer) Run(ctx context.Context) error {
	steps := []func(ctx context.Context) error{
		s.navigate,
		s.handleCookies,
		s.selectMode,
		s.fillPrimaryFields,
		s.setPaymentMethod,
		s.setFlags,
		s.submit,
		s.awaitResult,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *sequencer) targetURL() string {
	if s.req.SourceURL != "" {
		return s.req.SourceURL
	}
	return s.cfg.TargetURL
}

func (s *sequencer) navigate(ctx context.Context) error {
	url := s.targetURL()
	s.trace.Add("navigating to %s", url)

	p := s.page.Timeout(s.cfg.NavigationTimeout)
	if err := p.Navigate(url); err != nil {
		return classifyNavError(err)
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		// A DOM that never converges is still worth driving; log and go on.
		s.trace.Add("DOM did not stabilise, proceeding: %v", err)
	}
	s.advance(StateNavigated)
	return nil
}

// handleCookies clicks the consent banner when one is present. Absence is
// folded into skip-and-continue. The candidates-only lookup keeps an
// absent banner from costing more than cookieBudget of the request.
func (s *sequencer) handleCookies(ctx context.Context) error {
	m, err := s.loc.LocateQuick(s.page, locator.FieldCookieAccept, cookieBudget)
	if err != nil {
		s.trace.Add("no cookie banner, continuing")
		s.advance(StateCookiesHandled)
		return nil
	}
	if err := m.Element.Click(clickButton, 1); err != nil {
		s.trace.Add("cookie accept click failed, continuing: %v", err)
	} else {
		s.trace.Add("accepted cookie banner")
	}
	s.advance(StateCookiesHandled)
	return nil
}

// selectMode toggles the "sin patente" switch when quoting by vehicle.
// Quoting by plate needs no toggle interaction at all.
func (s *sequencer) selectMode(ctx context.Context) error {
	if s.req.Mode != models.ModeByVehicle {
		s.advance(StateModeSelected)
		return nil
	}

	m, err := s.loc.Locate(s.page, locator.FieldModeToggle, s.cfg.LocateBudget)
	if err != nil {
		return err
	}
	if err := s.setChecked(m.Element, true, "mode toggle"); err != nil {
		return models.NewScrapeError(models.ErrCodeUnexpected, "failed to toggle quoting mode", err)
	}
	s.trace.Add("selected manual vehicle mode")
	s.advance(StateModeSelected)
	return nil
}

func (s *sequencer) fillPrimaryFields(ctx context.Context) error {
	if s.req.Mode == models.ModeByPlate {
		if err := s.fillRequired(locator.FieldLicensePlate, strings.ToUpper(s.req.LicensePlate)); err != nil {
			return err
		}
	} else {
		v := s.req.Vehicle
		if err := s.fillRequired(locator.FieldYear, fmt.Sprintf("%d", v.Year)); err != nil {
			return err
		}
		if err := s.fillRequired(locator.FieldBrand, v.Brand); err != nil {
			return err
		}
		if err := s.fillRequired(locator.FieldModel, v.Model); err != nil {
			return err
		}
		if v.Version != "" {
			s.fillOptional(locator.FieldVersion, v.Version)
		}
	}
	s.advance(StatePrimaryFieldsFilled)
	return nil
}

// setPaymentMethod selects the payment option. The field is treated as
// optional: some page variants only ask for payment after submission, and
// the insurer applies a default when it is left untouched.
func (s *sequencer) setPaymentMethod(ctx context.Context) error {
	m, err := s.loc.Locate(s.page, locator.FieldPaymentMethod, s.cfg.LocateBudget/2)
	if err != nil {
		s.trace.Add("payment selector absent, relying on page default")
		s.advance(StatePaymentSet)
		return nil
	}
	if err := s.fillInto(m, s.req.PaymentMethod, s.req.PaymentOptionValue()); err != nil {
		s.trace.Add("payment fill failed, relying on page default: %v", err)
	} else {
		s.trace.Add("payment method set to %s", s.req.PaymentMethod)
	}
	s.advance(StatePaymentSet)
	return nil
}

// setFlags applies the usage and condition checkboxes idempotently: each
// box is only clicked when its current state differs from the desired one.
func (s *sequencer) setFlags(ctx context.Context) error {
	flags := []struct {
		field   locator.Field
		desired bool
		label   string
	}{
		{locator.FieldParticularUse, s.req.Usage.IsParticular, "particular use"},
		{locator.FieldZeroKm, s.req.Flags != nil && s.req.Flags.IsZeroKm, "zero km"},
		{locator.FieldGNC, s.req.Flags != nil && s.req.Flags.HasGNC, "GNC"},
	}

	for _, f := range flags {
		m, err := s.loc.Locate(s.page, f.field, s.cfg.LocateBudget/2)
		if err != nil {
			s.trace.Add("flag %s: checkbox absent, skipped", f.label)
			continue
		}
		if err := s.setChecked(m.Element, f.desired, f.label); err != nil {
			s.trace.Add("flag %s: toggle failed, skipped: %v", f.label, err)
		}
	}
	s.advance(StateFlagsSet)
	return nil
}

// submit clicks the primary search control, falling back to the "next"
// control used by multi-step variants of the form.
func (s *sequencer) submit(ctx context.Context) error {
	m, err := s.loc.Locate(s.page, locator.FieldSearchButton, s.cfg.LocateBudget)
	if err != nil {
		m, err = s.loc.Locate(s.page, locator.FieldNextButton, s.cfg.LocateBudget)
	}
	if err != nil {
		return err
	}
	if err := m.Element.Click(clickButton, 1); err != nil {
		return models.NewScrapeError(models.ErrCodeUnexpected, "submit click failed", err)
	}
	s.trace.Add("submitted via %q", m.Selector)
	s.advance(StateSubmitted)
	return nil
}

// awaitResult lets the page settle, then decides whether the insurer is
// showing results or demanding an additional personal-information sub-form.
func (s *sequencer) awaitResult(ctx context.Context) error {
	if err := s.settle(ctx); err != nil {
		return err
	}
	s.advance(StateAwaitingResult)

	counts, err := s.visibleInputCounts()
	if err != nil {
		s.trace.Add("input census failed, assuming results page: %v", err)
		return nil
	}
	s.trace.Add("post-submit census: %d text, %d email, %d tel inputs",
		counts.text, counts.email, counts.tel)

	// A results page has at most stray search boxes; a personal-info
	// sub-form exposes several empty inputs including email/tel.
	if counts.email == 0 && counts.tel == 0 && counts.text < 3 {
		return nil
	}

	if err := s.fillAdditionalInfo(counts); err != nil {
		return err
	}
	s.advance(StateAdditionalInfoFilled)

	m, err := s.loc.Locate(s.page, locator.FieldNextButton, s.cfg.LocateBudget)
	if err != nil {
		m, err = s.loc.Locate(s.page, locator.FieldSearchButton, s.cfg.LocateBudget)
	}
	if err != nil {
		return err
	}
	if err := m.Element.Click(clickButton, 1); err != nil {
		return models.NewScrapeError(models.ErrCodeUnexpected, "resubmit click failed", err)
	}
	s.advance(StateResubmitted)

	return s.settle(ctx)
}

// fillAdditionalInfo populates the personal sub-form from caller-supplied
// data only. If the page demands data the caller never sent, fail fast
// rather than submit an incomplete or fabricated identity.
func (s *sequencer) fillAdditionalInfo(counts inputCounts) error {
	if serr := missingOwnerData(s.req.Owner, counts); serr != nil {
		return serr
	}

	o := s.req.Owner
	fields := []struct {
		field locator.Field
		value string
	}{
		{locator.FieldDocumentNumber, o.DocumentNumber},
		{locator.FieldBirthDate, o.BirthDate},
		{locator.FieldEmail, o.Email},
		{locator.FieldPhone, o.Phone},
	}
	if s.req.Location != nil {
		fields = append(fields, struct {
			field locator.Field
			value string
		}{locator.FieldPostalCode, s.req.Location.PostalCode})
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}
		s.fillOptional(f.field, f.value)
	}
	s.trace.Add("filled additional personal info")
	return nil
}

// missingOwnerData checks caller-supplied personal data against the input
// kinds the page is demanding. A demanded kind with no caller value means
// the sub-form would go out incomplete, so the whole run fails instead.
func missingOwnerData(o *models.Owner, counts inputCounts) *models.ScrapeError {
	switch {
	case o == nil:
		return models.NewScrapeError(
			models.ErrCodeValidation,
			"target page requires owner personal data that was not supplied",
			nil,
		)
	case o.DocumentNumber == "" && o.BirthDate == "" && o.Email == "" && o.Phone == "":
		return models.NewScrapeError(
			models.ErrCodeValidation,
			"target page requires owner personal data but the supplied owner is empty",
			nil,
		)
	case counts.email > 0 && o.Email == "":
		return models.NewScrapeError(
			models.ErrCodeValidation,
			"target page requires an email address that was not supplied",
			nil,
		)
	case counts.tel > 0 && o.Phone == "":
		return models.NewScrapeError(
			models.ErrCodeValidation,
			"target page requires a phone number that was not supplied",
			nil,
		)
	}
	return nil
}

// --- field interaction primitives ---

// fillRequired locates a required field and fills it; a location miss
// aborts the sequence with SELECTOR_NOT_FOUND.
func (s *sequencer) fillRequired(field locator.Field, value string) error {
	m, err := s.loc.Locate(s.page, field, s.cfg.LocateBudget)
	if err != nil {
		return err
	}
	if err := s.fillInto(m, value, value); err != nil {
		return models.NewScrapeError(
			models.ErrCodeUnexpected,
			fmt.Sprintf("failed to fill field %s", field),
			err,
		)
	}
	s.trace.Add("filled %s", field)
	return nil
}

// fillOptional is fillRequired with misses and fill failures folded into
// skip-and-continue.
func (s *sequencer) fillOptional(field locator.Field, value string) {
	m, err := s.loc.Locate(s.page, field, s.cfg.LocateBudget/2)
	if err != nil {
		s.trace.Add("optional field %s absent, skipped", field)
		return
	}
	if err := s.fillInto(m, value, value); err != nil {
		s.trace.Add("optional field %s fill failed, skipped: %v", field, err)
		return
	}
	s.trace.Add("filled optional %s", field)
}

// fillInto writes a value into a located element, picking the strategy by
// element kind: free-text inputs are cleared and typed, selects get the
// option-selection path with optionValue as the option's value attribute.
func (s *sequencer) fillInto(m *locator.Match, text, optionValue string) error {
	tag, err := elementTag(m.Element)
	if err != nil {
		return err
	}
	if tag == "select" {
		return selectOption(m.Element, optionValue, text)
	}
	return clearAndType(m.Element, text)
}

// setChecked clicks a checkbox only when its current state differs from
// the desired one, so applying the same desired state twice never
// double-inverts.
func (s *sequencer) setChecked(el *rod.Element, desired bool, label string) error {
	current, err := isChecked(el)
	if err != nil {
		return err
	}
	if !toggleNeeded(current, desired) {
		s.trace.Add("flag %s already %v, no click", label, desired)
		return nil
	}
	if err := el.Click(clickButton, 1); err != nil {
		return err
	}
	s.trace.Add("flag %s set to %v", label, desired)
	return nil
}

// toggleNeeded reports whether a checkbox click is required to reach the
// desired state. Clicking only on mismatch keeps repeated applications of
// the same desired state from double-inverting the box.
func toggleNeeded(current, desired bool) bool {
	return current != desired
}

// settle waits the configured delay, honouring cancellation.
func (s *sequencer) settle(ctx context.Context) error {
	select {
	case <-time.After(s.cfg.SettleDelay):
		return nil
	case <-ctx.Done():
		return classifyNavError(ctx.Err())
	}
}

type inputCounts struct {
	text, email, tel int
}

// visibleInputCounts censuses the visible text-like inputs, used to detect
// the additional-info sub-form after submission.
func (s *sequencer) visibleInputCounts() (inputCounts, error) {
	res, err := s.page.Eval(`() => {
		const visible = sel => Array.from(document.querySelectorAll(sel))
			.filter(e => e.offsetParent !== null && !e.value).length;
		return {
			text: visible('input[type="text"], input:not([type])'),
			email: visible('input[type="email"]'),
			tel: visible('input[type="tel"]'),
		};
	}`)
	if err != nil {
		return inputCounts{}, err
	}
	v := res.Value
	return inputCounts{
		text:  v.Get("text").Int(),
		email: v.Get("email").Int(),
		tel:   v.Get("tel").Int(),
	}, nil
}

// classifyNavError maps navigation/wait failures onto the error taxonomy.
func classifyNavError(err error) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeNavTimeout, "target page unresponsive within budget", err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeNavTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeUnexpected, "navigation failed", err)
	}
}

// --- element helpers ---

// keystrokeDelay returns a small randomised inter-keystroke pause,
// simulating human input to reduce automation fingerprinting.
func keystrokeDelay() time.Duration {
	return time.Duration(30+rand.Intn(60)) * time.Millisecond
}

// clearAndType focuses the element, selects any existing content, and
// types the value rune by rune. The first keystroke replaces the
// selection, which is what clears the field.
func clearAndType(el *rod.Element, text string) error {
	if err := el.Click(clickButton, 1); err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}
	for _, r := range text {
		if err := el.Input(string(r)); err != nil {
			return err
		}
		time.Sleep(keystrokeDelay())
	}
	return nil
}

// selectOption selects a <select> option by value attribute, falling back
// to a JS match against option text/value when the page variant uses
// different values than expected.
func selectOption(el *rod.Element, value, label string) error {
	err := el.Select([]string{fmt.Sprintf(`option[value=%q]`, value)}, true, rod.SelectorTypeCSSSector)
	if err == nil {
		return nil
	}

	_, evalErr := el.Eval(`(needle) => {
		const want = needle.toLowerCase();
		for (const option of Array.from(this.options || [])) {
			if (option.text.toLowerCase().includes(want) ||
				option.value.toLowerCase().includes(want)) {
				option.selected = true;
				this.dispatchEvent(new Event('change', { bubbles: true }));
				return true;
			}
		}
		return false;
	}`, label)
	return evalErr
}

func elementTag(el *rod.Element) (string, error) {
	res, err := el.Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func isChecked(el *rod.Element) (bool, error) {
	prop, err := el.Property("checked")
	if err != nil {
		return false, err
	}
	return prop.Bool(), nil
}
