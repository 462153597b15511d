package scraper

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"

	"github.com/segubroker/cotizador/models"
)

// planContainerSelectors is the ordered candidate list for the results
// container, most specific first. The same multi-candidate resilience
// strategy as the locator, applied to a set of containers.
var planContainerSelectors = []string{
	`[class*="plan-card"]`,
	`.plan, .quote-card, .insurance-plan`,
	`[class*="cotizacion"] [class*="plan"]`,
	`[class*="resultado"] [class*="card"]`,
	`[class*="plan"]`,
	`[class*="resultado"]`,
}

// Sub-selectors inside one plan container.
const (
	planNameSelector      = `.plan-name, .coverage-name, [class*="producto"], h3, h4`
	planPriceSelector     = `[class*="precio"], [class*="price"], [class*="mensual"], [class*="monthly"], .premium`
	planDetailsSelector   = `[class*="detalle"], [class*="cobertura"], [class*="description"]`
	planFranchiseSelector = `[class*="franquicia"], [class*="deducible"]`
)

// botKeywords in the page text indicate the target site defended itself
// rather than simply returning nothing.
var botKeywords = []string{
	"captcha",
	"verificación",
	"verificacion",
	"robot",
	"no soy un robot",
	"comportamiento inusual",
	"unusual traffic",
	"access denied",
	"cloudflare",
}

// priceTokenRe matches the first contiguous numeric-with-separators token
// in a price string, e.g. "123.456,00" inside "$ 123.456,00 / mes".
var priceTokenRe = regexp.MustCompile(`\d[\d.,]*`)

// currencyAmountRe matches a currency-symbol-prefixed amount, used by the
// low-confidence generic scan.
var currencyAmountRe = regexp.MustCompile(`\$\s*\d[\d.,]*`)

// containerProbe bounds each container-selector attempt during extraction.
const containerProbe = 2 * time.Second

// DebugCapture holds the optional artifacts taken on success when the
// caller requested debug output.
type DebugCapture struct {
	ScreenshotBase64 string
	HTMLSnippet      string
}

// htmlSnippetLimit truncates the debug HTML snippet.
const htmlSnippetLimit = 20_000

// extractor scrapes the results page for plan cards and classifies
// terminal failure modes.
type extractor struct {
	trace *models.TraceLog
}

// Extract returns the discovered plans, or a definitive classification of
// why there are none (ANTIBOT_BLOCK vs NO_RESULTS).
func (e *extractor) Extract(page *rod.Page, debug bool) ([]models.QuoteResult, *DebugCapture, error) {
	results := e.structuredScan(page)

	if len(results) == 0 {
		html, err := page.HTML()
		if err != nil {
			return nil, nil, models.NewScrapeError(models.ErrCodeUnexpected, "failed to read results page", err)
		}
		results = e.genericScan(html)
		if len(results) == 0 {
			return nil, nil, ClassifyEmpty(html)
		}
	}

	var capture *DebugCapture
	if debug {
		capture = e.capture(page)
	}
	return results, capture, nil
}

// structuredScan walks the container candidate list and extracts one
// QuoteResult per matched plan card.
func (e *extractor) structuredScan(page *rod.Page) []models.QuoteResult {
	for _, sel := range planContainerSelectors {
		els, err := page.Timeout(containerProbe).Elements(sel)
		if err != nil || len(els) == 0 {
			continue
		}

		var results []models.QuoteResult
		for _, el := range els {
			if r, ok := planFromContainer(el); ok {
				results = append(results, r)
			}
		}
		if len(results) > 0 {
			e.trace.Add("extracted %d plans via container %q", len(results), sel)
			return results
		}
	}
	e.trace.Add("no structured plan cards found")
	return nil
}

// planFromContainer pulls name, price, details and franchise out of one
// card. An unparsable price becomes 0; a single bad card never fails the
// extraction.
func planFromContainer(el *rod.Element) (models.QuoteResult, bool) {
	name := strings.TrimSpace(childText(el, planNameSelector))
	priceText := childText(el, planPriceSelector)
	if name == "" && priceText == "" {
		return models.QuoteResult{}, false
	}
	if name == "" {
		name = "Plan"
	}
	return models.QuoteResult{
		PlanName:  name,
		Monthly:   ParsePrice(priceText),
		Currency:  "ARS",
		Details:   strings.TrimSpace(childText(el, planDetailsSelector)),
		Franchise: strings.TrimSpace(childText(el, planFranchiseSelector)),
	}, true
}

// childText returns the text of the first child matching sel, or "".
func childText(el *rod.Element, sel string) string {
	child, err := el.Element(sel)
	if err != nil {
		return ""
	}
	text, err := child.Text()
	if err != nil {
		return ""
	}
	return text
}

// genericScan is the lower-confidence fallback: scan the rendered HTML for
// price-like elements carrying a currency-prefixed amount and build plans
// from whatever structure surrounds them.
func (e *extractor) genericScan(html string) []models.QuoteResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var results []models.QuoteResult
	doc.Find(planPriceSelector).Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if !currencyAmountRe.MatchString(text) {
			return
		}
		monthly := ParsePrice(text)
		if monthly == 0 {
			return
		}

		name := strings.TrimSpace(s.Closest(`[class*="plan"], [class*="card"], [class*="resultado"]`).
			Find("h3, h4").First().Text())
		if name == "" {
			name = "Plan"
		}
		results = append(results, models.QuoteResult{
			PlanName: name,
			Monthly:  monthly,
			Currency: "ARS",
		})
	})

	if len(results) > 0 {
		e.trace.Add("generic price scan produced %d low-confidence plans", len(results))
	}
	return results
}

// ClassifyEmpty disambiguates a zero-result page: bot-detection keywords
// mean the site defended itself (non-retryable), anything else is treated
// as a possibly transient rendering issue (retryable).
func ClassifyEmpty(html string) *models.ScrapeError {
	text := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		text = doc.Text()
	}
	text = strings.ToLower(text)

	for _, kw := range botKeywords {
		if strings.Contains(text, kw) {
			return models.NewScrapeError(
				models.ErrCodeAntibot,
				"target page presented a bot-detection challenge ("+kw+")",
				nil,
			)
		}
	}
	return models.NewScrapeError(models.ErrCodeNoResults, "no plans found on results page", nil)
}

// ParsePrice extracts a monthly amount from insurer price text in es-AR
// formatting: "." thousands separators, "," decimal separator. The
// decimal part is dropped. Unparsable text yields 0, never an error.
func ParsePrice(text string) int64 {
	token := priceTokenRe.FindString(text)
	if token == "" {
		return 0
	}
	// Strip thousands separators, cut at the decimal comma.
	token = strings.ReplaceAll(token, ".", "")
	if i := strings.IndexByte(token, ','); i >= 0 {
		token = token[:i]
	}
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// capture takes the debug artifacts: a viewport screenshot and a truncated
// HTML snippet. Both are best-effort.
func (e *extractor) capture(page *rod.Page) *DebugCapture {
	capture := &DebugCapture{}

	if shot, err := page.Screenshot(false, nil); err == nil {
		capture.ScreenshotBase64 = base64.StdEncoding.EncodeToString(shot)
	} else {
		e.trace.Add("screenshot capture failed: %v", err)
	}

	if html, err := page.HTML(); err == nil {
		if len(html) > htmlSnippetLimit {
			html = html[:htmlSnippetLimit]
		}
		capture.HTMLSnippet = html
	}
	return capture
}
