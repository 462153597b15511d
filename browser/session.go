// Package browser owns the lifecycle of one headless-browser instance and
// one page within it: launch with environment-dependent executable
// resolution, realistic page configuration, and guaranteed teardown.
//
// Each quote request gets its own isolated Session; nothing is pooled or
// shared across requests.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/segubroker/cotizador/config"
	"github.com/segubroker/cotizador/models"
)

// activeSessions is a process-wide gauge of live browser sessions,
// reported by the health endpoint.
var activeSessions atomic.Int32

// ActiveSessions returns the number of sessions currently open.
func ActiveSessions() int { return int(activeSessions.Load()) }

// Session owns one browser process and one page. The page is never handed
// out before launch completes, and Close releases both handles exactly once.
type Session struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	page      *rod.Page
	closeOnce sync.Once
}

// Launch resolves a browser binary, starts it, opens a page, and applies
// the fingerprint configuration (user agent, locale, timezone, viewport,
// stealth JS). Any failure is a retryable BROWSER_LAUNCH_FAILED.
func Launch(ctx context.Context, cfg config.BrowserConfig) (*Session, error) {
	bin, ok := ResolveBinary(cfg.Bin)
	if !ok {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"no usable browser binary found",
			nil,
		)
	}

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Bin(bin)

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("lang"), cfg.Locale)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to launch browser",
			err,
		)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to connect to browser",
			err,
		)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to open page",
			err,
		)
	}

	s := &Session{launcher: l, browser: b, page: page}
	activeSessions.Add(1)
	if err := s.configurePage(cfg); err != nil {
		s.Close()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to configure page",
			err,
		)
	}

	slog.Debug("browser session launched", "bin", bin)
	return s, nil
}

// configurePage applies the fingerprint surface before any navigation:
// stealth JS, navigator language overrides, user agent + Accept-Language,
// viewport and timezone. Stealth and language scripts must be installed
// with EvalOnNewDocument so they take effect for the first navigation.
func (s *Session) configurePage(cfg config.BrowserConfig) error {
	if _, err := s.page.EvalOnNewDocument(stealth.JS); err != nil {
		return fmt.Errorf("stealth injection: %w", err)
	}

	langScript := fmt.Sprintf(`() => {
		Object.defineProperty(navigator, 'language', { get: () => %q });
		Object.defineProperty(navigator, 'languages', { get: () => [%q, 'es', 'en'] });
	}`, cfg.Locale, cfg.Locale)
	if _, err := s.page.EvalOnNewDocument(langScript); err != nil {
		return fmt.Errorf("language override: %w", err)
	}

	acceptLanguage := cfg.Locale + ",es;q=0.9,en;q=0.8"
	if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: acceptLanguage,
	}); err != nil {
		return fmt.Errorf("user agent override: %w", err)
	}

	if err := (proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept-Language": acceptLanguage,
		}),
	}).Call(s.page); err != nil {
		return fmt.Errorf("extra headers: %w", err)
	}

	if err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.ViewportWidth,
		Height:            cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("viewport: %w", err)
	}

	// Timezone emulation is best-effort: some environments reject the
	// override and the scrape still works without it.
	if err := (proto.EmulationSetTimezoneOverride{
		TimezoneID: cfg.Timezone,
	}).Call(s.page); err != nil {
		slog.Warn("timezone override failed, proceeding without it", "error", err)
	}

	return nil
}

// Page returns the driven page handle. Only valid after Launch succeeded.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Close tears the session down: page first, then browser, then the
// launched process. Each step is independently guarded so a failure
// closing the page never prevents killing the browser. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.page != nil {
			if err := s.page.Close(); err != nil {
				slog.Warn("failed to close page", "error", err)
			}
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				slog.Warn("failed to close browser", "error", err)
			}
		}
		if s.launcher != nil {
			s.launcher.Kill()
		}
		activeSessions.Add(-1)
		slog.Debug("browser session closed")
	})
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
