package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/segubroker/cotizador/config"
	"github.com/segubroker/cotizador/locator"
	"github.com/segubroker/cotizador/models"
	"github.com/segubroker/cotizador/scraper"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{models.ErrCodeValidation, http.StatusUnprocessableEntity},
		{models.ErrCodeAntibot, http.StatusTooManyRequests},
		{models.ErrCodeNavTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeSelector, http.StatusInternalServerError},
		{models.ErrCodeBrowserLaunch, http.StatusInternalServerError},
		{models.ErrCodeNoResults, http.StatusInternalServerError},
		{models.ErrCodeUnexpected, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := statusFor(tt.code); got != tt.want {
				t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sc, err := scraper.New(
		config.BrowserConfig{},
		config.ScraperConfig{
			Insurer:        "Meridional Seguros",
			DefaultTimeout: 5 * time.Second,
			MaxTimeout:     5 * time.Second,
		},
		locator.DefaultTable(),
		nil,
	)
	if err != nil {
		t.Fatalf("scraper.New: %v", err)
	}

	r := gin.New()
	r.POST("/api/v1/quote", Quote(sc))
	return r
}

func postQuote(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quote", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestQuote_MalformedJSON(t *testing.T) {
	r := newTestRouter(t)

	w := postQuote(r, `{"mode": `)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp models.QuoteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Success {
		t.Error("success must be false")
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeValidation {
		t.Errorf("error = %+v, want code %s", resp.Error, models.ErrCodeValidation)
	}
}

func TestQuote_UnknownMode(t *testing.T) {
	r := newTestRouter(t)

	// Binding rejects modes outside the allowed set before the pipeline runs.
	w := postQuote(r, `{"mode": "byMagic"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestQuote_ModeExclusivityViolation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"byPlate without plate", `{"mode": "byPlate"}`},
		{"byVehicle without vehicle", `{"mode": "byVehicle"}`},
		{
			"byPlate with vehicle",
			`{"mode": "byPlate", "licensePlate": "AB123CD", "vehicle": {"year": 2020, "brand": "Toyota", "model": "Corolla"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postQuote(r, tt.body)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", w.Code)
			}

			var resp models.QuoteResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad response body: %v", err)
			}
			if resp.Error == nil || resp.Error.Code != models.ErrCodeValidation {
				t.Errorf("error = %+v, want code %s", resp.Error, models.ErrCodeValidation)
			}
			if resp.Error != nil && resp.Error.Retryable {
				t.Error("validation errors must not be marked retryable")
			}
		})
	}
}

func TestRespondError_AttachesDebugSteps(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	derr := &scraper.DebugError{
		ScrapeError: models.NewScrapeError(models.ErrCodeSelector, "field license_plate not found", nil),
		Steps:       []string{"[0s] navigating", "[2s] selector miss"},
	}
	respondError(c, derr)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var resp models.QuoteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeSelector {
		t.Errorf("error = %+v, want code %s", resp.Error, models.ErrCodeSelector)
	}
	if resp.Debug == nil || len(resp.Debug.Steps) != 2 {
		t.Errorf("debug steps missing from response: %+v", resp.Debug)
	}
}
