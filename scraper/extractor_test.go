package scraper

import (
	"testing"

	"github.com/segubroker/cotizador/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"$123.456,00", 123456},
		{"$ 45.990,50 / mes", 45990},
		{"123456", 123456},
		{"1.234.567,89", 1234567},
		{"$89", 89},
		{"ARS 12.000", 12000},
		{"Cuota mensual: $ 7.850,00", 7850},
		{"", 0},
		{"sin precio", 0},
		{"$", 0},
		{"consultar", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParsePrice(tt.in); got != tt.want {
				t.Errorf("ParsePrice(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifyEmpty(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		wantCode string
	}{
		{
			name:     "captcha challenge",
			html:     `<html><body><div>Por favor complete el CAPTCHA para continuar</div></body></html>`,
			wantCode: models.ErrCodeAntibot,
		},
		{
			name:     "cloudflare interstitial",
			html:     `<html><body><h1>Checking your browser</h1><p>cloudflare</p></body></html>`,
			wantCode: models.ErrCodeAntibot,
		},
		{
			name:     "robot verification in spanish",
			html:     `<html><body>Confirmá que no soy un robot</body></html>`,
			wantCode: models.ErrCodeAntibot,
		},
		{
			name:     "plain page with no plans",
			html:     `<html><body><div class="container"><p>No encontramos coberturas para tu vehículo.</p></div></body></html>`,
			wantCode: models.ErrCodeNoResults,
		},
		{
			name:     "empty body",
			html:     `<html><body></body></html>`,
			wantCode: models.ErrCodeNoResults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyEmpty(tt.html)
			if err == nil {
				t.Fatal("ClassifyEmpty must always return an error")
			}
			if err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", err.Code, tt.wantCode)
			}
			if err.Code == models.ErrCodeAntibot && err.Retryable {
				t.Error("bot blocks must not be retryable")
			}
		})
	}
}

func TestGenericScan(t *testing.T) {
	e := &extractor{trace: models.NewTraceLog()}

	t.Run("finds currency-prefixed prices", func(t *testing.T) {
		html := `<html><body>
			<div class="resultado-card">
				<h3>Terceros Completo</h3>
				<span class="precio-mensual">$ 45.990,00</span>
			</div>
			<div class="resultado-card">
				<h3>Todo Riesgo</h3>
				<span class="precio-mensual">$ 89.500,00</span>
			</div>
		</body></html>`

		results := e.genericScan(html)
		if len(results) != 2 {
			t.Fatalf("got %d plans, want 2", len(results))
		}
		if results[0].PlanName != "Terceros Completo" {
			t.Errorf("first plan name = %q", results[0].PlanName)
		}
		if results[0].Monthly != 45990 {
			t.Errorf("first plan monthly = %d, want 45990", results[0].Monthly)
		}
		if results[1].Monthly != 89500 {
			t.Errorf("second plan monthly = %d, want 89500", results[1].Monthly)
		}
	})

	t.Run("ignores price elements without an amount", func(t *testing.T) {
		html := `<html><body><span class="precio">consultar</span></body></html>`
		if results := e.genericScan(html); len(results) != 0 {
			t.Errorf("got %d plans, want 0", len(results))
		}
	})

	t.Run("names unlabelled plans generically", func(t *testing.T) {
		html := `<html><body><div><span class="price">$ 12.000,00</span></div></body></html>`
		results := e.genericScan(html)
		if len(results) != 1 {
			t.Fatalf("got %d plans, want 1", len(results))
		}
		if results[0].PlanName != "Plan" {
			t.Errorf("plan name = %q, want Plan", results[0].PlanName)
		}
	})
}
