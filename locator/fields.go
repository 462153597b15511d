// Package locator maps semantic form fields to live DOM elements on a page
// whose markup changes without notice. For every field it keeps an ordered
// list of candidate CSS selectors (most specific first) plus a scoring
// profile used as a heuristic fallback when no static selector matches.
package locator

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Field names a semantic form element, independent of how the target page
// happens to express it today.
type Field string

const (
	FieldCookieAccept   Field = "cookie_accept"
	FieldModeToggle     Field = "mode_toggle"
	FieldLicensePlate   Field = "license_plate"
	FieldYear           Field = "vehicle_year"
	FieldBrand          Field = "vehicle_brand"
	FieldModel          Field = "vehicle_model"
	FieldVersion        Field = "vehicle_version"
	FieldPaymentMethod  Field = "payment_method"
	FieldParticularUse  Field = "particular_use"
	FieldZeroKm         Field = "zero_km"
	FieldGNC            Field = "gnc"
	FieldSearchButton   Field = "search_button"
	FieldNextButton     Field = "next_button"
	FieldDocumentNumber Field = "document_number"
	FieldBirthDate      Field = "birth_date"
	FieldEmail          Field = "owner_email"
	FieldPhone          Field = "owner_phone"
	FieldPostalCode     Field = "postal_code"
)

// Spec is the immutable per-field configuration: candidate selectors in
// confidence order, the tag query used to enumerate candidates for the
// heuristic scorer, and the scoring profile itself.
type Spec struct {
	// Selectors are tried in order; the first that resolves to a visible,
	// enabled element wins. Order encodes confidence: field-specific
	// patterns first, generic positional fallbacks last.
	Selectors []string

	// Scan is the CSS query enumerating plausible candidates for the
	// heuristic scorer (e.g. all text-like inputs for a plate field).
	Scan string

	// Profile weights attribute substrings for the heuristic scorer.
	Profile Profile
}

// Table maps every semantic field to its Spec. Loaded once at startup and
// passed explicitly into the Locator; never mutated afterwards.
type Table map[Field]Spec

// Validate parses every selector with cascadia so malformed entries are
// caught at startup instead of mid-scrape.
func (t Table) Validate() error {
	for field, spec := range t {
		for _, sel := range spec.Selectors {
			if _, err := cascadia.Parse(sel); err != nil {
				return fmt.Errorf("field %s: bad selector %q: %w", field, sel, err)
			}
		}
		if spec.Scan != "" {
			if _, err := cascadia.ParseGroup(spec.Scan); err != nil {
				return fmt.Errorf("field %s: bad scan query %q: %w", field, spec.Scan, err)
			}
		}
	}
	return nil
}

const (
	scanTextInputs = `input[type="text"], input[type="number"], input[type="tel"], input:not([type])`
	scanButtons    = `button, input[type="submit"], a[role="button"]`
	scanCheckboxes = `input[type="checkbox"]`
	scanSelects    = `select`
)

// DefaultTable is the selector table for the insurer's quoting page.
// Selector lists mix exact placeholder matches observed on the live page
// with looser substring patterns that survive cosmetic markup changes.
func DefaultTable() Table {
	return Table{
		FieldCookieAccept: {
			Selectors: []string{
				`[data-cookie-accept]`,
				`button[id*="accept"]`,
				`button[class*="accept"]`,
				`.cookie-banner button`,
				`[class*="cookie"] button`,
			},
			Scan: scanButtons,
			Profile: Profile{
				Positive: map[string]float64{
					"aceptar": 5, "accept": 5, "cookie": 3, "entendido": 3,
				},
				Negative: map[string]float64{
					"rechazar": 6, "configurar": 4, "reject": 6,
				},
				FirstVisibleBonus: 0.5,
				Floor:             3,
			},
		},
		FieldModeToggle: {
			Selectors: []string{
				`input[type="checkbox"][role="switch"]`,
				`label[for*="sin-patente"]`,
				`[class*="toggle"] input[type="checkbox"]`,
			},
			Scan: scanCheckboxes,
			Profile: Profile{
				Positive: map[string]float64{
					"patente": 5, "switch": 3, "toggle": 2, "manual": 2,
				},
				Negative: map[string]float64{
					"particular": 4, "gnc": 4, "0km": 4, "km": 2,
				},
				FirstVisibleBonus: 1,
				Floor:             3,
			},
		},
		FieldLicensePlate: {
			Selectors: []string{
				`input[placeholder="Patente"]`,
				`input[placeholder*="atente"]`,
				`input[name*="patente"]`,
				`input[id*="patente"]`,
				`input[name*="dominio"]`,
				`input[maxlength="7"]`,
				`form input[type="text"]`,
			},
			Scan: scanTextInputs,
			Profile: Profile{
				Positive: map[string]float64{
					"patente": 6, "dominio": 5, "placa": 4, "plate": 3,
				},
				Negative: map[string]float64{
					"email": 5, "correo": 5, "tel": 4, "phone": 4,
					"nombre": 4, "name": 2, "dni": 4, "documento": 4,
				},
				FirstVisibleBonus: 1,
				Floor:             3,
			},
		},
		FieldYear: {
			Selectors: []string{
				`input[placeholder="Año del vehículo"]`,
				`input[placeholder*="ño"]`,
				`input[name*="anio"]`,
				`input[name*="year"]`,
				`input[id*="year"]`,
				`input[maxlength="4"]`,
			},
			Scan: scanTextInputs,
			Profile: Profile{
				Positive: map[string]float64{
					"año": 6, "anio": 6, "year": 5, "modelo año": 3,
				},
				Negative: map[string]float64{
					"patente": 5, "email": 5, "tel": 4, "marca": 4,
				},
				FirstVisibleBonus: 0.5,
				Floor:             3,
			},
		},
		FieldBrand: {
			Selectors: []string{
				`input[placeholder="Marca"]`,
				`input[placeholder*="arca"]`,
				`input[name*="marca"]`,
				`input[id*="brand"]`,
				`select[name*="marca"]`,
				`select[id*="brand"]`,
			},
			Scan: scanTextInputs + ", " + scanSelects,
			Profile: Profile{
				Positive: map[string]float64{
					"marca": 6, "brand": 5,
				},
				Negative: map[string]float64{
					"modelo": 5, "model": 4, "patente": 5, "año": 4,
				},
				FirstVisibleBonus: 0.5,
				Floor:             3,
			},
		},
		FieldModel: {
			Selectors: []string{
				`input[placeholder="Modelo"]`,
				`input[placeholder*="odelo"]`,
				`input[name*="modelo"]`,
				`input[id*="model"]`,
				`select[name*="modelo"]`,
				`select[id*="model"]`,
			},
			Scan: scanTextInputs + ", " + scanSelects,
			Profile: Profile{
				Positive: map[string]float64{
					"modelo": 6, "model": 5, "version": 1,
				},
				Negative: map[string]float64{
					"marca": 5, "brand": 4, "patente": 5, "año": 4,
				},
				FirstVisibleBonus: 0.5,
				Floor:             3,
			},
		},
		FieldVersion: {
			Selectors: []string{
				`input[placeholder*="ersi"]`,
				`input[name*="version"]`,
				`select[name*="version"]`,
			},
			Scan: scanTextInputs + ", " + scanSelects,
			Profile: Profile{
				Positive: map[string]float64{
					"version": 6, "versión": 6,
				},
				Negative: map[string]float64{
					"modelo": 4, "marca": 4, "patente": 5,
				},
				FirstVisibleBonus: 0,
				Floor:             4,
			},
		},
		FieldPaymentMethod: {
			Selectors: []string{
				`#IdMedioPago`,
				`select[name*="pago"]`,
				`select[id*="pago"]`,
				`select[id*="payment"]`,
			},
			Scan: scanSelects,
			Profile: Profile{
				Positive: map[string]float64{
					"pago": 6, "payment": 5, "medio": 3, "tarjeta": 3, "cbu": 3,
				},
				Negative: map[string]float64{
					"marca": 4, "modelo": 4, "provincia": 4,
				},
				FirstVisibleBonus: 0.5,
				Floor:             3,
			},
		},
		FieldParticularUse: {
			Selectors: []string{
				`#flexCheckUsoParticular`,
				`input[type="checkbox"][name*="particular"]`,
				`input[type="checkbox"][id*="particular"]`,
			},
			Scan: scanCheckboxes,
			Profile: Profile{
				Positive: map[string]float64{
					"particular": 6, "uso": 3,
				},
				Negative: map[string]float64{
					"gnc": 5, "0km": 5, "km": 3, "patente": 4,
				},
				FirstVisibleBonus: 0,
				Floor:             4,
			},
		},
		FieldZeroKm: {
			Selectors: []string{
				`#flexCheckEs0Km`,
				`input[type="checkbox"][name*="0km"]`,
				`input[type="checkbox"][id*="zerokm"]`,
				`input[type="checkbox"][id*="0km"]`,
			},
			Scan: scanCheckboxes,
			Profile: Profile{
				Positive: map[string]float64{
					"0km": 6, "zerokm": 6, "okm": 4, "nuevo": 2,
				},
				Negative: map[string]float64{
					"gnc": 5, "particular": 5,
				},
				FirstVisibleBonus: 0,
				Floor:             4,
			},
		},
		FieldGNC: {
			Selectors: []string{
				`#flexCheckPoseeGNC`,
				`input[type="checkbox"][name*="gnc"]`,
				`input[type="checkbox"][id*="gnc"]`,
			},
			Scan: scanCheckboxes,
			Profile: Profile{
				Positive: map[string]float64{
					"gnc": 6, "gas": 3,
				},
				Negative: map[string]float64{
					"0km": 5, "particular": 5,
				},
				FirstVisibleBonus: 0,
				Floor:             4,
			},
		},
		FieldSearchButton: {
			Selectors: []string{
				`button[class*="buscar"]`,
				`button[id*="buscar"]`,
				`button[class*="cotizar"]`,
				`button[type="submit"]`,
			},
			Scan: scanButtons,
			Profile: Profile{
				Positive: map[string]float64{
					"buscar": 6, "cotizar": 6, "buscar vehículo": 4, "search": 3,
				},
				Negative: map[string]float64{
					"volver": 6, "cancelar": 6, "cerrar": 5, "atras": 5,
				},
				FirstVisibleBonus: 0.5,
				Floor:             3,
			},
		},
		FieldNextButton: {
			Selectors: []string{
				`button[class*="siguiente"]`,
				`button[id*="siguiente"]`,
				`button[class*="next"]`,
				`button[type="submit"]`,
			},
			Scan: scanButtons,
			Profile: Profile{
				Positive: map[string]float64{
					"siguiente": 6, "continuar": 5, "next": 4, "avanzar": 4,
				},
				Negative: map[string]float64{
					"volver": 6, "cancelar": 6, "anterior": 6,
				},
				FirstVisibleBonus: 0.5,
				Floor:             3,
			},
		},
		FieldDocumentNumber: {
			Selectors: []string{
				`input[name*="dni"]`,
				`input[id*="dni"]`,
				`input[placeholder*="DNI"]`,
				`input[name*="documento"]`,
				`input[maxlength="8"]`,
			},
			Scan: scanTextInputs,
			Profile: Profile{
				Positive: map[string]float64{
					"dni": 6, "documento": 5, "document": 3,
				},
				Negative: map[string]float64{
					"email": 5, "tel": 4, "patente": 5, "postal": 4,
				},
				FirstVisibleBonus: 0.5,
				Floor:             3,
			},
		},
		FieldBirthDate: {
			Selectors: []string{
				`input[type="date"]`,
				`input[name*="nacimiento"]`,
				`input[placeholder*="acimiento"]`,
				`input[placeholder*="DD/MM"]`,
			},
			Scan: scanTextInputs + `, input[type="date"]`,
			Profile: Profile{
				Positive: map[string]float64{
					"nacimiento": 6, "fecha": 3, "birth": 4, "dd/mm": 4,
				},
				Negative: map[string]float64{
					"email": 5, "dni": 4, "tel": 4,
				},
				FirstVisibleBonus: 0,
				Floor:             3,
			},
		},
		FieldEmail: {
			Selectors: []string{
				`input[type="email"]`,
				`input[name*="email"]`,
				`input[id*="email"]`,
				`input[placeholder*="mail"]`,
			},
			Scan: scanTextInputs + `, input[type="email"]`,
			Profile: Profile{
				Positive: map[string]float64{
					"email": 6, "correo": 6, "mail": 4,
				},
				Negative: map[string]float64{
					"tel": 5, "dni": 5, "patente": 5,
				},
				FirstVisibleBonus: 0,
				Floor:             3,
			},
		},
		FieldPhone: {
			Selectors: []string{
				`input[type="tel"]`,
				`input[name*="telefono"]`,
				`input[id*="phone"]`,
				`input[placeholder*="eléfono"]`,
			},
			Scan: scanTextInputs + `, input[type="tel"]`,
			Profile: Profile{
				Positive: map[string]float64{
					"telefono": 6, "teléfono": 6, "phone": 5, "celular": 4, "tel": 3,
				},
				Negative: map[string]float64{
					"email": 5, "dni": 5,
				},
				FirstVisibleBonus: 0,
				Floor:             3,
			},
		},
		FieldPostalCode: {
			Selectors: []string{
				`input[name*="postal"]`,
				`input[id*="postal"]`,
				`input[placeholder*="ostal"]`,
				`input[name*="cp"]`,
				`input[maxlength="4"]`,
			},
			Scan: scanTextInputs,
			Profile: Profile{
				Positive: map[string]float64{
					"postal": 6, "codigo postal": 5, "cp": 3, "zip": 3,
				},
				Negative: map[string]float64{
					"email": 5, "dni": 4, "tel": 4, "año": 4,
				},
				FirstVisibleBonus: 0,
				Floor:             3,
			},
		},
	}
}
