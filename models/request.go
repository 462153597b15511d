package models

import "regexp"

// Quote modes.
const (
	ModeByPlate   = "byPlate"
	ModeByVehicle = "byVehicle"
)

// Payment methods as the insurer labels them.
const (
	PaymentCreditCard = "Tarjeta de crédito"
	PaymentCBU        = "CBU"
)

// QuoteRequest is the payload for POST /api/v1/quote.
//
// Exactly one of LicensePlate or Vehicle must be populated, matching Mode.
// The request is immutable for the duration of one scrape attempt.
type QuoteRequest struct {
	// Mode selects the quoting path: "byPlate" or "byVehicle".
	Mode string `json:"mode" binding:"required,oneof=byPlate byVehicle"`

	// LicensePlate is required when Mode is "byPlate".
	LicensePlate string `json:"licensePlate,omitempty"`

	// Vehicle is required when Mode is "byVehicle".
	Vehicle *Vehicle `json:"vehicle,omitempty"`

	// PaymentMethod defaults to "Tarjeta de crédito".
	PaymentMethod string `json:"paymentMethod,omitempty" binding:"omitempty,oneof='Tarjeta de crédito' CBU"`

	Usage Usage  `json:"usage"`
	Flags *Flags `json:"flags,omitempty"`

	// Owner carries the personal data the insurer's post-submit sub-form
	// may ask for. Optional; absence only matters if the page demands it.
	Owner *Owner `json:"owner,omitempty"`

	// Location is used for the postal-code field when the page asks for it.
	Location *Location `json:"location,omitempty"`

	// SourceURL overrides the configured target page for this request.
	SourceURL string `json:"sourceUrl,omitempty" binding:"omitempty,url"`

	// Debug attaches the step trace (and a screenshot plus HTML snippet
	// on success) to the response.
	Debug bool `json:"debug,omitempty"`
}

// Vehicle identifies a vehicle for manual (plate-less) quoting.
type Vehicle struct {
	Year    int    `json:"year"`
	Brand   string `json:"brand"`
	Model   string `json:"model"`
	Version string `json:"version,omitempty"`
}

// Usage holds vehicle-usage declarations.
type Usage struct {
	IsParticular bool `json:"isParticular"`
}

// Flags holds optional vehicle condition toggles.
type Flags struct {
	IsZeroKm bool `json:"isZeroKm,omitempty"`
	HasGNC   bool `json:"hasGNC,omitempty"`
}

// Owner holds the policyholder's personal data.
type Owner struct {
	DocumentType   string `json:"documentType,omitempty"`
	DocumentNumber string `json:"documentNumber,omitempty"`
	BirthDate      string `json:"birthDate,omitempty"` // DD/MM/AAAA
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

// Location holds the risk location.
type Location struct {
	PostalCode string `json:"postalCode,omitempty"`
	Province   string `json:"province,omitempty"`
	Locality   string `json:"locality,omitempty"`
}

var birthDateRe = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// Defaults applies default values to unset fields.
func (r *QuoteRequest) Defaults() {
	if r.PaymentMethod == "" {
		r.PaymentMethod = PaymentCreditCard
	}
}

// Validate enforces the mode/field exclusivity invariant and basic shape
// checks. It returns a VALIDATION_ERROR ScrapeError so callers never reach
// browser launch with a malformed request.
func (r *QuoteRequest) Validate() *ScrapeError {
	switch r.Mode {
	case ModeByPlate:
		if r.LicensePlate == "" {
			return NewScrapeError(ErrCodeValidation, "mode byPlate requires licensePlate", nil)
		}
		if r.Vehicle != nil {
			return NewScrapeError(ErrCodeValidation, "mode byPlate must not include vehicle", nil)
		}
	case ModeByVehicle:
		if r.Vehicle == nil {
			return NewScrapeError(ErrCodeValidation, "mode byVehicle requires vehicle", nil)
		}
		if r.LicensePlate != "" {
			return NewScrapeError(ErrCodeValidation, "mode byVehicle must not include licensePlate", nil)
		}
		if r.Vehicle.Year == 0 || r.Vehicle.Brand == "" || r.Vehicle.Model == "" {
			return NewScrapeError(ErrCodeValidation, "vehicle requires year, brand and model", nil)
		}
	default:
		return NewScrapeError(ErrCodeValidation, "mode must be byPlate or byVehicle", nil)
	}

	if r.PaymentMethod != "" && r.PaymentMethod != PaymentCreditCard && r.PaymentMethod != PaymentCBU {
		return NewScrapeError(ErrCodeValidation, "unsupported payment method", nil)
	}
	if r.Owner != nil && r.Owner.BirthDate != "" && !birthDateRe.MatchString(r.Owner.BirthDate) {
		return NewScrapeError(ErrCodeValidation, "birthDate must be DD/MM/AAAA", nil)
	}
	return nil
}

// PaymentOptionValue maps the payment method to the insurer's select option
// value: 2 is credit card, 4 is CBU.
func (r *QuoteRequest) PaymentOptionValue() string {
	if r.PaymentMethod == PaymentCBU {
		return "4"
	}
	return "2"
}
