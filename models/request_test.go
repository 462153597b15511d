package models

import "testing"

func TestValidate_ModeExclusivity(t *testing.T) {
	vehicle := &Vehicle{Year: 2020, Brand: "Toyota", Model: "Corolla"}

	tests := []struct {
		name    string
		req     QuoteRequest
		wantErr bool
	}{
		{
			name: "byPlate with plate only",
			req:  QuoteRequest{Mode: ModeByPlate, LicensePlate: "AB123CD"},
		},
		{
			name: "byVehicle with vehicle only",
			req:  QuoteRequest{Mode: ModeByVehicle, Vehicle: vehicle},
		},
		{
			name:    "byPlate missing plate",
			req:     QuoteRequest{Mode: ModeByPlate},
			wantErr: true,
		},
		{
			name:    "byPlate with vehicle too",
			req:     QuoteRequest{Mode: ModeByPlate, LicensePlate: "AB123CD", Vehicle: vehicle},
			wantErr: true,
		},
		{
			name:    "byVehicle missing vehicle",
			req:     QuoteRequest{Mode: ModeByVehicle},
			wantErr: true,
		},
		{
			name:    "byVehicle with plate too",
			req:     QuoteRequest{Mode: ModeByVehicle, Vehicle: vehicle, LicensePlate: "AB123CD"},
			wantErr: true,
		},
		{
			name:    "byVehicle with incomplete vehicle",
			req:     QuoteRequest{Mode: ModeByVehicle, Vehicle: &Vehicle{Year: 2020, Brand: "Toyota"}},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			req:     QuoteRequest{Mode: "byMagic", LicensePlate: "AB123CD"},
			wantErr: true,
		},
		{
			name:    "bad birth date format",
			req:     QuoteRequest{Mode: ModeByPlate, LicensePlate: "AB123CD", Owner: &Owner{BirthDate: "1990-05-01"}},
			wantErr: true,
		},
		{
			name: "good birth date format",
			req:  QuoteRequest{Mode: ModeByPlate, LicensePlate: "AB123CD", Owner: &Owner{BirthDate: "01/05/1990"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
			if tt.wantErr {
				if err.Code != ErrCodeValidation {
					t.Errorf("code = %s, want %s", err.Code, ErrCodeValidation)
				}
				if err.Retryable {
					t.Error("validation errors must never be retryable")
				}
			}
		})
	}
}

func TestDefaults_PaymentMethod(t *testing.T) {
	req := QuoteRequest{Mode: ModeByPlate, LicensePlate: "AB123CD"}
	req.Defaults()
	if req.PaymentMethod != PaymentCreditCard {
		t.Errorf("default payment = %q, want %q", req.PaymentMethod, PaymentCreditCard)
	}
}

func TestPaymentOptionValue(t *testing.T) {
	cc := QuoteRequest{PaymentMethod: PaymentCreditCard}
	if got := cc.PaymentOptionValue(); got != "2" {
		t.Errorf("credit card option = %q, want 2", got)
	}
	cbu := QuoteRequest{PaymentMethod: PaymentCBU}
	if got := cbu.PaymentOptionValue(); got != "4" {
		t.Errorf("CBU option = %q, want 4", got)
	}
}
