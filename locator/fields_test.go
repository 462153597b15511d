package locator

import "testing"

func TestDefaultTable_Validate(t *testing.T) {
	if err := DefaultTable().Validate(); err != nil {
		t.Fatalf("default table failed validation: %v", err)
	}
}

func TestValidate_RejectsBadSelector(t *testing.T) {
	tbl := Table{
		FieldLicensePlate: {Selectors: []string{`input[name=`}},
	}
	if err := tbl.Validate(); err == nil {
		t.Fatal("expected parse error for malformed selector")
	}

	tbl = Table{
		FieldLicensePlate: {Selectors: []string{`input`}, Scan: `[[[`},
	}
	if err := tbl.Validate(); err == nil {
		t.Fatal("expected parse error for malformed scan query")
	}
}

func TestDefaultTable_Completeness(t *testing.T) {
	tbl := DefaultTable()

	fields := []Field{
		FieldCookieAccept, FieldModeToggle, FieldLicensePlate,
		FieldYear, FieldBrand, FieldModel, FieldVersion,
		FieldPaymentMethod, FieldParticularUse, FieldZeroKm, FieldGNC,
		FieldSearchButton, FieldNextButton,
		FieldDocumentNumber, FieldBirthDate, FieldEmail, FieldPhone,
		FieldPostalCode,
	}

	for _, f := range fields {
		spec, ok := tbl[f]
		if !ok {
			t.Errorf("field %s missing from default table", f)
			continue
		}
		if len(spec.Selectors) == 0 {
			t.Errorf("field %s has no candidate selectors", f)
		}
		if spec.Scan == "" {
			t.Errorf("field %s has no scan query for the heuristic fallback", f)
		}
		if len(spec.Profile.Positive) == 0 {
			t.Errorf("field %s has no positive scoring weights", f)
		}
		if spec.Profile.Floor <= 0 {
			t.Errorf("field %s has a non-positive floor, heuristic would accept anything", f)
		}
	}
}

func TestDefaultTable_HeuristicFindsPlate(t *testing.T) {
	// A synthetic candidate set resembling the insurer's form: the scorer
	// must pick the plate input over the surrounding noise.
	spec := DefaultTable()[FieldLicensePlate]
	cands := []ElementProfile{
		{Index: 0, Visible: true, Tag: "input", Type: "text", Name: "nombre", Placeholder: "Nombre completo"},
		{Index: 1, Visible: true, Tag: "input", Type: "text", ID: "inputDominio", Placeholder: "Ingresá la patente"},
		{Index: 2, Visible: true, Tag: "input", Type: "text", Name: "email", Placeholder: "Email"},
		{Index: 3, Visible: false, Tag: "input", Type: "text", Name: "patente_hidden"},
	}
	best, ok := Best(cands, spec.Profile)
	if !ok {
		t.Fatal("expected the plate input to clear the floor")
	}
	if best.Index != 1 {
		t.Errorf("best index = %d, want 1", best.Index)
	}
}
