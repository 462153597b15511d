package locator

import "testing"

func plateProfile() Profile {
	return Profile{
		Positive:          map[string]float64{"patente": 3, "dominio": 2, "placa": 2},
		Negative:          map[string]float64{"email": 3, "nombre": 2},
		FirstVisibleBonus: 0.5,
		Floor:             1,
	}
}

func TestScore(t *testing.T) {
	p := plateProfile()

	tests := []struct {
		name string
		el   ElementProfile
		want float64
	}{
		{
			name: "placeholder match",
			el:   ElementProfile{Placeholder: "Patente", Visible: true, Index: 5},
			want: 3,
		},
		{
			name: "two positive matches accumulate",
			el:   ElementProfile{ID: "dominio", Placeholder: "Patente", Visible: true, Index: 5},
			want: 5,
		},
		{
			name: "negative match subtracts",
			el:   ElementProfile{Name: "patente", Class: "email-field", Visible: true, Index: 5},
			want: 0,
		},
		{
			name: "first visible gets positional bonus",
			el:   ElementProfile{Placeholder: "Patente", Visible: true, Index: 0},
			want: 3.5,
		},
		{
			name: "case insensitive",
			el:   ElementProfile{AriaLabel: "DOMINIO DEL VEHICULO", Visible: true, Index: 5},
			want: 2,
		},
		{
			name: "invisible scores below any floor",
			el:   ElementProfile{Placeholder: "Patente", Visible: false, Index: 0},
			want: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.el, p, 0); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBest(t *testing.T) {
	p := plateProfile()

	t.Run("picks highest scorer", func(t *testing.T) {
		cands := []ElementProfile{
			{Index: 0, Visible: true, Name: "email"},
			{Index: 1, Visible: true, Placeholder: "Patente"},
			{Index: 2, Visible: true, ID: "dominio"},
		}
		best, ok := Best(cands, p)
		if !ok {
			t.Fatal("expected a match")
		}
		if best.Index != 1 {
			t.Errorf("best index = %d, want 1", best.Index)
		}
	})

	t.Run("no candidate clears floor", func(t *testing.T) {
		cands := []ElementProfile{
			{Index: 0, Visible: true, Name: "email"},
			{Index: 1, Visible: true, Class: "form-control"},
		}
		if _, ok := Best(cands, p); ok {
			t.Error("expected no match below floor")
		}
	})

	t.Run("invisible candidates never win", func(t *testing.T) {
		cands := []ElementProfile{
			{Index: 0, Visible: false, Placeholder: "Patente"},
		}
		if _, ok := Best(cands, p); ok {
			t.Error("invisible candidate must not match")
		}
	})

	t.Run("positional bonus skips invisible elements", func(t *testing.T) {
		cands := []ElementProfile{
			{Index: 0, Visible: false},
			{Index: 1, Visible: true, Placeholder: "Patente"},
			{Index: 2, Visible: true, Placeholder: "Patente"},
		}
		best, ok := Best(cands, p)
		if !ok {
			t.Fatal("expected a match")
		}
		// Index 1 is the first visible candidate, so the bonus breaks the tie.
		if best.Index != 1 {
			t.Errorf("best index = %d, want 1", best.Index)
		}
	})

	t.Run("tie keeps earliest", func(t *testing.T) {
		cands := []ElementProfile{
			{Index: 0, Visible: true, Name: "email"},
			{Index: 1, Visible: true, Placeholder: "patente"},
			{Index: 2, Visible: true, Placeholder: "patente"},
		}
		// Give no positional edge so both patente inputs tie.
		flat := p
		flat.FirstVisibleBonus = 0
		best, ok := Best(cands, flat)
		if !ok {
			t.Fatal("expected a match")
		}
		if best.Index != 1 {
			t.Errorf("best index = %d, want 1", best.Index)
		}
	})
}
