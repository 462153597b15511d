package locator

import "strings"

// Profile holds the scoring weights for one semantic field. Positive
// weights reward attribute/text substrings that suggest the right field,
// negative weights penalise substrings that suggest an unrelated one.
type Profile struct {
	Positive map[string]float64
	Negative map[string]float64

	// FirstVisibleBonus is added to the first visible candidate, a small
	// positional prior for pages that lay the form out top-to-bottom.
	FirstVisibleBonus float64

	// Floor is the minimal confidence a candidate must reach to be
	// accepted at all.
	Floor float64
}

// ElementProfile is a stable attribute-extraction record for one DOM
// element. Scoring operates on this record only, keeping the heuristic
// independently testable without a live browser.
type ElementProfile struct {
	Tag         string
	Type        string
	ID          string
	Name        string
	Placeholder string
	Class       string
	AriaLabel   string
	Text        string
	MaxLength   int
	Visible     bool

	// Index is the element's position within the scanned candidate set.
	Index int
}

// haystack joins the attribute surface into one lowercased string for
// substring matching. Text content is included because buttons usually
// carry their meaning in the label, not in attributes.
func (e ElementProfile) haystack() string {
	return strings.ToLower(strings.Join([]string{
		e.ID, e.Name, e.Placeholder, e.Class, e.AriaLabel, e.Text,
	}, " "))
}

// Score rates how well an element matches a field profile.
// firstVisibleIndex identifies the element receiving the positional bonus.
// Invisible elements always score below any floor.
func Score(e ElementProfile, p Profile, firstVisibleIndex int) float64 {
	if !e.Visible {
		return -1
	}

	hay := e.haystack()
	var score float64
	for needle, weight := range p.Positive {
		if strings.Contains(hay, needle) {
			score += weight
		}
	}
	for needle, weight := range p.Negative {
		if strings.Contains(hay, needle) {
			score -= weight
		}
	}
	if e.Index == firstVisibleIndex {
		score += p.FirstVisibleBonus
	}
	return score
}

// Best returns the highest-scoring profile at or above the floor, or
// ok=false when no candidate clears it. Ties keep the earliest candidate,
// matching the positional prior.
func Best(candidates []ElementProfile, p Profile) (ElementProfile, bool) {
	firstVisible := -1
	for _, c := range candidates {
		if c.Visible {
			firstVisible = c.Index
			break
		}
	}

	var best ElementProfile
	bestScore := p.Floor - 1
	found := false
	for _, c := range candidates {
		s := Score(c, p, firstVisible)
		if s >= p.Floor && s > bestScore {
			best, bestScore, found = c, s, true
		}
	}
	return best, found
}
