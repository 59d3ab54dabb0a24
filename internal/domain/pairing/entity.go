// Package pairing holds the pairing domain: requests, suggestions and the
// deterministic rule-based selector used when no generative backend answers.
package pairing

import (
	"errors"

	"github.com/alchemorsel/menupairing/internal/domain/menu"
)

// MaxSuggestions caps the number of suggestions in any result
const MaxSuggestions = 3

// DefaultConfidence is used when the backend omits a confidence score
const DefaultConfidence = 80

var (
	ErrNoSelection   = errors.New("a menu item must be selected")
	ErrNoMenu        = errors.New("a menu is required")
	ErrNoPairings    = errors.New("no pairings could be generated")
	ErrBadConfidence = errors.New("confidence must be between 0 and 100")
)

// Suggestion is one recommended item with its justification
type Suggestion struct {
	Item        *menu.MenuItem `json:"item"`
	Explanation string         `json:"explanation"`
	Confidence  int            `json:"confidence"`
}

// Source tells which path produced a result
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Result is the outcome of one pairing computation
type Result struct {
	Source      Source       `json:"source"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Request is the complete input to one pairing computation
type Request struct {
	Selected    *menu.MenuItem
	DiningStyle menu.DiningStyle
	Dietary     menu.DietaryPreference
	Menu        *menu.Menu
	Restaurant  menu.Restaurant
}

// Validate validates the request
func (r Request) Validate() error {
	if r.Selected == nil {
		return ErrNoSelection
	}
	if r.Menu == nil {
		return ErrNoMenu
	}
	if !r.DiningStyle.IsValid() {
		return menu.ErrInvalidDiningStyle
	}
	if !r.Dietary.IsValid() {
		return menu.ErrInvalidDietaryPreference
	}
	return nil
}

// Candidates returns the eligible pairing candidates for the request
func (r Request) Candidates() []*menu.MenuItem {
	return menu.EligibleCandidates(r.Menu, r.Selected, r.Dietary)
}
