package pairing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alchemorsel/menupairing/internal/domain/menu"
	"github.com/alchemorsel/menupairing/internal/domain/pairing"
)

// Response validation errors. Any of them discards the whole reply.
var (
	ErrNoJSON           = errors.New("no JSON object found in backend reply")
	ErrMalformedReply   = errors.New("backend reply is not valid pairing JSON")
	ErrNoSuggestions    = errors.New("backend reply contains no pairings")
	ErrTooManyPairings  = errors.New("backend reply contains too many pairings")
	ErrUnknownItem      = errors.New("backend suggested an item that is not eligible")
	ErrDuplicatePairing = errors.New("backend suggested the same item twice")
)

// Provisional shapes. Pointers distinguish a missing field from a zero value.
type pairingsReply struct {
	Pairings *[]json.RawMessage `json:"pairings"`
}

type pairingReply struct {
	ItemName    *string `json:"item_name"`
	Explanation *string `json:"explanation"`
	Confidence  *int    `json:"confidence"`
}

// MapResponse validates the backend reply and maps every pairing onto an
// eligible candidate by exact, case-sensitive name. A single bad entry
// rejects the whole reply. Backend order is preserved.
func MapResponse(content string, candidates []*menu.MenuItem) ([]pairing.Suggestion, error) {
	raw, err := extractJSON(content)
	if err != nil {
		return nil, err
	}

	var reply pairingsReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if reply.Pairings == nil {
		return nil, fmt.Errorf("%w: missing pairings array", ErrMalformedReply)
	}

	entries := *reply.Pairings
	if len(entries) == 0 {
		return nil, ErrNoSuggestions
	}
	if len(entries) > pairing.MaxSuggestions {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyPairings, len(entries))
	}

	byName := make(map[string]*menu.MenuItem, len(candidates))
	for _, item := range candidates {
		if _, exists := byName[item.Name()]; !exists {
			byName[item.Name()] = item
		}
	}

	suggestions := make([]pairing.Suggestion, 0, len(entries))
	used := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		p, err := decodeEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("pairing %d: %w", i, err)
		}

		item, ok := byName[*p.ItemName]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownItem, *p.ItemName)
		}
		if _, dup := used[item.ID()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePairing, *p.ItemName)
		}
		used[item.ID()] = struct{}{}

		confidence := pairing.DefaultConfidence
		if p.Confidence != nil {
			confidence = *p.Confidence
		}
		if confidence < 0 || confidence > 100 {
			return nil, fmt.Errorf("pairing %d: %w: %d", i, pairing.ErrBadConfidence, confidence)
		}

		suggestions = append(suggestions, pairing.Suggestion{
			Item:        item,
			Explanation: strings.TrimSpace(*p.Explanation),
			Confidence:  confidence,
		})
	}

	return suggestions, nil
}

func decodeEntry(entry json.RawMessage) (*pairingReply, error) {
	var p pairingReply
	if err := json.Unmarshal(entry, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if p.ItemName == nil || *p.ItemName == "" {
		return nil, fmt.Errorf("%w: item_name is required", ErrMalformedReply)
	}
	if p.Explanation == nil {
		return nil, fmt.Errorf("%w: explanation is required", ErrMalformedReply)
	}
	return &p, nil
}

// extractJSON decodes the first JSON object in the reply and ignores
// whatever the model wrapped around it, such as markdown fences or prose.
func extractJSON(content string) ([]byte, error) {
	start := strings.Index(content, "{")
	if start == -1 {
		return nil, ErrNoJSON
	}

	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(content[start:])).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return raw, nil
}
