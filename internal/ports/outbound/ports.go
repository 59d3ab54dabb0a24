// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/menupairing/internal/domain/menu"
)

// MenuSource supplies read-only restaurant snapshots
type MenuSource interface {
	// Load returns the validated snapshot for a restaurant.
	// Returns ErrRestaurantNotFound when no snapshot exists and an error
	// wrapping ErrInvalidMenu when the stored data fails validation.
	Load(ctx context.Context, restaurantID string) (*menu.Snapshot, error)
}

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrInvalidMenu        = errors.New("invalid menu data")
)

// CompletionClient talks to a chat-completion style generative backend
type CompletionClient interface {
	// Complete sends the messages and returns the assistant's reply text
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Chat roles
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is a single role-tagged message
type ChatMessage struct {
	Role    string
	Content string
}

// CompletionRequest carries the prompt and sampling settings
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// ErrBackendDisabled is returned by clients that have no credential configured
var ErrBackendDisabled = errors.New("completion backend not configured")

// PairingMetrics records pairing outcomes
type PairingMetrics interface {
	ObservePairing(source string, suggestions int)
	ObserveBackendCall(outcome string, duration time.Duration)
}
