// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/menupairing/internal/domain/menu"
	"github.com/alchemorsel/menupairing/internal/domain/pairing"
)

// PairingService is the primary port used by the HTTP handlers and the CLI
type PairingService interface {
	// Suggest computes pairings for a fully specified request
	Suggest(ctx context.Context, req pairing.Request) (*pairing.Result, error)

	// SuggestForRestaurant loads the restaurant snapshot and pairs the given item
	SuggestForRestaurant(ctx context.Context, cmd SuggestCommand) (*pairing.Result, error)

	// Menu returns the snapshot of a restaurant
	Menu(ctx context.Context, restaurantID string) (*menu.Snapshot, error)
}

// SuggestCommand identifies a selection by restaurant and item ID
type SuggestCommand struct {
	RestaurantID string
	ItemID       string
	DiningStyle  menu.DiningStyle
	Dietary      menu.DietaryPreference
}
