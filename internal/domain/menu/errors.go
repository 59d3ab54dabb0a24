package menu

import "errors"

// Domain errors for menu data

var (
	// Item validation errors
	ErrMissingItemID     = errors.New("menu item id is required")
	ErrMissingItemName   = errors.New("menu item name is required")
	ErrNegativePrice     = errors.New("menu item price cannot be negative")
	ErrInvalidCategory   = errors.New("menu item category is not recognised")
	ErrDuplicateItemID   = errors.New("menu item id is not unique")
	ErrCategoryMismatch  = errors.New("menu item is listed under the wrong section")
	ErrMissingRestaurant = errors.New("restaurant name is required")

	// Context errors
	ErrInvalidDiningStyle       = errors.New("dining style is not recognised")
	ErrInvalidDietaryPreference = errors.New("dietary preference is not recognised")

	// Lookup errors
	ErrItemNotFound = errors.New("menu item not found")
)
