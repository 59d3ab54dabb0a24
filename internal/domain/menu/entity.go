// Package menu contains the restaurant menu domain: items, sections and the
// diner context (dining style and dietary preference) used for pairing.
package menu

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MenuItem is a single dish or drink. It is immutable once constructed.
type MenuItem struct {
	id          string
	name        string
	price       float64
	description string
	category    Category
	dietary     []string
}

// NewMenuItem creates a validated MenuItem
func NewMenuItem(id, name string, price float64, description string, category Category, dietary ...string) (*MenuItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingItemID
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingItemName
	}
	if price < 0 {
		return nil, ErrNegativePrice
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	tags := make([]string, len(dietary))
	copy(tags, dietary)

	return &MenuItem{
		id:          id,
		name:        name,
		price:       price,
		description: description,
		category:    category,
		dietary:     tags,
	}, nil
}

// ID returns the item's unique identifier
func (m *MenuItem) ID() string {
	return m.id
}

// Name returns the item's display name
func (m *MenuItem) Name() string {
	return m.name
}

// Price returns the item's price
func (m *MenuItem) Price() float64 {
	return m.price
}

// Description returns the item's description
func (m *MenuItem) Description() string {
	return m.description
}

// Category returns the menu section of the item
func (m *MenuItem) Category() Category {
	return m.category
}

// Dietary returns a copy of the item's dietary tags
func (m *MenuItem) Dietary() []string {
	tags := make([]string, len(m.dietary))
	copy(tags, m.dietary)
	return tags
}

// HasTag reports whether the item carries the given dietary tag
func (m *MenuItem) HasTag(tag string) bool {
	for _, t := range m.dietary {
		if t == tag {
			return true
		}
	}
	return false
}

// IsVegetarian reports whether the item is tagged vegetarian
func (m *MenuItem) IsVegetarian() bool {
	return m.HasTag(TagVegetarian)
}

type menuItemJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Dietary     []string `json:"dietary"`
}

// MarshalJSON implements json.Marshaler
func (m *MenuItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(menuItemJSON{
		ID:          m.id,
		Name:        m.name,
		Price:       m.price,
		Description: m.description,
		Category:    m.category,
		Dietary:     m.Dietary(),
	})
}

// Restaurant describes the venue whose menu is being paired
type Restaurant struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	CuisineType string `json:"cuisine_type"`
}

// Validate validates the restaurant
func (r Restaurant) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingRestaurant
	}
	return nil
}

// Menu holds the five ordered menu sections
type Menu struct {
	sections map[Category][]*MenuItem
}

// Sections groups items per category for NewMenu
type Sections struct {
	Appetizers []*MenuItem
	Mains      []*MenuItem
	Desserts   []*MenuItem
	Wines      []*MenuItem
	Cocktails  []*MenuItem
}

// NewMenu creates a Menu, checking that every item sits in the section
// matching its category and that IDs are unique across the whole menu.
func NewMenu(s Sections) (*Menu, error) {
	input := map[Category][]*MenuItem{
		CategoryAppetizer: s.Appetizers,
		CategoryMain:      s.Mains,
		CategoryDessert:   s.Desserts,
		CategoryWine:      s.Wines,
		CategoryCocktail:  s.Cocktails,
	}

	seen := make(map[string]struct{})
	sections := make(map[Category][]*MenuItem, len(input))
	for _, category := range Categories {
		items := input[category]
		section := make([]*MenuItem, 0, len(items))
		for _, item := range items {
			if item == nil {
				continue
			}
			if item.category != category {
				return nil, fmt.Errorf("%w: %s is a %s listed under %s", ErrCategoryMismatch, item.id, item.category, category)
			}
			if _, dup := seen[item.id]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateItemID, item.id)
			}
			seen[item.id] = struct{}{}
			section = append(section, item)
		}
		sections[category] = section
	}

	return &Menu{sections: sections}, nil
}

// Section returns the items of one category in menu order
func (m *Menu) Section(c Category) []*MenuItem {
	items := m.sections[c]
	out := make([]*MenuItem, len(items))
	copy(out, items)
	return out
}

// All flattens the menu: appetizers, mains, desserts, wines, then cocktails
func (m *Menu) All() []*MenuItem {
	var all []*MenuItem
	for _, c := range Categories {
		all = append(all, m.sections[c]...)
	}
	return all
}

// Len returns the number of items on the menu
func (m *Menu) Len() int {
	n := 0
	for _, items := range m.sections {
		n += len(items)
	}
	return n
}

// FindByID looks an item up by its identifier
func (m *Menu) FindByID(id string) (*MenuItem, error) {
	for _, c := range Categories {
		for _, item := range m.sections[c] {
			if item.id == id {
				return item, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// MarshalJSON implements json.Marshaler using the plural section names
func (m *Menu) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]*MenuItem{
		"appetizers": m.Section(CategoryAppetizer),
		"mains":      m.Section(CategoryMain),
		"desserts":   m.Section(CategoryDessert),
		"wines":      m.Section(CategoryWine),
		"cocktails":  m.Section(CategoryCocktail),
	})
}

// Snapshot is a read-only view of one restaurant and its menu
type Snapshot struct {
	Restaurant Restaurant `json:"restaurant"`
	Menu       *Menu      `json:"menu"`
}
