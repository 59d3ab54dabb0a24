package menu

// Value Objects - closed enumerations describing a menu and a diner's context

// Category is the menu section an item belongs to
type Category string

const (
	CategoryAppetizer Category = "appetizer"
	CategoryMain      Category = "main"
	CategoryDessert   Category = "dessert"
	CategoryWine      Category = "wine"
	CategoryCocktail  Category = "cocktail"
)

// Categories lists every category in menu order
var Categories = []Category{
	CategoryAppetizer,
	CategoryMain,
	CategoryDessert,
	CategoryWine,
	CategoryCocktail,
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsDrink reports whether the category is served as a drink
func (c Category) IsDrink() bool {
	return c == CategoryWine || c == CategoryCocktail
}

// TagVegetarian marks plant-based items
const TagVegetarian = "vegetarian"

// DiningStyle frames the occasion. It only changes the wording of the prompt.
type DiningStyle string

const (
	DiningStyleRomantic    DiningStyle = "romantic"
	DiningStyleCasual      DiningStyle = "casual"
	DiningStyleBusiness    DiningStyle = "business"
	DiningStyleCelebration DiningStyle = "celebration"
	DiningStyleQuick       DiningStyle = "quick"
)

type diningStyleInfo struct {
	label       string
	description string
}

var diningStyles = map[DiningStyle]diningStyleInfo{
	DiningStyleRomantic:    {"Romantic", "Intimate dining with wine pairings"},
	DiningStyleCasual:      {"Casual", "Relaxed atmosphere, comfort food"},
	DiningStyleBusiness:    {"Business", "Professional, impressive selections"},
	DiningStyleCelebration: {"Celebration", "Special occasion, premium options"},
	DiningStyleQuick:       {"Quick Bite", "Fast, satisfying options"},
}

// ParseDiningStyle converts raw input into a DiningStyle
func ParseDiningStyle(s string) (DiningStyle, error) {
	style := DiningStyle(s)
	if _, ok := diningStyles[style]; !ok {
		return "", ErrInvalidDiningStyle
	}
	return style, nil
}

// IsValid reports whether d is a known dining style
func (d DiningStyle) IsValid() bool {
	_, ok := diningStyles[d]
	return ok
}

// Label returns the human readable name of the style
func (d DiningStyle) Label() string {
	return diningStyles[d].label
}

// Description returns a short phrase describing the occasion
func (d DiningStyle) Description() string {
	return diningStyles[d].description
}

// DietaryPreference selects the eligibility filter applied before pairing
type DietaryPreference string

const (
	DietaryVegetarian  DietaryPreference = "vegetarian"
	DietaryAdventurous DietaryPreference = "adventurous"
	DietaryAll         DietaryPreference = "all"
)

// ParseDietaryPreference converts raw input into a DietaryPreference
func ParseDietaryPreference(s string) (DietaryPreference, error) {
	pref := DietaryPreference(s)
	if !pref.IsValid() {
		return "", ErrInvalidDietaryPreference
	}
	return pref, nil
}

// IsValid reports whether p is a known dietary preference
func (p DietaryPreference) IsValid() bool {
	switch p {
	case DietaryVegetarian, DietaryAdventurous, DietaryAll:
		return true
	default:
		return false
	}
}
