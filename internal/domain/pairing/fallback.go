package pairing

import "github.com/alchemorsel/menupairing/internal/domain/menu"

type rule struct {
	category    menu.Category
	confidence  int
	explanation string
}

// Course-specific rules, applied in order. The first eligible item of each
// category wins.
var courseRules = map[menu.Category][]rule{
	menu.CategoryMain: {
		{menu.CategoryWine, 75, "Classic wine pairing to complement your main course"},
		{menu.CategoryDessert, 70, "Sweet finish to complete your dining experience"},
	},
	menu.CategoryAppetizer: {
		{menu.CategoryMain, 80, "Perfect main course to follow your appetizer"},
		{menu.CategoryWine, 75, "Excellent wine to accompany your meal"},
	},
}

var cocktailRule = rule{menu.CategoryCocktail, 70, "Craft cocktail to enhance your dining experience"}

// Fallback picks suggestions without any network access. It is a pure
// function of the selected category and the candidate order, so identical
// inputs always give identical output. The result may be empty.
func Fallback(selected menu.Category, candidates []*menu.MenuItem) []Suggestion {
	suggestions := make([]Suggestion, 0, MaxSuggestions)
	used := make(map[string]struct{}, MaxSuggestions)

	add := func(r rule) {
		if len(suggestions) >= MaxSuggestions {
			return
		}
		item := firstOf(r.category, candidates)
		if item == nil {
			return
		}
		if _, dup := used[item.ID()]; dup {
			return
		}
		used[item.ID()] = struct{}{}
		suggestions = append(suggestions, Suggestion{
			Item:        item,
			Explanation: r.explanation,
			Confidence:  r.confidence,
		})
	}

	for _, r := range courseRules[selected] {
		add(r)
	}
	add(cocktailRule)

	return suggestions
}

func firstOf(category menu.Category, candidates []*menu.MenuItem) *menu.MenuItem {
	for _, item := range candidates {
		if item.Category() == category {
			return item
		}
	}
	return nil
}
