package pairing_test

import (
	"encoding/json"
	"testing"

	"github.com/alchemorsel/menupairing/internal/domain/menu"
	"github.com/alchemorsel/menupairing/internal/domain/pairing"
	"github.com/alchemorsel/menupairing/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type picked struct {
	id         string
	confidence int
}

func summarize(suggestions []pairing.Suggestion) []picked {
	out := make([]picked, len(suggestions))
	for i, s := range suggestions {
		out[i] = picked{s.Item.ID(), s.Confidence}
	}
	return out
}

func TestFallback_MainWithWineAndDessert(t *testing.T) {
	wine := testutils.Item("w", "House Red", 12, menu.CategoryWine)
	dessert := testutils.Item("d", "Tiramisu", 14, menu.CategoryDessert)

	got := pairing.Fallback(menu.CategoryMain, []*menu.MenuItem{dessert, wine})

	assert.Equal(t, []picked{{"w", 75}, {"d", 70}}, summarize(got))
}

func TestFallback_AppetizerWithMainWineCocktail(t *testing.T) {
	main := testutils.Item("m", "Steak", 40, menu.CategoryMain)
	wine := testutils.Item("w", "House Red", 12, menu.CategoryWine)
	cocktail := testutils.Item("c", "Negroni", 18, menu.CategoryCocktail)

	got := pairing.Fallback(menu.CategoryAppetizer, []*menu.MenuItem{main, wine, cocktail})

	assert.Equal(t, []picked{{"m", 80}, {"w", 75}, {"c", 70}}, summarize(got))
}

func TestFallback_FirstEligiblePerCategoryWins(t *testing.T) {
	first := testutils.Item("w1", "Pinot", 19, menu.CategoryWine)
	second := testutils.Item("w2", "Syrah", 21, menu.CategoryWine)

	got := pairing.Fallback(menu.CategoryMain, []*menu.MenuItem{first, second})

	require.Len(t, got, 1)
	assert.Equal(t, "w1", got[0].Item.ID())
}

func TestFallback_OtherCategoriesOnlyGetCocktail(t *testing.T) {
	candidates := []*menu.MenuItem{
		testutils.Item("m", "Steak", 40, menu.CategoryMain),
		testutils.Item("w", "House Red", 12, menu.CategoryWine),
		testutils.Item("c", "Negroni", 18, menu.CategoryCocktail),
	}

	for _, category := range []menu.Category{menu.CategoryDessert, menu.CategoryWine, menu.CategoryCocktail} {
		got := pairing.Fallback(category, candidates)
		assert.Equal(t, []picked{{"c", 70}}, summarize(got), "selected category %s", category)
	}
}

func TestFallback_NoCandidates(t *testing.T) {
	got := pairing.Fallback(menu.CategoryMain, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFallback_VegetarianMainOmitsWineSlot(t *testing.T) {
	snap := testutils.MenuOf(
		testutils.Item("lamb", "Lamb", 42, menu.CategoryMain),
		testutils.Item("pavlova", "Pavlova", 16, menu.CategoryDessert, menu.TagVegetarian),
		testutils.Item("pinot", "Pinot Noir", 19, menu.CategoryWine),
		testutils.Item("negroni", "Negroni", 20, menu.CategoryCocktail),
	)
	lamb, err := snap.FindByID("lamb")
	require.NoError(t, err)

	candidates := menu.EligibleCandidates(snap, lamb, menu.DietaryVegetarian)
	got := pairing.Fallback(lamb.Category(), candidates)

	assert.Equal(t, []picked{{"pavlova", 70}}, summarize(got))
}

func TestFallback_VegetarianMainUsesVegetarianWine(t *testing.T) {
	snap := testutils.OneTreeGrill()
	lamb, err := snap.Menu.FindByID("main-lamb")
	require.NoError(t, err)

	candidates := menu.EligibleCandidates(snap.Menu, lamb, menu.DietaryVegetarian)
	got := pairing.Fallback(lamb.Category(), candidates)

	assert.Equal(t, []picked{
		{"wine-sauv", 75},
		{"dessert-pavlova", 70},
		{"cocktail-spritz", 70},
	}, summarize(got))
}

func TestFallback_Properties(t *testing.T) {
	factory := testutils.NewMenuFactory(7)
	prefs := []menu.DietaryPreference{menu.DietaryVegetarian, menu.DietaryAdventurous, menu.DietaryAll}

	for i := 0; i < 200; i++ {
		m := factory.Menu(3)
		selected := factory.Pick(m)
		if selected == nil {
			continue
		}
		pref := prefs[i%len(prefs)]
		candidates := menu.EligibleCandidates(m, selected, pref)

		first := pairing.Fallback(selected.Category(), candidates)
		second := pairing.Fallback(selected.Category(), candidates)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		require.Equal(t, string(a), string(b), "fallback must be deterministic")

		require.LessOrEqual(t, len(first), pairing.MaxSuggestions)

		seen := map[string]bool{}
		for _, s := range first {
			assert.NotEqual(t, selected.ID(), s.Item.ID())
			assert.False(t, seen[s.Item.ID()], "duplicate %s", s.Item.ID())
			seen[s.Item.ID()] = true
			assert.Contains(t, candidates, s.Item)
		}
	}
}
