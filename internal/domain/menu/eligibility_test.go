package menu_test

import (
	"testing"

	"github.com/alchemorsel/menupairing/internal/domain/menu"
	"github.com/alchemorsel/menupairing/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var preferences = []menu.DietaryPreference{
	menu.DietaryVegetarian,
	menu.DietaryAdventurous,
	menu.DietaryAll,
}

func ids(items []*menu.MenuItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID()
	}
	return out
}

func TestEligibleCandidates_FixedMenu(t *testing.T) {
	snap := testutils.OneTreeGrill()
	lamb, err := snap.Menu.FindByID("main-lamb")
	require.NoError(t, err)

	t.Run("vegetarian keeps tagged items only", func(t *testing.T) {
		got := menu.EligibleCandidates(snap.Menu, lamb, menu.DietaryVegetarian)
		assert.Equal(t, []string{
			"app-burrata", "main-risotto", "dessert-pavlova", "wine-sauv", "cocktail-spritz",
		}, ids(got))
	})

	t.Run("adventurous keeps untagged items and every drink", func(t *testing.T) {
		got := menu.EligibleCandidates(snap.Menu, lamb, menu.DietaryAdventurous)
		assert.Equal(t, []string{
			"app-oysters", "dessert-affogato", "wine-pinot", "wine-sauv", "cocktail-negroni", "cocktail-spritz",
		}, ids(got))
	})

	t.Run("all keeps everything but the selection", func(t *testing.T) {
		got := menu.EligibleCandidates(snap.Menu, lamb, menu.DietaryAll)
		assert.Len(t, got, snap.Menu.Len()-1)
		assert.NotContains(t, ids(got), "main-lamb")
	})

	t.Run("selected vegetarian item is excluded", func(t *testing.T) {
		risotto, err := snap.Menu.FindByID("main-risotto")
		require.NoError(t, err)

		got := menu.EligibleCandidates(snap.Menu, risotto, menu.DietaryVegetarian)
		assert.NotContains(t, ids(got), "main-risotto")
	})
}

func TestEligibleCandidates_RandomMenus(t *testing.T) {
	factory := testutils.NewMenuFactory(42)

	for i := 0; i < 200; i++ {
		m := factory.Menu(4)
		selected := factory.Pick(m)
		if selected == nil {
			continue
		}

		for _, pref := range preferences {
			got := menu.EligibleCandidates(m, selected, pref)

			for _, item := range got {
				require.NotEqual(t, selected.ID(), item.ID(), "selected item must never be a candidate")

				switch pref {
				case menu.DietaryVegetarian:
					assert.True(t, item.IsVegetarian(), "vegetarian filter let %s through", item.ID())
				case menu.DietaryAdventurous:
					assert.True(t, !item.IsVegetarian() || item.Category().IsDrink(),
						"adventurous filter let %s through", item.ID())
				}
			}

			if pref == menu.DietaryAll {
				var want []string
				for _, item := range m.All() {
					if item.ID() != selected.ID() {
						want = append(want, item.ID())
					}
				}
				assert.ElementsMatch(t, want, ids(got))
			}
		}
	}
}

func TestEligible_DrinksStayEligibleForAdventurous(t *testing.T) {
	spritz := testutils.Item("spritz", "Spritz", 15, menu.CategoryCocktail, menu.TagVegetarian)
	salad := testutils.Item("salad", "Salad", 12, menu.CategoryAppetizer, menu.TagVegetarian)

	assert.True(t, menu.Eligible(spritz, menu.DietaryAdventurous))
	assert.False(t, menu.Eligible(salad, menu.DietaryAdventurous))
}
