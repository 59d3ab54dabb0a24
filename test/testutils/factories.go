// Package testutils provides menu fixtures and random menu factories for tests
package testutils

import (
	"fmt"

	"github.com/alchemorsel/menupairing/internal/domain/menu"
	"github.com/brianvoe/gofakeit/v6"
)

// Item builds a menu item and panics on invalid input. Test use only.
func Item(id, name string, price float64, category menu.Category, dietary ...string) *menu.MenuItem {
	item, err := menu.NewMenuItem(id, name, price, name+" description", category, dietary...)
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid item %s: %v", id, err))
	}
	return item
}

// MenuOf builds a menu from the given items, placing each under its own category
func MenuOf(items ...*menu.MenuItem) *menu.Menu {
	var s menu.Sections
	for _, item := range items {
		switch item.Category() {
		case menu.CategoryAppetizer:
			s.Appetizers = append(s.Appetizers, item)
		case menu.CategoryMain:
			s.Mains = append(s.Mains, item)
		case menu.CategoryDessert:
			s.Desserts = append(s.Desserts, item)
		case menu.CategoryWine:
			s.Wines = append(s.Wines, item)
		case menu.CategoryCocktail:
			s.Cocktails = append(s.Cocktails, item)
		}
	}
	m, err := menu.NewMenu(s)
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid menu: %v", err))
	}
	return m
}

// OneTreeGrill returns a small fixed menu used across the test suites
func OneTreeGrill() *menu.Snapshot {
	return &menu.Snapshot{
		Restaurant: menu.Restaurant{
			Name:        "One Tree Grill",
			Description: "Modern New Zealand bistro at the foot of One Tree Hill",
			Location:    "Auckland",
			CuisineType: "Modern New Zealand",
		},
		Menu: MenuOf(
			Item("app-burrata", "Burrata", 18, menu.CategoryAppetizer, menu.TagVegetarian),
			Item("app-oysters", "Bluff Oysters", 24, menu.CategoryAppetizer),
			Item("main-lamb", "Lamb Rump", 42, menu.CategoryMain),
			Item("main-risotto", "Mushroom Risotto", 34, menu.CategoryMain, menu.TagVegetarian),
			Item("dessert-pavlova", "Pavlova", 16, menu.CategoryDessert, menu.TagVegetarian),
			Item("dessert-affogato", "Affogato", 14, menu.CategoryDessert),
			Item("wine-pinot", "Central Otago Pinot Noir", 19, menu.CategoryWine),
			Item("wine-sauv", "Marlborough Sauvignon Blanc", 15, menu.CategoryWine, menu.TagVegetarian),
			Item("cocktail-negroni", "Negroni", 20, menu.CategoryCocktail),
			Item("cocktail-spritz", "Elderflower Spritz", 17, menu.CategoryCocktail, menu.TagVegetarian),
		),
	}
}

// MenuFactory generates random but reproducible menus
type MenuFactory struct {
	faker *gofakeit.Faker
}

// NewMenuFactory creates a new menu factory with a seeded faker
func NewMenuFactory(seed int64) *MenuFactory {
	return &MenuFactory{
		faker: gofakeit.New(seed),
	}
}

// Menu generates a menu with up to maxPerSection items in every section.
// Roughly half of the items are tagged vegetarian.
func (f *MenuFactory) Menu(maxPerSection int) *menu.Menu {
	var items []*menu.MenuItem
	n := 0
	for _, category := range menu.Categories {
		count := f.faker.Number(0, maxPerSection)
		for i := 0; i < count; i++ {
			n++
			var tags []string
			if f.faker.Bool() {
				tags = append(tags, menu.TagVegetarian)
			}
			if f.faker.Bool() {
				tags = append(tags, "gluten-free")
			}
			items = append(items, Item(
				fmt.Sprintf("%s-%d", category, n),
				fmt.Sprintf("%s %s No. %d", f.faker.Adjective(), f.faker.Noun(), n),
				f.faker.Float64Range(5, 80),
				category,
				tags...,
			))
		}
	}
	return MenuOf(items...)
}

// Pick returns a random item of the menu, or nil for an empty menu
func (f *MenuFactory) Pick(m *menu.Menu) *menu.MenuItem {
	all := m.All()
	if len(all) == 0 {
		return nil
	}
	return all[f.faker.Number(0, len(all)-1)]
}
