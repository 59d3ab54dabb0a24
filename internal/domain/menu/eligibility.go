package menu

// Eligible reports whether item passes the dietary filter for pref.
//
// Adventurous diners are shown everything that is not vegetarian, but drinks
// stay eligible regardless of their tags.
func Eligible(item *MenuItem, pref DietaryPreference) bool {
	switch pref {
	case DietaryVegetarian:
		return item.IsVegetarian()
	case DietaryAdventurous:
		return !item.IsVegetarian() || item.Category().IsDrink()
	default:
		return true
	}
}

// EligibleCandidates flattens the menu, applies the dietary filter and drops
// the selected item. Menu order is preserved.
func EligibleCandidates(m *Menu, selected *MenuItem, pref DietaryPreference) []*MenuItem {
	all := m.All()
	candidates := make([]*MenuItem, 0, len(all))
	for _, item := range all {
		if selected != nil && item.ID() == selected.ID() {
			continue
		}
		if !Eligible(item, pref) {
			continue
		}
		candidates = append(candidates, item)
	}
	return candidates
}
