package pairing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alchemorsel/menupairing/internal/domain/menu"
	"github.com/alchemorsel/menupairing/internal/domain/pairing"
	"github.com/alchemorsel/menupairing/internal/ports/outbound"
)

// SystemPrompt frames the backend as a pairing specialist
const SystemPrompt = "You are an expert sommelier and culinary pairing specialist. " +
	"Provide precise, sophisticated pairing recommendations based on flavor profiles, textures, and dining experiences."

// BuildMessages returns the system and user messages for a pairing request
func BuildMessages(req pairing.Request, candidates []*menu.MenuItem) []outbound.ChatMessage {
	return []outbound.ChatMessage{
		{Role: outbound.RoleSystem, Content: SystemPrompt},
		{Role: outbound.RoleUser, Content: BuildPrompt(req, candidates)},
	}
}

// BuildPrompt renders the user prompt. Candidate names are listed verbatim
// because the reply is matched against them exactly.
func BuildPrompt(req pairing.Request, candidates []*menu.MenuItem) string {
	var b strings.Builder
	style := req.DiningStyle

	fmt.Fprintf(&b, "CONTEXT: %s - %s\n", req.Restaurant.Name, req.Restaurant.Description)
	fmt.Fprintf(&b, "CUISINE: %s\n\n", req.Restaurant.CuisineType)

	b.WriteString("USER SELECTION:\n")
	fmt.Fprintf(&b, "- Dish: %s (%s) - $%s\n", req.Selected.Name(), req.Selected.Description(), formatPrice(req.Selected.Price()))
	fmt.Fprintf(&b, "- Dining Style: %s (%s)\n", style, style.Description())
	fmt.Fprintf(&b, "- Dietary Preference: %s\n\n", req.Dietary)

	b.WriteString("AVAILABLE MENU ITEMS FOR PAIRING:\n")
	for _, item := range candidates {
		fmt.Fprintf(&b, "- %s (%s) - $%s: %s\n", item.Name(), item.Category(), formatPrice(item.Price()), item.Description())
	}

	b.WriteString("\nTASK: Suggest exactly 2-3 perfect pairings from different menu categories that complement the selected dish.\n\n")

	b.WriteString("REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Consider the %s dining style when selecting items\n", style)
	fmt.Fprintf(&b, "- Respect %s dietary preferences\n", req.Dietary)
	b.WriteString("- Choose items from different categories when possible\n")
	b.WriteString("- Focus on flavor harmony, texture contrast, and overall dining experience\n")
	fmt.Fprintf(&b, "- Consider price point appropriate for %s dining\n\n", style)

	b.WriteString(`FORMAT YOUR RESPONSE AS JSON:
{
  "pairings": [
    {
      "item_name": "exact menu item name",
      "explanation": "concise explanation (max 40 words)",
      "confidence": 85
    }
  ]
}

Only suggest items that exist in the available menu items list above.
Respond with ONLY the JSON object. No additional text or formatting.
`)

	return b.String()
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
