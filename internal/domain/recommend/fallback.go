package recommend

import (
	"fmt"

	"github.com/yanqian/carbonlens/internal/domain/footprint"
)

// HighestCategory names the largest of energy, travel, food and goods. Ties go to the earlier one.
func HighestCategory(t footprint.FootprintTotals) string {
	best, name := t.Energy, "energy"
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"travel", t.Travel},
		{"food", t.Food},
		{"goods", t.Goods},
	} {
		if c.value > best {
			best, name = c.value, c.name
		}
	}
	return name
}

// fallbackTips are rule-based recommendations used whenever the model cannot answer.
func fallbackTips(t footprint.FootprintTotals) []Tip {
	return []Tip{
		{
			Title:         "Improve home energy efficiency",
			Text:          fmt.Sprintf("Your energy emissions are %.1f kg/month. Start with simple high-impact fixes like sealing drafts, reducing AC load, and switching to LED lighting.", t.Energy),
			ImpactKgMonth: max(5, int(t.Energy*0.10)),
			Confidence:    0.85,
			Category:      "Energy",
			Steps: []string{
				"Seal gaps around doors and windows using weather strips.",
				"Replace 5 to 10 bulbs with LEDs.",
				"Raise the AC set point by 1 to 2 degrees C.",
			},
		},
		{
			Title:         "Reduce short car trips",
			Text:          fmt.Sprintf("Travel emissions are %.1f kg/month. Short trips waste the most fuel, so combining errands helps reduce this.", t.Travel),
			ImpactKgMonth: max(3, int(t.Travel*0.15)),
			Confidence:    0.75,
			Category:      "Travel",
			Steps: []string{
				"List all weekly short trips.",
				"Group 2 or 3 trips into a single outing.",
				"Try public transport at least once per week.",
			},
		},
		{
			Title:         "Lower food-based emissions",
			Text:          fmt.Sprintf("Food-related CO2 is %.1f kg/month. Reducing high-emission meals such as red meat and dairy-heavy dishes makes a big difference.", t.Food),
			ImpactKgMonth: max(4, int(t.Food*0.12)),
			Confidence:    0.80,
			Category:      "Food",
			Steps: []string{
				"Replace 2 red-meat meals with plant-based options.",
				"Try legume-based proteins like chickpeas or lentils.",
				"Shift 1 or 2 weekly meals to vegetarian.",
			},
		},
	}
}

func fallbackReply(highest string) string {
	return fmt.Sprintf("AI unavailable. Based on your analyzer, your highest-impact area is **%s**.", highest)
}
