package footprint

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EPA greenhouse gas equivalency factors, kg CO2 per unit.
const (
	MilesDrivenFactor    = 0.192
	SmartphoneFactor     = 0.00822
	TreeSeedlingFactor   = 60.0
	HomeElectricityDayKg = 18.3
	MinEquivalentsKg     = 1.0
)

//nolint:gochecknoglobals // message.Printer is safe for concurrent use.
var printer = message.NewPrinter(language.English)

// Equivalent is one relatable comparison for a monthly total.
type Equivalent struct {
	Kind      string  `json:"kind"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
	Label     string  `json:"label"`
}

// Equivalents expresses a monthly footprint as everyday comparisons.
type Equivalents struct {
	InputKg     float64      `json:"inputKg"`
	Items       []Equivalent `json:"items"`
	DisplayText string       `json:"displayText,omitempty"`
}

// IsEmpty reports whether the total was too small to compare.
func (e Equivalents) IsEmpty() bool {
	return len(e.Items) == 0
}

// ComputeEquivalents converts kg CO2 into miles, phone charges, seedlings and home-days.
func ComputeEquivalents(totalKg float64) Equivalents {
	if math.IsNaN(totalKg) || totalKg < MinEquivalentsKg {
		return Equivalents{InputKg: totalKg}
	}
	items := []Equivalent{
		newEquivalent("miles_driven", totalKg/MilesDrivenFactor, "miles driven by an average car"),
		newEquivalent("smartphones_charged", totalKg/SmartphoneFactor, "smartphones charged"),
		newEquivalent("tree_seedlings", totalKg/TreeSeedlingFactor, "tree seedlings grown for 10 years"),
		newEquivalent("home_electricity_days", totalKg/HomeElectricityDayKg, "days of home electricity"),
	}
	return Equivalents{
		InputKg: totalKg,
		Items:   items,
		DisplayText: fmt.Sprintf("Equivalent to driving ~%s miles or charging ~%s smartphones",
			items[0].Formatted, items[1].Formatted),
	}
}

func newEquivalent(kind string, value float64, label string) Equivalent {
	return Equivalent{Kind: kind, Value: value, Formatted: formatQuantity(value), Label: label}
}

// formatQuantity prints whole numbers with thousand separators and small values with one decimal.
func formatQuantity(v float64) string {
	if v < 10 {
		return printer.Sprintf("%.1f", v)
	}
	return printer.Sprintf("%d", int64(math.Round(v)))
}
