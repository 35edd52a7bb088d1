package footprint

import (
	"math"
	"sort"
)

// Levers are percentage reductions for a what-if scenario, each in [0,100].
type Levers struct {
	CarPct       float64 `json:"carPct"`
	ElectricPct  float64 `json:"electricityPct"`
	DietPct      float64 `json:"dietPct"`
	RenewablePct float64 `json:"renewablePct"`
	WastePct     float64 `json:"wastePct"`
	ShoppingPct  float64 `json:"shoppingPct"`
}

// Presets are the named scenarios offered by the simulator.
var presets = map[string]Levers{
	"eco_beginner":  {CarPct: 20, ElectricPct: 15, DietPct: 12, RenewablePct: 10, WastePct: 12, ShoppingPct: 10},
	"green_warrior": {CarPct: 50, ElectricPct: 50, DietPct: 50, RenewablePct: 40, WastePct: 30, ShoppingPct: 40},
	"minimalist":    {CarPct: 75, ElectricPct: 75, DietPct: 75, RenewablePct: 80, WastePct: 60, ShoppingPct: 80},
}

// Preset returns the levers of a named scenario.
func Preset(name string) (Levers, bool) {
	l, ok := presets[name]
	return l, ok
}

// PresetNames lists scenario names in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Simulation compares a footprint before and after applying levers.
type Simulation struct {
	Levers         Levers          `json:"levers"`
	Before         FootprintTotals `json:"before"`
	After          FootprintTotals `json:"after"`
	ReductionKg    float64         `json:"reductionKg"`
	ReductionPct   float64         `json:"reductionPct"`
	BaselineScore  int             `json:"baselineScore"`
	EstimatedScore int             `json:"estimatedScore"`
}

// Simulate applies reduction levers to the category totals of in.
// The estimated score is an extrapolation of the baseline by the relative improvement
// and is not a rescoring of the reduced input.
func Simulate(in LifestyleInput, levers Levers) Simulation {
	levers = levers.clamped()
	baseline := Compute(in)
	before := baseline.Totals

	energy := before.Energy * (1 - levers.ElectricPct/100) * (1 - levers.RenewablePct/200)
	travel := before.Travel * (1 - levers.CarPct/100)
	food := before.Food * (1 - levers.DietPct/100) * (1 - levers.WastePct/200)
	goods := before.Goods * (1 - levers.ShoppingPct/100)
	after := FootprintTotals{
		Total:  energy + travel + food + goods,
		Energy: energy,
		Travel: travel,
		Food:   food,
		Goods:  goods,
	}

	sim := Simulation{
		Levers:        levers,
		Before:        before,
		After:         after,
		ReductionKg:   before.Total - after.Total,
		BaselineScore: baseline.Score,
	}
	improvement := 0.0
	if before.Total > 0 {
		improvement = sim.ReductionKg / before.Total
		sim.ReductionPct = improvement * 100
	}
	sim.EstimatedScore = clampScore(baseline.Score + int(improvement*40))
	return sim
}

func (l Levers) clamped() Levers {
	return Levers{
		CarPct:       clampPct(l.CarPct),
		ElectricPct:  clampPct(l.ElectricPct),
		DietPct:      clampPct(l.DietPct),
		RenewablePct: clampPct(l.RenewablePct),
		WastePct:     clampPct(l.WastePct),
		ShoppingPct:  clampPct(l.ShoppingPct),
	}
}

func clampPct(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return min(100, v)
}
