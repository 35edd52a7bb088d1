package footprint

// Emission factors in kg CO2 per unit.
const (
	ElectricityFactor = 0.82 // per kWh
	NaturalGasFactor  = 5.3  // per therm
	CarFactor         = 0.21 // per km
	BusFactor         = 0.09 // per km
	DaysPerMonth      = 30
)

var (
	trendLabels      = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
	trendMultipliers = [...]float64{0.90, 0.95, 1.00, 1.05, 1.10, 1.05}
)

// ComputeBreakdown applies the fixed emission factors. It does not validate;
// negative inputs propagate arithmetically.
func ComputeBreakdown(in LifestyleInput) EmissionBreakdown {
	return EmissionBreakdown{
		Electricity: in.ElectricityKwh * ElectricityFactor,
		NaturalGas:  in.NaturalGasTherms * NaturalGasFactor,
		Car:         in.CarKm * CarFactor,
		Bus:         in.BusKm * BusFactor,
		Food:        in.DietDailyKg * DaysPerMonth,
		Goods:       in.GoodsEmissionsKg,
	}
}

// ComputeTotals groups the breakdown into categories.
// Total is summed from the categories so total == energy+travel+food+goods holds exactly.
func ComputeTotals(b EmissionBreakdown) FootprintTotals {
	energy := b.Electricity + b.NaturalGas
	travel := b.Car + b.Bus
	return FootprintTotals{
		Total:  energy + travel + b.Food + b.Goods,
		Energy: energy,
		Travel: travel,
		Food:   b.Food,
		Goods:  b.Goods,
	}
}

// ComputeTrend scales the monthly total into a six month series. The third point equals total.
func ComputeTrend(total float64) []TrendPoint {
	points := make([]TrendPoint, len(trendLabels))
	for i, label := range trendLabels {
		points[i] = TrendPoint{Label: label, Value: total * trendMultipliers[i]}
	}
	return points
}

// Compute runs the whole engine on one input.
func Compute(in LifestyleInput) Result {
	breakdown := ComputeBreakdown(in)
	totals := ComputeTotals(breakdown)
	card := ScoreDetails(totals, in)
	return Result{
		Breakdown: breakdown,
		Totals:    totals,
		Score:     card.Score,
		ScoreCard: card,
		Trend:     ComputeTrend(totals.Total),
	}
}
