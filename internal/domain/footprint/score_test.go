package footprint

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeScore_Scenarios(t *testing.T) {
	cases := []struct {
		name       string
		in         LifestyleInput
		want       int
		adjustment string
	}{
		{
			name:       "urban commuter without adjustment",
			in:         LifestyleInput{ElectricityKwh: 350, NaturalGasTherms: 60, CarKm: 600, BusKm: 100, DietDailyKg: 3.5, GoodsEmissionsKg: 250},
			want:       60,
			adjustment: "none",
		},
		{
			name:       "eco profile capped at 95",
			in:         LifestyleInput{ElectricityKwh: 200, NaturalGasTherms: 30, CarKm: 100, BusKm: 150, DietDailyKg: 1.5, GoodsEmissionsKg: 100},
			want:       95,
			adjustment: "eco",
		},
		{
			name:       "zero input lands on 90",
			in:         LifestyleInput{DietDailyKg: 3.5},
			want:       90,
			adjustment: "light_user",
		},
		{
			name:       "heavy driving penalty",
			in:         LifestyleInput{ElectricityKwh: 350, NaturalGasTherms: 60, CarKm: 1200, BusKm: 100, DietDailyKg: 3.5, GoodsEmissionsKg: 250},
			want:       45,
			adjustment: "heavy_travel",
		},
		{
			name:       "frequent flights penalty",
			in:         LifestyleInput{ElectricityKwh: 350, NaturalGasTherms: 60, CarKm: 600, BusKm: 100, DietDailyKg: 3.5, GoodsEmissionsKg: 250, FlightsPerYear: 8},
			want:       50,
			adjustment: "heavy_travel",
		},
		{
			name:       "heavy travel floor at 30",
			in:         LifestyleInput{ElectricityKwh: 2000, NaturalGasTherms: 200, CarKm: 3000, DietDailyKg: 9, GoodsEmissionsKg: 900},
			want:       30,
			adjustment: "heavy_travel",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := ComputeTotals(ComputeBreakdown(tc.in))
			require.Equal(t, tc.want, ComputeScore(totals, tc.in))
			require.Equal(t, tc.adjustment, ScoreDetails(totals, tc.in).Adjustment)
		})
	}
}

func TestBandPoints_Boundaries(t *testing.T) {
	require.Equal(t, 25, bandPoints(200, energyBands))
	require.Equal(t, 20, bandPoints(200.0001, energyBands))
	require.Equal(t, 10, bandPoints(800, energyBands))
	require.Equal(t, 5, bandPoints(800.0001, energyBands))
	require.Equal(t, 25, bandPoints(0, goodsBands))
	require.Equal(t, 5, bandPoints(151, foodBands))
	require.Equal(t, 10, bandPoints(500, transportBands))
}

func TestTransportIgnoresBus(t *testing.T) {
	in := LifestyleInput{ElectricityKwh: 350, NaturalGasTherms: 60, CarKm: 600, DietDailyKg: 3.5, GoodsEmissionsKg: 250}
	withBus := in
	withBus.BusKm = 5000

	a := ScoreDetails(ComputeTotals(ComputeBreakdown(in)), in)
	b := ScoreDetails(ComputeTotals(ComputeBreakdown(withBus)), withBus)
	require.Equal(t, a.Transport, b.Transport)
}

func TestAdjustments_FirstMatchWins(t *testing.T) {
	// Qualifies for both eco and light_user; eco is first.
	in := LifestyleInput{ElectricityKwh: 100, CarKm: 50, DietDailyKg: 1, GoodsEmissionsKg: 50}
	card := ScoreDetails(ComputeTotals(ComputeBreakdown(in)), in)
	require.Equal(t, "eco", card.Adjustment)

	reordered := []Adjustment{LightUserAdjustment, EcoAdjustment}
	card = ScoreWith(ComputeTotals(ComputeBreakdown(in)), in, reordered)
	require.Equal(t, "light_user", card.Adjustment)
	require.Equal(t, 90, card.Score)
}

func TestAdjustments_Individually(t *testing.T) {
	require.Equal(t, 95, EcoAdjustment.Apply(90))
	require.Equal(t, 75, EcoAdjustment.Apply(60))
	require.Equal(t, 90, LightUserAdjustment.Apply(85))
	require.Equal(t, 70, LightUserAdjustment.Apply(60))
	require.Equal(t, 30, HeavyTravelAdjustment.Apply(35))
	require.Equal(t, 50, HeavyTravelAdjustment.Apply(60))

	require.False(t, EcoAdjustment.Applies(LifestyleInput{ElectricityKwh: 250, NaturalGasTherms: 40, CarKm: 150, DietDailyKg: 2.01, GoodsEmissionsKg: 150}))
	require.True(t, EcoAdjustment.Applies(LifestyleInput{ElectricityKwh: 250, NaturalGasTherms: 40, CarKm: 150, DietDailyKg: 2.0, GoodsEmissionsKg: 150}))
	require.True(t, HeavyTravelAdjustment.Applies(LifestyleInput{CarKm: 1000}))
	require.False(t, HeavyTravelAdjustment.Applies(LifestyleInput{CarKm: 999.9, FlightsPerYear: 7}))
}

func TestDefaultAdjustments_ReturnsCopy(t *testing.T) {
	rules := DefaultAdjustments()
	require.Len(t, rules, 3)
	rules[0] = HeavyTravelAdjustment
	require.Equal(t, "eco", DefaultAdjustments()[0].Name)
}

func TestComputeScore_Bounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 2000; i++ {
		in := randomInput(rng)
		score := ComputeScore(ComputeTotals(ComputeBreakdown(in)), in)
		require.GreaterOrEqual(t, score, MinScore)
		require.LessOrEqual(t, score, MaxScore)
	}
}

func TestComputeScore_MonotoneInEachInput(t *testing.T) {
	base := LifestyleInput{ElectricityKwh: 100, NaturalGasTherms: 10, CarKm: 40, BusKm: 20, DietDailyKg: 1.2, GoodsEmissionsKg: 60}
	bumps := map[string]func(in *LifestyleInput, step float64){
		"electricity": func(in *LifestyleInput, step float64) { in.ElectricityKwh += step * 25 },
		"gas":         func(in *LifestyleInput, step float64) { in.NaturalGasTherms += step * 5 },
		"car":         func(in *LifestyleInput, step float64) { in.CarKm += step * 60 },
		"diet":        func(in *LifestyleInput, step float64) { in.DietDailyKg += step * 0.25 },
		"goods":       func(in *LifestyleInput, step float64) { in.GoodsEmissionsKg += step * 20 },
		"flights":     func(in *LifestyleInput, step float64) { in.FlightsPerYear += int(step) },
	}
	for name, bump := range bumps {
		t.Run(name, func(t *testing.T) {
			in := base
			prev := ComputeScore(ComputeTotals(ComputeBreakdown(in)), in)
			for i := 0; i < 60; i++ {
				bump(&in, 1)
				score := ComputeScore(ComputeTotals(ComputeBreakdown(in)), in)
				require.LessOrEqual(t, score, prev, "step %d", i)
				prev = score
			}
		})
	}
}

func TestRating(t *testing.T) {
	require.Equal(t, "excellent", Rating(95))
	require.Equal(t, "excellent", Rating(80))
	require.Equal(t, "very_good", Rating(70))
	require.Equal(t, "good", Rating(60))
	require.Equal(t, "fair", Rating(50))
	require.Equal(t, "needs_improvement", Rating(49))
}
