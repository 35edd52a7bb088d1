package footprint

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestCompute_UrbanCommuterScenario(t *testing.T) {
	in := LifestyleInput{ElectricityKwh: 350, NaturalGasTherms: 60, CarKm: 600, BusKm: 100, DietDailyKg: 3.5, GoodsEmissionsKg: 250}

	got := Compute(in)

	wantBreakdown := EmissionBreakdown{Electricity: 287, NaturalGas: 318, Car: 126, Bus: 9, Food: 105, Goods: 250}
	if diff := cmp.Diff(wantBreakdown, got.Breakdown, approx); diff != "" {
		t.Fatalf("breakdown mismatch (-want +got):\n%s", diff)
	}
	wantTotals := FootprintTotals{Total: 1095, Energy: 605, Travel: 135, Food: 105, Goods: 250}
	if diff := cmp.Diff(wantTotals, got.Totals, approx); diff != "" {
		t.Fatalf("totals mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 60, got.Score)
	require.Equal(t, ScoreCard{Energy: 10, Transport: 20, Food: 15, Goods: 15, Base: 60, Adjustment: "none", Score: 60}, got.ScoreCard)

	wantTrend := []TrendPoint{
		{"Jan", 985.5}, {"Feb", 1040.25}, {"Mar", 1095}, {"Apr", 1149.75}, {"May", 1204.5}, {"Jun", 1149.75},
	}
	if diff := cmp.Diff(wantTrend, got.Trend, approx); diff != "" {
		t.Fatalf("trend mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_ZeroInputUsesDietDefault(t *testing.T) {
	in := InputForm{}.Resolve()
	require.Equal(t, DefaultDietDailyKg, in.DietDailyKg)

	got := Compute(in)
	require.InDelta(t, 105.0, got.Breakdown.Food, 1e-9)
	require.InDelta(t, 105.0, got.Totals.Total, 1e-9)
	require.Equal(t, 90, got.Score)
}

func TestInputForm_ExplicitZeroDiet(t *testing.T) {
	zero := 0.0
	in := InputForm{DietDailyKg: &zero}.Resolve()
	require.Zero(t, in.DietDailyKg)
	require.Zero(t, Compute(in).Totals.Total)
}

func TestFormOf_RoundTrips(t *testing.T) {
	in := LifestyleInput{ElectricityKwh: 1, NaturalGasTherms: 2, CarKm: 3, BusKm: 4, DietDailyKg: 5, GoodsEmissionsKg: 6, FlightsPerYear: 7}
	require.Equal(t, in, FormOf(in).Resolve())
}

func TestComputeBreakdown_NegativePropagates(t *testing.T) {
	got := ComputeBreakdown(LifestyleInput{CarKm: -100})
	require.InDelta(t, -21.0, got.Car, 1e-9)
}

func TestComputeBreakdown_Linearity(t *testing.T) {
	base := LifestyleInput{ElectricityKwh: 123.4, NaturalGasTherms: 17.25, CarKm: 333, BusKm: 41, DietDailyKg: 2.7, GoodsEmissionsKg: 88.8}
	ref := ComputeBreakdown(base)
	// Powers of two keep float scaling exact.
	for _, k := range []float64{0, 0.5, 2, 4} {
		scaled := ComputeBreakdown(LifestyleInput{
			ElectricityKwh:   k * base.ElectricityKwh,
			NaturalGasTherms: k * base.NaturalGasTherms,
			CarKm:            k * base.CarKm,
			BusKm:            k * base.BusKm,
			DietDailyKg:      k * base.DietDailyKg,
			GoodsEmissionsKg: k * base.GoodsEmissionsKg,
		})
		want := EmissionBreakdown{
			Electricity: k * ref.Electricity,
			NaturalGas:  k * ref.NaturalGas,
			Car:         k * ref.Car,
			Bus:         k * ref.Bus,
			Food:        k * ref.Food,
			Goods:       k * ref.Goods,
		}
		require.Equal(t, want, scaled, "k=%v", k)
	}
}

func TestComputeTotals_Additivity(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		totals := Compute(randomInput(rng)).Totals
		require.Equal(t, totals.Energy+totals.Travel+totals.Food+totals.Goods, totals.Total)
	}
}

func TestComputeTrend_Deterministic(t *testing.T) {
	for _, total := range []float64{0, 1, 105, 1095, 98765.4321} {
		first := ComputeTrend(total)
		second := ComputeTrend(total)
		require.Len(t, first, 6)
		require.Equal(t, first, second)
		require.Equal(t, total, first[2].Value)
		require.Equal(t, "Mar", first[2].Label)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	in := LifestyleInput{ElectricityKwh: 400, NaturalGasTherms: 80, CarKm: 1200, BusKm: 50, DietDailyKg: 4.5, GoodsEmissionsKg: 300, FlightsPerYear: 12}
	if diff := cmp.Diff(Compute(in), Compute(in)); diff != "" {
		t.Fatalf("compute is not idempotent:\n%s", diff)
	}
}

func TestResult_Rounded(t *testing.T) {
	res := Compute(LifestyleInput{ElectricityKwh: 123.456, DietDailyKg: 1.01, CarKm: 7})
	rounded := res.Rounded()

	require.Equal(t, 101.2, rounded.Breakdown.Electricity)
	require.Equal(t, 30.3, rounded.Breakdown.Food)
	require.Equal(t, 1.5, rounded.Breakdown.Car)
	require.Equal(t, res.Score, rounded.Score)
	require.Len(t, rounded.Trend, 6)
	// The source result is untouched.
	require.InDelta(t, 101.23392, res.Breakdown.Electricity, 1e-9)
}

func randomInput(rng *rand.Rand) LifestyleInput {
	return LifestyleInput{
		ElectricityKwh:   rng.Float64() * 1500,
		NaturalGasTherms: rng.Float64() * 200,
		CarKm:            rng.Float64() * 4000,
		BusKm:            rng.Float64() * 1000,
		DietDailyKg:      rng.Float64() * 10,
		GoodsEmissionsKg: rng.Float64() * 800,
		FlightsPerYear:   rng.IntN(20),
	}
}
