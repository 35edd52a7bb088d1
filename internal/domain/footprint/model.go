package footprint

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDietDailyKg is the daily food emission assumed when the caller omits it.
const DefaultDietDailyKg = 3.5

// LifestyleInput is one month of household activity.
type LifestyleInput struct {
	ElectricityKwh   float64 `json:"electricityKwh"`
	NaturalGasTherms float64 `json:"naturalGasTherms"`
	CarKm            float64 `json:"carKm"`
	BusKm            float64 `json:"busKm"`
	DietDailyKg      float64 `json:"dietDailyKg"`
	GoodsEmissionsKg float64 `json:"goodsEmissionsKg"`
	FlightsPerYear   int     `json:"flightsPerYear"`
}

// InputForm is the wire shape of LifestyleInput. Nil fields were absent from the request.
type InputForm struct {
	ElectricityKwh   *float64 `json:"electricityKwh"`
	NaturalGasTherms *float64 `json:"naturalGasTherms"`
	CarKm            *float64 `json:"carKm"`
	BusKm            *float64 `json:"busKm"`
	DietDailyKg      *float64 `json:"dietDailyKg"`
	GoodsEmissionsKg *float64 `json:"goodsEmissionsKg"`
	FlightsPerYear   *int     `json:"flightsPerYear"`
}

// Resolve applies defaults for absent fields.
func (f InputForm) Resolve() LifestyleInput {
	in := LifestyleInput{DietDailyKg: DefaultDietDailyKg}
	if f.ElectricityKwh != nil {
		in.ElectricityKwh = *f.ElectricityKwh
	}
	if f.NaturalGasTherms != nil {
		in.NaturalGasTherms = *f.NaturalGasTherms
	}
	if f.CarKm != nil {
		in.CarKm = *f.CarKm
	}
	if f.BusKm != nil {
		in.BusKm = *f.BusKm
	}
	if f.DietDailyKg != nil {
		in.DietDailyKg = *f.DietDailyKg
	}
	if f.GoodsEmissionsKg != nil {
		in.GoodsEmissionsKg = *f.GoodsEmissionsKg
	}
	if f.FlightsPerYear != nil {
		in.FlightsPerYear = *f.FlightsPerYear
	}
	return in
}

// FormOf converts a resolved input back into a fully populated form.
func FormOf(in LifestyleInput) InputForm {
	return InputForm{
		ElectricityKwh:   &in.ElectricityKwh,
		NaturalGasTherms: &in.NaturalGasTherms,
		CarKm:            &in.CarKm,
		BusKm:            &in.BusKm,
		DietDailyKg:      &in.DietDailyKg,
		GoodsEmissionsKg: &in.GoodsEmissionsKg,
		FlightsPerYear:   &in.FlightsPerYear,
	}
}

// EmissionBreakdown holds per-source monthly emissions in kg CO2.
type EmissionBreakdown struct {
	Electricity float64 `json:"electricity"`
	NaturalGas  float64 `json:"naturalGas"`
	Car         float64 `json:"car"`
	Bus         float64 `json:"bus"`
	Food        float64 `json:"food"`
	Goods       float64 `json:"goods"`
}

// FootprintTotals aggregates the breakdown into dashboard categories.
type FootprintTotals struct {
	Total  float64 `json:"total"`
	Energy float64 `json:"energy"`
	Travel float64 `json:"travel"`
	Food   float64 `json:"food"`
	Goods  float64 `json:"goods"`
}

// TrendPoint is one month of the synthetic trend.
type TrendPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ScoreCard explains how a green score was reached.
type ScoreCard struct {
	Energy     int    `json:"energy"`
	Transport  int    `json:"transport"`
	Food       int    `json:"food"`
	Goods      int    `json:"goods"`
	Base       int    `json:"base"`
	Adjustment string `json:"adjustment"`
	Score      int    `json:"score"`
}

// Result is the full engine output for one input.
type Result struct {
	Breakdown EmissionBreakdown `json:"breakdown"`
	Totals    FootprintTotals   `json:"totals"`
	Score     int               `json:"score"`
	ScoreCard ScoreCard         `json:"scoreCard"`
	Trend     []TrendPoint      `json:"trend"`
}

// Rounded returns a presentation copy with kg values at one decimal place.
func (r Result) Rounded() Result {
	out := r
	out.Breakdown = EmissionBreakdown{
		Electricity: round1(r.Breakdown.Electricity),
		NaturalGas:  round1(r.Breakdown.NaturalGas),
		Car:         round1(r.Breakdown.Car),
		Bus:         round1(r.Breakdown.Bus),
		Food:        round1(r.Breakdown.Food),
		Goods:       round1(r.Breakdown.Goods),
	}
	out.Totals = r.Totals.Rounded()
	out.Trend = make([]TrendPoint, len(r.Trend))
	for i, pt := range r.Trend {
		out.Trend[i] = TrendPoint{Label: pt.Label, Value: round1(pt.Value)}
	}
	return out
}

// Rounded returns the totals at one decimal place.
func (t FootprintTotals) Rounded() FootprintTotals {
	return FootprintTotals{
		Total:  round1(t.Total),
		Energy: round1(t.Energy),
		Travel: round1(t.Travel),
		Food:   round1(t.Food),
		Goods:  round1(t.Goods),
	}
}

func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// Notice reports a degraded collaborator on an otherwise successful response.
type Notice struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Run is the persisted record of one analysis.
type Run struct {
	ID          string          `json:"id"`
	UserID      *int64          `json:"userId,omitempty"`
	DisplayName string          `json:"displayName"`
	Input       LifestyleInput  `json:"inputs"`
	Totals      FootprintTotals `json:"totals"`
	Score       int             `json:"score"`
	CreatedAt   time.Time       `json:"createdAt"`
}
