package footprint

// Score bounds applied after every adjustment.
const (
	MinScore = 10
	MaxScore = 95
)

type band struct {
	max    float64
	points int
}

const overflowPoints = 5

var (
	energyBands    = []band{{200, 25}, {400, 20}, {600, 15}, {800, 10}}
	transportBands = []band{{50, 25}, {150, 20}, {300, 15}, {500, 10}}
	foodBands      = []band{{60, 25}, {90, 20}, {120, 15}, {150, 10}}
	goodsBands     = []band{{100, 25}, {200, 20}, {300, 15}, {400, 10}}
)

func bandPoints(value float64, bands []band) int {
	for _, b := range bands {
		if value <= b.max {
			return b.points
		}
	}
	return overflowPoints
}

// Adjustment is a profile rule applied to the base score. Rules are tried in
// order and only the first whose Applies returns true is used.
type Adjustment struct {
	Name    string
	Applies func(in LifestyleInput) bool
	Apply   func(score int) int
}

// EcoAdjustment rewards households that are low on every axis.
var EcoAdjustment = Adjustment{
	Name: "eco",
	Applies: func(in LifestyleInput) bool {
		return in.ElectricityKwh <= 250 &&
			in.NaturalGasTherms <= 40 &&
			in.CarKm <= 150 &&
			in.DietDailyKg <= 2.0 &&
			in.GoodsEmissionsKg <= 150
	},
	Apply: func(score int) int { return min(95, score+15) },
}

// LightUserAdjustment rewards low electricity and little driving.
var LightUserAdjustment = Adjustment{
	Name: "light_user",
	Applies: func(in LifestyleInput) bool {
		return in.ElectricityKwh <= 200 && in.CarKm <= 100
	},
	Apply: func(score int) int { return min(90, score+10) },
}

// HeavyTravelAdjustment penalises long monthly driving or frequent flying.
var HeavyTravelAdjustment = Adjustment{
	Name: "heavy_travel",
	Applies: func(in LifestyleInput) bool {
		return in.CarKm >= 1000 || in.FlightsPerYear >= 8
	},
	Apply: func(score int) int { return max(30, score-10) },
}

var defaultAdjustments = []Adjustment{EcoAdjustment, LightUserAdjustment, HeavyTravelAdjustment}

// DefaultAdjustments returns a copy of the ordered rule list used by ComputeScore.
func DefaultAdjustments() []Adjustment {
	out := make([]Adjustment, len(defaultAdjustments))
	copy(out, defaultAdjustments)
	return out
}

// ComputeScore returns the green score in [MinScore, MaxScore].
func ComputeScore(totals FootprintTotals, in LifestyleInput) int {
	return ScoreDetails(totals, in).Score
}

// ScoreDetails is ComputeScore with its components exposed.
func ScoreDetails(totals FootprintTotals, in LifestyleInput) ScoreCard {
	return ScoreWith(totals, in, defaultAdjustments)
}

// ScoreWith scores using a caller supplied rule list.
// Transport points are driven by car emissions only; bus travel does not cost points.
func ScoreWith(totals FootprintTotals, in LifestyleInput, rules []Adjustment) ScoreCard {
	card := ScoreCard{
		Energy:     bandPoints(totals.Energy, energyBands),
		Transport:  bandPoints(in.CarKm*CarFactor, transportBands),
		Food:       bandPoints(totals.Food, foodBands),
		Goods:      bandPoints(totals.Goods, goodsBands),
		Adjustment: "none",
	}
	card.Base = card.Energy + card.Transport + card.Food + card.Goods

	score := card.Base
	for _, rule := range rules {
		if rule.Applies(in) {
			score = rule.Apply(score)
			card.Adjustment = rule.Name
			break
		}
	}
	card.Score = clampScore(score)
	return card
}

func clampScore(score int) int {
	return max(MinScore, min(MaxScore, score))
}

// Rating labels a score for display.
func Rating(score int) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 70:
		return "very_good"
	case score >= 60:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "needs_improvement"
	}
}
