package footprint

import (
	"math"
	"strings"

	apperrors "github.com/yanqian/carbonlens/pkg/errors"
)

// Validate rejects inputs the engine cannot meaningfully score.
func Validate(in LifestyleInput) error {
	var problems []string
	check := func(name string, v float64) {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			problems = append(problems, name+" must be a finite number")
		case v < 0:
			problems = append(problems, name+" must be non-negative")
		}
	}
	check("electricityKwh", in.ElectricityKwh)
	check("naturalGasTherms", in.NaturalGasTherms)
	check("carKm", in.CarKm)
	check("busKm", in.BusKm)
	check("dietDailyKg", in.DietDailyKg)
	check("goodsEmissionsKg", in.GoodsEmissionsKg)
	if in.FlightsPerYear < 0 {
		problems = append(problems, "flightsPerYear must be non-negative")
	}
	if len(problems) == 0 {
		return nil
	}
	return apperrors.Wrap(apperrors.CodeInvalidInput, strings.Join(problems, "; "), nil)
}
