package footprint

// Profile is a named demo household.
type Profile struct {
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Input       LifestyleInput `json:"input"`
}

var demoProfiles = []Profile{
	{
		Slug:        "urban-commuter",
		Name:        "Urban Commuter",
		Description: "City flat, daily car commute, mixed diet.",
		Input:       LifestyleInput{ElectricityKwh: 350, NaturalGasTherms: 60, CarKm: 600, BusKm: 100, DietDailyKg: 3.5, GoodsEmissionsKg: 250, FlightsPerYear: 4},
	},
	{
		Slug:        "student-hostel",
		Name:        "Student Hostel",
		Description: "Shared accommodation, mostly bus travel, low spend.",
		Input:       LifestyleInput{ElectricityKwh: 150, NaturalGasTherms: 20, CarKm: 50, BusKm: 200, DietDailyKg: 2.0, GoodsEmissionsKg: 150, FlightsPerYear: 2},
	},
	{
		Slug:        "frequent-flyer",
		Name:        "Frequent Flyer",
		Description: "Large home, long drives and regular flights.",
		Input:       LifestyleInput{ElectricityKwh: 400, NaturalGasTherms: 80, CarKm: 1200, BusKm: 50, DietDailyKg: 4.5, GoodsEmissionsKg: 300, FlightsPerYear: 12},
	},
	{
		Slug:        "eco-warrior",
		Name:        "Eco Warrior",
		Description: "Efficient home, plant-based diet, rarely drives.",
		Input:       LifestyleInput{ElectricityKwh: 200, NaturalGasTherms: 30, CarKm: 100, BusKm: 150, DietDailyKg: 1.5, GoodsEmissionsKg: 100, FlightsPerYear: 1},
	},
}

// Profiles returns the demo households in display order.
func Profiles() []Profile {
	out := make([]Profile, len(demoProfiles))
	copy(out, demoProfiles)
	return out
}

// LookupProfile finds a demo household by slug.
func LookupProfile(slug string) (Profile, bool) {
	for _, p := range demoProfiles {
		if p.Slug == slug {
			return p, true
		}
	}
	return Profile{}, false
}
