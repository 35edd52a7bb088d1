package leaderboard

// Tier names by minimum score, highest first.
var tiers = []struct {
	min  int
	name string
}{
	{90, "Diamond"},
	{75, "Platinum"},
	{60, "Gold"},
	{45, "Silver"},
}

// Tier maps a green score to its badge.
func Tier(score int) string {
	for _, t := range tiers {
		if score >= t.min {
			return t.name
		}
	}
	return "Bronze"
}

// XP converts a score into experience points.
func XP(score int) int {
	return int(float64(score) * 12.5)
}
