package leaderboard

import "time"

// Record is a stored leaderboard row.
type Record struct {
	RunID       string
	UserID      *int64
	DisplayName string
	Score       int
	TotalKg     float64
	CreatedAt   time.Time
}

// Entry is a ranked leaderboard row as shown to players.
type Entry struct {
	Rank        int       `json:"rank"`
	RunID       string    `json:"runId"`
	UserID      *int64    `json:"userId,omitempty"`
	DisplayName string    `json:"displayName"`
	Score       int       `json:"score"`
	Tier        string    `json:"tier"`
	XP          int       `json:"xp"`
	TotalKg     float64   `json:"totalKg,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Board is one leaderboard view.
type Board struct {
	Entries     []Entry   `json:"entries"`
	Since       time.Time `json:"since,omitzero"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Standing is a user's position on the all-time board.
type Standing struct {
	UserID int64  `json:"userId"`
	Found  bool   `json:"found"`
	Rank   int    `json:"rank,omitempty"`
	Entry  *Entry `json:"entry,omitempty"`
}

// Config tunes leaderboard sizes.
type Config struct {
	DefaultLimit  int
	MaxLimit      int
	MonthlyLimit  int
	MonthlyWindow time.Duration
}
