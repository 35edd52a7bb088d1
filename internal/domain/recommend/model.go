package recommend

import (
	"time"

	"github.com/yanqian/carbonlens/internal/domain/footprint"
	"github.com/yanqian/carbonlens/pkg/metrics"
)

// Response sources.
const (
	SourceLLM      = "llm"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// Tip is one actionable recommendation.
type Tip struct {
	Title         string   `json:"title"`
	Text          string   `json:"text"`
	ImpactKgMonth int      `json:"impact_kg_month"`
	Confidence    float64  `json:"confidence"`
	Category      string   `json:"category"`
	Steps         []string `json:"steps"`
}

// TipsRequest carries the analyzer values to coach on. When Inputs is set the
// totals and score are recomputed by the engine and the explicit values are ignored.
type TipsRequest struct {
	Inputs  *footprint.InputForm      `json:"inputs,omitempty"`
	Totals  footprint.FootprintTotals `json:"totals"`
	Score   int                       `json:"score"`
	Profile string                    `json:"profile"`
}

// TipsResponse returns recommendations and where they came from.
type TipsResponse struct {
	Tips            []Tip             `json:"tips"`
	Source          string            `json:"source"`
	HighestCategory string            `json:"highestCategory"`
	Notice          *footprint.Notice `json:"notice,omitempty"`
}

// ChatTurn is a prior message in the coach conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a coach question with conversation memory.
type ChatRequest struct {
	Question string                    `json:"question"`
	History  []ChatTurn                `json:"history"`
	Totals   footprint.FootprintTotals `json:"totals"`
	Profile  string                    `json:"profile"`
}

// ChatResponse is the coach reply.
type ChatResponse struct {
	Reply           string             `json:"reply"`
	Source          string             `json:"source"`
	HighestCategory string             `json:"highestCategory"`
	HistoryUsed     int                `json:"historyUsed"`
	TokenUsage      metrics.TokenUsage `json:"tokenUsage,omitzero"`
	Notice          *footprint.Notice  `json:"notice,omitempty"`
}

// Config wires runtime settings for the recommendation domain.
type Config struct {
	Model              string
	Temperature        float32
	MaxTokens          int
	ChatMaxTokens      int
	Prompt             string
	ChatPrompt         string
	CacheTTL           time.Duration
	HistoryTokenBudget int
}
