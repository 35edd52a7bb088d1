package recommend

import (
	"strings"

	"github.com/yanqian/carbonlens/internal/infra/llm/chatgpt"
)

const maxHistoryTurns = 20

// trimHistory keeps the most recent turns that fit in budget tokens, oldest first.
// Roles other than "user" are treated as assistant turns and empty turns are dropped.
func trimHistory(history []ChatTurn, budget int, counter TokenCounter) []chatgpt.Message {
	var kept []chatgpt.Message
	used := 0
	for i := len(history) - 1; i >= 0 && len(kept) < maxHistoryTurns; i-- {
		content := strings.TrimSpace(history[i].Content)
		if content == "" {
			continue
		}
		cost := counter.Count(content)
		if used+cost > budget {
			break
		}
		used += cost
		role := "assistant"
		if strings.EqualFold(strings.TrimSpace(history[i].Role), "user") {
			role = "user"
		}
		kept = append(kept, chatgpt.Message{Role: role, Content: content})
	}
	for l, r := 0, len(kept)-1; l < r; l, r = l+1, r-1 {
		kept[l], kept[r] = kept[r], kept[l]
	}
	return kept
}

// runeEstimate approximates tokens as a quarter of the rune count.
type runeEstimate struct{}

func (runeEstimate) Count(text string) int {
	n := len([]rune(text))
	return (n + 3) / 4
}
