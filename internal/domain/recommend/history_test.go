package recommend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/carbonlens/internal/infra/llm/chatgpt"
)

type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func TestTrimHistory_KeepsNewestWithinBudget(t *testing.T) {
	history := []ChatTurn{
		{Role: "user", Content: "one two three four"},
		{Role: "assistant", Content: "five six"},
		{Role: "USER", Content: "  seven  "},
		{Role: "system", Content: "eight nine"},
	}

	got := trimHistory(history, 5, wordCounter{})
	require.Equal(t, []chatgpt.Message{
		{Role: "assistant", Content: "five six"},
		{Role: "user", Content: "seven"},
		{Role: "assistant", Content: "eight nine"},
	}, got)
}

func TestTrimHistory_DropsEmptyAndCapsTurns(t *testing.T) {
	history := make([]ChatTurn, 0, 40)
	for i := 0; i < 40; i++ {
		history = append(history, ChatTurn{Role: "user", Content: "hi"}, ChatTurn{Role: "assistant", Content: "   "})
	}
	got := trimHistory(history, 1_000_000, wordCounter{})
	require.Len(t, got, maxHistoryTurns)
	for _, m := range got {
		require.Equal(t, "user", m.Role)
	}
}

func TestTrimHistory_ZeroBudget(t *testing.T) {
	require.Empty(t, trimHistory([]ChatTurn{{Role: "user", Content: "hello"}}, 0, wordCounter{}))
}

func TestRuneEstimate(t *testing.T) {
	require.Equal(t, 0, runeEstimate{}.Count(""))
	require.Equal(t, 1, runeEstimate{}.Count("abc"))
	require.Equal(t, 2, runeEstimate{}.Count("héllo"))
}
