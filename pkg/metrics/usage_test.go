package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenUsage_WithEstimatedPrompt(t *testing.T) {
	require.True(t, TokenUsage{}.IsZero())

	estimated := TokenUsage{}.WithEstimatedPrompt(42)
	require.Equal(t, TokenUsage{PromptTokens: 42, TotalTokens: 42}, estimated)

	reported := TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
	require.Equal(t, reported, reported.WithEstimatedPrompt(99))
	require.True(t, TokenUsage{}.WithEstimatedPrompt(0).IsZero())
}
