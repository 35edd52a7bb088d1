package metrics

// TokenUsage captures LLM token counts spent on a recommendation or chat reply.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// WithEstimatedPrompt fills PromptTokens from a local estimate when the provider omitted usage.
func (u TokenUsage) WithEstimatedPrompt(estimate int) TokenUsage {
	if !u.IsZero() || estimate <= 0 {
		return u
	}
	return TokenUsage{PromptTokens: estimate, TotalTokens: estimate}
}
