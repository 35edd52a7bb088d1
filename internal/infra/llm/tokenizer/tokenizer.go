package tokenizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding matches the BPE used by the llama-3 and gpt-4 family closely enough for budgeting.
const DefaultEncoding = "cl100k_base"

// Counter counts BPE tokens with tiktoken.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// New loads the named encoding. Loading may download the BPE ranks on first use.
func New(encoding string) (*Counter, error) {
	if strings.TrimSpace(encoding) == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}
	return &Counter{enc: enc}, nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Estimate approximates four runes per token. Used when no encoding can be loaded.
type Estimate struct{}

// Count returns ceil(runes/4).
func (Estimate) Count(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}
