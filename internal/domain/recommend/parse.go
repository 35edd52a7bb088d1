package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errNoJSON = errors.New("no json payload found")

// extractJSON pulls the first JSON document out of model output: the whole text,
// then a ```json fenced block, then the widest [..] or {..} span.
func extractJSON(raw string) (json.RawMessage, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, errNoJSON
	}
	if json.Valid([]byte(text)) {
		return json.RawMessage(text), nil
	}
	if start := strings.Index(text, "```json"); start >= 0 {
		rest := text[start+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			block := strings.TrimSpace(rest[:end])
			if json.Valid([]byte(block)) {
				return json.RawMessage(block), nil
			}
		}
	}
	for i, ch := range text {
		var closer string
		switch ch {
		case '[':
			closer = "]"
		case '{':
			closer = "}"
		default:
			continue
		}
		end := strings.LastIndex(text, closer)
		if end <= i {
			continue
		}
		candidate := text[i : end+1]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
		return nil, errNoJSON
	}
	return nil, errNoJSON
}

// parseTips decodes a tip list. A wrapping object with a "recommendations" or "tips" array is accepted.
func parseTips(raw string) ([]Tip, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil {
		var wrapper struct {
			Recommendations []json.RawMessage `json:"recommendations"`
			Tips            []json.RawMessage `json:"tips"`
		}
		if wrapErr := json.Unmarshal(payload, &wrapper); wrapErr != nil {
			return nil, fmt.Errorf("decode tips: %w", err)
		}
		items = append(wrapper.Recommendations, wrapper.Tips...)
		if len(items) == 0 {
			return nil, errors.New("tips payload is not a list")
		}
	}

	tips := make([]Tip, 0, len(items))
	for i, item := range items {
		tip, ok := decodeTip(item, i)
		if ok {
			tips = append(tips, tip)
		}
	}
	if len(tips) == 0 {
		return nil, errors.New("no usable tips in payload")
	}
	return tips, nil
}

func decodeTip(raw json.RawMessage, index int) (Tip, bool) {
	var wire struct {
		Title      string          `json:"title"`
		Text       string          `json:"text"`
		Impact     json.RawMessage `json:"impact_kg_month"`
		Confidence json.RawMessage `json:"confidence"`
		Category   string          `json:"category"`
		Steps      json.RawMessage `json:"steps"`
	}
	if len(raw) == 0 || raw[0] != '{' {
		return Tip{}, false
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Tip{}, false
	}

	tip := Tip{
		Title:         strings.TrimSpace(wire.Title),
		Text:          strings.TrimSpace(wire.Text),
		ImpactKgMonth: int(coerceNumber(wire.Impact)),
		Confidence:    coerceNumber(wire.Confidence),
		Category:      strings.TrimSpace(wire.Category),
	}
	if tip.Title == "" {
		tip.Title = fmt.Sprintf("Recommendation %d", index+1)
	}
	if tip.Confidence == 0 {
		tip.Confidence = 0.7
	}
	tip.Confidence = math.Max(0, math.Min(1, tip.Confidence))
	if tip.Category == "" {
		tip.Category = "General"
	}
	steps, err := coerceStringArray(wire.Steps)
	if err != nil {
		steps = nil
	}
	tip.Steps = normalizeList(steps)
	return tip, true
}

// coerceNumber accepts JSON numbers and numeric strings. Anything else is zero.
func coerceNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return parsed
		}
	}
	return 0
}

func coerceStringArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		if strings.TrimSpace(single) == "" {
			return nil, nil
		}
		return []string{single}, nil
	case '[':
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		return many, nil
	default:
		return nil, errors.New("unsupported steps format")
	}
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{})
	for _, item := range items {
		clean := strings.TrimSpace(item)
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
