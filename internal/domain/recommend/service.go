package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/yanqian/carbonlens/internal/domain/footprint"
	"github.com/yanqian/carbonlens/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/carbonlens/pkg/errors"
	"github.com/yanqian/carbonlens/pkg/metrics"
)

// Service produces coaching text around a computed footprint.
type Service interface {
	Generate(ctx context.Context, req TipsRequest) (TipsResponse, error)
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// ChatClient is the subset of the chat completion API the coach needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

type service struct {
	cfg     Config
	client  ChatClient
	cache   Cache
	counter TokenCounter
	logger  *slog.Logger
}

// NewService wires the recommendation domain. client and cache may be nil,
// in which case every request is answered from the rule-based fallback and nothing is cached.
func NewService(cfg Config, client ChatClient, cache Cache, counter TokenCounter, logger *slog.Logger) Service {
	if counter == nil {
		counter = runeEstimate{}
	}
	if cfg.HistoryTokenBudget <= 0 {
		cfg.HistoryTokenBudget = 1200
	}
	return &service{
		cfg:     cfg,
		client:  client,
		cache:   cache,
		counter: counter,
		logger:  logger.With("component", "recommend.service"),
	}
}

func (s *service) Generate(ctx context.Context, req TipsRequest) (TipsResponse, error) {
	totals, score, err := resolveTotals(req)
	if err != nil {
		return TipsResponse{}, err
	}
	highest := HighestCategory(totals)
	resp := TipsResponse{HighestCategory: highest}
	key := cacheKey(totals, score, req.Profile)

	if s.cache != nil {
		tips, found, err := s.cache.GetTips(ctx, key)
		if err != nil {
			s.logger.Warn("tip cache lookup failed", "error", err)
		} else if found && len(tips) > 0 {
			resp.Tips, resp.Source = tips, SourceCache
			return resp, nil
		}
	}

	tips, err := s.generateWithModel(ctx, totals, score, req.Profile, highest)
	if err != nil {
		s.logger.Warn("recommendations falling back to rules", "error", err)
		resp.Tips = fallbackTips(totals)
		resp.Source = SourceFallback
		resp.Notice = &footprint.Notice{
			Code:    apperrors.CodeRecommendation,
			Message: "AI recommendations are unavailable right now; showing rule-based tips.",
		}
		return resp, nil
	}

	resp.Tips, resp.Source = tips, SourceLLM
	if s.cache != nil {
		if err := s.cache.SaveTips(ctx, key, tips, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("tip cache write failed", "error", err)
		}
	}
	return resp, nil
}

func (s *service) generateWithModel(ctx context.Context, totals footprint.FootprintTotals, score int, profile, highest string) ([]Tip, error) {
	if s.client == nil {
		return nil, apperrors.Wrap(apperrors.CodeLLM, "no language model configured", nil)
	}
	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []chatgpt.Message{
			{Role: "system", Content: s.buildTipsPrompt(totals, score, profile, highest)},
			{Role: "user", Content: "Return ONLY a JSON list of recommendation objects with the keys title, text, impact_kg_month, confidence, steps and category. No intro text."},
		},
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeLLM, "chat completion failed", err)
	}
	if len(completion.Choices) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeLLM, "chat completion returned no choices", nil)
	}
	content := completion.Choices[0].Message.Content
	s.logger.Debug("recommendation raw output", "content", content)
	tips, err := parseTips(content)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeLLM, "model output malformed", err)
	}
	return tips, nil
}

func (s *service) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return ChatResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}
	if err := validateTotals(req.Totals); err != nil {
		return ChatResponse{}, err
	}
	highest := HighestCategory(req.Totals)
	history := trimHistory(req.History, s.cfg.HistoryTokenBudget, s.counter)
	resp := ChatResponse{HighestCategory: highest, HistoryUsed: len(history)}

	if s.client == nil {
		return s.chatFallback(resp, apperrors.Wrap(apperrors.CodeLLM, "no language model configured", nil)), nil
	}

	messages := make([]chatgpt.Message, 0, len(history)+2)
	messages = append(messages, chatgpt.Message{Role: "system", Content: s.buildChatPrompt(req.Totals, req.Profile, highest)})
	messages = append(messages, history...)
	messages = append(messages, chatgpt.Message{Role: "user", Content: question})

	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.ChatMaxTokens,
	})
	if err != nil {
		return s.chatFallback(resp, err), nil
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return s.chatFallback(resp, apperrors.Wrap(apperrors.CodeLLM, "chat completion returned no content", nil)), nil
	}

	resp.Reply = strings.TrimSpace(completion.Choices[0].Message.Content)
	resp.Source = SourceLLM
	resp.TokenUsage = metrics.TokenUsage{
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
	}.WithEstimatedPrompt(s.countMessages(messages))
	return resp, nil
}

func (s *service) chatFallback(resp ChatResponse, cause error) ChatResponse {
	s.logger.Warn("coach chat falling back", "error", cause)
	resp.Reply = fallbackReply(resp.HighestCategory)
	resp.Source = SourceFallback
	resp.Notice = &footprint.Notice{Code: apperrors.CodeRecommendation, Message: "The AI coach is unavailable right now."}
	return resp
}

func (s *service) countMessages(messages []chatgpt.Message) int {
	total := 0
	for _, m := range messages {
		total += s.counter.Count(m.Content)
	}
	return total
}

func (s *service) buildTipsPrompt(t footprint.FootprintTotals, score int, profile, highest string) string {
	base := strings.TrimSpace(s.cfg.Prompt)
	if base == "" {
		base = "You are a carbon footprint coach who writes warm, motivating and highly actionable recommendations."
	}
	rules := " Use ONLY the values given below and never guess. Provide 4 to 6 recommendations. Each must contain title, text (2 to 3 sentences), impact_kg_month (integer), confidence (0 to 1), steps (3 to 5 short items) and category (Energy, Travel, Food or Goods). Cite values like (Analyzer: 50 kg energy)."
	return base + rules + "\n\n" + analyzerBlock(t, profile, highest) + fmt.Sprintf("Green score: %d/95\n", score)
}

func (s *service) buildChatPrompt(t footprint.FootprintTotals, profile, highest string) string {
	base := strings.TrimSpace(s.cfg.ChatPrompt)
	if base == "" {
		base = "You are a friendly, accurate carbon footprint coach."
	}
	rules := " Use ONLY the values provided below and never alter them. Cite numbers like (Analyzer: 50 kg energy). Offer 1 or 2 specific next steps when helpful and keep the conversation memory."
	return base + rules + "\n\n" + analyzerBlock(t, profile, highest)
}

func analyzerBlock(t footprint.FootprintTotals, profile, highest string) string {
	if strings.TrimSpace(profile) == "" {
		profile = "your lifestyle"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "User profile: %s\n", profile)
	b.WriteString("CO2 analyzer values:\n")
	fmt.Fprintf(&b, "Total: %.1f kg/month\n", t.Total)
	fmt.Fprintf(&b, "Energy: %.1f kg\n", t.Energy)
	fmt.Fprintf(&b, "Travel: %.1f kg\n", t.Travel)
	fmt.Fprintf(&b, "Food: %.1f kg\n", t.Food)
	fmt.Fprintf(&b, "Goods: %.1f kg\n", t.Goods)
	fmt.Fprintf(&b, "Highest-impact area: %s\n", highest)
	return b.String()
}

func resolveTotals(req TipsRequest) (footprint.FootprintTotals, int, error) {
	if req.Inputs != nil {
		in := req.Inputs.Resolve()
		if err := footprint.Validate(in); err != nil {
			return footprint.FootprintTotals{}, 0, err
		}
		result := footprint.Compute(in)
		return result.Totals, result.Score, nil
	}
	if err := validateTotals(req.Totals); err != nil {
		return footprint.FootprintTotals{}, 0, err
	}
	return req.Totals, req.Score, nil
}

// validateTotals names every bad field in a fixed order.
func validateTotals(t footprint.FootprintTotals) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"total", t.Total},
		{"energy", t.Energy},
		{"travel", t.Travel},
		{"food", t.Food},
		{"goods", t.Goods},
	}
	var problems []string
	for _, f := range fields {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			problems = append(problems, fmt.Sprintf("totals.%s must be a non-negative finite number", f.name))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return apperrors.Wrap(apperrors.CodeInvalidInput, strings.Join(problems, "; "), nil)
}

func cacheKey(t footprint.FootprintTotals, score int, profile string) string {
	r := t.Rounded()
	raw := fmt.Sprintf("%.1f|%.1f|%.1f|%.1f|%.1f|%d|%s", r.Total, r.Energy, r.Travel, r.Food, r.Goods, score, strings.ToLower(strings.TrimSpace(profile)))
	sum := sha256.Sum256([]byte(raw))
	return "tips:" + hex.EncodeToString(sum[:12])
}
