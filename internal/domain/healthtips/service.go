package healthtips

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/healthcalc/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/healthcalc/pkg/errors"
	"github.com/yanqian/healthcalc/pkg/metrics"
)

const defaultMaxTips = 5

// Service produces personalized tips for a calculation summary.
type Service interface {
	// Generate never fails; backend errors degrade to the fallback response.
	Generate(ctx context.Context, req Request) Response
	Trending(ctx context.Context) ([]TrendingCalculator, error)
}

// ChatClient is the completion backend.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// TokenCounter estimates prompt size when the backend does not report usage.
type TokenCounter interface {
	CountTokens(model, text string) int
}

type service struct {
	cfg     Config
	store   Store
	client  ChatClient
	counter TokenCounter
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires up the tip generation domain.
func NewService(cfg Config, store Store, client ChatClient, counter TokenCounter, logger *slog.Logger) Service {
	if cfg.MaxTips <= 0 {
		cfg.MaxTips = defaultMaxTips
	}
	return &service{
		cfg:     cfg,
		store:   store,
		client:  client,
		counter: counter,
		logger:  logger.With("component", "healthtips.service"),
		now:     time.Now,
	}
}

func (s *service) Generate(ctx context.Context, req Request) Response {
	start := s.now()
	req = req.normalized()

	if err := s.store.IncrementCalculator(ctx, req.CalculatorType); err != nil {
		s.logger.Warn("tip trending increment failed", "calculator", req.CalculatorType, "error", err)
	}

	key := cacheKey(req)
	cached, ok, err := s.store.GetTips(ctx, key)
	if err != nil {
		s.logger.Warn("tip cache lookup failed", "error", err)
	}
	if err == nil && ok {
		if resp, usable := s.fromCache(cached); usable {
			return s.finish(resp, start)
		}
		s.logger.Warn("tip cache entry unusable, regenerating", "key", key)
	}

	resp, err := s.askLLM(ctx, req)
	if err != nil {
		s.logger.Warn("tip generation failed, using fallback", "calculator", req.CalculatorType, "error", err)
		return s.finish(fallbackResponse(), start)
	}

	record := TipRecord{
		Key:        key,
		HealthTips: resp.HealthTips,
		Disclaimer: resp.Disclaimer,
		CreatedAt:  s.now(),
	}
	if err := s.store.SaveTips(ctx, record, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("tip cache save failed", "error", err)
	}
	return s.finish(resp, start)
}

// fromCache applies the same tip and disclaimer rules as a fresh generation.
func (s *service) fromCache(rec TipRecord) (Response, bool) {
	tips := normalizeList(rec.HealthTips)
	if len(tips) == 0 {
		return Response{}, false
	}
	if s.cfg.MaxTips > 0 && len(tips) > s.cfg.MaxTips {
		tips = tips[:s.cfg.MaxTips]
	}
	disclaimer := strings.TrimSpace(rec.Disclaimer)
	if disclaimer == "" {
		disclaimer = CanonicalDisclaimer
	}
	return Response{HealthTips: tips, Disclaimer: disclaimer, Source: SourceCache}, true
}

func (s *service) Trending(ctx context.Context) ([]TrendingCalculator, error) {
	items, err := s.store.TopCalculators(ctx, s.cfg.TopCalculators)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTips, "failed to load trending calculators", err)
	}
	return items, nil
}

func (s *service) finish(resp Response, start time.Time) Response {
	elapsed := s.now().Sub(start)
	resp.DurationMs = elapsed.Milliseconds()
	metrics.ObserveTips(resp.Source, elapsed, resp.TokenUsage)
	return resp
}

func (s *service) askLLM(ctx context.Context, req Request) (Response, error) {
	system := s.buildSystemPrompt()
	user := buildUserPrompt(req)
	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []chatgpt.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    s.cfg.Temperature,
		ResponseFormat: chatgpt.JSONObject,
	})
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeLLM, "chatgpt request failed", err)
	}
	if len(completion.Choices) == 0 {
		return Response{}, apperrors.Wrap(apperrors.CodeLLM, "chatgpt returned no choices", nil)
	}
	content := completion.Choices[0].Message.Content
	parsed, err := parseTips(content, s.cfg.MaxTips)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeLLM, "chatgpt response malformed", err)
	}
	disclaimer := parsed.Disclaimer
	if disclaimer == "" {
		disclaimer = CanonicalDisclaimer
	}
	return Response{
		HealthTips: parsed.Tips,
		Disclaimer: disclaimer,
		Source:     SourceLLM,
		TokenUsage: s.usage(completion.Usage, system+"\n"+user, content),
	}, nil
}

func (s *service) usage(reported *chatgpt.Usage, prompt, completion string) *metrics.TokenUsage {
	if reported != nil {
		u := metrics.TokenUsage{
			PromptTokens:     reported.PromptTokens,
			CompletionTokens: reported.CompletionTokens,
			TotalTokens:      reported.TotalTokens,
		}
		if !u.IsZero() {
			return &u
		}
	}
	if s.counter == nil {
		return nil
	}
	p := s.counter.CountTokens(s.cfg.Model, prompt)
	c := s.counter.CountTokens(s.cfg.Model, completion)
	return &metrics.TokenUsage{PromptTokens: p, CompletionTokens: c, TotalTokens: p + c, Estimated: true}
}

func (s *service) buildSystemPrompt() string {
	base := strings.TrimSpace(s.cfg.Prompt)
	if base == "" {
		base = "You are a supportive and knowledgeable health and wellness advisor."
	}
	enforcer := fmt.Sprintf(" Provide at most %d concise, actionable, personalized tips. Respond ONLY with valid minified JSON using this shape: {\"healthTips\":string[],\"disclaimer\":string}. Never return plain text or other fields.", s.cfg.MaxTips)
	return base + enforcer
}

func buildUserPrompt(req Request) string {
	return fmt.Sprintf("Calculator Used: %s\nResult: %s\nUser Data Provided: %s", req.CalculatorType, req.CalculatorResult, req.UserData)
}

func cacheKey(req Request) string {
	parts := []string{normalizeKeyPart(req.CalculatorType), normalizeKeyPart(req.CalculatorResult), normalizeKeyPart(req.UserData)}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

// normalizeKeyPart folds case and whitespace; punctuation is kept so numbers stay distinct.
func normalizeKeyPart(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
