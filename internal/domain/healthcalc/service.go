package healthcalc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/healthcalc/internal/domain/calculator"
	"github.com/yanqian/healthcalc/internal/domain/healthtips"
	"github.com/yanqian/healthcalc/internal/domain/history"
	apperrors "github.com/yanqian/healthcalc/pkg/errors"
	"github.com/yanqian/healthcalc/pkg/metrics"
)

// Service runs calculators and attaches tips.
type Service interface {
	Catalog(ctx context.Context) []CatalogEntry
	// Evaluate validates, computes, formats and records a calculation without tips.
	Evaluate(ctx context.Context, kind string, raw calculator.RawInput, sessionID string) (Evaluation, error)
	// Calculate is Evaluate followed by a synchronous tip request.
	Calculate(ctx context.Context, kind string, raw calculator.RawInput) (Response, error)
	Tips(ctx context.Context, summary calculator.Summary) healthtips.Response
	GenerateTips(ctx context.Context, req healthtips.Request) (healthtips.Response, error)
}

type service struct {
	tips    healthtips.Service
	history history.Service
	logger  *slog.Logger
}

// NewService wires the calculation workflow.
func NewService(tips healthtips.Service, hist history.Service, logger *slog.Logger) Service {
	return &service{
		tips:    tips,
		history: hist,
		logger:  logger.With("component", "healthcalc.service"),
	}
}

func (s *service) Catalog(ctx context.Context) []CatalogEntry {
	counts := make(map[string]int64)
	trending, err := s.tips.Trending(ctx)
	if err != nil {
		s.logger.Warn("calculator trending unavailable", "error", err)
	}
	for _, item := range trending {
		counts[item.Calculator] = item.Count
	}
	entries := make([]CatalogEntry, 0, len(calculator.Kinds))
	for _, kind := range calculator.Kinds {
		entries = append(entries, CatalogEntry{
			Type:        kind,
			Name:        kind.DisplayName(),
			Fields:      catalogFields[kind],
			TipRequests: counts[kind.DisplayName()],
		})
	}
	return entries
}

func (s *service) Evaluate(ctx context.Context, kind string, raw calculator.RawInput, sessionID string) (Evaluation, error) {
	k, ok := calculator.ParseKind(kind)
	if !ok {
		return Evaluation{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("unknown calculator %q", kind), nil)
	}
	in, err := calculator.Parse(k, raw)
	if err != nil {
		metrics.ObserveCalculation(string(k), "invalid")
		if vErr, ok := calculator.AsValidationError(err); ok {
			return Evaluation{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid "+k.DisplayName()+" input", vErr)
		}
		return Evaluation{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid calculator input", err)
	}
	res := calculator.Calculate(in)
	if res == nil {
		return Evaluation{}, apperrors.Wrap(apperrors.CodeInternal, "calculator produced no result", nil)
	}
	metrics.ObserveCalculation(string(k), "ok")

	eval := Evaluation{
		Kind:    k,
		Input:   in,
		Result:  res,
		Summary: calculator.Summarize(in, res),
	}
	eval.RecordID = s.record(ctx, eval, sessionID)
	return eval, nil
}

func (s *service) Calculate(ctx context.Context, kind string, raw calculator.RawInput) (Response, error) {
	eval, err := s.Evaluate(ctx, kind, raw, "")
	if err != nil {
		return Response{}, err
	}
	return Response{
		Calculator: eval.Kind,
		Name:       eval.Kind.DisplayName(),
		Result:     eval.Result,
		Summary:    eval.Summary,
		Tips:       s.Tips(ctx, eval.Summary),
		RecordID:   eval.RecordID,
	}, nil
}

func (s *service) Tips(ctx context.Context, summary calculator.Summary) healthtips.Response {
	return s.tips.Generate(ctx, healthtips.Request{
		CalculatorType:   summary.CalculatorType,
		CalculatorResult: summary.CalculatorResult,
		UserData:         summary.UserData,
	})
}

func (s *service) GenerateTips(ctx context.Context, req healthtips.Request) (healthtips.Response, error) {
	if strings.TrimSpace(req.CalculatorType) == "" {
		return healthtips.Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "calculatorType cannot be empty", nil)
	}
	if strings.TrimSpace(req.CalculatorResult) == "" {
		return healthtips.Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "calculatorResult cannot be empty", nil)
	}
	return s.tips.Generate(ctx, req), nil
}

// record stores the calculation; failures are logged and never block the result.
func (s *service) record(ctx context.Context, eval Evaluation, sessionID string) string {
	payload, err := json.Marshal(eval.Result)
	if err != nil {
		s.logger.Warn("encode calculation payload failed", "calculator", eval.Kind, "error", err)
		payload = nil
	}
	rec, err := s.history.Record(ctx, history.Record{
		SessionID:      sessionID,
		Calculator:     string(eval.Kind),
		CalculatorType: eval.Summary.CalculatorType,
		Result:         eval.Summary.CalculatorResult,
		UserData:       eval.Summary.UserData,
		Payload:        payload,
	})
	if err != nil {
		s.logger.Warn("calculation history unavailable", "calculator", eval.Kind, "error", err)
		return ""
	}
	return rec.ID
}
