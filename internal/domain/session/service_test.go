package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/healthcalc/internal/domain/calculator"
	"github.com/yanqian/healthcalc/internal/domain/healthcalc"
	"github.com/yanqian/healthcalc/internal/domain/healthtips"
	"github.com/yanqian/healthcalc/internal/domain/history"
	apperrors "github.com/yanqian/healthcalc/pkg/errors"
)

func TestSubmitProducesResultThenTips(t *testing.T) {
	calc := &stubCalculator{tips: healthtips.Response{HealthTips: []string{"Walk daily"}, Source: healthtips.SourceLLM}}
	svc, pending := newTestService(calc)
	ctx := context.Background()

	st, err := svc.Create(ctx)
	require.NoError(t, err)
	require.Equal(t, "sess-1", st.ID)

	st, err = svc.Submit(ctx, st.ID, "bmi", calculator.RawInput{Height: ptr(175), Weight: ptr(70)})
	require.NoError(t, err)
	require.Equal(t, PhaseResultReady, st.Phase)
	require.Equal(t, calculator.KindBMI, st.Active)
	require.Len(t, *pending, 1)

	(*pending)[0]()
	st, err = svc.Get(ctx, st.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseTipsReady, st.Phase)
	require.Equal(t, []string{"Walk daily"}, st.Tips.HealthTips)
	require.Equal(t, "sess-1", calc.sessionID)
}

func TestSubmitWithPaddedIDDeliversTips(t *testing.T) {
	calc := &stubCalculator{tips: healthtips.Response{HealthTips: []string{"Stretch"}, Source: healthtips.SourceLLM}}
	svc, pending := newTestService(calc)
	ctx := context.Background()
	st, _ := svc.Create(ctx)

	_, err := svc.Submit(ctx, " "+st.ID+" ", "bmi", calculator.RawInput{Height: ptr(175), Weight: ptr(70)})
	require.NoError(t, err)
	require.Equal(t, st.ID, calc.sessionID)
	require.Len(t, *pending, 1)

	(*pending)[0]()
	got, err := svc.Get(ctx, "\t"+st.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseTipsReady, got.Phase)
	require.Equal(t, []string{"Stretch"}, got.Tips.HealthTips)
}

func TestSubmitAppliesTipTimeout(t *testing.T) {
	calc := &stubCalculator{}
	svc, pending := newTestService(calc)
	svc.(*service).cfg.TipTimeout = time.Minute
	ctx := context.Background()
	st, _ := svc.Create(ctx)

	_, err := svc.Submit(ctx, st.ID, "heart-rate", calculator.RawInput{Age: ptr(30)})
	require.NoError(t, err)
	(*pending)[0]()

	_, hasDeadline := calc.tipCtxs[0].Deadline()
	require.True(t, hasDeadline)
	got, _ := svc.Get(ctx, st.ID)
	require.Equal(t, PhaseTipsReady, got.Phase)
}

func TestSubmitDiscardsSupersededTips(t *testing.T) {
	calc := &stubCalculator{tips: healthtips.Response{HealthTips: []string{"tip"}, Source: healthtips.SourceLLM}}
	svc, pending := newTestService(calc)
	ctx := context.Background()
	st, _ := svc.Create(ctx)

	_, err := svc.Submit(ctx, st.ID, "bmi", calculator.RawInput{Height: ptr(175), Weight: ptr(70)})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, st.ID, "heart-rate", calculator.RawInput{Age: ptr(30)})
	require.NoError(t, err)
	require.Len(t, *pending, 2)
	require.Len(t, calc.tipCtxs, 0)

	// The first tip request finishes late; its context was cancelled by the second submit.
	(*pending)[0]()
	require.ErrorIs(t, calc.tipCtxs[0].Err(), context.Canceled)
	st, _ = svc.Get(ctx, st.ID)
	require.Equal(t, PhaseResultReady, st.Phase)
	require.Equal(t, calculator.KindHeartRate, st.Active)
	require.Nil(t, st.Tips)

	(*pending)[1]()
	st, _ = svc.Get(ctx, st.ID)
	require.Equal(t, PhaseTipsReady, st.Phase)
	require.Equal(t, uint64(2), st.Generation)
	require.Equal(t, calculator.KindHeartRate.DisplayName(), calc.summaries[1].CalculatorType)
}

func TestSubmitInvalidInputReturnsToIdle(t *testing.T) {
	calc := &stubCalculator{}
	svc, pending := newTestService(calc)
	ctx := context.Background()
	st, _ := svc.Create(ctx)

	_, err := svc.Submit(ctx, st.ID, "bmi", calculator.RawInput{Height: ptr(-1), Weight: ptr(70)})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Empty(t, *pending)

	st, _ = svc.Get(ctx, st.ID)
	require.Equal(t, PhaseIdle, st.Phase)
	require.NotEmpty(t, st.Error)
}

func TestSubmitUnknownCalculatorOrSession(t *testing.T) {
	svc, _ := newTestService(&stubCalculator{})
	ctx := context.Background()
	st, _ := svc.Create(ctx)

	_, err := svc.Submit(ctx, st.ID, "bmr", calculator.RawInput{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = svc.Submit(ctx, "missing", "bmi", calculator.RawInput{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	st, _ = svc.Get(ctx, st.ID)
	require.Equal(t, PhaseIdle, st.Phase)
	require.Zero(t, st.Generation)
}

func TestSessionsExpire(t *testing.T) {
	svc, _ := newTestService(&stubCalculator{})
	impl := svc.(*service)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return clock }
	ctx := context.Background()

	st, _ := svc.Create(ctx)
	clock = clock.Add(impl.cfg.TTL + time.Second)
	_, err := svc.Get(ctx, st.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, _ = svc.Create(ctx)
	require.Len(t, impl.sessions, 1)
}

func TestCloseCancelsPendingTips(t *testing.T) {
	calc := &stubCalculator{}
	svc, pending := newTestService(calc)
	ctx := context.Background()
	st, _ := svc.Create(ctx)
	_, err := svc.Submit(ctx, st.ID, "heart-rate", calculator.RawInput{Age: ptr(50)})
	require.NoError(t, err)

	svc.Close()
	(*pending)[0]()
	require.ErrorIs(t, calc.tipCtxs[0].Err(), context.Canceled)
}

func TestHistoryRequiresSession(t *testing.T) {
	calc := &stubCalculator{}
	svc, _ := newTestService(calc)
	ctx := context.Background()

	_, err := svc.History(ctx, "nope", 5)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	st, _ := svc.Create(ctx)
	records, err := svc.History(ctx, st.ID, 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, st.ID, records[0].SessionID)
}

func newTestService(calc *stubCalculator) (Service, *[]func()) {
	pending := &[]func(){}
	svc := NewService(Config{}, calc, &stubHistory{}, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	ids := 0
	svc.newID = func() string {
		ids++
		return fmt.Sprintf("sess-%d", ids)
	}
	svc.spawn = func(f func()) { *pending = append(*pending, f) }
	return svc, pending
}

func ptr(v float64) *float64 { return &v }

type stubCalculator struct {
	tips      healthtips.Response
	sessionID string
	summaries []calculator.Summary
	tipCtxs   []context.Context
}

func (c *stubCalculator) Evaluate(_ context.Context, kind string, raw calculator.RawInput, sessionID string) (healthcalc.Evaluation, error) {
	c.sessionID = sessionID
	k, ok := calculator.ParseKind(kind)
	if !ok {
		return healthcalc.Evaluation{}, apperrors.Wrap(apperrors.CodeNotFound, "unknown calculator", nil)
	}
	in, err := calculator.Parse(k, raw)
	if err != nil {
		return healthcalc.Evaluation{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), err)
	}
	res := calculator.Calculate(in)
	return healthcalc.Evaluation{Kind: k, Input: in, Result: res, Summary: calculator.Summarize(in, res)}, nil
}

func (c *stubCalculator) Tips(ctx context.Context, summary calculator.Summary) healthtips.Response {
	c.tipCtxs = append(c.tipCtxs, ctx)
	c.summaries = append(c.summaries, summary)
	return c.tips
}

type stubHistory struct{}

func (stubHistory) Record(context.Context, history.Record) (history.Record, error) {
	return history.Record{}, errors.New("unused")
}

func (stubHistory) List(_ context.Context, sessionID string, _ int) ([]history.Record, error) {
	return []history.Record{{ID: "r1", SessionID: sessionID}}, nil
}
