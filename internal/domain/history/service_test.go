package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/healthcalc/pkg/errors"
)

func TestRecordStoresAndPublishes(t *testing.T) {
	repo := &stubRepo{}
	pub := &stubPublisher{}
	svc := newTestService(repo, pub)

	rec, err := svc.Record(context.Background(), Record{SessionID: "s1", Calculator: "bmi", CalculatorType: "BMI", Result: "24.7 kg/m² (Normal weight)"})
	require.NoError(t, err)
	require.Equal(t, "id-1", rec.ID)
	require.Equal(t, fixedNow, rec.CreatedAt)
	require.Len(t, repo.records, 1)
	require.Len(t, pub.events, 1)
	require.Equal(t, EventCalculationRecorded, pub.events[0].Type)
	require.Equal(t, rec, pub.events[0].Record)
}

func TestRecordPublishFailureIsNotFatal(t *testing.T) {
	svc := newTestService(&stubRepo{}, &stubPublisher{err: errors.New("broker down")})
	_, err := svc.Record(context.Background(), Record{Calculator: "whr"})
	require.NoError(t, err)
}

func TestRecordRepositoryFailure(t *testing.T) {
	pub := &stubPublisher{}
	svc := newTestService(&stubRepo{err: errors.New("db down")}, pub)
	_, err := svc.Record(context.Background(), Record{Calculator: "whr"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeHistory))
	require.Empty(t, pub.events)
}

func TestListClampsLimit(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, &stubPublisher{})

	_, err := svc.List(context.Background(), "s1", 500)
	require.NoError(t, err)
	require.Equal(t, 20, repo.lastLimit)

	_, err = svc.List(context.Background(), " ", 5)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

var fixedNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo Repository, pub Publisher) *service {
	svc := NewService(Config{}, repo, pub, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.now = func() time.Time { return fixedNow }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc
}

type stubRepo struct {
	records   []Record
	err       error
	lastLimit int
}

func (r *stubRepo) Insert(_ context.Context, record Record) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

func (r *stubRepo) ListBySession(_ context.Context, _ string, limit int) ([]Record, error) {
	r.lastLimit = limit
	return r.records, nil
}

type stubPublisher struct {
	events []Event
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, event Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}
