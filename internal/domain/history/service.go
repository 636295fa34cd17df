package history

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/healthcalc/pkg/errors"
	"github.com/yanqian/healthcalc/pkg/util"
)

const defaultListLimit = 20

// Service records calculations and lists them per session.
type Service interface {
	Record(ctx context.Context, record Record) (Record, error)
	List(ctx context.Context, sessionID string, limit int) ([]Record, error)
}

type service struct {
	cfg       Config
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewService wires the history domain.
func NewService(cfg Config, repo Repository, publisher Publisher, logger *slog.Logger) Service {
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = defaultListLimit
	}
	return &service{
		cfg:       cfg,
		repo:      repo,
		publisher: publisher,
		logger:    logger.With("component", "history.service"),
		now:       util.NowUTC,
		newID:     func() string { return uuid.NewString() },
	}
}

func (s *service) Record(ctx context.Context, record Record) (Record, error) {
	if strings.TrimSpace(record.Calculator) == "" {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "calculator cannot be empty", nil)
	}
	record.ID = s.newID()
	record.CreatedAt = s.now()
	if err := s.repo.Insert(ctx, record); err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeHistory, "failed to store calculation", err)
	}
	event := Event{Type: EventCalculationRecorded, Record: record, OccurredAt: record.CreatedAt}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("calculation event publish failed", "id", record.ID, "error", err)
	}
	return record, nil
}

func (s *service) List(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "session id cannot be empty", nil)
	}
	if limit <= 0 || limit > s.cfg.ListLimit {
		limit = s.cfg.ListLimit
	}
	records, err := s.repo.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeHistory, "failed to load history", err)
	}
	return records, nil
}
