package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/healthcalc/internal/domain/calculator"
	"github.com/yanqian/healthcalc/internal/domain/healthcalc"
	"github.com/yanqian/healthcalc/internal/domain/healthtips"
	"github.com/yanqian/healthcalc/internal/domain/history"
	apperrors "github.com/yanqian/healthcalc/pkg/errors"
	"github.com/yanqian/healthcalc/pkg/util"
)

const defaultTTL = 30 * time.Minute

// Service manages per-user calculation sessions.
type Service interface {
	Create(ctx context.Context) (State, error)
	Get(ctx context.Context, id string) (State, error)
	// Submit computes synchronously and requests tips in the background.
	Submit(ctx context.Context, id, kind string, raw calculator.RawInput) (State, error)
	History(ctx context.Context, id string, limit int) ([]history.Record, error)
	Close()
}

// Calculator is the part of the calculation workflow sessions drive.
type Calculator interface {
	Evaluate(ctx context.Context, kind string, raw calculator.RawInput, sessionID string) (healthcalc.Evaluation, error)
	Tips(ctx context.Context, summary calculator.Summary) healthtips.Response
}

// Config holds session knobs.
type Config struct {
	TTL        time.Duration
	TipTimeout time.Duration
}

type entry struct {
	state     State
	cancelTip context.CancelFunc
	lastSeen  time.Time
}

type service struct {
	cfg     Config
	calc    Calculator
	history history.Service
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*entry

	now   func() time.Time
	newID func() string
	spawn func(func())
}

// NewService wires the session workflow.
func NewService(cfg Config, calc Calculator, hist history.Service, logger *slog.Logger) Service {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	return &service{
		cfg:      cfg,
		calc:     calc,
		history:  hist,
		logger:   logger.With("component", "session.service"),
		sessions: make(map[string]*entry),
		now:      util.NowUTC,
		newID:    func() string { return uuid.NewString() },
		spawn:    func(f func()) { go f() },
	}
}

func (s *service) Create(_ context.Context) (State, error) {
	now := s.now()
	st := New(s.newID(), now)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked(now)
	s.sessions[st.ID] = &entry{state: st, lastSeen: now}
	return st, nil
}

func (s *service) Get(_ context.Context, id string) (State, error) {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookupLocked(id)
	if err != nil {
		return State{}, err
	}
	return e.state, nil
}

func (s *service) Submit(ctx context.Context, id, kind string, raw calculator.RawInput) (State, error) {
	k, ok := calculator.ParseKind(kind)
	if !ok {
		return State{}, apperrors.Wrap(apperrors.CodeNotFound, "unknown calculator "+strings.TrimSpace(kind), nil)
	}

	id = strings.TrimSpace(id)
	s.mu.Lock()
	e, err := s.lookupLocked(id)
	if err != nil {
		s.mu.Unlock()
		return State{}, err
	}
	if e.cancelTip != nil {
		e.cancelTip()
		e.cancelTip = nil
	}
	e.state = e.state.Submit(k, s.now())
	gen := e.state.Generation
	s.mu.Unlock()

	eval, evalErr := s.calc.Evaluate(ctx, string(k), raw, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	e, err = s.lookupLocked(id)
	if err != nil {
		return State{}, err
	}
	if evalErr != nil {
		if next, applied := e.state.Reject(gen, evalErr.Error(), s.now()); applied {
			e.state = next
		}
		return State{}, evalErr
	}
	next, applied := e.state.ResultReady(gen, eval.Result, eval.Summary, s.now())
	if !applied {
		// A newer submission already owns the session.
		return e.state, nil
	}
	e.state = next

	base := context.WithoutCancel(ctx)
	var (
		tipCtx context.Context
		cancel context.CancelFunc
	)
	if s.cfg.TipTimeout > 0 {
		tipCtx, cancel = context.WithTimeout(base, s.cfg.TipTimeout)
	} else {
		tipCtx, cancel = context.WithCancel(base)
	}
	e.cancelTip = cancel
	summary := eval.Summary
	s.spawn(func() {
		defer cancel()
		tips := s.calc.Tips(tipCtx, summary)
		s.completeTips(id, gen, tips, tipCtx.Err())
	})
	return next, nil
}

func (s *service) completeTips(id string, gen uint64, tips healthtips.Response, ctxErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return
	}
	if ctxErr != nil && e.state.Generation != gen {
		s.logger.Debug("superseded tip request discarded", "session", id, "generation", gen)
		return
	}
	next, applied := e.state.TipsReady(gen, tips, s.now())
	if !applied {
		s.logger.Debug("stale tip response discarded", "session", id, "generation", gen, "current", e.state.Generation)
		return
	}
	e.state = next
	e.cancelTip = nil
}

func (s *service) History(ctx context.Context, id string, limit int) ([]history.Record, error) {
	id = strings.TrimSpace(id)
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.history.List(ctx, id, limit)
}

// Close cancels every in-flight tip request.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.sessions {
		if e.cancelTip != nil {
			e.cancelTip()
			e.cancelTip = nil
		}
	}
}

func (s *service) lookupLocked(id string) (*entry, error) {
	now := s.now()
	e, ok := s.sessions[id]
	if !ok || now.Sub(e.lastSeen) > s.cfg.TTL {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "session not found", nil)
	}
	e.lastSeen = now
	return e, nil
}

func (s *service) cleanupLocked(now time.Time) {
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.cfg.TTL {
			if e.cancelTip != nil {
				e.cancelTip()
			}
			delete(s.sessions, id)
		}
	}
}
