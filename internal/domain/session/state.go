package session

import (
	"time"

	"github.com/yanqian/healthcalc/internal/domain/calculator"
	"github.com/yanqian/healthcalc/internal/domain/healthtips"
)

// Phase is the step of the calculate-then-advise workflow.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseComputing   Phase = "computing"
	PhaseResultReady Phase = "result_ready"
	PhaseTipsReady   Phase = "tips_ready"
	PhaseTipFailed   Phase = "tip_failed"
)

// State is an immutable snapshot of a session. Transitions return a new
// value; a transition carrying a stale generation is not applied.
type State struct {
	ID         string               `json:"id"`
	Active     calculator.Kind      `json:"activeCalculator,omitempty"`
	Phase      Phase                `json:"phase"`
	Generation uint64               `json:"generation"`
	Result     calculator.Result    `json:"result,omitempty"`
	Summary    *calculator.Summary  `json:"summary,omitempty"`
	Tips       *healthtips.Response `json:"tips,omitempty"`
	Error      string               `json:"error,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

// New returns an idle session.
func New(id string, now time.Time) State {
	return State{ID: id, Phase: PhaseIdle, CreatedAt: now, UpdatedAt: now}
}

// Submit starts a new calculation and supersedes any previous one.
func (s State) Submit(kind calculator.Kind, now time.Time) State {
	return State{
		ID:         s.ID,
		Active:     kind,
		Phase:      PhaseComputing,
		Generation: s.Generation + 1,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  now,
	}
}

// Reject returns the session to idle after invalid input.
func (s State) Reject(gen uint64, reason string, now time.Time) (State, bool) {
	if gen != s.Generation || s.Phase != PhaseComputing {
		return s, false
	}
	next := s
	next.Phase = PhaseIdle
	next.Error = reason
	next.UpdatedAt = now
	return next, true
}

// ResultReady stores the computed result.
func (s State) ResultReady(gen uint64, res calculator.Result, summary calculator.Summary, now time.Time) (State, bool) {
	if gen != s.Generation || s.Phase != PhaseComputing {
		return s, false
	}
	next := s
	next.Phase = PhaseResultReady
	next.Result = res
	next.Summary = &summary
	next.Error = ""
	next.UpdatedAt = now
	return next, true
}

// TipsReady attaches tips; a fallback response moves to PhaseTipFailed.
func (s State) TipsReady(gen uint64, tips healthtips.Response, now time.Time) (State, bool) {
	if gen != s.Generation || s.Phase != PhaseResultReady {
		return s, false
	}
	next := s
	next.Phase = PhaseTipsReady
	if tips.Failed() {
		next.Phase = PhaseTipFailed
	}
	next.Tips = &tips
	next.UpdatedAt = now
	return next, true
}
