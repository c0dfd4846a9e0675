package auth

import (
	"context"
	"time"

	"github.com/qmuntal/stateless"
)

// SessionState is the lifecycle state of a setup session.
type SessionState string

// Session states.
const (
	StateAwaitingCode SessionState = "awaiting-code"
	StateCompleted    SessionState = "completed"
	StateFailed       SessionState = "failed"
	StateSuperseded   SessionState = "superseded"
)

type sessionTrigger string

const (
	triggerCodeAccepted sessionTrigger = "code-accepted"
	triggerCodeRejected sessionTrigger = "code-rejected"
	triggerSuperseded   sessionTrigger = "superseded"
)

// Session is one pending authorization request.
type Session struct {
	ID        string
	UserID    string
	Adapter   string
	CreatedAt time.Time

	fsm *stateless.StateMachine
}

func newSession(id, userID, adapter string, now time.Time) *Session {
	fsm := stateless.NewStateMachine(StateAwaitingCode)

	fsm.Configure(StateAwaitingCode).
		Permit(triggerCodeAccepted, StateCompleted).
		Permit(triggerCodeRejected, StateFailed).
		Permit(triggerSuperseded, StateSuperseded)

	// Terminal states accept no triggers.
	fsm.Configure(StateCompleted)
	fsm.Configure(StateFailed)
	fsm.Configure(StateSuperseded)

	return &Session{
		ID:        id,
		UserID:    userID,
		Adapter:   adapter,
		CreatedAt: now,
		fsm:       fsm,
	}
}

// State returns the session's current state.
func (s *Session) State() SessionState {
	return s.fsm.MustState().(SessionState)
}

// Awaiting reports whether the session still expects a code.
func (s *Session) Awaiting() bool {
	return s.State() == StateAwaitingCode
}

func (s *Session) fire(ctx context.Context, t sessionTrigger) error {
	return s.fsm.FireCtx(ctx, t)
}
