package session

import (
	"github.com/blitz-game/blitzsrv/pkg/statemachine"
)

// phase drives a statemachine.StateMachine[Session] purely for structured
// transition logging; it carries no control-flow logic of its own (joinable
// and gameState on Session remain the source of truth). Each session gets
// one, advanced by StartGame and EndGame.
type phase struct {
	sm *statemachine.StateMachine[Session]
}

func newPhase(s *Session) *phase {
	return &phase{sm: statemachine.NewStateMachine(s, lobbyState)}
}

func (p *phase) toActive(s *Session) {
	p.sm.SetState(activeState)
	p.sm.Dispatch(s.logPhaseEvent)
}

func (p *phase) toEnded(s *Session) {
	p.sm.SetState(endedState)
	p.sm.Dispatch(s.logPhaseEvent)
}

func lobbyState(_ *Session, cb func(string, statemachine.StateEvent)) statemachine.StateFn[Session] {
	if cb != nil {
		cb("lobby", statemachine.StateEntered)
	}
	return lobbyState
}

func activeState(_ *Session, cb func(string, statemachine.StateEvent)) statemachine.StateFn[Session] {
	if cb != nil {
		cb("active", statemachine.StateEntered)
	}
	return activeState
}

func endedState(_ *Session, cb func(string, statemachine.StateEvent)) statemachine.StateFn[Session] {
	if cb != nil {
		cb("ended", statemachine.StateEntered)
	}
	return endedState
}

// logPhaseEvent is the callback phase transitions report through; it logs
// at Debug since phase changes are frequent and mostly of interest when
// diagnosing a stuck session.
func (s *Session) logPhaseEvent(stateName string, event statemachine.StateEvent) {
	if event != statemachine.StateEntered {
		return
	}
	s.log.Debugf("session %s: phase -> %s", s.ID, stateName)
}
