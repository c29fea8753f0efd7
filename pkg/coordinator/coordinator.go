// Package coordinator implements the Event Coordinator: per-stream ingress
// handling, dispatch, fan-out broadcast, ack bookkeeping, disconnect
// handling, and the ordered start-game handshake (spec §4.4-§4.6).
package coordinator

import (
	"context"
	"time"

	"github.com/decred/slog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/blitz-game/blitzsrv/pkg/blitzrpc"
	"github.com/blitz-game/blitzsrv/pkg/game"
	"github.com/blitz-game/blitzsrv/pkg/session"
)

// pollInterval is the bounded sleep the start-game handshake uses while
// waiting for every non-admin's Acknowledge (spec §4.5 step 4: "sleep a
// bounded interval (~100ms)").
const pollInterval = 100 * time.Millisecond

// Coordinator owns the dispatch and broadcast logic shared by every
// session. It holds no per-session state itself — all of that lives on the
// session.Session the caller passes in — so one Coordinator serves every
// session in the registry.
type Coordinator struct {
	log     slog.Logger
	tracer  trace.Tracer
	metrics *Metrics
}

// New returns a Coordinator. tracer may be a no-op tracer in tests.
func New(log slog.Logger, tracer trace.Tracer, metrics *Metrics) *Coordinator {
	return &Coordinator{log: log, tracer: tracer, metrics: metrics}
}

// OpenStream performs spec §4.4's handshake steps 2-3: validates the slot
// is free, installs the egress endpoint, and returns the queue the caller's
// per-stream writer task must drain. The Accept Acknowledge{event_id=0} is
// enqueued here as the queue's first event, so the caller's writer task
// delivers it before anything else.
func (c *Coordinator) OpenStream(s *session.Session, playerID int) (*session.Egress, error) {
	s.Lock()
	defer s.Unlock()

	p, ok := s.Player(playerID)
	if !ok {
		return nil, ErrNoSuchPlayer
	}
	if p.EgressQueue() != nil {
		return nil, session.ErrStreamAlreadyOpen
	}
	eg := session.NewEgress()
	if err := p.InstallEgress(eg); err != nil {
		return nil, err
	}
	eg.Send(&blitzrpc.ServerEvent{EventID: 0, Payload: blitzrpc.Acknowledge{EventID: 0, Type: blitzrpc.Accepted}})
	if c.metrics != nil {
		c.metrics.StreamsOpened.Inc()
	}
	return eg, nil
}

// Dispatch applies one inbound ClientEvent per spec §4.4's dispatch rules.
// It takes and releases the session lock itself; callers must not already
// hold it, since Dispatch's start-game path deliberately suspends (sleeps)
// after releasing the lock, per spec §5.
func (c *Coordinator) Dispatch(ctx context.Context, s *session.Session, playerID int, ev blitzrpc.ClientEvent) {
	_, span := c.tracer.Start(ctx, "coordinator.Dispatch",
		trace.WithAttributes(
			attribute.String("session.id", s.ID),
			attribute.Int("player.game_id", playerID),
		))
	defer span.End()

	switch payload := ev.Payload.(type) {
	case blitzrpc.PlayEvent:
		c.dispatchPlay(s, playerID, ev.EventID, payload.Play)
	case blitzrpc.ChangeDrawRate:
		c.dispatchChangeDrawRate(s, playerID, ev.EventID, int(payload.DrawRate))
	case blitzrpc.StaticEvent:
		c.dispatchStaticEvent(s, playerID, ev.EventID, payload.Action)
	case blitzrpc.StartGame:
		c.dispatchStartGame(ctx, s, playerID, ev.EventID, payload.Prefs)
	case blitzrpc.ClientAck:
		c.dispatchAck(s, playerID, payload.EventID)
	case blitzrpc.OpenStream:
		c.rejectTo(s, playerID, ev.EventID, "OpenStream received on an already-open stream")
	default:
		c.log.Warnf("session %s: unrecognized client event payload %T", s.ID, ev.Payload)
	}
}

func (c *Coordinator) dispatchPlay(s *session.Session, playerID int, eventID uint64, play game.Play) {
	s.Lock()
	gs := s.GameState()
	if gs == nil {
		s.Unlock()
		c.rejectTo(s, playerID, eventID, "game has not started")
		return
	}
	play.Player = playerID
	result, err := gs.MakePlay(play)
	if err != nil {
		s.Unlock()
		if c.metrics != nil {
			c.metrics.PlaysRejected.Inc()
		}
		c.rejectTo(s, playerID, eventID, err.Error())
		return
	}
	wireDelta := toWireGameStateChange(result.Delta)
	players := s.Players()
	c.ackTo(s, playerID, eventID)
	c.broadcastTo(s, players, func(bool) *blitzrpc.ServerEvent {
		return &blitzrpc.ServerEvent{EventID: s.NextEventID(), Payload: wireDelta}
	})
	switch result.Action {
	case game.ServerActionNewRound:
		c.broadcastAction(s, players, blitzrpc.ServerNewRound)
	case game.ServerActionGameOver:
		c.broadcastAction(s, players, blitzrpc.ServerGameOver)
	}
	s.Unlock()
	if c.metrics != nil {
		c.metrics.PlaysAccepted.Inc()
	}
}

func (c *Coordinator) dispatchChangeDrawRate(s *session.Session, playerID int, eventID uint64, rate int) {
	s.Lock()
	defer s.Unlock()
	gs := s.GameState()
	if gs == nil {
		c.rejectToLocked(s, playerID, eventID, "game has not started")
		return
	}
	gs.ChangeDrawRate(rate)
	players := s.Players()
	c.ackTo(s, playerID, eventID)
	c.broadcastTo(s, players, func(self bool) *blitzrpc.ServerEvent {
		return &blitzrpc.ServerEvent{EventID: s.NextEventID(), Payload: blitzrpc.ChangeDrawRateEvent{DrawRate: uint32(rate)}}
	})
}

func (c *Coordinator) dispatchStaticEvent(s *session.Session, playerID int, eventID uint64, action blitzrpc.ClientGameStateAction) {
	s.Lock()
	defer s.Unlock()
	p, ok := s.Player(playerID)
	if !ok || !p.IsSessionAdmin {
		c.rejectToLocked(s, playerID, eventID, "only the admin may send static events")
		return
	}
	if action == blitzrpc.ClientResetDrawRate {
		var rate int
		if gs := s.GameState(); gs != nil {
			gs.ResetDrawRate()
			rate = gs.DrawRate
		}
		players := s.Players()
		c.ackTo(s, playerID, eventID)
		c.broadcastTo(s, players, func(bool) *blitzrpc.ServerEvent {
			return &blitzrpc.ServerEvent{EventID: s.NextEventID(), Payload: blitzrpc.ChangeDrawRateEvent{DrawRate: uint32(rate)}}
		})
		return
	}

	var serverAction blitzrpc.ServerGameStateAction
	switch action {
	case blitzrpc.ClientPauseGame:
		serverAction = blitzrpc.ServerPauseGame
	case blitzrpc.ClientResumeGame:
		serverAction = blitzrpc.ServerResumeGame
	}
	players := s.Players()
	c.ackTo(s, playerID, eventID)
	c.broadcastAction(s, players, serverAction)
}

func (c *Coordinator) dispatchAck(s *session.Session, playerID int, eventID uint64) {
	s.Lock()
	defer s.Unlock()
	if p, ok := s.Player(playerID); ok {
		p.AckInFlight(eventID)
	}
}

// dispatchStartGame runs spec §4.5's two-phase handshake: instantiate
// GameState and compute deals while holding the lock, broadcast
// RequestStartGame to every non-admin, release the lock, poll until every
// non-admin has acknowledged, then send ConfirmGameStart to the admin.
func (c *Coordinator) dispatchStartGame(ctx context.Context, s *session.Session, adminID int, eventID uint64, prefs blitzrpc.GamePrefs) {
	s.Lock()
	admin, ok := s.Player(adminID)
	if !ok || !admin.IsSessionAdmin {
		s.Unlock()
		c.rejectTo(s, adminID, eventID, "only the admin may start the game")
		return
	}
	gs, err := s.StartGame(game.Prefs{
		DrawRate:       int(prefs.DrawRate),
		PostPileSize:   int(prefs.PostPileSize),
		ScoreToWin:     int(prefs.ScoreToWin),
		BlitzDeduction: int(prefs.BlitzDeduction),
	})
	if err != nil {
		s.Unlock()
		c.rejectTo(s, adminID, eventID, err.Error())
		return
	}
	globalDeck := blitzrpc.CardsToWire(gs.Deck.Cards())
	requestID := s.NextEventID()
	players := s.Players()
	for _, p := range players {
		if p.IsSessionAdmin {
			continue
		}
		deal := playerDeal(gs, p.ID)
		if q := p.EgressQueue(); q != nil {
			q.Send(&blitzrpc.ServerEvent{EventID: requestID, Payload: blitzrpc.RequestStartGame{
				Prefs: prefs, GlobalDeck: globalDeck, PlayerDeal: deal,
			}})
			p.MarkInFlight(requestID)
		}
	}
	c.ackTo(s, adminID, eventID)
	s.Unlock()

	// Poll without holding the lock across the sleep (spec §5 forbids
	// holding the lock across a suspension point).
	for {
		allAcked := true
		s.Lock()
		for _, p := range s.Players() {
			if p.IsSessionAdmin {
				continue
			}
			if !p.InFlightEmpty() {
				allAcked = false
				break
			}
		}
		s.Unlock()
		if allAcked {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(pollInterval):
		}
	}

	s.Lock()
	deal := playerDeal(gs, adminID)
	if q := admin.EgressQueue(); q != nil {
		q.Send(&blitzrpc.ServerEvent{EventID: requestID, Payload: blitzrpc.ConfirmGameStart{
			Prefs: prefs, GlobalDeck: globalDeck, PlayerDeal: deal,
		}})
	}
	s.Unlock()
}

// Disconnect implements spec §4.6: mid-game admin disconnect broadcasts
// ServerGameOver and clears GameState; any other disconnect removes the
// slot and promotes the next admin if needed; the session is deleted from
// the registry by the caller once it is left empty.
func (c *Coordinator) Disconnect(s *session.Session, playerID int) (empty bool) {
	s.Lock()
	defer s.Unlock()

	p, ok := s.Player(playerID)
	if !ok {
		return s.Empty()
	}
	p.ClearInFlight()
	p.CloseEgress()

	midGame := s.GameState() != nil
	wasAdmin := p.IsSessionAdmin
	if midGame && wasAdmin {
		players := s.Players()
		c.broadcastAction(s, players, blitzrpc.ServerGameOver)
		s.EndGame()
	}
	_ = s.RemovePlayer(playerID)
	return s.Empty()
}

// EndSession implements the admin-initiated half of spec §4.6: broadcast
// ServerGameOver if mid-game, then the caller deletes the session from the
// registry.
func (c *Coordinator) EndSession(s *session.Session, callerID int) error {
	s.Lock()
	defer s.Unlock()
	p, ok := s.Player(callerID)
	if !ok {
		return ErrNoSuchPlayer
	}
	if s.GameState() != nil && !p.IsSessionAdmin {
		return ErrNotAdmin
	}
	if s.GameState() != nil {
		players := s.Players()
		c.broadcastAction(s, players, blitzrpc.ServerGameOver)
		s.EndGame()
	}
	return nil
}
