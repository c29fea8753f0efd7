package coordinator

import (
	"fmt"

	"github.com/blitz-game/blitzsrv/pkg/blitzrpc"
	"github.com/blitz-game/blitzsrv/pkg/game"
	"github.com/blitz-game/blitzsrv/pkg/session"
)

// Errors the coordinator returns; the Service Facade maps these onto
// grpc/codes per spec §7.
var (
	ErrNoSuchPlayer = fmt.Errorf("coordinator: no such player")
	ErrNotAdmin     = fmt.Errorf("coordinator: caller is not the admin")
)

// ackTo enqueues an Accepted Acknowledge to a single player. Caller must
// hold the session lock.
func (c *Coordinator) ackTo(s *session.Session, playerID int, eventID uint64) {
	p, ok := s.Player(playerID)
	if !ok {
		return
	}
	if q := p.EgressQueue(); q != nil {
		q.Send(&blitzrpc.ServerEvent{EventID: s.NextEventID(), Payload: blitzrpc.Acknowledge{EventID: eventID, Type: blitzrpc.Accepted}})
	}
}

// rejectTo takes the session lock itself and enqueues a GamePlayError plus
// a Rejected Acknowledge to a single player (spec §4.2: "the caller
// receives a GamePlayError and a Rejected acknowledgment, no fan-out
// occurs").
func (c *Coordinator) rejectTo(s *session.Session, playerID int, eventID uint64, reason string) {
	s.Lock()
	defer s.Unlock()
	c.rejectToLocked(s, playerID, eventID, reason)
}

// rejectToLocked is rejectTo's body for callers that already hold the lock.
func (c *Coordinator) rejectToLocked(s *session.Session, playerID int, eventID uint64, reason string) {
	p, ok := s.Player(playerID)
	if !ok {
		return
	}
	q := p.EgressQueue()
	if q == nil {
		return
	}
	q.Send(&blitzrpc.ServerEvent{EventID: s.NextEventID(), Payload: blitzrpc.GamePlayError{EventID: eventID, Reason: reason}})
	q.Send(&blitzrpc.ServerEvent{EventID: s.NextEventID(), Payload: blitzrpc.Acknowledge{EventID: eventID, Type: blitzrpc.Rejected, Reason: reason}})
}

// broadcastTo enqueues the event built to every connected player. build is
// called once per player (isSender is always passed false); every caller's
// build allocates a fresh event id, so each recipient gets the same payload
// under its own event id, which is then marked in flight for it. Failures
// enqueuing to one player's queue (a closed queue is simply skipped) never
// abort delivery to the others, matching spec §7's Internal-error handling.
func (c *Coordinator) broadcastTo(s *session.Session, players []*session.Player, build func(isSender bool) *blitzrpc.ServerEvent) {
	for _, p := range players {
		q := p.EgressQueue()
		if q == nil {
			continue
		}
		ev := build(false)
		q.Send(ev)
		p.MarkInFlight(ev.EventID)
	}
}

// broadcastAction fans out a ServerGameStateAction to every connected
// player in the session. Caller must hold the session lock.
func (c *Coordinator) broadcastAction(s *session.Session, players []*session.Player, action blitzrpc.ServerGameStateAction) {
	c.broadcastTo(s, players, func(bool) *blitzrpc.ServerEvent {
		return &blitzrpc.ServerEvent{EventID: s.NextEventID(), Payload: blitzrpc.ServerGameStateActionEvent{Action: action}}
	})
}

// toWireGameStateChange converts a rules-engine StateDelta to its wire
// shape.
func toWireGameStateChange(delta game.StateDelta) blitzrpc.GameStateChange {
	out := blitzrpc.GameStateChange{
		Arena:  make([]blitzrpc.ArenaStateChange, len(delta.Arena)),
		Player: make([]blitzrpc.PlayerStateChange, len(delta.Player)),
	}
	for i, a := range delta.Arena {
		out.Arena[i] = blitzrpc.ArenaStateChange{
			Action:    wireChangeAction(a.Action),
			CardIndex: uint32(a.CardIndex),
			PileIndex: uint32(a.PileIndex),
		}
	}
	for i, p := range delta.Player {
		out.Player[i] = blitzrpc.PlayerStateChange{
			PlayerID:  uint32(p.Player),
			Kind:      wireChangeKind(p.Kind),
			Action:    wireChangeAction(p.Action),
			CardIndex: uint32(p.CardIndex),
		}
	}
	return out
}

func wireChangeAction(a game.ChangeAction) blitzrpc.StateChangeAction {
	if a == game.Remove {
		return blitzrpc.StateChangeRemove
	}
	return blitzrpc.StateChangeAdd
}

func wireChangeKind(k game.ChangeKind) blitzrpc.PlayerStateChangeType {
	switch k {
	case game.ChangeBlitzPile:
		return blitzrpc.PlayerStateChangeBlitzPile
	case game.ChangeAvailableHand:
		return blitzrpc.PlayerStateChangeAvailableHand
	case game.ChangePostPile:
		return blitzrpc.PlayerStateChangePostPile
	case game.ChangeResetPlayerHand:
		return blitzrpc.PlayerStateChangeResetPlayerHand
	case game.ChangeTransferHandToAvailable:
		return blitzrpc.PlayerStateChangeTransferHandToAvailable
	case game.ChangePlayerCallBlitz:
		return blitzrpc.PlayerStateChangePlayerCallBlitz
	default:
		return blitzrpc.PlayerStateChangeBlitzPile
	}
}

// playerDeal builds the wire-visible starting hand for one player, used by
// the start-game handshake. gs.Players is seat-ordered, not necessarily
// indexed by playerID (a player may have left the lobby before the game
// started, leaving gaps in the stable ids), so this scans for the match.
func playerDeal(gs *game.GameState, playerID int) blitzrpc.PlayerDeal {
	var p *game.Player
	for _, candidate := range gs.Players {
		if candidate.ID == playerID {
			p = candidate
			break
		}
	}
	if p == nil {
		return blitzrpc.PlayerDeal{}
	}
	deal := blitzrpc.PlayerDeal{
		InHand:    toUint32s(p.Hand.InHand),
		Available: toUint32s(p.Hand.Available),
		Blitz:     toUint32s(p.Blitz.Cards),
		PostPiles: make([][]uint32, len(p.PostPiles)),
	}
	for i, pp := range p.PostPiles {
		deal.PostPiles[i] = toUint32s(pp.Cards)
	}
	return deal
}

func toUint32s(in []int) []uint32 {
	out := make([]uint32, len(in))
	for i, v := range in {
		out[i] = uint32(v)
	}
	return out
}
