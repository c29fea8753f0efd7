// Package blitzrpc defines the wire message and service-interface layer for
// the Blitz session server. The real generated-protobuf package this would
// normally sit on top of is an out-of-scope external collaborator (the
// wire encoding/RPC framework, per the core's scope) and is not vendored
// here; these types are a hand-authored stand-in carrying the same field
// shapes, built on real grpc primitives (codes/status/streaming) so the
// Service Facade and Event Coordinator exercise the genuine library rather
// than a stub.
package blitzrpc

import "github.com/blitz-game/blitzsrv/pkg/card"

// Player is the wire record for a participant, matching spec §6 and
// original_source/src/proto.rs's Player message.
type Player struct {
	SessionID      string
	PlayerGameID   uint32
	Username       string
	FaceImageID    uint32
	IsSessionAdmin bool
}

// GamePrefs is the wire record for per-session rule configuration, matching
// spec §6.
type GamePrefs struct {
	DrawRate       uint32
	PostPileSize   uint32
	ScoreToWin     uint32
	BlitzDeduction uint32
}

// SessionDescriptor is the summary returned by GetActiveSessions/GetSession.
type SessionDescriptor struct {
	ID        string
	Usernames []string
	Joinable  bool
}

// Card is the wire shape for one deck entry, shipped once as the global
// deck at StartGame.
type Card struct {
	Index       uint32
	OwnerPlayer uint32
	Number      uint32
	Color       int32
	Gender      int32
}

// CardsToWire converts resolved domain cards to their wire shape.
func CardsToWire(cards []card.Card) []*Card {
	out := make([]*Card, len(cards))
	for i, c := range cards {
		out[i] = &Card{
			Index:       uint32(c.Index),
			OwnerPlayer: uint32(c.OwnerPlayer),
			Number:      uint32(c.Number),
			Color:       ColorCode(c.Color),
			Gender:      GenderCode(c.Gender),
		}
	}
	return out
}

// ColorCode maps a Color to its wire-stable integer code (spec §6).
func ColorCode(c card.Color) int32 {
	switch c {
	case card.Red:
		return 0
	case card.Blue:
		return 1
	case card.Green:
		return 2
	case card.Yellow:
		return 3
	default:
		return -1
	}
}

// GenderCode maps a Gender to its wire-stable integer code (spec §6).
func GenderCode(g card.Gender) int32 {
	if g == card.Boy {
		return 0
	}
	return 1
}

// StateChangeAction is the wire-stable Add/Remove code (spec §6).
type StateChangeAction int32

const (
	StateChangeAdd    StateChangeAction = 0
	StateChangeRemove StateChangeAction = 1
)

// PlayerStateChangeType is the wire-stable per-pile change kind (spec §6).
type PlayerStateChangeType int32

const (
	PlayerStateChangeBlitzPile                PlayerStateChangeType = 0
	PlayerStateChangeAvailableHand            PlayerStateChangeType = 1
	PlayerStateChangePostPile                 PlayerStateChangeType = 2
	PlayerStateChangeResetPlayerHand          PlayerStateChangeType = 3
	PlayerStateChangeTransferHandToAvailable  PlayerStateChangeType = 4
	PlayerStateChangePlayerCallBlitz          PlayerStateChangeType = 5
)

// ServerGameStateAction is the wire-stable server-originated lifecycle code
// (spec §6).
type ServerGameStateAction int32

const (
	ServerPauseGame  ServerGameStateAction = 0
	ServerResumeGame ServerGameStateAction = 1
	ServerGameOver   ServerGameStateAction = 3
	ServerNewRound   ServerGameStateAction = 4
)

// ClientGameStateAction is the wire-stable client-originated static-event
// code (spec §6).
type ClientGameStateAction int32

const (
	ClientPauseGame    ClientGameStateAction = 0
	ClientResumeGame   ClientGameStateAction = 1
	ClientResetDrawRate ClientGameStateAction = 3
)

// ArenaPlayType is the wire-stable arena play selector (spec §6).
type ArenaPlayType int32

const (
	ArenaPlayFromAvailableHand ArenaPlayType = 0
	ArenaPlayFromBlitz         ArenaPlayType = 1
	ArenaPlayFromPost          ArenaPlayType = 2
)

// PlayerPlayType is the wire-stable player play selector (spec §6).
type PlayerPlayType int32

const (
	PlayerPlayBlitzToPost           PlayerPlayType = 0
	PlayerPlayAvailableHandToPost   PlayerPlayType = 1
	PlayerPlayTransferToAvailableHand PlayerPlayType = 2
	PlayerPlayResetHand             PlayerPlayType = 3
)

// AckType is the wire-stable acknowledgment outcome (spec §6
// EAcknowledgementType).
type AckType int32

const (
	Accepted AckType = 0
	Rejected AckType = 1
)
