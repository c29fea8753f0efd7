package blitzrpc

import "github.com/blitz-game/blitzsrv/pkg/game"

// ServerEvent is the server-to-client envelope (spec §4.4): a monotonic
// per-session event id plus exactly one payload.
type ServerEvent struct {
	EventID uint64
	Payload ServerEventPayload
}

// ServerEventPayload is implemented by every concrete server event payload.
type ServerEventPayload interface{ isServerEventPayload() }

// GameStateChange carries a rules-engine StateDelta to the wire.
type GameStateChange struct {
	Arena  []ArenaStateChange
	Player []PlayerStateChange
}

func (GameStateChange) isServerEventPayload() {}

// ArenaStateChange is GameStateChange's wire shape for one arena change.
type ArenaStateChange struct {
	Action    StateChangeAction
	CardIndex uint32
	PileIndex uint32
}

// PlayerStateChange is GameStateChange's wire shape for one player-owned
// pile change.
type PlayerStateChange struct {
	PlayerID  uint32
	Kind      PlayerStateChangeType
	Action    StateChangeAction
	CardIndex uint32
}

// Acknowledge is sent to a sender confirming or rejecting their event.
type Acknowledge struct {
	EventID uint64
	Type    AckType
	Reason  string // populated only when Type == Rejected
}

func (Acknowledge) isServerEventPayload() {}

// ServerGameStateActionEvent carries a lifecycle transition
// (pause/resume/game-over/new-round).
type ServerGameStateActionEvent struct {
	Action ServerGameStateAction
}

func (ServerGameStateActionEvent) isServerEventPayload() {}

// RequestStartGame is sent to every non-admin at the start of the §4.5
// two-phase handshake.
type RequestStartGame struct {
	Prefs       GamePrefs
	GlobalDeck  []*Card
	PlayerDeal  PlayerDeal
}

func (RequestStartGame) isServerEventPayload() {}

// ConfirmGameStart is sent to the admin once every non-admin has
// acknowledged RequestStartGame.
type ConfirmGameStart struct {
	Prefs      GamePrefs
	GlobalDeck []*Card
	PlayerDeal PlayerDeal
}

func (ConfirmGameStart) isServerEventPayload() {}

// PlayerDeal is one player's visible starting hand, carried inside the
// start-game handshake payloads.
type PlayerDeal struct {
	InHand    []uint32
	Available []uint32
	Blitz     []uint32
	PostPiles [][]uint32
}

// ChangeDrawRateEvent is broadcast to everyone (including the sender) when
// the draw rate changes.
type ChangeDrawRateEvent struct {
	DrawRate uint32
}

func (ChangeDrawRateEvent) isServerEventPayload() {}

// GamePlayError is sent to the sender only, alongside a Rejected
// Acknowledge, when a play violates a rule.
type GamePlayError struct {
	EventID uint64
	Reason  string
}

func (GamePlayError) isServerEventPayload() {}

// ClientEvent is the client-to-server envelope (spec §4.4).
type ClientEvent struct {
	EventID      uint64
	PlayerGameID uint32
	Payload      ClientEventPayload
}

// ClientEventPayload is implemented by every concrete client event payload.
type ClientEventPayload interface{ isClientEventPayload() }

// PlayEvent wraps a rules-engine Play request.
type PlayEvent struct {
	Play game.Play
}

func (PlayEvent) isClientEventPayload() {}

// StaticEvent carries an admin-only pause/resume/reset-draw-rate request.
type StaticEvent struct {
	Action ClientGameStateAction
}

func (StaticEvent) isClientEventPayload() {}

// OpenStream must be the first message on a new client event stream.
type OpenStream struct {
	SessionID    string
	PlayerGameID uint32
}

func (OpenStream) isClientEventPayload() {}

// StartGame is the admin-only request that begins the §4.5 handshake.
type StartGame struct {
	Prefs GamePrefs
}

func (StartGame) isClientEventPayload() {}

// ChangeDrawRate requests a new draw rate.
type ChangeDrawRate struct {
	DrawRate uint32
}

func (ChangeDrawRate) isClientEventPayload() {}

// ClientAck acknowledges a previously delivered server event.
type ClientAck struct {
	EventID uint64
}

func (ClientAck) isClientEventPayload() {}
