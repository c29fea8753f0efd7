// Package session implements the Session and Session Registry: the unit of
// mutual exclusion around one game's players, stream endpoints, GameState,
// and in-flight event tracking (spec §4.3).
package session

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"

	"github.com/decred/slog"

	"github.com/blitz-game/blitzsrv/pkg/blitzrpc"
	"github.com/blitz-game/blitzsrv/pkg/game"
)

// Egress is the per-player outbound queue the coordinator's broadcast logic
// enqueues onto and the per-stream writer task drains. It has unbounded-
// queue semantics per spec §5 ("the egress channel is unbounded-queue
// semantics for simplicity... pressure indicates a slow client and is
// acceptable since sessions are small"): Send never blocks the caller, and
// is therefore safe to call while the session lock is held for the instant
// it takes to append. A mutex-protected slice plus a single-slot wakeup
// channel stands in for the structured-concurrency channel the design notes
// call for.
type Egress struct {
	mu     sync.Mutex
	queue  []*blitzrpc.ServerEvent
	wake   chan struct{}
	closed bool
}

// NewEgress returns an empty, open egress queue.
func NewEgress() *Egress {
	return &Egress{wake: make(chan struct{}, 1)}
}

// Send appends ev to the queue and wakes the drainer. It never blocks. A
// send after Close is silently dropped and logged by the caller if needed.
func (e *Egress) Send(ev *blitzrpc.ServerEvent) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.queue = append(e.queue, ev)
	e.mu.Unlock()
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Recv blocks until at least one event is queued or the egress is closed. It
// returns the oldest queued event (FIFO, matching spec §5's "egress to a
// single client is FIFO") and ok=false once the queue is empty and closed.
func (e *Egress) Recv() (*blitzrpc.ServerEvent, bool) {
	for {
		e.mu.Lock()
		if len(e.queue) > 0 {
			ev := e.queue[0]
			e.queue = e.queue[1:]
			e.mu.Unlock()
			return ev, true
		}
		if e.closed {
			e.mu.Unlock()
			return nil, false
		}
		e.mu.Unlock()
		<-e.wake
	}
}

// Close marks the egress closed; events already queued are still returned
// by Recv until the queue is empty, and further Sends are no-ops.
func (e *Egress) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Player is one session participant: stable identity plus its egress slot
// and in-flight-event bookkeeping. A nil Egress means the slot is allocated
// (AddPlayer happened) but OpenStream has not yet installed the endpoint.
type Player struct {
	ID             int
	Username       string
	FaceImageID    uint32
	IsSessionAdmin bool

	egress   *Egress
	inFlight map[uint64]struct{}
}

// Session holds one game's players, their stream endpoints, the GameState,
// and in-flight-event tracking. All mutation requires holding mu; per spec
// §5 the lock must never be held across a suspension point (reading the
// next inbound event, or sleeping during the start-game handshake).
// Enqueuing onto an Egress is done under the lock, since Egress.Send never
// blocks.
type Session struct {
	ID string

	mu                 sync.Mutex
	joinable           bool
	players            []*Player
	nextPlayerID       int
	gameState          *game.GameState
	serverEventCounter uint64
	rng                *rand.Rand
	phase              *phase

	log slog.Logger
}

// New creates a session starting joinable with one player: the admin.
func New(id, adminUsername string, adminFaceImageID uint32, log slog.Logger) *Session {
	admin := &Player{
		ID:             0,
		Username:       adminUsername,
		FaceImageID:    adminFaceImageID,
		IsSessionAdmin: true,
		inFlight:       make(map[uint64]struct{}),
	}
	s := &Session{
		ID:           id,
		joinable:     true,
		players:      []*Player{admin},
		nextPlayerID: 1,
		rng:          rand.New(rand.NewSource(seedFromEntropy())),
		log:          log,
	}
	s.phase = newPhase(s)
	return s
}

// seedFromEntropy draws a shuffle seed from the OS CSPRNG (spec §4.1 requires
// a cryptographically-adequate PRNG seeded from system entropy, not a
// predictable clock-derived seed). math/rand.Source only takes an int64
// seed, so this reads 8 bytes from crypto/rand rather than running the
// shuffle itself through a CSPRNG byte stream.
func seedFromEntropy() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("session: reading shuffle seed from system entropy: %v", err))
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// Lock and Unlock expose the session's exclusive lock directly so the Event
// Coordinator can hold it exactly across the operations spec §5 requires
// and release it before any suspension point.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Joinable reports whether the session still accepts AddPlayer. Caller must
// hold the lock.
func (s *Session) Joinable() bool { return s.joinable }

// GameState returns the active GameState, or nil before StartGame. Caller
// must hold the lock.
func (s *Session) GameState() *game.GameState { return s.gameState }

// Players returns the session's players in player_game_id order. Caller
// must hold the lock.
func (s *Session) Players() []*Player { return s.players }

// Player looks up a player by its stable player_game_id. Ids are assigned
// once by AddPlayer and never reused or renumbered, so this is a scan over
// the (small) player list rather than a direct slice index. Caller must
// hold the lock.
func (s *Session) Player(id int) (*Player, bool) {
	for _, p := range s.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Empty reports whether the session has no players left. Caller must hold
// the lock.
func (s *Session) Empty() bool { return len(s.players) == 0 }

// AddPlayer appends a new player if the session is still joinable and no
// existing player shares the username (spec §4.3). Caller must hold the
// lock.
func (s *Session) AddPlayer(username string, faceImageID uint32) (*Player, error) {
	if !s.joinable {
		return nil, ErrAlreadyStarted
	}
	for _, p := range s.players {
		if p.Username == username {
			return nil, ErrDuplicateUsername
		}
	}
	p := &Player{
		ID:          s.nextPlayerID,
		Username:    username,
		FaceImageID: faceImageID,
		inFlight:    make(map[uint64]struct{}),
	}
	s.nextPlayerID++
	s.players = append(s.players, p)
	return p, nil
}

// RemovePlayer removes a player's slot. If a game is in progress the caller
// is expected to have already broadcast ServerGameOver and cleared
// GameState (§4.6); RemovePlayer itself only performs the registry-visible
// bookkeeping: slot removal and admin promotion. Every remaining player's id
// stays exactly what it was (spec §3's player_game_id is assigned once and
// never reused), since a player's already-open stream keeps dispatching
// under that id for the rest of its lifetime. Caller must hold the lock.
func (s *Session) RemovePlayer(id int) error {
	idx := -1
	for i, p := range s.players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNoSuchPlayer
	}
	wasAdmin := s.players[idx].IsSessionAdmin
	s.players = append(s.players[:idx], s.players[idx+1:]...)
	if wasAdmin && len(s.players) > 0 {
		s.players[0].IsSessionAdmin = true
	}
	return nil
}

// StartGame instantiates GameState and flips the session closed to new
// joiners. Caller must hold the lock and must have already verified the
// caller is the admin.
func (s *Session) StartGame(prefs game.Prefs) (*game.GameState, error) {
	if !s.joinable {
		return nil, ErrAlreadyStarted
	}
	playerIDs := make([]int, len(s.players))
	for i, p := range s.players {
		playerIDs[i] = p.ID
	}
	gs, err := game.New(playerIDs, prefs, s.rng)
	if err != nil {
		return nil, err
	}
	s.joinable = false
	s.gameState = gs
	s.phase.toActive(s)
	return gs, nil
}

// EndGame clears GameState and reopens nothing (the session is destroyed by
// the caller after broadcasting ServerGameOver, per §4.6).
func (s *Session) EndGame() {
	s.gameState = nil
	s.phase.toEnded(s)
}

// NextEventID allocates the next monotonic server_event_id for this
// session. Caller must hold the lock.
func (s *Session) NextEventID() uint64 {
	s.serverEventCounter++
	return s.serverEventCounter
}

// InstallEgress attaches a player's outbound queue, failing
// FailedPrecondition if the slot is already open (OpenStream received
// twice). Caller must hold the lock.
func (p *Player) InstallEgress(e *Egress) error {
	if p.egress != nil {
		return ErrStreamAlreadyOpen
	}
	p.egress = e
	return nil
}

// EgressQueue returns the player's outbound queue, or nil if OpenStream has
// not run yet. It is safe to Send on the returned queue without holding the
// session lock.
func (p *Player) EgressQueue() *Egress { return p.egress }

// CloseEgress detaches and closes the player's outbound queue on
// disconnect. Caller must hold the session lock.
func (p *Player) CloseEgress() {
	if p.egress != nil {
		p.egress.Close()
		p.egress = nil
	}
}

// MarkInFlight records that eventID was delivered to this player and has not
// yet been acknowledged. Caller must hold the session lock.
func (p *Player) MarkInFlight(eventID uint64) { p.inFlight[eventID] = struct{}{} }

// AckInFlight removes eventID from the in-flight set, e.g. on receipt of a
// client Acknowledge or on disconnect. Caller must hold the session lock.
func (p *Player) AckInFlight(eventID uint64) { delete(p.inFlight, eventID) }

// InFlightEmpty reports whether every delivered event has been acknowledged
// (used by the start-game handshake's poll). Caller must hold the session
// lock.
func (p *Player) InFlightEmpty() bool { return len(p.inFlight) == 0 }

// ClearInFlight drops every in-flight id, used on disconnect so a pending
// start-game handshake does not wait forever on a departed player.
func (p *Player) ClearInFlight() { p.inFlight = make(map[uint64]struct{}) }

// Errors returned by Session operations, mapped onto spec §7's taxonomy by
// the Service Facade / Event Coordinator.
var (
	ErrAlreadyStarted    = fmt.Errorf("session: already started")
	ErrDuplicateUsername = fmt.Errorf("session: duplicate username")
	ErrNoSuchPlayer      = fmt.Errorf("session: no such player")
	ErrStreamAlreadyOpen = fmt.Errorf("session: stream already open")
	ErrBlankUsername     = fmt.Errorf("session: username must not be blank")
	ErrNotAdmin          = fmt.Errorf("session: caller is not the admin")
)
