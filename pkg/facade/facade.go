// Package facade implements the Service Facade (spec §6/§7): it maps the
// Session service's unary RPCs and the Game service's streaming RPCs onto
// session.Registry and coordinator.Coordinator operations, translating
// internal errors onto grpc/codes per the error taxonomy.
package facade

import (
	"context"
	"io"

	"github.com/decred/slog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blitz-game/blitzsrv/pkg/blitzrpc"
	"github.com/blitz-game/blitzsrv/pkg/coordinator"
	"github.com/blitz-game/blitzsrv/pkg/session"
)

// Service implements the Session and Game RPC surface described in spec §6.
// It holds no game logic of its own; every operation is a thin translation
// into registry/coordinator calls plus error-code mapping.
type Service struct {
	registry *session.Registry
	coord    *coordinator.Coordinator
	log      slog.Logger
}

// New returns a facade over registry and coord.
func New(registry *session.Registry, coord *coordinator.Coordinator, log slog.Logger) *Service {
	return &Service{registry: registry, coord: coord, log: log}
}

// GetActiveSessions returns every joinable session's descriptor.
func (s *Service) GetActiveSessions(ctx context.Context) ([]blitzrpc.SessionDescriptor, error) {
	return s.registry.ActiveSessions(), nil
}

// StartSession creates a new session with the caller as its admin.
func (s *Service) StartSession(ctx context.Context, username string, faceImageID uint32) (blitzrpc.Player, error) {
	if username == "" {
		return blitzrpc.Player{}, status.Error(codes.InvalidArgument, "blank username")
	}
	sess, err := s.registry.Create(username, faceImageID)
	if err != nil {
		return blitzrpc.Player{}, mapSessionErr(err)
	}
	return blitzrpc.Player{
		SessionID:      sess.ID,
		PlayerGameID:   0,
		Username:       username,
		FaceImageID:    faceImageID,
		IsSessionAdmin: true,
	}, nil
}

// JoinSession adds a new player to an existing joinable session.
func (s *Service) JoinSession(ctx context.Context, sessionID, username string, faceImageID uint32) (blitzrpc.Player, error) {
	if username == "" {
		return blitzrpc.Player{}, status.Error(codes.InvalidArgument, "blank username")
	}
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return blitzrpc.Player{}, status.Error(codes.NotFound, "no session with that id")
	}

	sess.Lock()
	p, err := sess.AddPlayer(username, faceImageID)
	sess.Unlock()
	if err != nil {
		return blitzrpc.Player{}, mapSessionErr(err)
	}
	return blitzrpc.Player{
		SessionID:      sessionID,
		PlayerGameID:   uint32(p.ID),
		Username:       p.Username,
		FaceImageID:    p.FaceImageID,
		IsSessionAdmin: p.IsSessionAdmin,
	}, nil
}

// EndSession ends the caller's session: admin-only once a game is in
// progress, otherwise any player may end it (spec §6).
func (s *Service) EndSession(ctx context.Context, sessionID string, playerID int) error {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return status.Error(codes.NotFound, "no session with that id")
	}
	if err := s.coord.EndSession(sess, playerID); err != nil {
		return mapCoordErr(err)
	}
	s.registry.Delete(sessionID)
	return nil
}

// GetSession returns a session's descriptor.
func (s *Service) GetSession(ctx context.Context, sessionID string) (blitzrpc.SessionDescriptor, error) {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return blitzrpc.SessionDescriptor{}, status.Error(codes.NotFound, "no session with that id")
	}
	sess.Lock()
	defer sess.Unlock()
	usernames := make([]string, len(sess.Players()))
	for i, p := range sess.Players() {
		usernames[i] = p.Username
	}
	return blitzrpc.SessionDescriptor{ID: sess.ID, Usernames: usernames, Joinable: sess.Joinable()}, nil
}

// ServerEventSender is the subset of grpc.ServerStream the facade needs to
// drain a player's egress queue onto the wire (spec §4.4's per-stream writer
// task). A real grpc server-streaming method's generated stream type
// satisfies this directly.
type ServerEventSender interface {
	Send(*blitzrpc.ServerEvent) error
	Context() context.Context
}

// OpenServerEventStream drains playerID's egress queue onto stream until the
// queue closes (on disconnect) or the stream's context is cancelled
// (transport break, spec §7 Unavailable).
func (s *Service) OpenServerEventStream(sessionID string, playerID int, stream ServerEventSender) error {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return status.Error(codes.NotFound, "no session with that id")
	}
	eg, err := s.coord.OpenStream(sess, playerID)
	if err != nil {
		return mapCoordErr(err)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-stream.Context().Done():
			eg.Close()
		case <-done:
		}
	}()
	defer close(done)

	for {
		ev, ok := eg.Recv()
		if !ok {
			return nil
		}
		if err := stream.Send(ev); err != nil {
			s.log.Errorf("session %s: send to player %d failed: %v", sessionID, playerID, err)
			empty := s.coord.Disconnect(sess, playerID)
			if empty {
				s.registry.Delete(sessionID)
			}
			return status.Error(codes.Unavailable, "send failed")
		}
	}
}

// ClientEventReceiver is the subset of grpc.ServerStream the facade needs to
// read a player's inbound event stream (spec §4.4's per-stream reader task).
type ClientEventReceiver interface {
	Recv() (*blitzrpc.ClientEvent, error)
	Context() context.Context
}

// OpenClientEventStream runs the reader loop for one client's inbound
// stream. The first message must be OpenStream (spec §6); every later
// message is dispatched to the coordinator. An ingress read failure is
// treated as a disconnect (spec §7 Unavailable), never as a session-wide
// failure.
func (s *Service) OpenClientEventStream(stream ClientEventReceiver) error {
	first, err := stream.Recv()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return status.Error(codes.Unavailable, "ingress read failed")
	}
	open, ok := first.Payload.(blitzrpc.OpenStream)
	if !ok {
		return status.Error(codes.FailedPrecondition, "first message must be OpenStream")
	}
	sess, ok := s.registry.Get(open.SessionID)
	if !ok {
		return status.Error(codes.NotFound, "no session with that id")
	}
	playerID := int(open.PlayerGameID)

	sess.Lock()
	_, ok = sess.Player(playerID)
	sess.Unlock()
	if !ok {
		return status.Error(codes.NotFound, "no such player slot")
	}

	for {
		ev, err := stream.Recv()
		if err != nil {
			empty := s.coord.Disconnect(sess, playerID)
			if empty {
				s.registry.Delete(open.SessionID)
			}
			if err == io.EOF {
				return nil
			}
			return status.Error(codes.Unavailable, "ingress read failed")
		}
		c := stream.Context()
		s.coord.Dispatch(c, sess, playerID, *ev)
	}
}

func mapSessionErr(err error) error {
	switch err {
	case session.ErrBlankUsername, session.ErrDuplicateUsername:
		return status.Error(codes.InvalidArgument, err.Error())
	case session.ErrAlreadyStarted:
		return status.Error(codes.FailedPrecondition, err.Error())
	case session.ErrNoSuchPlayer:
		return status.Error(codes.NotFound, err.Error())
	case session.ErrStreamAlreadyOpen:
		return status.Error(codes.FailedPrecondition, err.Error())
	case session.ErrNotAdmin:
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func mapCoordErr(err error) error {
	switch err {
	case coordinator.ErrNoSuchPlayer:
		return status.Error(codes.NotFound, err.Error())
	case coordinator.ErrNotAdmin:
		return status.Error(codes.FailedPrecondition, err.Error())
	case session.ErrStreamAlreadyOpen:
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return mapSessionErr(err)
	}
}
