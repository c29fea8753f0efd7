package facade

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blitz-game/blitzsrv/pkg/blitzrpc"
	"github.com/blitz-game/blitzsrv/pkg/coordinator"
	"github.com/blitz-game/blitzsrv/pkg/session"
)

func testLogger() slog.Logger {
	return slog.NewBackend(os.Stdout).Logger("TEST")
}

func newTestService() *Service {
	reg := session.NewRegistry(testLogger())
	coord := coordinator.New(testLogger(), otel.Tracer("test"), nil)
	return New(reg, coord, testLogger())
}

func TestStartSessionRejectsBlankUsername(t *testing.T) {
	svc := newTestService()
	_, err := svc.StartSession(context.Background(), "", 0)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestJoinSessionNotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.JoinSession(context.Background(), "nope", "bob", 0)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestJoinSessionDuplicateUsername(t *testing.T) {
	svc := newTestService()
	admin, err := svc.StartSession(context.Background(), "alice", 0)
	require.NoError(t, err)

	_, err = svc.JoinSession(context.Background(), admin.SessionID, "alice", 0)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGetActiveSessionsListsJoinableOnly(t *testing.T) {
	svc := newTestService()
	_, err := svc.StartSession(context.Background(), "alice", 0)
	require.NoError(t, err)

	sessions, err := svc.GetActiveSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestGetSessionNotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.GetSession(context.Background(), "nope")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

type fakeServerEventSender struct {
	ctx  context.Context
	sent []*blitzrpc.ServerEvent
}

func (f *fakeServerEventSender) Send(ev *blitzrpc.ServerEvent) error {
	f.sent = append(f.sent, ev)
	return nil
}
func (f *fakeServerEventSender) Context() context.Context { return f.ctx }

func TestOpenServerEventStreamDeliversAcceptThenCloses(t *testing.T) {
	svc := newTestService()
	admin, err := svc.StartSession(context.Background(), "alice", 0)
	require.NoError(t, err)

	s, ok := svc.registry.Get(admin.SessionID)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	sender := &fakeServerEventSender{ctx: ctx}

	done := make(chan error, 1)
	go func() { done <- svc.OpenServerEventStream(admin.SessionID, 0, sender) }()

	// Cancelling up front still lets the already-queued accept drain before
	// the stream returns.
	cancel()
	err = <-done
	assert.NoError(t, err)
	require.Len(t, sender.sent, 1)
	ack, isAck := sender.sent[0].Payload.(blitzrpc.Acknowledge)
	require.True(t, isAck)
	assert.Equal(t, blitzrpc.Accepted, ack.Type)
	_ = s
}

type fakeClientEventReceiver struct {
	ctx    context.Context
	events []*blitzrpc.ClientEvent
	i      int
}

func (f *fakeClientEventReceiver) Recv() (*blitzrpc.ClientEvent, error) {
	if f.i >= len(f.events) {
		return nil, io.EOF
	}
	ev := f.events[f.i]
	f.i++
	return ev, nil
}
func (f *fakeClientEventReceiver) Context() context.Context { return f.ctx }

func TestOpenClientEventStreamRequiresOpenStreamFirst(t *testing.T) {
	svc := newTestService()
	recv := &fakeClientEventReceiver{
		ctx: context.Background(),
		events: []*blitzrpc.ClientEvent{
			{EventID: 1, Payload: blitzrpc.ClientAck{EventID: 0}},
		},
	}
	err := svc.OpenClientEventStream(recv)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestOpenClientEventStreamUnknownSession(t *testing.T) {
	svc := newTestService()
	recv := &fakeClientEventReceiver{
		ctx: context.Background(),
		events: []*blitzrpc.ClientEvent{
			{Payload: blitzrpc.OpenStream{SessionID: "nope", PlayerGameID: 0}},
		},
	}
	err := svc.OpenClientEventStream(recv)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
