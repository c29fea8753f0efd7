package coordinator

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/decred/slog"
	"go.opentelemetry.io/otel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitz-game/blitzsrv/pkg/blitzrpc"
	"github.com/blitz-game/blitzsrv/pkg/game"
	"github.com/blitz-game/blitzsrv/pkg/session"
)

func testLogger() slog.Logger {
	return slog.NewBackend(os.Stdout).Logger("TEST")
}

func newTestCoordinator() *Coordinator {
	return New(testLogger(), otel.Tracer("test"), nil)
}

func newTwoPlayerSession(t *testing.T) (*session.Session, *Coordinator) {
	t.Helper()
	c := newTestCoordinator()
	s := session.New("sess-1", "alice", 0, testLogger())
	s.Lock()
	_, err := s.AddPlayer("bob", 0)
	require.NoError(t, err)
	s.Unlock()
	return s, c
}

func TestOpenStreamSendsAcceptedAck(t *testing.T) {
	s, c := newTwoPlayerSession(t)
	eg, err := c.OpenStream(s, 0)
	require.NoError(t, err)

	ev, ok := eg.Recv()
	require.True(t, ok)
	ack, ok := ev.Payload.(blitzrpc.Acknowledge)
	require.True(t, ok)
	assert.Equal(t, blitzrpc.Accepted, ack.Type)
}

func TestOpenStreamTwiceFails(t *testing.T) {
	s, c := newTwoPlayerSession(t)
	_, err := c.OpenStream(s, 0)
	require.NoError(t, err)
	_, err = c.OpenStream(s, 0)
	assert.ErrorIs(t, err, session.ErrStreamAlreadyOpen)
}

func TestDispatchPlayBeforeStartGameRejects(t *testing.T) {
	s, c := newTwoPlayerSession(t)
	eg, err := c.OpenStream(s, 0)
	require.NoError(t, err)
	drainAccept(t, eg)

	c.Dispatch(context.Background(), s, 0, blitzrpc.ClientEvent{
		EventID: 1,
		Payload: blitzrpc.PlayEvent{Play: game.Play{Kind: game.PlayTransferToAvailable}},
	})

	ev, ok := eg.Recv()
	require.True(t, ok)
	_, isErr := ev.Payload.(blitzrpc.GamePlayError)
	assert.True(t, isErr)
}

func TestDispatchStartGameHandshakeConfirmsAdmin(t *testing.T) {
	s, c := newTwoPlayerSession(t)
	adminEg, err := c.OpenStream(s, 0)
	require.NoError(t, err)
	drainAccept(t, adminEg)
	bobEg, err := c.OpenStream(s, 1)
	require.NoError(t, err)
	drainAccept(t, bobEg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.Dispatch(ctx, s, 0, blitzrpc.ClientEvent{EventID: 1, Payload: blitzrpc.StartGame{Prefs: blitzrpc.GamePrefs{
			DrawRate: 3, PostPileSize: 3, ScoreToWin: 72, BlitzDeduction: 10,
		}}})
		close(done)
	}()

	ackEv, ok := adminEg.Recv()
	require.True(t, ok)
	_, isAck := ackEv.Payload.(blitzrpc.Acknowledge)
	require.True(t, isAck)

	bobEv, ok := bobEg.Recv()
	require.True(t, ok)
	_, isRequest := bobEv.Payload.(blitzrpc.RequestStartGame)
	require.True(t, isRequest)

	s.Lock()
	bobPlayer, _ := s.Player(1)
	bobPlayer.AckInFlight(bobEv.EventID)
	s.Unlock()

	<-done

	confirmEv, ok := adminEg.Recv()
	require.True(t, ok)
	_, isConfirm := confirmEv.Payload.(blitzrpc.ConfirmGameStart)
	assert.True(t, isConfirm)
}

func drainAccept(t *testing.T, eg *session.Egress) {
	t.Helper()
	_, ok := eg.Recv()
	require.True(t, ok)
}
