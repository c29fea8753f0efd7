package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, players int) *GameState {
	t.Helper()
	ids := make([]int, players)
	for i := range ids {
		ids[i] = i
	}
	rng := rand.New(rand.NewSource(42))
	gs, err := New(ids, DefaultPrefs(), rng)
	require.NoError(t, err)
	return gs
}

func TestNewDealsFortyCardsPerPlayer(t *testing.T) {
	gs := newTestGame(t, 2)
	for _, p := range gs.Players {
		total := p.Hand.CountInHand() + p.Hand.CountAvailable() + p.Blitz.Len() + p.CardsInPostPiles()
		assert.Equal(t, 40, total)
	}
	assert.Equal(t, 80, gs.Deck.Len())
}

func TestTransferToAvailableMovesDrawRateCards(t *testing.T) {
	gs := newTestGame(t, 2)
	p := gs.Players[0]
	before := p.Hand.CountInHand()
	result, err := gs.MakePlay(Play{Player: 0, Kind: PlayTransferToAvailable})
	require.NoError(t, err)
	assert.Equal(t, before-3, p.Hand.CountInHand())
	assert.Equal(t, 3, p.Hand.CountAvailable())
	assert.Len(t, result.Delta.Player, 1)
}

func TestTransferToAvailableMovesRemainderWhenShort(t *testing.T) {
	gs := newTestGame(t, 2)
	p := gs.Players[0]
	p.Hand.InHand = p.Hand.InHand[:2]
	_, err := gs.MakePlay(Play{Player: 0, Kind: PlayTransferToAvailable})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Hand.CountInHand())
	assert.Equal(t, 2, p.Hand.CountAvailable())
}

func TestArenaFromAvailableStartsNewPileOnNumberOne(t *testing.T) {
	gs := newTestGame(t, 2)
	p := gs.Players[0]

	// Force a number-1 card to the top of available.
	oneIdx := findCard(t, gs, 0, 1)
	p.Hand.Available = []int{oneIdx}

	result, err := gs.MakePlay(Play{Player: 0, Kind: PlayArenaFromAvailable, ArenaIdx: 0})
	require.NoError(t, err)
	require.Len(t, gs.Arena.Piles, 1)
	assert.Equal(t, 1, gs.Arena.Piles[0].Height())
	assert.Equal(t, Add, result.Delta.Arena[0].Action)
}

func TestArenaRejectsNonSuccessorNumber(t *testing.T) {
	gs := newTestGame(t, 2)
	p := gs.Players[0]

	oneIdx := findCard(t, gs, 0, 1)
	threeIdx := findCard(t, gs, 0, 3)
	p.Hand.Available = []int{oneIdx}
	_, err := gs.MakePlay(Play{Player: 0, Kind: PlayArenaFromAvailable, ArenaIdx: 0})
	require.NoError(t, err)

	p.Hand.Available = []int{threeIdx}
	before := gs.Arena.Piles[0].Height()
	_, err = gs.MakePlay(Play{Player: 0, Kind: PlayArenaFromAvailable, ArenaIdx: 0})
	assert.Error(t, err)
	assert.Equal(t, before, gs.Arena.Piles[0].Height())
	assert.Equal(t, 1, p.Hand.CountAvailable(), "rejected play must not consume the card")
}

func TestCallBlitzValidStartsNewRound(t *testing.T) {
	gs := newTestGame(t, 2)
	gs.Players[0].Blitz.Cards = nil

	result, err := gs.MakePlay(Play{Player: 0, Kind: PlayCallBlitz})
	require.NoError(t, err)
	assert.Equal(t, ServerActionNewRound, result.Action)
	assert.Equal(t, 1, gs.Round)
	assert.False(t, gs.IsGameOver)
}

func TestCallBlitzInvalidPenalizesQualifiedPlayers(t *testing.T) {
	gs := newTestGame(t, 2)
	gs.Players[0].Blitz.Cards = []int{1, 2, 3} // not empty: invalid call
	gs.Players[1].Blitz.Cards = nil            // qualified, gets penalized

	result, err := gs.MakePlay(Play{Player: 0, Kind: PlayCallBlitz})
	require.NoError(t, err)
	assert.Equal(t, ServerActionGameOver, result.Action)
	totals := gs.Scoreboard.Totals()
	assert.LessOrEqual(t, totals[1], int32(-10))
}

func TestScoreRoundComputesArenaMinusBlitz(t *testing.T) {
	gs := newTestGame(t, 2)
	gs.Players[0].Blitz.Cards = []int{1, 2}
	gs.ScoreRound()
	totals := gs.Scoreboard.Totals()
	assert.Equal(t, int32(-4), totals[0])
}

func findCard(t *testing.T, gs *GameState, player, number int) int {
	t.Helper()
	for _, c := range gs.Deck.Cards() {
		if c.OwnerPlayer == player && c.Number == number {
			return c.Index
		}
	}
	t.Fatalf("no card with number %d for player %d", number, player)
	return -1
}
