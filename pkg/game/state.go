// Package game implements the Blitz rules engine: the authoritative
// GameState machine covering piles, arena, hand/available, blitz pile,
// scoreboard, round lifecycle, and the blitz call.
package game

import (
	"fmt"
	"math/rand"

	"github.com/blitz-game/blitzsrv/pkg/card"
	"github.com/blitz-game/blitzsrv/pkg/deck"
)

// Prefs mirrors spec §6's GamePrefs wire record. Defaults match the spec
// defaults exactly.
type Prefs struct {
	DrawRate       int
	PostPileSize   int
	ScoreToWin     int
	BlitzDeduction int
}

// DefaultPrefs returns the spec-mandated defaults.
func DefaultPrefs() Prefs {
	return Prefs{DrawRate: 3, PostPileSize: 3, ScoreToWin: 72, BlitzDeduction: 10}
}

// GameState is the authoritative state machine for one session's active
// game: the global deck, every player's private piles, the shared arena,
// the scoreboard, and round/draw-rate bookkeeping.
type GameState struct {
	Round          int
	Scoreboard     *Scoreboard
	Deck           *deck.Deck
	Players        []*Player
	Arena          *card.Arena
	DrawRate       int
	PostPileSize   int
	ScoreToWin     int
	BlitzDeduction int
	IsGameOver     bool

	defaultDrawRate int
	rng             *rand.Rand
}

// New builds a fresh GameState for the given player_game_ids: generates the
// global deck once and deals every player's starting piles from it.
// playerIDs need not be contiguous (a player may have left the lobby before
// the game started, leaving gaps in the session's stable ids); each id's
// position in playerIDs only picks its deck partition and is never reused as
// its identity. rng drives every shuffle for the lifetime of the game,
// including re-deals on NewRound; callers use a crypto-seeded *rand.Rand in
// production and a fixed-seed one in tests for deterministic deals.
func New(playerIDs []int, prefs Prefs, rng *rand.Rand) (*GameState, error) {
	if prefs.PostPileSize+10 > deck.CardsPerPlayer {
		return nil, fmt.Errorf("game: post_pile_size %d + 10 blitz cards exceeds %d-card hand", prefs.PostPileSize, deck.CardsPerPlayer)
	}
	playerCount := len(playerIDs)
	d, err := deck.Generate(playerCount)
	if err != nil {
		return nil, err
	}
	gs := &GameState{
		Scoreboard:      NewScoreboard(playerCount),
		Deck:            d,
		Arena:           card.NewArena(),
		DrawRate:        prefs.DrawRate,
		PostPileSize:    prefs.PostPileSize,
		ScoreToWin:      prefs.ScoreToWin,
		BlitzDeduction:  prefs.BlitzDeduction,
		defaultDrawRate: prefs.DrawRate,
		rng:             rng,
	}
	gs.Players = make([]*Player, playerCount)
	for seat, id := range playerIDs {
		player, err := gs.dealPlayer(seat, id)
		if err != nil {
			return nil, err
		}
		gs.Players[seat] = player
	}
	return gs, nil
}

// dealPlayer deals the deck partition at seat (its position among the
// game's players, purely a deck-partitioning index) into a fresh Player
// carrying the stable id.
func (gs *GameState) dealPlayer(seat, id int) (*Player, error) {
	deal, err := gs.Deck.DealPlayer(gs.rng, seat, gs.PostPileSize)
	if err != nil {
		return nil, err
	}
	postPiles := make([]*card.PostPile, len(deal.PostPiles))
	for i, seed := range deal.PostPiles {
		seedIdx := seed[0]
		c, err := gs.Deck.Card(seedIdx)
		if err != nil {
			return nil, err
		}
		postPiles[i] = card.NewPostPile(c.Color, seedIdx)
	}
	return &Player{
		ID:        id,
		Hand:      NewPlayerHand(deal.InHand),
		PostPiles: postPiles,
		Blitz:     card.NewBlitzPile(deal.Blitz),
	}, nil
}

// NewRound bumps the round counter, clears the arena, and re-deals every
// player from the (unchanged) global deck, preserving each player's stable
// id across the re-deal.
func (gs *GameState) NewRound() error {
	gs.Round++
	gs.Arena.Clear()
	for seat, p := range gs.Players {
		player, err := gs.dealPlayer(seat, p.ID)
		if err != nil {
			return err
		}
		gs.Players[seat] = player
	}
	return nil
}

// ChangeDrawRate sets a new draw rate; no cards move.
func (gs *GameState) ChangeDrawRate(rate int) { gs.DrawRate = rate }

// ResetDrawRate restores the draw rate the game was configured with.
func (gs *GameState) ResetDrawRate() { gs.DrawRate = gs.defaultDrawRate }

// ScoreRound computes each player's round score — cards contributed to the
// arena minus twice the cards remaining in their blitz pile — and appends it
// to the scoreboard. Sets IsGameOver if any running total reaches
// ScoreToWin.
func (gs *GameState) ScoreRound() {
	gs.scoreRound(nil)
}

// scoreRound is ScoreRound's implementation, additionally folding in any
// per-player penalty deltas (from a false CallBlitz) into the same round
// entry so every player's scoreboard row stays the same length.
func (gs *GameState) scoreRound(penalties map[int]int32) {
	arenaScores := make([]int32, len(gs.Players))
	for _, pile := range gs.Arena.Piles {
		for _, cardIdx := range pile.Cards {
			c, err := gs.Deck.Card(cardIdx)
			if err != nil {
				continue
			}
			arenaScores[c.OwnerPlayer]++
		}
	}
	perPlayer := make([]int32, len(gs.Players))
	for i, p := range gs.Players {
		perPlayer[i] = arenaScores[i] - 2*int32(p.Blitz.Len()) + penalties[p.ID]
	}
	gs.Scoreboard.AddRound(perPlayer)

	totals := gs.Scoreboard.Totals()
	for _, t := range totals {
		if int(t) >= gs.ScoreToWin {
			gs.IsGameOver = true
			break
		}
	}
}

// player looks up a player by its stable id. ids are not necessarily dense
// or in gs.Players order (a player may have left the lobby before the game
// started), so this is a scan rather than a direct index.
func (gs *GameState) player(id int) (*Player, error) {
	for _, p := range gs.Players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("game: player %d out of range", id)
}
