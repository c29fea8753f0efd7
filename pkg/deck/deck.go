// Package deck generates a Blitz session's global deck and deals each
// player's starting piles from it.
package deck

import (
	"fmt"
	"math/rand"

	"github.com/blitz-game/blitzsrv/pkg/card"
)

// CardsPerPlayer is the fixed per-player slice of the global deck: four
// colors times ten numbers.
const CardsPerPlayer = 40

// Deck is the immutable, session-wide set of cards. It is generated once at
// StartGame and shipped verbatim to every client; all later messages
// reference cards only by their index into this deck.
type Deck struct {
	cards []card.Card
}

// Generate builds the 40*players global deck. Player p owns indices
// [40p, 40p+40): ten cards of each color numbered 1..10, gender derived from
// number parity. The generation order is fixed so every client computes
// identical indices from the same player count.
func Generate(players int) (*Deck, error) {
	if players < 1 {
		return nil, fmt.Errorf("deck: player count must be >= 1, got %d", players)
	}
	cards := make([]card.Card, 0, CardsPerPlayer*players)
	for p := 0; p < players; p++ {
		for n := 0; n < CardsPerPlayer; n++ {
			number := n%10 + 1
			color := card.Colors[n/10]
			index := n + CardsPerPlayer*p
			cards = append(cards, card.New(index, p, number, color))
		}
	}
	return &Deck{cards: cards}, nil
}

// Card resolves a global deck index to its Card value.
func (d *Deck) Card(index int) (card.Card, error) {
	if index < 0 || index >= len(d.cards) {
		return card.Card{}, fmt.Errorf("deck: index %d out of bounds", index)
	}
	return d.cards[index], nil
}

// Cards returns every card in the deck, in index order. Used to ship the
// global deck to clients at StartGame.
func (d *Deck) Cards() []card.Card {
	out := make([]card.Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Len returns the total number of cards in the deck.
func (d *Deck) Len() int { return len(d.cards) }

// Deal is the result of dealing one player's 40-card slice: the undrawn
// in-hand remainder, the ten-card blitz pile, and postPileSize single-card
// post piles.
type Deal struct {
	InHand    []int
	Blitz     []int
	PostPiles [][]int // each inner slice is a single seed card today
}

// DealPlayer shuffles player p's 40-card slice of the deck with rng and
// partitions it into in_hand / blitz / post piles per spec §4.1:
//  1. shuffle the 40 indices,
//  2. first (40 - postPileSize - 10) form in_hand,
//  3. next 10 form the blitz pile,
//  4. last postPileSize each seed a single-card post pile.
//
// Fails with an error if postPileSize+10 > 40.
func (d *Deck) DealPlayer(rng *rand.Rand, player int, postPileSize int) (Deal, error) {
	if postPileSize+10 > CardsPerPlayer {
		return Deal{}, fmt.Errorf("deck: post_pile_size %d leaves no room for hand+blitz", postPileSize)
	}
	start := player * CardsPerPlayer
	if start+CardsPerPlayer > len(d.cards) {
		return Deal{}, fmt.Errorf("deck: player %d out of range for deck of %d cards", player, len(d.cards))
	}
	indices := make([]int, CardsPerPlayer)
	for i := range indices {
		indices[i] = start + i
	}
	rng.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })

	handEnd := CardsPerPlayer - postPileSize - 10
	inHand := append([]int(nil), indices[:handEnd]...)
	blitz := append([]int(nil), indices[handEnd:handEnd+10]...)

	postSeeds := indices[handEnd+10:]
	postPiles := make([][]int, len(postSeeds))
	for i, idx := range postSeeds {
		postPiles[i] = []int{idx}
	}

	return Deal{InHand: inHand, Blitz: blitz, PostPiles: postPiles}, nil
}
