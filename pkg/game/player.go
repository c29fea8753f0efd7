package game

import "github.com/blitz-game/blitzsrv/pkg/card"

// Player is one round's per-player container: stable identity plus the
// three private pile groups dealt to them.
type Player struct {
	ID        int // player_game_id, stable for the life of the session
	Hand      *PlayerHand
	PostPiles []*card.PostPile
	Blitz     *card.BlitzPile
}

// CanCallBlitz reports whether the player's blitz pile is empty.
func (p *Player) CanCallBlitz() bool { return p.Blitz.CanCallBlitz() }

// CardsInPostPiles counts every card currently held across all post piles.
func (p *Player) CardsInPostPiles() int {
	n := 0
	for _, pp := range p.PostPiles {
		n += len(pp.Cards)
	}
	return n
}
