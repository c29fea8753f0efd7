package card

import "fmt"

// MaxPileHeight is the capacity of any arena or post pile.
const MaxPileHeight = 10

// ArenaPile is a public, color-locked pile in the arena. Cards stack in
// strict ascending numeric order starting at 1; it is created the instant a
// number-1 card is played and retired in place once it reaches 10 cards.
type ArenaPile struct {
	Color Color
	Cards []int // deck indices, bottom to top
}

// NewArenaPile creates a pile seeded by a number-1 card.
func NewArenaPile(color Color, firstCardIndex int) *ArenaPile {
	return &ArenaPile{Color: color, Cards: []int{firstCardIndex}}
}

// Height returns the current pile height.
func (p *ArenaPile) Height() int { return len(p.Cards) }

// Full reports whether the pile has reached its 10-card capacity.
func (p *ArenaPile) Full() bool { return len(p.Cards) >= MaxPileHeight }

// Accept validates and appends a card according to the arena stacking
// invariant: same color as the pile, number exactly one greater than the
// current height.
func (p *ArenaPile) Accept(c Card) error {
	if p.Full() {
		return fmt.Errorf("arena pile is full")
	}
	if c.Color != p.Color {
		return fmt.Errorf("card color %s does not match pile color %s", c.Color, p.Color)
	}
	want := p.Height() + 1
	if c.Number != want {
		return fmt.Errorf("card number %d does not match pile height %d (want %d)", c.Number, p.Height(), want)
	}
	p.Cards = append(p.Cards, c.Index)
	return nil
}

// PostPile is a private, descending, gender-alternating stack in front of a
// player. Only the top card is playable.
type PostPile struct {
	Color Color
	Cards []int // bottom to top; Cards[len-1] is the playable top
}

// NewPostPile seeds a post pile with its single dealt card.
func NewPostPile(color Color, cardIndex int) *PostPile {
	return &PostPile{Color: color, Cards: []int{cardIndex}}
}

// Top returns the index of the playable top card.
func (p *PostPile) Top() (int, bool) {
	if len(p.Cards) == 0 {
		return 0, false
	}
	return p.Cards[len(p.Cards)-1], true
}

// Empty reports whether the pile has no cards left.
func (p *PostPile) Empty() bool { return len(p.Cards) == 0 }

// Push validates and appends a card according to the post-pile stacking
// invariant: same color as the pile, exactly one less than the current top,
// gender alternating from the current top. prevCard is the resolved Card for
// the current top (the caller owns card resolution via the deck).
func (p *PostPile) Push(prevCard, c Card) error {
	if len(p.Cards) >= MaxPileHeight {
		return fmt.Errorf("post pile is full")
	}
	if c.Color != p.Color {
		return fmt.Errorf("card color %s does not match pile color %s", c.Color, p.Color)
	}
	if c.Gender == prevCard.Gender {
		return fmt.Errorf("card gender must alternate from current top")
	}
	if c.Number != prevCard.Number-1 {
		return fmt.Errorf("card number %d is not one less than top %d", c.Number, prevCard.Number)
	}
	p.Cards = append(p.Cards, c.Index)
	return nil
}

// Pop removes and returns the top card. The caller is responsible for
// dropping the pile entirely once it is empty.
func (p *PostPile) Pop() (int, bool) {
	if len(p.Cards) == 0 {
		return 0, false
	}
	idx := p.Cards[len(p.Cards)-1]
	p.Cards = p.Cards[:len(p.Cards)-1]
	return idx, true
}

// BlitzPile is a private, unconstrained 10-card pile dealt at game start.
// Emptying it lets its owner call blitz.
type BlitzPile struct {
	Cards []int // bottom to top
}

// NewBlitzPile seeds a blitz pile with its ten dealt cards.
func NewBlitzPile(cards []int) *BlitzPile {
	c := make([]int, len(cards))
	copy(c, cards)
	return &BlitzPile{Cards: c}
}

// Pop removes and returns the top card.
func (p *BlitzPile) Pop() (int, bool) {
	if len(p.Cards) == 0 {
		return 0, false
	}
	idx := p.Cards[len(p.Cards)-1]
	p.Cards = p.Cards[:len(p.Cards)-1]
	return idx, true
}

// CanCallBlitz reports whether the pile is empty, i.e. blitz may be called.
func (p *BlitzPile) CanCallBlitz() bool { return len(p.Cards) == 0 }

// Len returns the number of cards remaining.
func (p *BlitzPile) Len() int { return len(p.Cards) }

// Arena is the shared public area where all players' arena piles live.
// Pile indices are dense and server-assigned: clients never invent them.
type Arena struct {
	Piles []*ArenaPile
}

// NewArena returns an empty arena.
func NewArena() *Arena { return &Arena{} }

// AddCard places a card into the arena. If the card's number is 1 a new pile
// is created (its index is the returned pile index); otherwise pileIndex
// must name an existing pile of the matching color and height.
func (a *Arena) AddCard(pileIndex int, c Card) (int, error) {
	if c.Number == 1 {
		a.Piles = append(a.Piles, NewArenaPile(c.Color, c.Index))
		return len(a.Piles) - 1, nil
	}
	if pileIndex < 0 || pileIndex >= len(a.Piles) {
		return 0, fmt.Errorf("arena pile index %d out of bounds", pileIndex)
	}
	if err := a.Piles[pileIndex].Accept(c); err != nil {
		return 0, err
	}
	return pileIndex, nil
}

// Clear empties the arena, e.g. at the start of a new round.
func (a *Arena) Clear() { a.Piles = nil }
