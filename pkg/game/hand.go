package game

import "fmt"

// PlayerHand holds the two ordered sequences that make up a player's
// drawable cards: the face-down in_hand remainder and the face-up
// available pile whose top is playable.
type PlayerHand struct {
	InHand    []int // bottom to top; InHand[0] is drawn first
	Available []int // bottom to top; Available[len-1] is the playable top
}

// NewPlayerHand seeds a hand with its dealt in_hand cards.
func NewPlayerHand(inHand []int) *PlayerHand {
	h := make([]int, len(inHand))
	copy(h, inHand)
	return &PlayerHand{InHand: h}
}

// TransferToAvailable moves the next drawRate cards from InHand onto the
// top of Available, preserving order. If fewer than drawRate remain, all
// remaining cards move and InHand becomes empty.
func (h *PlayerHand) TransferToAvailable(drawRate int) []int {
	n := drawRate
	if n > len(h.InHand) {
		n = len(h.InHand)
	}
	moved := h.InHand[:n]
	h.InHand = h.InHand[n:]
	h.Available = append(h.Available, moved...)
	return moved
}

// PlayFromAvailable pops and returns the top of Available.
func (h *PlayerHand) PlayFromAvailable() (int, error) {
	if len(h.Available) == 0 {
		return 0, fmt.Errorf("no available cards to play")
	}
	idx := h.Available[len(h.Available)-1]
	h.Available = h.Available[:len(h.Available)-1]
	return idx, nil
}

// ResetHand reassembles in_hand = available ++ in_hand, preserving the
// relative order of available at the bottom, then clears available. This
// lets a player cycle back through cards already drawn.
func (h *PlayerHand) ResetHand() {
	h.InHand = append(append([]int(nil), h.Available...), h.InHand...)
	h.Available = nil
}

// CountInHand returns the number of undrawn cards.
func (h *PlayerHand) CountInHand() int { return len(h.InHand) }

// CountAvailable returns the number of face-up playable cards.
func (h *PlayerHand) CountAvailable() int { return len(h.Available) }
