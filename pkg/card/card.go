// Package card defines the immutable value types that make up a Blitz card.
package card

import (
	"encoding/json"
	"fmt"
)

// Color is one of the four suits a Blitz card can carry.
type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
)

// Colors lists every color in dealing order.
var Colors = [4]Color{Red, Blue, Green, Yellow}

func (c Color) String() string { return string(c) }

// Valid reports whether c is one of the four defined colors.
func (c Color) Valid() bool {
	switch c {
	case Red, Blue, Green, Yellow:
		return true
	default:
		return false
	}
}

// Gender is derived from a card's number: even numbers are one gender, odd
// numbers the other. It is never set independently of the number.
type Gender string

const (
	Boy  Gender = "boy"
	Girl Gender = "girl"
)

func (g Gender) String() string { return string(g) }

// GenderForNumber derives the gender for a card number in [1..10].
func GenderForNumber(number int) Gender {
	if number%2 == 0 {
		return Boy
	}
	return Girl
}

// Card is an immutable tuple identifying one card in a session's global
// deck. OwnerPlayer is the seat index (0..n-1) the card's 40-card partition
// was dealt to at StartGame, not necessarily the session's stable
// player_game_id; Index is the card's position in the global deck and is
// the only thing ever placed on the wire — clients never see Card values
// directly, only indices, and resolve them against the deck they received
// at StartGame.
type Card struct {
	Index       int
	OwnerPlayer int
	Number      int
	Color       Color
	Gender      Gender
}

// New builds a Card, deriving Gender from Number.
func New(index, ownerPlayer, number int, color Color) Card {
	return Card{
		Index:       index,
		OwnerPlayer: ownerPlayer,
		Number:      number,
		Color:       color,
		Gender:      GenderForNumber(number),
	}
}

func (c Card) String() string {
	return fmt.Sprintf("%d%s/%s#%d", c.Number, c.Color, c.Gender, c.Index)
}

// wireCard mirrors the field-for-field Card wire shape carried over from
// original_source/src/proto.rs's `Card` message.
type wireCard struct {
	Index       int    `json:"index"`
	OwnerPlayer int    `json:"player_id"`
	Number      int    `json:"number"`
	Color       string `json:"color"`
	Gender      string `json:"gender"`
}

// MarshalJSON encodes a Card the way it is shipped on the wire.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCard{
		Index:       c.Index,
		OwnerPlayer: c.OwnerPlayer,
		Number:      c.Number,
		Color:       string(c.Color),
		Gender:      string(c.Gender),
	})
}

// UnmarshalJSON decodes a Card from its wire shape, re-deriving Gender from
// Number rather than trusting the wire value, since Gender is never
// independent state.
func (c *Card) UnmarshalJSON(data []byte) error {
	var w wireCard
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	color := Color(w.Color)
	if !color.Valid() {
		return fmt.Errorf("card: invalid color %q", w.Color)
	}
	*c = New(w.Index, w.OwnerPlayer, w.Number, color)
	return nil
}
