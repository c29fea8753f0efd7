package game

import "fmt"

// MakePlay applies one play variant against the owning player's piles and
// the shared arena, returning the StateDelta a client uses to redraw. All
// failures are RuleViolations: state is left completely unchanged and the
// caller must not fan out any delta.
func (gs *GameState) MakePlay(play Play) (PlayResult, error) {
	p, err := gs.player(play.Player)
	if err != nil {
		return PlayResult{}, err
	}

	switch play.Kind {
	case PlayArenaFromAvailable:
		return gs.arenaFromAvailable(p, play.ArenaIdx)
	case PlayArenaFromBlitz:
		return gs.arenaFromBlitz(p, play.ArenaIdx)
	case PlayArenaFromPost:
		return gs.arenaFromPost(p, play.PostIdx, play.ArenaIdx)
	case PlayBlitzToPost:
		return gs.blitzToPost(p, play.PostIdx)
	case PlayAvailableToPost:
		return gs.availableToPost(p, play.PostIdx)
	case PlayTransferToAvailable:
		return gs.transferToAvailable(p)
	case PlayResetHand:
		return gs.resetHand(p)
	case PlayCallBlitz:
		return gs.callBlitz(p)
	default:
		return PlayResult{}, fmt.Errorf("game: unknown play kind %d", play.Kind)
	}
}

func (gs *GameState) arenaFromAvailable(p *Player, arenaIdx int) (PlayResult, error) {
	cardIdx, err := p.Hand.PlayFromAvailable()
	if err != nil {
		return PlayResult{}, err
	}
	c, err := gs.Deck.Card(cardIdx)
	if err != nil {
		return PlayResult{}, err
	}
	pileIdx, err := gs.Arena.AddCard(arenaIdx, c)
	if err != nil {
		// undo the pop: state must be unchanged on failure.
		p.Hand.Available = append(p.Hand.Available, cardIdx)
		return PlayResult{}, err
	}
	return PlayResult{Delta: StateDelta{
		Arena: []ArenaStateChange{{Action: Add, CardIndex: cardIdx, PileIndex: pileIdx}},
		Player: []PlayerStateChange{
			{Player: p.ID, Kind: ChangeAvailableHand, Action: Remove, CardIndex: cardIdx},
		},
	}}, nil
}

func (gs *GameState) arenaFromBlitz(p *Player, arenaIdx int) (PlayResult, error) {
	cardIdx, ok := p.Blitz.Pop()
	if !ok {
		return PlayResult{}, fmt.Errorf("blitz pile is empty")
	}
	c, err := gs.Deck.Card(cardIdx)
	if err != nil {
		return PlayResult{}, err
	}
	pileIdx, err := gs.Arena.AddCard(arenaIdx, c)
	if err != nil {
		// undo the pop: state must be unchanged on failure.
		p.Blitz.Cards = append(p.Blitz.Cards, cardIdx)
		return PlayResult{}, err
	}
	return PlayResult{Delta: StateDelta{
		Arena: []ArenaStateChange{{Action: Add, CardIndex: cardIdx, PileIndex: pileIdx}},
		Player: []PlayerStateChange{
			{Player: p.ID, Kind: ChangeBlitzPile, Action: Remove, CardIndex: cardIdx},
		},
	}}, nil
}

func (gs *GameState) arenaFromPost(p *Player, postIdx, arenaIdx int) (PlayResult, error) {
	if postIdx < 0 || postIdx >= len(p.PostPiles) {
		return PlayResult{}, fmt.Errorf("post pile index %d out of bounds", postIdx)
	}
	pile := p.PostPiles[postIdx]
	cardIdx, ok := pile.Top()
	if !ok {
		return PlayResult{}, fmt.Errorf("post pile %d is empty", postIdx)
	}
	c, err := gs.Deck.Card(cardIdx)
	if err != nil {
		return PlayResult{}, err
	}
	pileIdx, err := gs.Arena.AddCard(arenaIdx, c)
	if err != nil {
		return PlayResult{}, err
	}
	pile.Pop()
	if pile.Empty() {
		p.PostPiles = append(p.PostPiles[:postIdx], p.PostPiles[postIdx+1:]...)
	}
	return PlayResult{Delta: StateDelta{
		Arena: []ArenaStateChange{{Action: Add, CardIndex: cardIdx, PileIndex: pileIdx}},
		Player: []PlayerStateChange{
			{Player: p.ID, Kind: ChangePostPile, Action: Remove, CardIndex: cardIdx},
		},
	}}, nil
}

func (gs *GameState) blitzToPost(p *Player, postIdx int) (PlayResult, error) {
	if postIdx < 0 || postIdx >= len(p.PostPiles) {
		return PlayResult{}, fmt.Errorf("post pile index %d out of bounds", postIdx)
	}
	pile := p.PostPiles[postIdx]
	topIdx, ok := pile.Top()
	if !ok {
		return PlayResult{}, fmt.Errorf("post pile %d is empty", postIdx)
	}
	prevCard, err := gs.Deck.Card(topIdx)
	if err != nil {
		return PlayResult{}, err
	}
	cardIdx, ok := p.Blitz.Pop()
	if !ok {
		return PlayResult{}, fmt.Errorf("blitz pile is empty")
	}
	c, err := gs.Deck.Card(cardIdx)
	if err != nil {
		p.Blitz.Cards = append(p.Blitz.Cards, cardIdx)
		return PlayResult{}, err
	}
	if err := pile.Push(prevCard, c); err != nil {
		p.Blitz.Cards = append(p.Blitz.Cards, cardIdx)
		return PlayResult{}, err
	}
	return PlayResult{Delta: StateDelta{
		Player: []PlayerStateChange{
			{Player: p.ID, Kind: ChangeBlitzPile, Action: Remove, CardIndex: cardIdx},
			{Player: p.ID, Kind: ChangePostPile, Action: Add, CardIndex: cardIdx},
		},
	}}, nil
}

func (gs *GameState) availableToPost(p *Player, postIdx int) (PlayResult, error) {
	if postIdx < 0 || postIdx >= len(p.PostPiles) {
		return PlayResult{}, fmt.Errorf("post pile index %d out of bounds", postIdx)
	}
	pile := p.PostPiles[postIdx]
	topIdx, ok := pile.Top()
	if !ok {
		return PlayResult{}, fmt.Errorf("post pile %d is empty", postIdx)
	}
	prevCard, err := gs.Deck.Card(topIdx)
	if err != nil {
		return PlayResult{}, err
	}
	cardIdx, err := p.Hand.PlayFromAvailable()
	if err != nil {
		return PlayResult{}, err
	}
	c, err := gs.Deck.Card(cardIdx)
	if err != nil {
		p.Hand.Available = append(p.Hand.Available, cardIdx)
		return PlayResult{}, err
	}
	if err := pile.Push(prevCard, c); err != nil {
		p.Hand.Available = append(p.Hand.Available, cardIdx)
		return PlayResult{}, err
	}
	return PlayResult{Delta: StateDelta{
		Player: []PlayerStateChange{
			{Player: p.ID, Kind: ChangeAvailableHand, Action: Remove, CardIndex: cardIdx},
			{Player: p.ID, Kind: ChangePostPile, Action: Add, CardIndex: cardIdx},
		},
	}}, nil
}

func (gs *GameState) transferToAvailable(p *Player) (PlayResult, error) {
	moved := p.Hand.TransferToAvailable(gs.DrawRate)
	return PlayResult{Delta: StateDelta{
		Player: []PlayerStateChange{
			{Player: p.ID, Kind: ChangeTransferHandToAvailable, Action: Add, CardIndex: len(moved)},
		},
	}}, nil
}

func (gs *GameState) resetHand(p *Player) (PlayResult, error) {
	p.Hand.ResetHand()
	return PlayResult{Delta: StateDelta{
		Player: []PlayerStateChange{
			{Player: p.ID, Kind: ChangeResetPlayerHand, Action: Remove},
		},
	}}, nil
}

// callBlitz implements spec §4.2 item 8: a valid call (empty blitz pile)
// scores the round and starts a new one, unless a running total has reached
// ScoreToWin, in which case the game ends instead; a false call penalizes
// every other player who could validly have called blitz, scores the round,
// and ends the game (matching original_source/src/lib.rs's make_play
// CallBlitz arm: penalize first, then score_round, no new_round on the
// penalty path).
func (gs *GameState) callBlitz(p *Player) (PlayResult, error) {
	if p.CanCallBlitz() {
		gs.ScoreRound()
		if gs.IsGameOver {
			return PlayResult{
				Delta:  StateDelta{Player: []PlayerStateChange{{Player: p.ID, Kind: ChangePlayerCallBlitz, Action: Remove}}},
				Action: ServerActionGameOver,
			}, nil
		}
		if err := gs.NewRound(); err != nil {
			return PlayResult{}, err
		}
		return PlayResult{
			Delta:  StateDelta{Player: []PlayerStateChange{{Player: p.ID, Kind: ChangePlayerCallBlitz, Action: Remove}}},
			Action: ServerActionNewRound,
		}, nil
	}

	penalties := make(map[int]int32)
	for _, other := range gs.Players {
		if other.ID == p.ID {
			continue
		}
		if other.CanCallBlitz() {
			penalties[other.ID] = -int32(gs.BlitzDeduction)
		}
	}
	gs.scoreRound(penalties)
	gs.IsGameOver = true
	return PlayResult{
		Delta:  StateDelta{Player: []PlayerStateChange{{Player: p.ID, Kind: ChangePlayerCallBlitz, Action: Remove}}},
		Action: ServerActionGameOver,
	}, nil
}
