package game

import "fmt"

// PlayerGameState is one player's half of the board. All mutators return a
// copy; slices are never shared between the receiver and the result.
type PlayerGameState struct {
	PlayerID       string
	Deck           []string // ordered remaining cards, index 0 is the top
	Hand           []string
	ActivePokemon  *CardInstance
	Bench          []CardInstance // positions BENCH_0.. contiguous and ordered
	PrizeCards     []string
	DiscardPile    []string
}

func copyStrings(in []string) []string {
	return append([]string(nil), in...)
}

func (p PlayerGameState) clone() PlayerGameState {
	out := p
	out.Deck = copyStrings(p.Deck)
	out.Hand = copyStrings(p.Hand)
	out.PrizeCards = copyStrings(p.PrizeCards)
	out.DiscardPile = copyStrings(p.DiscardPile)
	out.Bench = make([]CardInstance, len(p.Bench))
	for i, b := range p.Bench {
		out.Bench[i] = b.clone()
	}
	if p.ActivePokemon != nil {
		active := p.ActivePokemon.clone()
		out.ActivePokemon = &active
	}
	return out
}

// PokemonInPlay returns how many Pokémon the player has on the board.
func (p PlayerGameState) PokemonInPlay() int {
	n := len(p.Bench)
	if p.ActivePokemon != nil {
		n++
	}
	return n
}

// FindInstance locates an in-play Pokémon by instance id.
func (p PlayerGameState) FindInstance(instanceID string) (CardInstance, bool) {
	if p.ActivePokemon != nil && p.ActivePokemon.InstanceID == instanceID {
		return *p.ActivePokemon, true
	}
	for _, b := range p.Bench {
		if b.InstanceID == instanceID {
			return b, true
		}
	}
	return CardInstance{}, false
}

// InstanceAt locates an in-play Pokémon by position.
func (p PlayerGameState) InstanceAt(pos Position) (CardInstance, bool) {
	if pos == PositionActive {
		if p.ActivePokemon == nil {
			return CardInstance{}, false
		}
		return *p.ActivePokemon, true
	}
	idx, ok := pos.BenchIndex()
	if !ok || idx >= len(p.Bench) {
		return CardInstance{}, false
	}
	return p.Bench[idx], true
}

// HasInHand reports whether the card id is in the player's hand.
func (p PlayerGameState) HasInHand(cardID string) bool {
	for _, id := range p.Hand {
		if id == cardID {
			return true
		}
	}
	return false
}

// WithActive returns a copy with the active Pokémon replaced. The instance's
// position is forced to ACTIVE; nil clears the slot.
func (p PlayerGameState) WithActive(instance *CardInstance) PlayerGameState {
	out := p.clone()
	if instance == nil {
		out.ActivePokemon = nil
		return out
	}
	active := instance.WithPosition(PositionActive)
	out.ActivePokemon = &active
	return out
}

// WithUpdatedInstance returns a copy with the in-play Pokémon matching the
// instance id replaced. Returns an error when the instance is not in play.
func (p PlayerGameState) WithUpdatedInstance(instance CardInstance) (PlayerGameState, error) {
	out := p.clone()
	if out.ActivePokemon != nil && out.ActivePokemon.InstanceID == instance.InstanceID {
		updated := instance.clone()
		out.ActivePokemon = &updated
		return out, nil
	}
	for i, b := range out.Bench {
		if b.InstanceID == instance.InstanceID {
			out.Bench[i] = instance.clone()
			return out, nil
		}
	}
	return PlayerGameState{}, fmt.Errorf("instance %s not in play for player %s", instance.InstanceID, p.PlayerID)
}

// WithBenchAdded returns a copy with the instance appended to the bench at
// the next contiguous position.
func (p PlayerGameState) WithBenchAdded(instance CardInstance) (PlayerGameState, error) {
	if len(p.Bench) >= MaxBenchSize {
		return PlayerGameState{}, fmt.Errorf("bench is full for player %s", p.PlayerID)
	}
	out := p.clone()
	placed := instance.WithPosition(BenchPosition(len(out.Bench)))
	out.Bench = append(out.Bench, placed)
	return out, nil
}

// WithBenchRemoved returns a copy with the bench Pokémon at the given index
// removed and the remaining slots renumbered contiguously from BENCH_0.
func (p PlayerGameState) WithBenchRemoved(index int) (PlayerGameState, error) {
	if index < 0 || index >= len(p.Bench) {
		return PlayerGameState{}, fmt.Errorf("no bench pokemon at index %d", index)
	}
	out := p.clone()
	out.Bench = append(out.Bench[:index], out.Bench[index+1:]...)
	for i := range out.Bench {
		out.Bench[i].Position = BenchPosition(i)
	}
	return out, nil
}

// WithHand returns a copy with the hand replaced.
func (p PlayerGameState) WithHand(hand []string) PlayerGameState {
	out := p.clone()
	out.Hand = copyStrings(hand)
	return out
}

// WithCardRemovedFromHand returns a copy with one occurrence of the card id
// removed from the hand.
func (p PlayerGameState) WithCardRemovedFromHand(cardID string) (PlayerGameState, error) {
	out := p.clone()
	for i, id := range out.Hand {
		if id == cardID {
			out.Hand = append(out.Hand[:i], out.Hand[i+1:]...)
			return out, nil
		}
	}
	return PlayerGameState{}, fmt.Errorf("card %s not in hand", cardID)
}

// WithCardsAddedToHand returns a copy with the card ids appended to the hand.
func (p PlayerGameState) WithCardsAddedToHand(cardIDs []string) PlayerGameState {
	out := p.clone()
	out.Hand = append(out.Hand, cardIDs...)
	return out
}

// WithCardsDiscarded returns a copy with the card ids appended to the
// discard pile.
func (p PlayerGameState) WithCardsDiscarded(cardIDs []string) PlayerGameState {
	out := p.clone()
	out.DiscardPile = append(out.DiscardPile, cardIDs...)
	return out
}

// WithCardsRemovedFromDiscard returns a copy with one occurrence of each card
// id removed from the discard pile.
func (p PlayerGameState) WithCardsRemovedFromDiscard(cardIDs []string) (PlayerGameState, error) {
	out := p.clone()
	for _, cardID := range cardIDs {
		found := false
		for i, id := range out.DiscardPile {
			if id == cardID {
				out.DiscardPile = append(out.DiscardPile[:i], out.DiscardPile[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return PlayerGameState{}, fmt.Errorf("card %s not in discard pile", cardID)
		}
	}
	return out, nil
}

// WithCardsRemovedFromDeck returns a copy with one occurrence of each card id
// removed from the deck, wherever it sits.
func (p PlayerGameState) WithCardsRemovedFromDeck(cardIDs []string) (PlayerGameState, error) {
	out := p.clone()
	for _, cardID := range cardIDs {
		found := false
		for i, id := range out.Deck {
			if id == cardID {
				out.Deck = append(out.Deck[:i], out.Deck[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return PlayerGameState{}, fmt.Errorf("card %s not in deck", cardID)
		}
	}
	return out, nil
}

// WithCardsDrawn returns a copy with count cards moved from the top of the
// deck to the hand, plus the ids drawn. Drawing from an empty deck draws
// fewer cards; the deck-out win condition is checked by the state machine,
// not here.
func (p PlayerGameState) WithCardsDrawn(count int) (PlayerGameState, []string) {
	out := p.clone()
	if count > len(out.Deck) {
		count = len(out.Deck)
	}
	drawn := copyStrings(out.Deck[:count])
	out.Deck = out.Deck[count:]
	out.Hand = append(out.Hand, drawn...)
	return out, drawn
}

// WithDeck returns a copy with the deck replaced (used for shuffles).
func (p PlayerGameState) WithDeck(deck []string) PlayerGameState {
	out := p.clone()
	out.Deck = copyStrings(deck)
	return out
}

// WithPrizesSet returns a copy with count cards moved from the top of the
// deck to the prize pile.
func (p PlayerGameState) WithPrizesSet(count int) (PlayerGameState, error) {
	if count > len(p.Deck) {
		return PlayerGameState{}, fmt.Errorf("deck has %d cards, %d prizes requested", len(p.Deck), count)
	}
	out := p.clone()
	out.PrizeCards = append(out.PrizeCards, out.Deck[:count]...)
	out.Deck = out.Deck[count:]
	return out, nil
}

// WithPrizeTaken returns a copy with one prize card moved to the hand.
func (p PlayerGameState) WithPrizeTaken() (PlayerGameState, error) {
	if len(p.PrizeCards) == 0 {
		return PlayerGameState{}, fmt.Errorf("no prize cards remain for player %s", p.PlayerID)
	}
	out := p.clone()
	prize := out.PrizeCards[0]
	out.PrizeCards = out.PrizeCards[1:]
	out.Hand = append(out.Hand, prize)
	return out, nil
}
