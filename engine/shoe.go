package engine

import rand "math/rand/v2"

// Shoe is the ordered sequence of undealt cards. The last element is the
// top of the shoe. A Shoe is never mutated in place: Draw returns the
// remainder and callers chain it forward.
type Shoe []Card

// NewShoe builds a shuffled shoe of numDecks standard 52-card decks.
// If rng is nil the global random source is used.
func NewShoe(numDecks int, rng *rand.Rand) Shoe {
	if numDecks < 1 {
		return Shoe{}
	}

	cards := make([]Card, 0, numDecks*52)
	for d := 0; d < numDecks; d++ {
		for suit := Spades; suit <= Clubs; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				cards = append(cards, NewCard(rank, suit))
			}
		}
	}

	return Shoe(ShuffleCards(cards, rng))
}

// ShuffleCards returns a uniformly random permutation of cards without
// mutating the input. If rng is nil the global random source is used.
func ShuffleCards(cards []Card, rng *rand.Rand) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)

	for i := len(shuffled) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

// Draw removes the top card from the shoe. It returns the card, the
// remaining shoe and true, or false when the shoe is empty. The receiver
// is left untouched; discarding the returned remainder is a caller bug.
func (s Shoe) Draw() (Card, Shoe, bool) {
	if len(s) == 0 {
		return Card{}, s, false
	}
	return s[len(s)-1], s[:len(s)-1], true
}

// Remaining returns the number of undealt cards
func (s Shoe) Remaining() int {
	return len(s)
}

// NeedsReshuffle reports whether penetration has been reached for the
// given rules. The engine never reshuffles on its own; the caller acts
// on this by building a fresh shoe.
func (s Shoe) NeedsReshuffle(rules Rules) bool {
	total := rules.ShoeSize()
	used := total - len(s)
	return float64(used) >= float64(total)*rules.Penetration
}
