package engine

import (
	"fmt"
	"strings"
)

// Hand is one participant's cards plus the bookkeeping the rules consult.
// Hands are values: the mutating operations return a new Hand and leave
// the receiver untouched.
type Hand struct {
	Cards     []Card
	Bet       float64
	Doubled   bool
	FromSplit bool
	SplitAces bool    // created by splitting aces; draws one card, then stands
	Result    Outcome // Undecided until the round settles
}

// NewHand creates a hand with the given bet and initial cards
func NewHand(bet float64, cards ...Card) Hand {
	h := Hand{Bet: bet}
	if len(cards) > 0 {
		h.Cards = make([]Card, len(cards))
		copy(h.Cards, cards)
	}
	return h
}

// WithCard returns a copy of the hand with one more card
func (h Hand) WithCard(c Card) Hand {
	cards := make([]Card, len(h.Cards)+1)
	copy(cards, h.Cards)
	cards[len(h.Cards)] = c
	h.Cards = cards
	return h
}

// Value evaluates the hand's visible cards
func (h Hand) Value() HandValue {
	return Evaluate(h.Cards)
}

// Natural reports whether the hand is a true blackjack: a two-card 21
// that was not assembled through a split. Only naturals earn the
// blackjack payout.
func (h Hand) Natural() bool {
	return Evaluate(h.Cards).Blackjack && !h.FromSplit
}

// Settled reports whether a terminal result has been assigned
func (h Hand) Settled() bool {
	return h.Result != Undecided
}

// String renders the hand for logs, e.g. "A♠ K♦ (21)"
func (h Hand) String() string {
	parts := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s (%d)", strings.Join(parts, " "), Evaluate(h.Cards).Value)
}
