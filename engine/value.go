package engine

// HandValue is the result of evaluating a sequence of cards
type HandValue struct {
	Value     int  // best total after soft/hard reduction
	Soft      bool // an ace is still counted as 11
	Busted    bool // total exceeds 21 with every ace reduced
	Blackjack bool // exactly two visible cards totalling 21
}

// Evaluate computes the blackjack value of a card sequence. Face-down
// cards are excluded entirely, which models the dealer's hidden hole
// card. Aces start at 11 and are reduced to 1 one at a time while the
// total exceeds 21. An empty or all-face-down hand evaluates to zero,
// not busted, not blackjack.
//
// Blackjack here means any two-card 21; whether a split hand qualifies
// for the bonus is the caller's concern (see Hand.Natural and Settle).
func Evaluate(cards []Card) HandValue {
	total := 0
	aces := 0
	visible := 0

	for _, c := range cards {
		if c.FaceDown {
			continue
		}
		visible++
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}

	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}

	return HandValue{
		Value:     total,
		Soft:      aces > 0 && total <= 21,
		Busted:    total > 21,
		Blackjack: visible == 2 && total == 21,
	}
}
