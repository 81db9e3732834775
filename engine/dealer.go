package engine

// DealerShouldHit is the dealer's per-step decision: hit below 17, and
// hit a soft 17 under H17 rules. The caller loops draw-and-reevaluate
// until this returns false or the shoe runs out; make sure the hole
// card is revealed first, since face-down cards do not count.
func (r Rules) DealerShouldHit(cards []Card) bool {
	hv := Evaluate(cards)
	if hv.Value < 17 {
		return true
	}
	return hv.Value == 17 && hv.Soft && r.DealerHitsSoft17
}

// DealerHasBlackjack peeks at a two-card dealer hand for a natural. The
// hole card is revealed on a copy for this check only; the input cards
// keep their visibility.
func DealerHasBlackjack(cards []Card) bool {
	if len(cards) != 2 {
		return false
	}
	revealed := []Card{cards[0].Revealed(), cards[1].Revealed()}
	return Evaluate(revealed).Blackjack
}
