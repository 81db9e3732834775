package engine

import "fmt"

// Rules is the immutable rule set consulted by every eligibility and
// policy decision. Callers that do not care pass DefaultRules().
type Rules struct {
	Decks            int     // shoe size in decks
	Penetration      float64 // fraction of the shoe dealt before reshuffle is due
	DealerHitsSoft17 bool    // H17: dealer hits a soft 17 instead of standing
	DoubleAfterSplit bool    // DAS: doubling allowed on hands created by a split
	ResplitAces      bool    // RSA: re-splitting a hand of aces allowed
	LateSurrender    bool    // surrender allowed as the first decision
	MaxSplits        int     // upper bound on splits per round
}

// DefaultRules returns the standard six-deck table configuration
func DefaultRules() Rules {
	return Rules{
		Decks:            6,
		Penetration:      0.75,
		DealerHitsSoft17: false,
		DoubleAfterSplit: true,
		ResplitAces:      false,
		LateSurrender:    true,
		MaxSplits:        3,
	}
}

// ShoeSize returns the total card count of a fresh shoe
func (r Rules) ShoeSize() int {
	return r.Decks * 52
}

// Validate checks the rule set for values the engine cannot play with
func (r Rules) Validate() error {
	if r.Decks < 1 {
		return fmt.Errorf("decks must be at least 1, got %d", r.Decks)
	}
	if r.Penetration <= 0 || r.Penetration > 1 {
		return fmt.Errorf("penetration must be in (0, 1], got %v", r.Penetration)
	}
	if r.MaxSplits < 0 {
		return fmt.Errorf("max splits must be non-negative, got %d", r.MaxSplits)
	}
	return nil
}

// CanSplit reports whether a hand may be split. splitsDone counts splits
// already performed this round; aces marks a hand of split aces, whose
// re-split is gated by RSA. The very first split of aces is always
// allowed. Mixed ten-value pairs (e.g. K+Q) are splittable.
//
// Like all eligibility predicates this is total: malformed input yields
// false, never an error.
func (r Rules) CanSplit(cards []Card, splitsDone int, aces bool) bool {
	if splitsDone >= r.MaxSplits {
		return false
	}
	if aces && !r.ResplitAces && splitsDone > 0 {
		return false
	}
	if len(cards) != 2 {
		return false
	}
	return cards[0].Rank == cards[1].Rank ||
		(cards[0].IsTenValue() && cards[1].IsTenValue())
}

// CanDouble reports whether a hand may be doubled down. Doubling is only
// possible on the initial two cards; on a split hand it requires DAS.
func (r Rules) CanDouble(cards []Card, afterSplit bool) bool {
	if len(cards) != 2 {
		return false
	}
	return !afterSplit || r.DoubleAfterSplit
}

// CanSurrender reports whether a hand may be surrendered. Surrender is a
// first-decision-only option on a two-card hand. The predicate does not
// consider split provenance; whether a split hand may surrender is table
// policy, not an engine rule.
func (r Rules) CanSurrender(cards []Card, firstAction bool) bool {
	return r.LateSurrender && firstAction && len(cards) == 2
}
