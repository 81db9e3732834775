// Package engine implements the blackjack rules: shoe construction and
// penetration tracking, hand valuation, action eligibility, dealer policy
// and outcome adjudication.
//
// Everything in this package is a pure function over immutable values.
// Shoes and hands are never mutated in place; operations return new
// values that the caller chains forward. The package keeps no state of
// its own and never logs; every decision is replayable from its inputs
// alone.
//
// # Basic Usage
//
// Build a shoe, deal, evaluate and settle:
//
//	rules := engine.DefaultRules()
//	shoe := engine.NewShoe(rules.Decks, nil)
//
//	card, shoe, ok := shoe.Draw()
//	if !ok {
//	    // shoe exhausted, build a fresh one
//	}
//
//	hand := engine.NewHand(10, card)
//	hv := hand.Value() // {Value, Soft, Busted, Blackjack}
//
//	outcome := engine.Settle(hand, dealerCards)
//	payout := engine.Payout(hand.Bet, outcome)
//
// # Deterministic Shuffling
//
// NewShoe and ShuffleCards accept a *rand.Rand for reproducible deals;
// pass nil to use the global source:
//
//	rng := randutil.New(42)
//	shoe := engine.NewShoe(6, rng)
//
// # Dealer Hole Card
//
// A Card carries a FaceDown flag. Face-down cards are excluded from
// Evaluate and render as "??", so the dealer's hole card stays hidden in
// every snapshot handed to a player. DealerHasBlackjack peeks at a copy;
// the caller reveals the hole card for real when the dealer plays out.
package engine
