package engine

// Outcome is the terminal result of a settled hand
type Outcome int

const (
	Undecided Outcome = iota
	Win
	Lose
	Push
	Blackjack
	Surrender
)

func (o Outcome) String() string {
	return [...]string{"undecided", "win", "lose", "push", "blackjack", "surrender"}[o]
}

// DetermineOutcome adjudicates a finished hand against the dealer. The
// cases apply in this exact precedence order, first match wins:
//
//  1. player busted            -> lose
//  2. dealer busted            -> win
//  3. both have blackjack      -> push
//  4. player blackjack only    -> blackjack
//  5. dealer blackjack only    -> lose
//  6. higher value wins, equal values push
//
// playerBlackjack must already be qualified as a natural (not from a
// split); the function has no notion of provenance. Settle does that
// qualification for you.
func DetermineOutcome(playerValue int, playerBlackjack, playerBusted bool, dealerValue int, dealerBlackjack, dealerBusted bool) Outcome {
	switch {
	case playerBusted:
		return Lose
	case dealerBusted:
		return Win
	case playerBlackjack && dealerBlackjack:
		return Push
	case playerBlackjack:
		return Blackjack
	case dealerBlackjack:
		return Lose
	case playerValue > dealerValue:
		return Win
	case playerValue < dealerValue:
		return Lose
	default:
		return Push
	}
}

// Settle adjudicates a player hand against the dealer's cards. It is the
// provenance-aware entry point: split hands never qualify for the
// blackjack outcome. Dealer cards are evaluated with any face-down card
// revealed, since settlement implies showdown. A hand that already
// carries a terminal result (surrender) keeps it.
func Settle(player Hand, dealerCards []Card) Outcome {
	if player.Result != Undecided {
		return player.Result
	}

	revealed := make([]Card, len(dealerCards))
	for i, c := range dealerCards {
		revealed[i] = c.Revealed()
	}

	pv := Evaluate(player.Cards)
	dv := Evaluate(revealed)
	playerBlackjack := pv.Blackjack && !player.FromSplit
	dealerBlackjack := dv.Blackjack && len(dealerCards) == 2

	return DetermineOutcome(pv.Value, playerBlackjack, pv.Busted, dv.Value, dealerBlackjack, dv.Busted)
}

// Payout returns the total returned to the player for a settled hand:
// stake plus winnings. Blackjack pays 3:2 and a win pays 1:1; a push
// returns the stake and surrender returns half. No rounding is applied.
func Payout(bet float64, o Outcome) float64 {
	switch o {
	case Blackjack:
		return bet * 2.5
	case Win:
		return bet * 2
	case Push:
		return bet
	case Surrender:
		return bet * 0.5
	default:
		return 0
	}
}
