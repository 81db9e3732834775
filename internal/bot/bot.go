package bot

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/pitboss/blackjack/engine"
	"github.com/pitboss/blackjack/internal/table"
)

// BasicBot plays total-dependent basic strategy for a multi-deck shoe
// where the dealer stands on soft 17 and doubling after splits is
// allowed. Pairs, soft totals and hard totals each follow their own
// chart, with late surrender taken before playing out the stiff totals
// the charts give up on.
type BasicBot struct {
	logger *log.Logger
}

// NewBasicBot creates a new BasicBot instance
func NewBasicBot(logger *log.Logger) *BasicBot {
	return &BasicBot{logger: logger.WithPrefix("bot")}
}

// MakeDecision consults the strategy charts for the hand in view and
// returns the best action the table currently allows.
func (b *BasicBot) MakeDecision(view table.View, valid []table.Action) table.Action {
	action := b.decide(view, valid)

	b.logger.Debug("basic strategy decision",
		"hand", view.Value.Value,
		"soft", view.Value.Soft,
		"dealer", view.DealerUp.String(),
		"action", action.String())

	return action
}

func (b *BasicBot) decide(view table.View, valid []table.Action) table.Action {
	canHit := slices.Contains(valid, table.Hit)
	canDouble := slices.Contains(valid, table.Double)
	canSplit := slices.Contains(valid, table.Split)
	canSurrender := slices.Contains(valid, table.Surrender)

	// Split aces receive one card each and may only be split again.
	if !canHit {
		if canSplit {
			return table.Split
		}
		return table.Stand
	}

	up := view.DealerUp.Value()

	if canSplit && splitPair(view.Cards[0], up) {
		return table.Split
	}

	if canSurrender && !view.Value.Soft {
		if view.Value.Value == 16 && up >= 9 {
			return table.Surrender
		}
		if view.Value.Value == 15 && up == 10 {
			return table.Surrender
		}
	}

	if view.Value.Soft {
		return softTotal(view.Value.Value, up, canDouble)
	}
	return hardTotal(view.Value.Value, up, canDouble)
}

// splitPair reports whether basic strategy splits the pair whose cards
// match c against a dealer up card worth up.
func splitPair(c engine.Card, up int) bool {
	if c.IsTenValue() {
		return false
	}
	switch c.Rank {
	case engine.Ace, engine.Eight:
		return true
	case engine.Nine:
		return up != 7 && up <= 9
	case engine.Seven, engine.Three, engine.Two:
		return up <= 7
	case engine.Six:
		return up <= 6
	case engine.Four:
		return up == 5 || up == 6
	}
	return false
}

// softTotal plays a hand whose ace still counts as eleven.
func softTotal(total, up int, canDouble bool) table.Action {
	switch {
	case total >= 19:
		return table.Stand
	case total == 18:
		if up >= 3 && up <= 6 && canDouble {
			return table.Double
		}
		if up <= 8 {
			return table.Stand
		}
		return table.Hit
	case total == 17:
		if up >= 3 && up <= 6 && canDouble {
			return table.Double
		}
		return table.Hit
	case total >= 15:
		if up >= 4 && up <= 6 && canDouble {
			return table.Double
		}
		return table.Hit
	default:
		if (up == 5 || up == 6) && canDouble {
			return table.Double
		}
		return table.Hit
	}
}

// hardTotal plays a hand with no ace counted as eleven.
func hardTotal(total, up int, canDouble bool) table.Action {
	switch {
	case total >= 17:
		return table.Stand
	case total >= 13:
		if up <= 6 {
			return table.Stand
		}
		return table.Hit
	case total == 12:
		if up >= 4 && up <= 6 {
			return table.Stand
		}
		return table.Hit
	case total == 11:
		if canDouble && up != 11 {
			return table.Double
		}
		return table.Hit
	case total == 10:
		if canDouble && up <= 9 {
			return table.Double
		}
		return table.Hit
	case total == 9:
		if canDouble && up >= 3 && up <= 6 {
			return table.Double
		}
		return table.Hit
	default:
		return table.Hit
	}
}
