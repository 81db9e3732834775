package bot

import (
	"slices"

	"github.com/pitboss/blackjack/internal/table"
)

// DealerBot mirrors the house drawing rule, hitting every total below
// seventeen and standing on the rest. Useful as a baseline strategy.
type DealerBot struct{}

// NewDealerBot creates a new DealerBot instance
func NewDealerBot() *DealerBot {
	return &DealerBot{}
}

func (d *DealerBot) MakeDecision(view table.View, valid []table.Action) table.Action {
	if view.Value.Value < 17 && slices.Contains(valid, table.Hit) {
		return table.Hit
	}
	return table.Stand
}
