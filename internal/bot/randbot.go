package bot

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/pitboss/blackjack/internal/table"
)

// RandBot is a simple bot that makes uniform random legal actions
type RandBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: logger}
}

func (r *RandBot) MakeDecision(view table.View, valid []table.Action) table.Action {
	if len(valid) == 0 {
		return table.Stand
	}
	return valid[r.rng.IntN(len(valid))]
}
