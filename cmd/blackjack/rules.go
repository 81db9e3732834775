package main

import (
	"fmt"

	"github.com/pitboss/blackjack/internal/server"
)

// RulesCmd prints the rule set a config file resolves to, defaults and
// all, so table operators can check a file before serving with it
type RulesCmd struct {
	Config string `default:"blackjack.hcl" help:"Path to the HCL config file"`
}

func (c *RulesCmd) Run() error {
	config, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	rules := config.GetRules()

	fmt.Printf("Decks:              %d\n", rules.Decks)
	fmt.Printf("Penetration:        %.0f%%\n", rules.Penetration*100)
	fmt.Printf("Dealer soft 17:     %s\n", soft17(rules.DealerHitsSoft17))
	fmt.Printf("Double after split: %s\n", allowed(rules.DoubleAfterSplit))
	fmt.Printf("Resplit aces:       %s\n", allowed(rules.ResplitAces))
	fmt.Printf("Late surrender:     %s\n", allowed(rules.LateSurrender))
	fmt.Printf("Max splits:         %d\n", rules.MaxSplits)
	fmt.Printf("Blackjack pays:     3:2\n")
	fmt.Printf("Bets:               %v to %v\n", config.GetMinBet(), config.GetMaxBet())
	fmt.Printf("Starting balance:   %v\n", config.GetStartingBalance())
	fmt.Printf("Decision timeout:   %s\n", config.GetActionTimeout())

	return nil
}

func allowed(b bool) string {
	if b {
		return "allowed"
	}
	return "not allowed"
}

func soft17(hits bool) string {
	if hits {
		return "hits"
	}
	return "stands"
}
