package main

import (
	"time"

	"github.com/pitboss/blackjack/cmd/blackjack/shared"
	"github.com/pitboss/blackjack/engine"
	"github.com/pitboss/blackjack/internal/server"
	"github.com/pitboss/blackjack/internal/simulator"
)

// SimulateCmd plays a strategy against the house over many rounds
type SimulateCmd struct {
	Rounds   int     `default:"100000" help:"Number of rounds to simulate"`
	Strategy string  `default:"basic" enum:"basic,dealer,rand" help:"Playing strategy (basic|dealer|rand)"`
	Bet      float64 `default:"10" help:"Flat bet per round"`
	Seed     *int64  `help:"Deterministic RNG seed (optional)"`
	Workers  int     `help:"Worker goroutines (default one per CPU, capped at 8)"`
	Rules    string  `help:"HCL file supplying the table rules"`
	Output   string  `help:"Write a JSON report to this file"`
	Debug    bool    `help:"Enable debug logging"`

	Decks            *int     `help:"Rule override: shoe size in decks"`
	Penetration      *float64 `help:"Rule override: fraction of the shoe dealt before reshuffle"`
	DealerHitsSoft17 *bool    `help:"Rule override: dealer hits soft 17"`
	DoubleAfterSplit *bool    `help:"Rule override: doubling after a split allowed"`
	ResplitAces      *bool    `help:"Rule override: re-splitting aces allowed"`
	LateSurrender    *bool    `help:"Rule override: late surrender allowed"`
	MaxSplits        *int     `help:"Rule override: maximum splits per round"`
}

func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	rules := engine.DefaultRules()
	if c.Rules != "" {
		loaded, err := server.LoadRules(c.Rules)
		if err != nil {
			return err
		}
		rules = loaded
	}
	c.applyRuleOverrides(&rules)

	if err := rules.Validate(); err != nil {
		return err
	}

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
		logger.Info("Using random seed", "seed", seed)
	}

	sim := simulator.New(simulator.Config{
		Rounds:   c.Rounds,
		Strategy: c.Strategy,
		Rules:    rules,
		Bet:      c.Bet,
		Seed:     seed,
		Workers:  c.Workers,
		Logger:   logger,
	})

	logger.Info("Starting simulation",
		"rounds", c.Rounds,
		"strategy", c.Strategy,
		"bet", c.Bet,
		"decks", rules.Decks,
		"penetration", rules.Penetration)

	start := time.Now()
	stats, err := sim.Run()
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	logger.Info("Simulation complete",
		"rounds", stats.Rounds,
		"hands", stats.Hands,
		"elapsed", elapsed.Round(time.Millisecond),
		"rounds_per_sec", int(float64(stats.Rounds)/elapsed.Seconds()))

	simulator.PrintSummary(stats, c.Strategy)

	if c.Output != "" {
		report := simulator.NewReport(stats, c.Strategy, seed, elapsed)
		if err := report.Write(c.Output); err != nil {
			return err
		}
		logger.Info("Report written", "file", c.Output)
	}
	return nil
}

func (c *SimulateCmd) applyRuleOverrides(rules *engine.Rules) {
	if c.Decks != nil {
		rules.Decks = *c.Decks
	}
	if c.Penetration != nil {
		rules.Penetration = *c.Penetration
	}
	if c.DealerHitsSoft17 != nil {
		rules.DealerHitsSoft17 = *c.DealerHitsSoft17
	}
	if c.DoubleAfterSplit != nil {
		rules.DoubleAfterSplit = *c.DoubleAfterSplit
	}
	if c.ResplitAces != nil {
		rules.ResplitAces = *c.ResplitAces
	}
	if c.LateSurrender != nil {
		rules.LateSurrender = *c.LateSurrender
	}
	if c.MaxSplits != nil {
		rules.MaxSplits = *c.MaxSplits
	}
}
