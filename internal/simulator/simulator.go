package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/pitboss/blackjack/engine"
	"github.com/pitboss/blackjack/internal/bot"
	"github.com/pitboss/blackjack/internal/randutil"
	"github.com/pitboss/blackjack/internal/statistics"
	"github.com/pitboss/blackjack/internal/table"
)

// Config holds configuration for running simulations
type Config struct {
	Rounds   int
	Strategy string
	Rules    engine.Rules
	Bet      float64
	Seed     int64
	Workers  int // Zero picks a worker per CPU, capped at eight
	Logger   *log.Logger
}

// Simulator plays blackjack rounds in bulk and aggregates the results
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	return &Simulator{config: config}
}

// Run executes the simulation across a pool of workers and returns the
// merged statistics
func (s *Simulator) Run() (*statistics.Statistics, error) {
	if s.config.Rounds <= 0 {
		return nil, fmt.Errorf("simulator: rounds must be positive, got %d", s.config.Rounds)
	}
	if s.config.Bet <= 0 {
		return nil, fmt.Errorf("simulator: bet must be positive, got %v", s.config.Bet)
	}
	if err := s.config.Rules.Validate(); err != nil {
		return nil, err
	}
	if _, err := createAgent(s.config.Strategy, randutil.New(s.config.Seed), s.config.Logger); err != nil {
		return nil, err
	}

	workers := s.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 8 {
			workers = 8 // Diminishing returns past this
		}
	}
	if workers > s.config.Rounds {
		workers = s.config.Rounds
	}

	roundsPerWorker := s.config.Rounds / workers
	remainder := s.config.Rounds % workers

	// Independent RNG per worker to avoid contention, all derived from
	// the configured seed so runs stay reproducible
	seeds := randutil.New(s.config.Seed)

	g, ctx := errgroup.WithContext(context.Background())
	results := make(chan *statistics.Statistics, workers)

	for w := 0; w < workers; w++ {
		workerRounds := roundsPerWorker
		if w < remainder {
			workerRounds++ // Distribute remainder rounds
		}
		workerSeed := seeds.Int64()

		g.Go(func() error {
			stats, err := s.runWorker(workerSeed, workerRounds)
			if err != nil {
				return err
			}
			select {
			case results <- stats:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	go func() {
		defer close(results)
		g.Wait()
	}()

	merged := &statistics.Statistics{}
	for stats := range results {
		merged.Merge(stats)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	return merged, nil
}

// runWorker plays its share of rounds on a private shoe, reshuffling at
// the penetration point just as a live table would
func (s *Simulator) runWorker(seed int64, rounds int) (*statistics.Statistics, error) {
	stats := &statistics.Statistics{}
	rng := randutil.New(seed)

	agent, err := createAgent(s.config.Strategy, rng, s.config.Logger)
	if err != nil {
		return nil, err
	}

	shoe := engine.NewShoe(s.config.Rules.Decks, rng)

	for played := 0; played < rounds; {
		if shoe.NeedsReshuffle(s.config.Rules) {
			shoe = engine.NewShoe(s.config.Rules.Decks, rng)
		}

		round, err := table.NewRound(s.config.Rules, shoe, s.config.Bet)
		if err != nil {
			if errors.Is(err, table.ErrShoeExhausted) {
				shoe = engine.NewShoe(s.config.Rules.Decks, rng)
				continue
			}
			return nil, err
		}

		voided := false
		for round.State() != table.Settled {
			action := agent.MakeDecision(round.View(), round.Actions())
			if err := round.Apply(action); err != nil {
				// A shoe that runs dry mid-round voids the round
				if errors.Is(err, table.ErrShoeExhausted) {
					voided = true
					break
				}
				return nil, fmt.Errorf("strategy %q chose %s: %w", s.config.Strategy, action, err)
			}
		}
		if voided {
			shoe = engine.NewShoe(s.config.Rules.Decks, rng)
			continue
		}

		shoe = round.Shoe()
		stats.Add(roundResult(round, seed))
		played++
	}

	return stats, nil
}

// roundResult flattens a settled round into a statistics entry
func roundResult(round *table.Round, seed int64) statistics.RoundResult {
	hands := round.Hands()
	outcomes := make([]engine.Outcome, len(hands))

	var net, bet float64
	doubled := false
	for i, h := range hands {
		outcomes[i] = h.Result
		net += engine.Payout(h.Bet, h.Result) - h.Bet
		bet += h.Bet
		if h.Doubled {
			doubled = true
		}
	}

	return statistics.RoundResult{
		Net:      net,
		Bet:      bet,
		Seed:     seed,
		Outcomes: outcomes,
		Splits:   round.Splits(),
		Doubled:  doubled,
	}
}

// createAgent creates a playing strategy of the specified type
func createAgent(strategy string, rng *rand.Rand, logger *log.Logger) (table.Agent, error) {
	switch strategy {
	case "basic":
		return bot.NewBasicBot(logger), nil
	case "dealer":
		return bot.NewDealerBot(), nil
	case "rand":
		return bot.NewRandBot(rng, logger), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
}

// PrintSummary prints a comprehensive summary of simulation results
func PrintSummary(stats *statistics.Statistics, strategy string) {
	mean := stats.Mean()
	median := stats.Median()
	stdDev := stats.StdDev()
	stdErr := stats.StdError()
	low, high := stats.ConfidenceInterval95()

	fmt.Printf("\n=== FINAL RESULTS: %s strategy ===\n", strategy)
	fmt.Printf("Rounds played: %d\n", stats.Rounds)
	fmt.Printf("Hands settled: %d (%d splits, %d rounds with a double)\n",
		stats.Hands, stats.Splits, stats.Doubles)
	fmt.Printf("Total wagered: %.2f units\n", stats.TotalBet)

	fmt.Printf("\n=== STATISTICAL RESULTS ===\n")
	fmt.Printf("Mean: %+.4f units/round\n", mean)
	fmt.Printf("Median: %+.4f units/round\n", median)
	fmt.Printf("Std Dev: %.4f units\n", stdDev)
	fmt.Printf("Std Error: %.4f units\n", stdErr)
	fmt.Printf("95%% CI: [%+.4f, %+.4f] units/round\n", low, high)
	fmt.Printf("House edge: %+.4f%% of total wagered\n", stats.HouseEdge()*100)

	fmt.Printf("\n=== OUTCOME BREAKDOWN ===\n")
	for o := engine.Win; o <= engine.Surrender; o++ {
		n := stats.OutcomeCounts[o]
		if n == 0 {
			continue
		}
		fmt.Printf("%-10s %8d hands (%.2f%%)\n", o.String(), n, stats.OutcomeShare(o)*100)
	}

	fmt.Printf("\n=== ROUND EXTREMES ===\n")
	fmt.Printf("Best round: %+.2f units\n", stats.BestRound)
	fmt.Printf("Worst round: %+.2f units\n", stats.WorstRound)
	fmt.Printf("Split rounds: %+.2f units, flat rounds: %+.2f units\n",
		stats.SplitNet, stats.FlatNet)
}
