package simulator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pitboss/blackjack/engine"
	"github.com/pitboss/blackjack/internal/fileutil"
	"github.com/pitboss/blackjack/internal/statistics"
)

// Report is the JSON document a simulation run writes for later
// analysis. Per-round figures are in units of the flat bet.
type Report struct {
	Strategy        string         `json:"strategy"`
	Seed            int64          `json:"seed"`
	Rounds          int            `json:"rounds"`
	Hands           int            `json:"hands"`
	Splits          int            `json:"splits"`
	Doubles         int            `json:"doubles"`
	TotalBet        float64        `json:"total_bet"`
	Mean            float64        `json:"mean"`
	Median          float64        `json:"median"`
	StdDev          float64        `json:"std_dev"`
	StdError        float64        `json:"std_error"`
	CI95Low         float64        `json:"ci95_low"`
	CI95High        float64        `json:"ci95_high"`
	HouseEdge       float64        `json:"house_edge"`
	BestRound       float64        `json:"best_round"`
	WorstRound      float64        `json:"worst_round"`
	Outcomes        map[string]int `json:"outcomes"`
	DurationSeconds float64        `json:"duration_seconds"`
	RoundsPerSecond float64        `json:"rounds_per_second"`
}

// NewReport summarises a finished simulation run
func NewReport(stats *statistics.Statistics, strategy string, seed int64, elapsed time.Duration) Report {
	low, high := stats.ConfidenceInterval95()

	outcomes := make(map[string]int)
	for o := engine.Win; o <= engine.Surrender; o++ {
		if n := stats.OutcomeCounts[o]; n > 0 {
			outcomes[o.String()] = n
		}
	}

	r := Report{
		Strategy:        strategy,
		Seed:            seed,
		Rounds:          stats.Rounds,
		Hands:           stats.Hands,
		Splits:          stats.Splits,
		Doubles:         stats.Doubles,
		TotalBet:        stats.TotalBet,
		Mean:            stats.Mean(),
		Median:          stats.Median(),
		StdDev:          stats.StdDev(),
		StdError:        stats.StdError(),
		CI95Low:         low,
		CI95High:        high,
		HouseEdge:       stats.HouseEdge(),
		BestRound:       stats.BestRound,
		WorstRound:      stats.WorstRound,
		Outcomes:        outcomes,
		DurationSeconds: elapsed.Seconds(),
	}
	if elapsed > 0 {
		r.RoundsPerSecond = float64(stats.Rounds) / elapsed.Seconds()
	}
	return r
}

// Write marshals the report as indented JSON and writes it atomically,
// so readers polling the path never see a partial document
func (r Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
