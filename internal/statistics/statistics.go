package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/pitboss/blackjack/engine"
)

// RoundResult represents the settled outcome of a single blackjack round
type RoundResult struct {
	Net      float64          // Net units won or lost across the whole round
	Bet      float64          // Total amount wagered, including doubles and splits
	Seed     int64            // RNG seed of the shoe that dealt the round (for replay)
	Outcomes []engine.Outcome // One entry per final hand, in table order
	Splits   int              // Splits performed during the round
	Doubled  bool             // Did any hand double down?
}

// Statistics tracks comprehensive blackjack simulation statistics
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // Store all values for median/percentile calculation

	TotalBet float64 // Total amount wagered across all rounds

	// Detailed analytics - track ALL results, not just wins
	SplitNet float64 // Net from rounds that split at least once
	FlatNet  float64 // Net from rounds played as a single hand
	AllNet   float64 // Total net for sanity check

	// Per-hand outcome tallies, indexed by engine.Outcome
	OutcomeCounts [engine.Surrender + 1]int

	Hands   int // Final hands settled, including hands created by splits
	Splits  int // Total splits performed
	Doubles int // Rounds containing a double down

	BestRound  float64 // Largest single-round win observed
	WorstRound float64 // Largest single-round loss observed
}

// Mean returns the arithmetic mean of all results in units per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	se := s.StdError()
	margin := 1.96 * se // 95% confidence
	return mean - margin, mean + margin
}

// HouseEdge returns the house advantage as a fraction of the total
// amount wagered. Positive values favour the house.
func (s *Statistics) HouseEdge() float64 {
	if s.TotalBet == 0 {
		return 0
	}
	return -s.SumNet / s.TotalBet
}

// Add incorporates a settled round into the statistics
func (s *Statistics) Add(result RoundResult) {
	net := result.Net
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)
	s.TotalBet += result.Bet

	// Track ALL results (wins and losses) in appropriate buckets
	if result.Splits > 0 {
		s.SplitNet += net
	} else {
		s.FlatNet += net
	}
	s.AllNet += net // Total for sanity check

	for _, o := range result.Outcomes {
		if o >= 0 && int(o) < len(s.OutcomeCounts) {
			s.OutcomeCounts[o]++
		}
		s.Hands++
	}
	s.Splits += result.Splits
	if result.Doubled {
		s.Doubles++
	}

	if s.Rounds == 1 || net > s.BestRound {
		s.BestRound = net
	}
	if s.Rounds == 1 || net < s.WorstRound {
		s.WorstRound = net
	}
}

// Merge folds another collection into this one. Used to combine the
// per-worker collections a parallel simulation produces.
func (s *Statistics) Merge(other *Statistics) {
	if other.Rounds == 0 {
		return
	}

	if s.Rounds == 0 {
		s.BestRound = other.BestRound
		s.WorstRound = other.WorstRound
	} else {
		if other.BestRound > s.BestRound {
			s.BestRound = other.BestRound
		}
		if other.WorstRound < s.WorstRound {
			s.WorstRound = other.WorstRound
		}
	}

	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.TotalBet += other.TotalBet
	s.SplitNet += other.SplitNet
	s.FlatNet += other.FlatNet
	s.AllNet += other.AllNet
	for i, n := range other.OutcomeCounts {
		s.OutcomeCounts[i] += n
	}
	s.Hands += other.Hands
	s.Splits += other.Splits
	s.Doubles += other.Doubles
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// OutcomeShare returns the fraction of settled hands that finished with
// the given outcome
func (s *Statistics) OutcomeShare(o engine.Outcome) float64 {
	if s.Hands == 0 || o < 0 || int(o) >= len(s.OutcomeCounts) {
		return 0
	}
	return float64(s.OutcomeCounts[o]) / float64(s.Hands)
}

// IsLedgerBalanced checks if the accounting is consistent
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllNet-s.SplitNet-s.FlatNet) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	// Check ledger balance
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllNet=%.6f, SplitNet=%.6f, FlatNet=%.6f",
			s.AllNet, s.SplitNet, s.FlatNet)
	}

	// Check that rounds count is positive
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	// Check that values array matches rounds count
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	// Every settled hand must carry a decided outcome
	if s.OutcomeCounts[engine.Undecided] != 0 {
		return fmt.Errorf("%d hands recorded without a decided outcome", s.OutcomeCounts[engine.Undecided])
	}

	// Each split turns one hand into two, so the hand total is fixed
	if s.Hands != s.Rounds+s.Splits {
		return fmt.Errorf("hands total (%d) does not match rounds (%d) plus splits (%d)",
			s.Hands, s.Rounds, s.Splits)
	}

	decided := 0
	for _, n := range s.OutcomeCounts {
		decided += n
	}
	if decided != s.Hands {
		return fmt.Errorf("outcome tallies (%d) do not match hands total (%d)", decided, s.Hands)
	}

	return nil
}
