package server

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/pitboss/blackjack/engine"
	"github.com/pitboss/blackjack/internal/randutil"
	"github.com/pitboss/blackjack/internal/table"
)

// Session drives blackjack rounds for a single connected player. Every
// entry point takes the session lock, so the reader goroutine and the
// timeout callback never race on the round.
type Session struct {
	id      string
	rules   engine.Rules
	minBet  float64
	maxBet  float64
	timeout time.Duration
	clock   quartz.Clock
	rng     *rand.Rand
	seed    int64
	logger  *log.Logger
	send    func(*Message)

	mu      sync.Mutex
	balance float64
	staked  float64
	shoe    engine.Shoe
	round   *table.Round
	timer   *quartz.Timer
}

// NewSession creates a session with a freshly shuffled shoe. The shoe
// seed is logged so any session can be replayed.
func NewSession(config *Config, clock quartz.Clock, logger *log.Logger, send func(*Message)) *Session {
	rng, seed := randutil.NewFromTime()

	s := &Session{
		id:      uuid.NewString(),
		rules:   config.GetRules(),
		minBet:  config.GetMinBet(),
		maxBet:  config.GetMaxBet(),
		timeout: config.GetActionTimeout(),
		clock:   clock,
		rng:     rng,
		seed:    seed,
		balance: config.GetStartingBalance(),
		send:    send,
	}
	s.logger = logger.WithPrefix("session").With("session", s.id)
	s.shoe = engine.NewShoe(s.rules.Decks, rng)

	s.logger.Info("Session started", "seed", seed, "balance", s.balance, "cards", s.shoe.Remaining())
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Balance returns the session's current bankroll
func (s *Session) Balance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Welcome builds the greeting sent once the upgrade completes
func (s *Session) Welcome() (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return NewMessage(MessageTypeWelcome, WelcomeData{
		SessionID: s.id,
		Rules:     RulesInfoFromRules(s.rules),
		MinBet:    s.minBet,
		MaxBet:    s.maxBet,
		Balance:   s.balance,
	})
}

// HandleBet deals a new round for the wagered amount
func (s *Session) HandleBet(data BetData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round != nil && s.round.State() != table.Settled {
		s.sendError("round_in_progress", "Finish the current round before betting again")
		return
	}
	if data.Amount < s.minBet || data.Amount > s.maxBet {
		s.sendError("invalid_bet", fmt.Sprintf("Bet must be between %v and %v", s.minBet, s.maxBet))
		return
	}
	if data.Amount > s.balance {
		s.sendError("insufficient_funds", fmt.Sprintf("Balance %v cannot cover a bet of %v", s.balance, data.Amount))
		return
	}

	if s.shoe.NeedsReshuffle(s.rules) {
		s.reshuffle()
	}

	round, err := table.NewRound(s.rules, s.shoe, data.Amount)
	if err != nil {
		if errors.Is(err, table.ErrShoeExhausted) {
			s.reshuffle()
			round, err = table.NewRound(s.rules, s.shoe, data.Amount)
		}
		if err != nil {
			s.sendError("deal_failed", err.Error())
			return
		}
	}

	s.round = round
	s.balance -= data.Amount
	s.staked = data.Amount

	s.logger.Debug("Dealt round", "bet", data.Amount, "balance", s.balance)

	s.sendState()
	if s.round.State() == table.Settled {
		s.settle()
	} else {
		s.armTimer()
	}
}

// HandleAction applies one player decision to the active hand
func (s *Session) HandleAction(data ActionData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil || s.round.State() == table.Settled {
		s.sendError("no_round", "Place a bet to start a round")
		return
	}

	action, err := table.ParseAction(data.Action)
	if err != nil {
		s.sendError("invalid_action", err.Error())
		return
	}

	// Doubling and splitting put more chips on the table
	if action == table.Double || action == table.Split {
		if extra := s.activeBet(); extra > s.balance {
			s.sendError("insufficient_funds",
				fmt.Sprintf("Balance %v cannot cover the extra %v", s.balance, extra))
			return
		}
	}

	s.stopTimer()

	if err := s.round.Apply(action); err != nil {
		if errors.Is(err, table.ErrShoeExhausted) {
			s.voidRound()
			return
		}
		s.sendError("illegal_action", err.Error())
		s.armTimer()
		return
	}

	// Deduct whatever stake the action just added
	if stake := s.roundStake(); stake > s.staked {
		s.balance -= stake - s.staked
		s.staked = stake
	}

	s.sendState()
	if s.round.State() == table.Settled {
		s.settle()
	} else {
		s.armTimer()
	}
}

// Close releases the session's timer
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer()
}

// activeBet returns the stake of the hand awaiting a decision
func (s *Session) activeBet() float64 {
	hands := s.round.Hands()
	idx := s.round.ActiveIndex()
	if idx < 0 || idx >= len(hands) {
		return 0
	}
	return hands[idx].Bet
}

// roundStake sums the stakes across every hand in the round
func (s *Session) roundStake() float64 {
	var total float64
	for _, h := range s.round.Hands() {
		total += h.Bet
	}
	return total
}

// settle credits the payout and reports the finished round
func (s *Session) settle() {
	payout := s.round.TotalPayout()
	s.balance += payout
	net := payout - s.staked

	s.shoe = s.round.Shoe()

	hands := s.round.Hands()
	states := make([]HandState, len(hands))
	for i, h := range hands {
		states[i] = HandStateFromHand(h)
	}

	msg, err := NewMessage(MessageTypeResult, ResultData{
		Hands:   states,
		Dealer:  HandStateFromDealer(s.round.Dealer().Cards),
		Net:     net,
		Balance: s.balance,
	})
	if err != nil {
		s.logger.Error("Failed to create result message", "error", err)
		return
	}
	s.send(msg)

	s.logger.Info("Round settled",
		"net", net,
		"balance", s.balance,
		"hands", len(hands),
		"splits", s.round.Splits())

	s.staked = 0
}

// voidRound returns all stakes when the shoe cannot finish a round
func (s *Session) voidRound() {
	s.logger.Warn("Shoe exhausted mid-round, voiding round", "staked", s.staked)

	s.balance += s.staked
	s.staked = 0
	s.round = nil

	s.sendError("round_void", "The shoe ran out of cards, all bets returned")
	s.reshuffle()
}

// reshuffle racks a fresh shoe and tells the client
func (s *Session) reshuffle() {
	s.shoe = engine.NewShoe(s.rules.Decks, s.rng)

	msg, err := NewMessage(MessageTypeShuffle, ShuffleData{
		CardsLeft:   s.shoe.Remaining(),
		Penetration: s.rules.Penetration,
	})
	if err != nil {
		s.logger.Error("Failed to create shuffle message", "error", err)
		return
	}
	s.send(msg)

	s.logger.Debug("Racked a fresh shoe", "cards", s.shoe.Remaining())
}

func (s *Session) stateData() StateData {
	hands := s.round.Hands()
	states := make([]HandState, len(hands))
	for i, h := range hands {
		states[i] = HandStateFromHand(h)
	}

	actions := s.round.Actions()
	rendered := make([]string, len(actions))
	for i, a := range actions {
		rendered[i] = a.String()
	}

	data := StateData{
		Hands:        states,
		Dealer:       HandStateFromDealer(s.round.Dealer().Cards),
		ActiveHand:   s.round.ActiveIndex(),
		ValidActions: rendered,
	}
	if s.round.State() != table.Settled {
		data.TimeoutSeconds = int(s.timeout / time.Second)
	}
	return data
}

func (s *Session) sendState() {
	msg, err := NewMessage(MessageTypeState, s.stateData())
	if err != nil {
		s.logger.Error("Failed to create state message", "error", err)
		return
	}
	s.send(msg)
}

func (s *Session) sendError(code, message string) {
	msg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		s.logger.Error("Failed to create error message", "error", err)
		return
	}
	s.send(msg)
}

// armTimer schedules an automatic stand for a player who walks away
func (s *Session) armTimer() {
	s.stopTimer()
	s.timer = s.clock.AfterFunc(s.timeout, s.timeoutFired)
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// timeoutFired stands every remaining hand so the round can settle
func (s *Session) timeoutFired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil || s.round.State() == table.Settled {
		return
	}

	s.logger.Warn("Decision timeout, standing remaining hands")

	msg, err := NewMessage(MessageTypeTimeout, TimeoutData{
		TimeoutSeconds: int(s.timeout / time.Second),
		Action:         table.Stand.String(),
	})
	if err == nil {
		s.send(msg)
	}

	for s.round.State() != table.Settled {
		if err := s.round.Apply(table.Stand); err != nil {
			s.logger.Error("Failed to stand timed out hand", "error", err)
			return
		}
	}

	s.sendState()
	s.settle()
}
