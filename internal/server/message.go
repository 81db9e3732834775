package server

import (
	"encoding/json"
	"time"

	"github.com/pitboss/blackjack/engine"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type BetData struct {
	Amount float64 `json:"amount"`
}

type ActionData struct {
	Action string `json:"action"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RulesInfo struct {
	Decks            int     `json:"decks"`
	Penetration      float64 `json:"penetration"`
	DealerHitsSoft17 bool    `json:"dealerHitsSoft17"`
	DoubleAfterSplit bool    `json:"doubleAfterSplit"`
	ResplitAces      bool    `json:"resplitAces"`
	LateSurrender    bool    `json:"lateSurrender"`
	MaxSplits        int     `json:"maxSplits"`
	BlackjackPays    string  `json:"blackjackPays"`
}

type WelcomeData struct {
	SessionID string    `json:"sessionId"`
	Rules     RulesInfo `json:"rules"`
	MinBet    float64   `json:"minBet"`
	MaxBet    float64   `json:"maxBet"`
	Balance   float64   `json:"balance"`
}

// HandState renders a hand for the wire. Cards are strings so a face
// down dealer card serializes as "??" and never leaks its rank.
type HandState struct {
	Cards     []string `json:"cards"`
	Value     int      `json:"value"`
	Soft      bool     `json:"soft"`
	Busted    bool     `json:"busted"`
	Blackjack bool     `json:"blackjack"`
	Bet       float64  `json:"bet,omitempty"`
	Doubled   bool     `json:"doubled,omitempty"`
	FromSplit bool     `json:"fromSplit,omitempty"`
	Outcome   string   `json:"outcome,omitempty"`
	Payout    float64  `json:"payout,omitempty"`
}

type StateData struct {
	Hands          []HandState `json:"hands"`
	Dealer         HandState   `json:"dealer"`
	ActiveHand     int         `json:"activeHand"`
	ValidActions   []string    `json:"validActions"`
	TimeoutSeconds int         `json:"timeoutSeconds,omitempty"`
}

type ShuffleData struct {
	CardsLeft   int     `json:"cardsLeft"`
	Penetration float64 `json:"penetration"`
}

type ResultData struct {
	Hands   []HandState `json:"hands"`
	Dealer  HandState   `json:"dealer"`
	Net     float64     `json:"net"`
	Balance float64     `json:"balance"`
}

type TimeoutData struct {
	TimeoutSeconds int    `json:"timeoutSeconds"`
	Action         string `json:"action"`
}

// Helper functions to convert between internal types and message types

// HandStateFromHand renders a player hand, including its stake and any
// settled outcome
func HandStateFromHand(h engine.Hand) HandState {
	state := handState(h.Cards)
	state.Bet = h.Bet
	state.Doubled = h.Doubled
	state.FromSplit = h.FromSplit
	if h.Settled() {
		state.Outcome = h.Result.String()
		state.Payout = engine.Payout(h.Bet, h.Result)
	}
	return state
}

// HandStateFromDealer renders the dealer's cards. The value covers
// visible cards only, so an unrevealed hole card contributes nothing.
func HandStateFromDealer(cards []engine.Card) HandState {
	return handState(cards)
}

func handState(cards []engine.Card) HandState {
	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = c.String()
	}

	value := engine.Evaluate(cards)
	return HandState{
		Cards:     rendered,
		Value:     value.Value,
		Soft:      value.Soft,
		Busted:    value.Busted,
		Blackjack: value.Blackjack,
	}
}

// RulesInfoFromRules renders the table rules for the welcome message
func RulesInfoFromRules(r engine.Rules) RulesInfo {
	return RulesInfo{
		Decks:            r.Decks,
		Penetration:      r.Penetration,
		DealerHitsSoft17: r.DealerHitsSoft17,
		DoubleAfterSplit: r.DoubleAfterSplit,
		ResplitAces:      r.ResplitAces,
		LateSurrender:    r.LateSurrender,
		MaxSplits:        r.MaxSplits,
		BlackjackPays:    "3:2",
	}
}
