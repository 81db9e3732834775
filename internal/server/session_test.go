package server

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitboss/blackjack/engine"
)

// messageRecorder captures everything a session sends so tests can
// assert on the conversation
type messageRecorder struct {
	mu       sync.Mutex
	messages []*Message
}

func (r *messageRecorder) send(msg *Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *messageRecorder) all() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Message, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *messageRecorder) byType(t MessageType) []*Message {
	var out []*Message
	for _, msg := range r.all() {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

func (r *messageRecorder) lastOfType(t MessageType) *Message {
	msgs := r.byType(t)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// scriptShoe builds a shoe that deals the given cards in order. The
// bottom is padded with filler so a scripted session never crosses the
// penetration threshold at bet time.
func scriptShoe(draws string, total int) engine.Shoe {
	cards := engine.MustParseCards(draws)
	shoe := make(engine.Shoe, 0, total)
	for len(shoe) < total-len(cards) {
		shoe = append(shoe, engine.NewCard(engine.Two, engine.Clubs))
	}
	for i := len(cards) - 1; i >= 0; i-- {
		shoe = append(shoe, cards[i])
	}
	return shoe
}

// scriptedSession builds a session whose shoe deals a fixed sequence.
// Draw order is player, dealer upcard, player, dealer hole card, then
// every hit, double and split card in turn.
func scriptedSession(t *testing.T, config *Config, clock quartz.Clock, draws string) (*Session, *messageRecorder) {
	t.Helper()

	rec := &messageRecorder{}
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	s := NewSession(config, clock, logger, rec.send)
	s.shoe = scriptShoe(draws, s.rules.ShoeSize())
	t.Cleanup(s.Close)
	return s, rec
}

func decodeResult(t *testing.T, msg *Message) ResultData {
	t.Helper()
	require.NotNil(t, msg)
	var data ResultData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func decodeState(t *testing.T, msg *Message) StateData {
	t.Helper()
	require.NotNil(t, msg)
	var data StateData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func decodeError(t *testing.T, msg *Message) ErrorData {
	t.Helper()
	require.NotNil(t, msg)
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func TestSessionWelcome(t *testing.T) {
	config := DefaultConfig()
	s, _ := scriptedSession(t, config, quartz.NewReal(), "Kh 7d Qs Th")

	msg, err := s.Welcome()
	require.NoError(t, err)
	require.Equal(t, MessageTypeWelcome, msg.Type)

	var data WelcomeData
	require.NoError(t, json.Unmarshal(msg.Data, &data))

	assert.Equal(t, s.ID(), data.SessionID)
	assert.Equal(t, 1000.0, data.Balance)
	assert.Equal(t, 1.0, data.MinBet)
	assert.Equal(t, 500.0, data.MaxBet)
	assert.Equal(t, 6, data.Rules.Decks)
	assert.Equal(t, "3:2", data.Rules.BlackjackPays)
}

func TestSessionBetValidation(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		code   string
	}{
		{"below minimum", 0.5, "invalid_bet"},
		{"above maximum", 600, "invalid_bet"},
		{"negative", -10, "invalid_bet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := scriptedSession(t, DefaultConfig(), quartz.NewReal(), "Kh 7d Qs Th")

			s.HandleBet(BetData{Amount: tt.amount})

			errData := decodeError(t, rec.lastOfType(MessageTypeError))
			assert.Equal(t, tt.code, errData.Code)
			assert.Equal(t, 1000.0, s.Balance())
			assert.Empty(t, rec.byType(MessageTypeState))
		})
	}
}

func TestSessionBetInsufficientFunds(t *testing.T) {
	config := DefaultConfig()
	config.Table.MaxBet = 5000

	s, rec := scriptedSession(t, config, quartz.NewReal(), "Kh 7d Qs Th")

	s.HandleBet(BetData{Amount: 1500})

	errData := decodeError(t, rec.lastOfType(MessageTypeError))
	assert.Equal(t, "insufficient_funds", errData.Code)
	assert.Equal(t, 1000.0, s.Balance())
}

func TestSessionStandToSettlement(t *testing.T) {
	// Player K Q (20) against dealer 7 up, ten in the hole (17)
	s, rec := scriptedSession(t, DefaultConfig(), quartz.NewReal(), "Kh 7d Qs Th")

	s.HandleBet(BetData{Amount: 10})
	assert.Equal(t, 990.0, s.Balance())

	state := decodeState(t, rec.lastOfType(MessageTypeState))
	assert.Equal(t, 0, state.ActiveHand)
	assert.Equal(t, []string{"hit", "stand", "double", "split", "surrender"}, state.ValidActions)
	assert.Equal(t, []string{"K♥", "Q♠"}, state.Hands[0].Cards)
	assert.Equal(t, 20, state.Hands[0].Value)
	assert.Equal(t, []string{"7♦", "??"}, state.Dealer.Cards)
	assert.Equal(t, 7, state.Dealer.Value)
	assert.Equal(t, 30, state.TimeoutSeconds)

	s.HandleAction(ActionData{Action: "stand"})

	result := decodeResult(t, rec.lastOfType(MessageTypeResult))
	require.Len(t, result.Hands, 1)
	assert.Equal(t, "win", result.Hands[0].Outcome)
	assert.Equal(t, 20.0, result.Hands[0].Payout)
	assert.Equal(t, []string{"7♦", "10♥"}, result.Dealer.Cards)
	assert.Equal(t, 10.0, result.Net)
	assert.Equal(t, 1010.0, result.Balance)
	assert.Equal(t, 1010.0, s.Balance())
}

func TestSessionPlayerNatural(t *testing.T) {
	// Player A K settles at the deal without a decision
	s, rec := scriptedSession(t, DefaultConfig(), quartz.NewReal(), "As 5d Kh 9c")

	s.HandleBet(BetData{Amount: 10})

	result := decodeResult(t, rec.lastOfType(MessageTypeResult))
	require.Len(t, result.Hands, 1)
	assert.Equal(t, "blackjack", result.Hands[0].Outcome)
	assert.True(t, result.Hands[0].Blackjack)
	assert.Equal(t, 25.0, result.Hands[0].Payout)
	assert.Equal(t, 15.0, result.Net)
	assert.Equal(t, 1015.0, s.Balance())

	// The settled state shows no pending decision
	state := decodeState(t, rec.lastOfType(MessageTypeState))
	assert.Equal(t, -1, state.ActiveHand)
	assert.Empty(t, state.ValidActions)
	assert.Zero(t, state.TimeoutSeconds)
}

func TestSessionDoubleDown(t *testing.T) {
	// Player 6 5 (11) doubles into a ten against dealer 17
	s, rec := scriptedSession(t, DefaultConfig(), quartz.NewReal(), "6s 9d 5h 8c Td")

	s.HandleBet(BetData{Amount: 10})
	assert.Equal(t, 990.0, s.Balance())

	s.HandleAction(ActionData{Action: "double"})
	result := decodeResult(t, rec.lastOfType(MessageTypeResult))

	require.Len(t, result.Hands, 1)
	assert.True(t, result.Hands[0].Doubled)
	assert.Equal(t, 20.0, result.Hands[0].Bet)
	assert.Equal(t, "win", result.Hands[0].Outcome)
	assert.Equal(t, 21, result.Hands[0].Value)
	assert.Equal(t, 20.0, result.Net)
	assert.Equal(t, 1020.0, s.Balance())
}

func TestSessionSplit(t *testing.T) {
	// Player 8 8 splits against a dealer 16 that draws out and busts
	s, rec := scriptedSession(t, DefaultConfig(), quartz.NewReal(), "8s 6d 8h Tc 2c 3c 9h")

	s.HandleBet(BetData{Amount: 10})
	s.HandleAction(ActionData{Action: "split"})
	assert.Equal(t, 980.0, s.Balance())

	state := decodeState(t, rec.lastOfType(MessageTypeState))
	require.Len(t, state.Hands, 2)
	assert.Equal(t, 0, state.ActiveHand)
	assert.Equal(t, []string{"8♠", "2♣"}, state.Hands[0].Cards)
	assert.Equal(t, []string{"8♥", "3♣"}, state.Hands[1].Cards)
	assert.True(t, state.Hands[0].FromSplit)
	// Split hands may not surrender
	assert.NotContains(t, state.ValidActions, "surrender")

	s.HandleAction(ActionData{Action: "stand"})
	s.HandleAction(ActionData{Action: "stand"})

	result := decodeResult(t, rec.lastOfType(MessageTypeResult))
	require.Len(t, result.Hands, 2)
	assert.True(t, result.Dealer.Busted)
	assert.Equal(t, "win", result.Hands[0].Outcome)
	assert.Equal(t, "win", result.Hands[1].Outcome)
	assert.Equal(t, 20.0, result.Net)
	assert.Equal(t, 1020.0, s.Balance())
}

func TestSessionSurrender(t *testing.T) {
	// Player 16 against a dealer 9 gives up half the stake
	s, rec := scriptedSession(t, DefaultConfig(), quartz.NewReal(), "Th 9d 6s 8c")

	s.HandleBet(BetData{Amount: 10})
	s.HandleAction(ActionData{Action: "surrender"})

	result := decodeResult(t, rec.lastOfType(MessageTypeResult))
	require.Len(t, result.Hands, 1)
	assert.Equal(t, "surrender", result.Hands[0].Outcome)
	assert.Equal(t, 5.0, result.Hands[0].Payout)
	assert.Equal(t, -5.0, result.Net)
	assert.Equal(t, 995.0, s.Balance())
}

func TestSessionDoubleInsufficientFunds(t *testing.T) {
	config := DefaultConfig()
	config.Table.MaxBet = 2000

	// Betting 600 leaves 400, not enough to double
	s, rec := scriptedSession(t, config, quartz.NewReal(), "6s 9d 5h 8c Td")

	s.HandleBet(BetData{Amount: 600})
	s.HandleAction(ActionData{Action: "double"})

	errData := decodeError(t, rec.lastOfType(MessageTypeError))
	assert.Equal(t, "insufficient_funds", errData.Code)
	assert.Equal(t, 400.0, s.Balance())

	// The round is still live and can be finished normally
	s.HandleAction(ActionData{Action: "stand"})
	result := decodeResult(t, rec.lastOfType(MessageTypeResult))
	assert.Equal(t, "lose", result.Hands[0].Outcome)
	assert.Equal(t, 400.0, s.Balance())
}

func TestSessionRejectsSecondBet(t *testing.T) {
	s, rec := scriptedSession(t, DefaultConfig(), quartz.NewReal(), "Kh 7d Qs Th")

	s.HandleBet(BetData{Amount: 10})
	s.HandleBet(BetData{Amount: 10})

	errData := decodeError(t, rec.lastOfType(MessageTypeError))
	assert.Equal(t, "round_in_progress", errData.Code)
	assert.Equal(t, 990.0, s.Balance())
}

func TestSessionActionWithoutRound(t *testing.T) {
	s, rec := scriptedSession(t, DefaultConfig(), quartz.NewReal(), "Kh 7d Qs Th")

	s.HandleAction(ActionData{Action: "hit"})

	errData := decodeError(t, rec.lastOfType(MessageTypeError))
	assert.Equal(t, "no_round", errData.Code)
}

func TestSessionUnknownAction(t *testing.T) {
	s, rec := scriptedSession(t, DefaultConfig(), quartz.NewReal(), "Kh 7d Qs Th")

	s.HandleBet(BetData{Amount: 10})
	s.HandleAction(ActionData{Action: "banana"})

	errData := decodeError(t, rec.lastOfType(MessageTypeError))
	assert.Equal(t, "invalid_action", errData.Code)

	// Still the player's turn
	s.HandleAction(ActionData{Action: "stand"})
	assert.NotNil(t, rec.lastOfType(MessageTypeResult))
}

func TestSessionIllegalAction(t *testing.T) {
	// K 9 is not a pair, splitting it is rejected
	s, rec := scriptedSession(t, DefaultConfig(), quartz.NewReal(), "Kh 7d 9s Th")

	s.HandleBet(BetData{Amount: 10})
	s.HandleAction(ActionData{Action: "split"})

	errData := decodeError(t, rec.lastOfType(MessageTypeError))
	assert.Equal(t, "illegal_action", errData.Code)

	s.HandleAction(ActionData{Action: "stand"})
	result := decodeResult(t, rec.lastOfType(MessageTypeResult))
	assert.Equal(t, "win", result.Hands[0].Outcome)
}

func TestSessionTimeoutStandsRemainingHands(t *testing.T) {
	mockClock := quartz.NewMock(t)
	s, rec := scriptedSession(t, DefaultConfig(), mockClock, "Kh 7d Qs Th")

	s.HandleBet(BetData{Amount: 10})
	require.Empty(t, rec.byType(MessageTypeResult))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mockClock.Advance(30 * time.Second).MustWait(ctx)

	var timeoutData TimeoutData
	msg := rec.lastOfType(MessageTypeTimeout)
	require.NotNil(t, msg)
	require.NoError(t, json.Unmarshal(msg.Data, &timeoutData))
	assert.Equal(t, "stand", timeoutData.Action)
	assert.Equal(t, 30, timeoutData.TimeoutSeconds)

	result := decodeResult(t, rec.lastOfType(MessageTypeResult))
	assert.Equal(t, "win", result.Hands[0].Outcome)
	assert.Equal(t, 1010.0, s.Balance())
}

func TestSessionActionDisarmsTimer(t *testing.T) {
	mockClock := quartz.NewMock(t)
	s, rec := scriptedSession(t, DefaultConfig(), mockClock, "Kh 7d Qs Th")

	s.HandleBet(BetData{Amount: 10})
	s.HandleAction(ActionData{Action: "stand"})
	require.Len(t, rec.byType(MessageTypeResult), 1)

	// Advancing past the timeout must not produce a timeout message
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mockClock.Advance(time.Minute).MustWait(ctx)

	assert.Empty(t, rec.byType(MessageTypeTimeout))
	assert.Equal(t, 1010.0, s.Balance())
}

func TestSessionVoidsRoundWhenShoeRunsOut(t *testing.T) {
	config := DefaultConfig()
	config.Rules = &RulesConfig{Decks: 1, Penetration: 1.0}

	s, rec := scriptedSession(t, config, quartz.NewReal(), "Th 7d 9s Kh")
	// Exactly the four dealt cards, so the first hit comes up empty
	s.shoe = scriptShoe("Th 7d 9s Kh", 4)

	s.HandleBet(BetData{Amount: 10})
	assert.Equal(t, 990.0, s.Balance())

	s.HandleAction(ActionData{Action: "hit"})

	errData := decodeError(t, rec.lastOfType(MessageTypeError))
	assert.Equal(t, "round_void", errData.Code)
	assert.Equal(t, 1000.0, s.Balance())
	assert.NotEmpty(t, rec.byType(MessageTypeShuffle))

	// The voided round is gone
	s.HandleAction(ActionData{Action: "stand"})
	errData = decodeError(t, rec.lastOfType(MessageTypeError))
	assert.Equal(t, "no_round", errData.Code)
}

func TestSessionReshufflesBeforeDealing(t *testing.T) {
	s, rec := scriptedSession(t, DefaultConfig(), quartz.NewReal(), "Kh 7d Qs Th")
	// A nearly spent shoe crosses the penetration threshold
	s.shoe = scriptShoe("Kh 7d Qs Th", 8)

	s.HandleBet(BetData{Amount: 10})

	msgs := rec.all()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, MessageTypeShuffle, msgs[0].Type)
	assert.Equal(t, MessageTypeState, msgs[1].Type)

	var shuffle ShuffleData
	require.NoError(t, json.Unmarshal(msgs[0].Data, &shuffle))
	assert.Equal(t, s.rules.ShoeSize(), shuffle.CardsLeft)

	// A round was still dealt for the full stake after the reshuffle
	state := decodeState(t, msgs[1])
	require.Len(t, state.Hands, 1)
	assert.Equal(t, 10.0, state.Hands[0].Bet)
}

func TestSessionResultBalanceMatchesNet(t *testing.T) {
	// Whatever the cards, the settled balance must equal the starting
	// balance plus the reported net
	s, rec := scriptedSession(t, DefaultConfig(), quartz.NewReal(), "8s 6d 8h Tc 2c 3c 9h")

	s.HandleBet(BetData{Amount: 25})
	s.HandleAction(ActionData{Action: "split"})
	s.HandleAction(ActionData{Action: "stand"})
	s.HandleAction(ActionData{Action: "stand"})

	result := decodeResult(t, rec.lastOfType(MessageTypeResult))
	assert.InDelta(t, 1000.0+result.Net, result.Balance, 1e-9)
	assert.Equal(t, result.Balance, s.Balance())
}
