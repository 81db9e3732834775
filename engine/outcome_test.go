package engine

import "testing"

func TestDetermineOutcome(t *testing.T) {
	tests := []struct {
		name            string
		playerValue     int
		playerBlackjack bool
		playerBust      bool
		dealerValue     int
		dealerBlackjack bool
		dealerBust      bool
		expected        Outcome
	}{
		{name: "player bust loses even against dealer bust", playerValue: 22, playerBust: true, dealerValue: 23, dealerBust: true, expected: Lose},
		{name: "dealer bust wins", playerValue: 18, dealerValue: 22, dealerBust: true, expected: Win},
		{name: "both blackjack push", playerValue: 21, playerBlackjack: true, dealerValue: 21, dealerBlackjack: true, expected: Push},
		{name: "player blackjack", playerValue: 21, playerBlackjack: true, dealerValue: 20, expected: Blackjack},
		{name: "dealer blackjack", playerValue: 21, dealerValue: 21, dealerBlackjack: true, expected: Lose},
		{name: "higher value wins", playerValue: 20, dealerValue: 18, expected: Win},
		{name: "lower value loses", playerValue: 18, dealerValue: 20, expected: Lose},
		{name: "equal values push", playerValue: 18, dealerValue: 18, expected: Push},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetermineOutcome(tt.playerValue, tt.playerBlackjack, tt.playerBust, tt.dealerValue, tt.dealerBlackjack, tt.dealerBust)
			if got != tt.expected {
				t.Errorf("DetermineOutcome() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPayout(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		expected float64
	}{
		{Blackjack, 250},
		{Win, 200},
		{Push, 100},
		{Surrender, 50},
		{Lose, 0},
		{Undecided, 0},
	}

	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			if got := Payout(100, tt.outcome); got != tt.expected {
				t.Errorf("Payout(100, %v) = %v, want %v", tt.outcome, got, tt.expected)
			}
		})
	}
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name     string
		player   Hand
		dealer   string
		expected Outcome
	}{
		{
			name:     "natural beats dealer twenty",
			player:   NewHand(10, MustParseCards("As Kd")...),
			dealer:   "Ks Qd",
			expected: Blackjack,
		},
		{
			name: "split twenty-one is a plain win",
			player: func() Hand {
				h := NewHand(10, MustParseCards("As Kd")...)
				h.FromSplit = true
				return h
			}(),
			dealer:   "Ks Qd",
			expected: Win,
		},
		{
			name: "split twenty-one pushes dealer twenty-one",
			player: func() Hand {
				h := NewHand(10, MustParseCards("As Kd")...)
				h.FromSplit = true
				return h
			}(),
			dealer:   "10s 5d 6c",
			expected: Push,
		},
		{
			name:     "busted player loses",
			player:   NewHand(10, MustParseCards("Kh Qd 5s")...),
			dealer:   "10s 7d",
			expected: Lose,
		},
		{
			name:     "dealer bust",
			player:   NewHand(10, MustParseCards("10s 8d")...),
			dealer:   "10s 6d 9c",
			expected: Win,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Settle(tt.player, MustParseCards(tt.dealer)); got != tt.expected {
				t.Errorf("Settle() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSettleRevealsHoleCard(t *testing.T) {
	dealer := MustParseCards("As Kd")
	dealer[1] = dealer[1].Hidden()

	player := NewHand(10, MustParseCards("10s 10d")...)
	if got := Settle(player, dealer); got != Lose {
		t.Errorf("Settle() against hidden dealer natural = %v, want %v", got, Lose)
	}
	if !dealer[1].FaceDown {
		t.Error("Settle() must not flip the caller's cards")
	}
}

func TestSettleKeepsExistingResult(t *testing.T) {
	player := NewHand(10, MustParseCards("10s 6d")...)
	player.Result = Surrender

	if got := Settle(player, MustParseCards("10s 7d")); got != Surrender {
		t.Errorf("Settle() on a surrendered hand = %v, want %v", got, Surrender)
	}
}

func TestHandNatural(t *testing.T) {
	natural := NewHand(10, MustParseCards("As Kd")...)
	if !natural.Natural() {
		t.Error("two-card 21 should be a natural")
	}

	split := natural
	split.FromSplit = true
	if split.Natural() {
		t.Error("split 21 must not be a natural")
	}

	hit21 := NewHand(10, MustParseCards("7s 7d 7c")...)
	if hit21.Natural() {
		t.Error("three-card 21 must not be a natural")
	}
}

func TestHandWithCard(t *testing.T) {
	h := NewHand(10, MustParseCards("5s 6d")...)
	grown := h.WithCard(MustParseCards("10c")[0])

	if len(h.Cards) != 2 {
		t.Errorf("WithCard() mutated its receiver: %d cards, want 2", len(h.Cards))
	}
	if len(grown.Cards) != 3 {
		t.Errorf("WithCard() result has %d cards, want 3", len(grown.Cards))
	}
	if got := grown.Value().Value; got != 21 {
		t.Errorf("grown hand value = %d, want 21", got)
	}
}
