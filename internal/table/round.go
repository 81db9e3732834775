// Package table drives single rounds of blackjack on top of the rules
// engine: deal order, the dealer peek, the active-hand cursor across
// splits, the dealer's play-out and settlement. It owns no transport and
// no clock; the server and the simulator both sequence rounds through it
// so every consumer deals and settles identically.
package table

import (
	"errors"

	"github.com/pitboss/blackjack/engine"
)

var (
	// ErrShoeExhausted means the shoe could not cover a draw. The round
	// is void; the caller reshuffles and starts over.
	ErrShoeExhausted = errors.New("table: shoe exhausted")
	// ErrRoundOver means an action arrived after settlement
	ErrRoundOver = errors.New("table: round already settled")
	// ErrInvalidAction means the action is not legal for the active hand
	ErrInvalidAction = errors.New("table: action not legal for the active hand")
)

// Round is one player seat against the dealer, from deal to settlement.
// It consumes cards from a shoe snapshot and hands the remainder back
// through Shoe() when the round is over.
type Round struct {
	rules  engine.Rules
	shoe   engine.Shoe
	hands  []engine.Hand
	dealer engine.Hand
	active int
	splits int
	state  State
}

// NewRound deals a fresh round: player, dealer, player, dealer hole card
// face down. The dealer is then peeked for a natural; a dealer or player
// blackjack settles the round immediately.
func NewRound(rules engine.Rules, shoe engine.Shoe, bet float64) (*Round, error) {
	if shoe.Remaining() < 4 {
		return nil, ErrShoeExhausted
	}

	r := &Round{
		rules: rules,
		shoe:  shoe,
		state: PlayerTurn,
	}

	player := engine.NewHand(bet)
	dealer := engine.NewHand(0)

	c, err := r.draw()
	if err != nil {
		return nil, err
	}
	player = player.WithCard(c)

	if c, err = r.draw(); err != nil {
		return nil, err
	}
	dealer = dealer.WithCard(c)

	if c, err = r.draw(); err != nil {
		return nil, err
	}
	player = player.WithCard(c)

	if c, err = r.draw(); err != nil {
		return nil, err
	}
	dealer = dealer.WithCard(c.Hidden())

	r.hands = []engine.Hand{player}
	r.dealer = dealer

	if engine.DealerHasBlackjack(r.dealer.Cards) || player.Natural() {
		r.finish()
	}

	return r, nil
}

// State returns the round's lifecycle phase
func (r *Round) State() State {
	return r.state
}

// Hands returns a snapshot of the player's hands in table order
func (r *Round) Hands() []engine.Hand {
	hands := make([]engine.Hand, len(r.hands))
	copy(hands, r.hands)
	return hands
}

// Dealer returns the dealer's hand. While the round is live the hole
// card is still face down, so the snapshot is safe to show a player.
func (r *Round) Dealer() engine.Hand {
	return r.dealer
}

// ActiveIndex returns the index of the hand awaiting a decision, or -1
// once the round has settled.
func (r *Round) ActiveIndex() int {
	if r.state != PlayerTurn {
		return -1
	}
	return r.active
}

// Splits returns the number of splits performed this round
func (r *Round) Splits() int {
	return r.splits
}

// Shoe returns the remaining shoe for the caller to chain into the next
// round.
func (r *Round) Shoe() engine.Shoe {
	return r.shoe
}

// TotalPayout sums the payout of every hand. Zero until settlement.
func (r *Round) TotalPayout() float64 {
	if r.state != Settled {
		return 0
	}
	total := 0.0
	for _, h := range r.hands {
		total += engine.Payout(h.Bet, h.Result)
	}
	return total
}

// View assembles what a strategy needs to decide the active hand
func (r *Round) View() View {
	if r.state != PlayerTurn {
		return View{}
	}
	h := r.hands[r.active]
	return View{
		Cards:     h.Cards,
		Value:     h.Value(),
		FromSplit: h.FromSplit,
		DealerUp:  r.dealer.Cards[0],
		Splits:    r.splits,
	}
}

// Actions returns the legal moves for the active hand, in a stable
// order. Empty once the round has settled.
func (r *Round) Actions() []Action {
	if r.state != PlayerTurn {
		return nil
	}

	h := r.hands[r.active]

	// A hand of split aces received its one card; the only thing it may
	// still do is re-split a drawn ace when the rules allow it.
	if h.SplitAces {
		if r.canSplitActive(h) {
			return []Action{Stand, Split}
		}
		return []Action{Stand}
	}

	actions := []Action{Hit, Stand}
	if r.rules.CanDouble(h.Cards, h.FromSplit) {
		actions = append(actions, Double)
	}
	if r.canSplitActive(h) {
		actions = append(actions, Split)
	}
	// No surrender on split hands: table policy on top of the engine's
	// permissive predicate.
	if !h.FromSplit && r.rules.CanSurrender(h.Cards, len(h.Cards) == 2) {
		actions = append(actions, Surrender)
	}
	return actions
}

// Apply performs one action on the active hand and advances the round,
// running the dealer and settling every hand once the player side is
// done.
func (r *Round) Apply(action Action) error {
	if r.state != PlayerTurn {
		return ErrRoundOver
	}
	if !r.legal(action) {
		return ErrInvalidAction
	}

	switch action {
	case Hit:
		c, err := r.draw()
		if err != nil {
			return err
		}
		h := r.hands[r.active].WithCard(c)
		r.hands[r.active] = h
		if h.Value().Value >= 21 {
			r.active++
		}

	case Stand:
		r.active++

	case Double:
		c, err := r.draw()
		if err != nil {
			return err
		}
		h := r.hands[r.active]
		h.Bet *= 2
		h.Doubled = true
		r.hands[r.active] = h.WithCard(c)
		r.active++

	case Surrender:
		h := r.hands[r.active]
		h.Result = engine.Surrender
		r.hands[r.active] = h
		r.active++

	case Split:
		if err := r.split(); err != nil {
			return err
		}
	}

	r.settleCursor()
	return nil
}

// split turns the active pair into two hands, deals one card to each and
// leaves the cursor on the first.
func (r *Round) split() error {
	h := r.hands[r.active]
	aces := h.Cards[0].IsAce() && h.Cards[1].IsAce()
	r.splits++

	first := engine.Hand{Bet: h.Bet, FromSplit: true, SplitAces: aces || h.SplitAces}
	second := first
	first = first.WithCard(h.Cards[0])
	second = second.WithCard(h.Cards[1])

	c, err := r.draw()
	if err != nil {
		return err
	}
	first = first.WithCard(c)

	if c, err = r.draw(); err != nil {
		return err
	}
	second = second.WithCard(c)

	hands := make([]engine.Hand, 0, len(r.hands)+1)
	hands = append(hands, r.hands[:r.active]...)
	hands = append(hands, first, second)
	hands = append(hands, r.hands[r.active+1:]...)
	r.hands = hands
	return nil
}

// settleCursor walks the cursor past hands that need no decision and
// finishes the round when the player side is done.
func (r *Round) settleCursor() {
	if r.state != PlayerTurn {
		return
	}
	for r.active < len(r.hands) && r.autoResolved(r.hands[r.active]) {
		r.active++
	}
	if r.active >= len(r.hands) {
		r.finish()
	}
}

// autoResolved reports whether a hand takes no further decisions: it
// already carries a result, it sits at 21 or more, or it is a finished
// split-aces hand with no re-split available.
func (r *Round) autoResolved(h engine.Hand) bool {
	if h.Settled() {
		return true
	}
	if h.Value().Value >= 21 {
		return true
	}
	if h.SplitAces && len(h.Cards) == 2 && !r.canSplitActive(h) {
		return true
	}
	return false
}

func (r *Round) canSplitActive(h engine.Hand) bool {
	if len(h.Cards) != 2 {
		return false
	}
	aces := h.Cards[0].IsAce() && h.Cards[1].IsAce()
	return r.rules.CanSplit(h.Cards, r.splits, aces)
}

// legal reports whether the action is in the active hand's legal set
func (r *Round) legal(action Action) bool {
	for _, a := range r.Actions() {
		if a == action {
			return true
		}
	}
	return false
}

// finish reveals the hole card, plays out the dealer when a live hand
// remains and settles every hand.
func (r *Round) finish() {
	cards := make([]engine.Card, len(r.dealer.Cards))
	for i, c := range r.dealer.Cards {
		cards[i] = c.Revealed()
	}
	r.dealer.Cards = cards

	if r.dealerMustPlay() {
		for r.rules.DealerShouldHit(r.dealer.Cards) {
			c, rest, ok := r.shoe.Draw()
			if !ok {
				break
			}
			r.shoe = rest
			r.dealer = r.dealer.WithCard(c)
		}
	}

	for i := range r.hands {
		r.hands[i].Result = engine.Settle(r.hands[i], r.dealer.Cards)
	}
	r.state = Settled
}

// dealerMustPlay reports whether any hand still needs the dealer's
// total: busted and surrendered hands are already decided, and a lone
// natural is paid without the dealer drawing out.
func (r *Round) dealerMustPlay() bool {
	for _, h := range r.hands {
		if h.Settled() {
			continue
		}
		if h.Value().Busted {
			continue
		}
		if h.Natural() {
			continue
		}
		return true
	}
	return false
}

func (r *Round) draw() (engine.Card, error) {
	c, rest, ok := r.shoe.Draw()
	if !ok {
		return engine.Card{}, ErrShoeExhausted
	}
	r.shoe = rest
	return c, nil
}

// View is the read-only snapshot a strategy sees when deciding the
// active hand.
type View struct {
	Cards     []engine.Card
	Value     engine.HandValue
	FromSplit bool
	DealerUp  engine.Card
	Splits    int
}
