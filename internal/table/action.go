package table

import (
	"fmt"
	"strings"
)

// Action represents a player decision on a hand
type Action int

const (
	Hit Action = iota
	Stand
	Double
	Split
	Surrender
)

func (a Action) String() string {
	return [...]string{"hit", "stand", "double", "split", "surrender"}[a]
}

// ParseAction parses a client-supplied action name
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit":
		return Hit, nil
	case "stand":
		return Stand, nil
	case "double":
		return Double, nil
	case "split":
		return Split, nil
	case "surrender":
		return Surrender, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// State is the round's lifecycle phase
type State int

const (
	// PlayerTurn means the active hand is waiting for a decision
	PlayerTurn State = iota
	// Settled means every hand carries a terminal result
	Settled
)

func (s State) String() string {
	return [...]string{"player_turn", "settled"}[s]
}
