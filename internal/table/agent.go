package table

// Agent decides how to play a hand. Implementations receive a read-only
// view of the hand in play and the actions the rules currently allow
// for it, and must return one of those actions. Returning an action
// outside the legal set causes Apply to reject it.
type Agent interface {
	MakeDecision(view View, valid []Action) Action
}
