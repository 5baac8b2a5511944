package domain

// Result classifies the finished match from the owner's point of view.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// MatchOutcome is the write-once match result.
type MatchOutcome struct {
	Winner  Side
	IsDraw  bool
	decided bool
}

// Decide records the outcome; SideNone records a draw. It returns false and
// leaves the outcome untouched when one was already decided.
func (o *MatchOutcome) Decide(winner Side) bool {
	if o.decided {
		return false
	}
	o.decided = true
	o.Winner = winner
	o.IsDraw = winner == SideNone
	return true
}

// Decided reports whether the outcome has been set.
func (o MatchOutcome) Decided() bool {
	return o.decided
}

// ResultFor classifies the outcome for the given side.
func (o MatchOutcome) ResultFor(side Side) Result {
	switch {
	case o.IsDraw:
		return ResultDraw
	case o.Winner == side:
		return ResultWin
	default:
		return ResultLoss
	}
}
