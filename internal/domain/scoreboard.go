package domain

// Half identifies which batting half of the match is in progress.
type Half int

const (
	HalfNone Half = iota
	HalfFirst
	HalfSecond
)

// Scoreboard is the mutable match data shared by the turn engine and the
// match state machine. The engine mutates innings; the state machine sets
// the batting side and half.
type Scoreboard struct {
	innings        [2]Innings
	batting        Side
	half           Half
	ownerHasBatted bool
	outcome        MatchOutcome
}

// NewScoreboard returns an empty scoreboard with no side batting.
func NewScoreboard() *Scoreboard {
	return &Scoreboard{}
}

// Innings returns the innings record for side, or nil for SideNone.
func (b *Scoreboard) Innings(side Side) *Innings {
	if !side.Valid() {
		return nil
	}
	return &b.innings[side.Seat()]
}

// BattingSide returns the side currently batting.
func (b *Scoreboard) BattingSide() Side { return b.batting }

// Batting returns the innings of the side currently batting, or nil before the match starts.
func (b *Scoreboard) Batting() *Innings { return b.Innings(b.batting) }

// Half returns the half in progress.
func (b *Scoreboard) Half() Half { return b.half }

// BeginHalf makes side the batting side for half.
func (b *Scoreboard) BeginHalf(half Half, side Side) {
	b.half = half
	b.batting = side
}

// FlipBatting hands the bat to the other side.
func (b *Scoreboard) FlipBatting() {
	b.batting = b.batting.Other()
}

// MarkOwnerBatted records that the owner has started an innings.
func (b *Scoreboard) MarkOwnerBatted() { b.ownerHasBatted = true }

// OwnerHasBatted reports whether the owner has started an innings.
func (b *Scoreboard) OwnerHasBatted() bool { return b.ownerHasBatted }

// Total returns the side's total score.
func (b *Scoreboard) Total(side Side) int {
	if in := b.Innings(side); in != nil {
		return in.TotalScore
	}
	return 0
}

// Margin returns opponentTotal - ownerTotal.
func (b *Scoreboard) Margin() int {
	return b.Total(SideOpponent) - b.Total(SideOwner)
}

// Outcome returns the match outcome; check Decided before trusting it.
func (b *Scoreboard) Outcome() MatchOutcome { return b.outcome }

// DecideOutcome records the write-once outcome. See MatchOutcome.Decide.
func (b *Scoreboard) DecideOutcome(winner Side) bool {
	return b.outcome.Decide(winner)
}

// ChaseResult evaluates the second half. The chasing side wins as soon as it
// passes the target; once the chasing innings is finished a lower total loses
// to the defending side and an equal total is a draw. ended is false while the
// chase is still open or outside the second half.
func (b *Scoreboard) ChaseResult(cfg MatchConfiguration) (winner Side, ended bool) {
	if b.half != HalfSecond || !b.batting.Valid() {
		return SideNone, false
	}
	chaser, defender := b.batting, b.batting.Other()
	chase, target := b.Total(chaser), b.Total(defender)
	if chase > target {
		return chaser, true
	}
	if !b.Batting().IsFinished(cfg) {
		return SideNone, false
	}
	if chase == target {
		return SideNone, true
	}
	return defender, true
}
