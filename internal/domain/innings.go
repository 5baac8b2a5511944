package domain

// BallRecord describes one resolved ball.
type BallRecord struct {
	OverNumber int
	BallNumber int
	Score      int
	WicketLost bool
}

// Innings holds one side's batting counters for its half.
type Innings struct {
	TotalScore       int
	BallCount        int // balls bowled in the current over
	OverCount        int // current over, 1-based once the half starts
	WicketsLost      int
	CurrentTurnScore int
	IsOutThisTurn    bool
	LastBall         BallRecord
	OverBalls        []BallRecord // balls of the over in progress
}

// ResetForHalf zeroes the over and ball counters at the start of a batting half.
func (in *Innings) ResetForHalf() {
	in.BallCount = 0
	in.OverCount = 0
	in.OverBalls = nil
}

// Resolve applies one ball: out when both signals match, otherwise the batting
// signal is scored.
func (in *Innings) Resolve(battingSignal, bowlingSignal int) BallRecord {
	in.BallCount++
	in.IsOutThisTurn = battingSignal == bowlingSignal
	if in.IsOutThisTurn {
		in.CurrentTurnScore = 0
	} else {
		in.CurrentTurnScore = battingSignal
	}
	in.TotalScore += in.CurrentTurnScore
	in.LastBall = BallRecord{
		OverNumber: in.OverCount,
		BallNumber: in.BallCount,
		Score:      in.CurrentTurnScore,
		WicketLost: in.IsOutThisTurn,
	}
	in.OverBalls = append(in.OverBalls, in.LastBall)
	if in.IsOutThisTurn {
		in.WicketsLost++
	}
	return in.LastBall
}

// AdvanceOver moves to the next over and starts its ball count from zero.
func (in *Innings) AdvanceOver() {
	in.OverCount++
	in.BallCount = 0
	in.OverBalls = nil
}

// IsOverComplete reports whether every ball of the current over has been bowled.
func (in *Innings) IsOverComplete(cfg MatchConfiguration) bool {
	return in.BallCount == cfg.BallsPerOver
}

// IsLastOverOfHalf reports whether the current over is the final one of the innings.
func (in *Innings) IsLastOverOfHalf(cfg MatchConfiguration) bool {
	return in.OverCount == cfg.TotalOvers
}

// IsAllOut reports whether every wicket has fallen.
func (in *Innings) IsAllOut(cfg MatchConfiguration) bool {
	return in.WicketsLost == cfg.TotalWickets
}

// HasHalfEnded reports whether the last over of the innings has been completed.
func (in *Innings) HasHalfEnded(cfg MatchConfiguration) bool {
	return in.IsOverComplete(cfg) && in.IsLastOverOfHalf(cfg)
}

// IsFinished reports whether the innings can take no further balls.
func (in *Innings) IsFinished(cfg MatchConfiguration) bool {
	return in.HasHalfEnded(cfg) || in.IsAllOut(cfg)
}

// TurnInputBuffer holds the signals registered for the turn in progress.
type TurnInputBuffer struct {
	signals [2]int
}

// Set stores a side's signal, replacing any earlier one this turn.
func (b *TurnInputBuffer) Set(side Side, signal int) {
	if !side.Valid() {
		return
	}
	b.signals[side.Seat()] = signal
}

// Get returns the side's registered signal, 0 when none was registered.
func (b *TurnInputBuffer) Get(side Side) int {
	if !side.Valid() {
		return 0
	}
	return b.signals[side.Seat()]
}

// Clear resets both signals to 0.
func (b *TurnInputBuffer) Clear() {
	b.signals = [2]int{}
}
