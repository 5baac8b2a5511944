package app

import (
	"errors"

	"handcricket/internal/domain"
)

// Transitions receives the engine's requests to leave the current half.
type Transitions interface {
	RequestHalfTime() error
	RequestGameEnd() error
}

var errNoTransitions = errors.New("turn engine has no transition target")

type enginePhase int

const (
	phaseIdle      enginePhase = iota // between halves, or before the first one
	phaseCountdown                    // accepting signals until the turn countdown elapses
	phaseDelay                        // ball resolved, waiting before progression
)

// TurnEngine advances a batting half ball by ball. It owns the input buffer,
// the turn countdown and the inter-turn delay, and is the only writer of the
// scoreboard's innings.
type TurnEngine struct {
	cfg         domain.MatchConfiguration
	board       *domain.Scoreboard
	out         *Outbox
	transitions Transitions

	input     domain.TurnInputBuffer
	countdown domain.Countdown
	delay     domain.Countdown
	phase     enginePhase
}

// NewTurnEngine builds an engine over the shared scoreboard. Configuration is
// validated when a half starts, not here.
func NewTurnEngine(cfg domain.MatchConfiguration, board *domain.Scoreboard, out *Outbox) *TurnEngine {
	return &TurnEngine{
		cfg:       cfg,
		board:     board,
		out:       out,
		countdown: domain.NewCountdown(cfg.TurnDurationSeconds),
		delay:     domain.NewCountdown(cfg.InterTurnDelaySeconds),
	}
}

// SetTransitions sets the receiver of half-time and game-end requests.
func (e *TurnEngine) SetTransitions(t Transitions) {
	e.transitions = t
}

// StartHalf resets the batting side's over and ball counters and bowls the
// first turn of over 1. A *domain.ConfigurationError is returned before
// anything is mutated when the rules cannot produce a half.
func (e *TurnEngine) StartHalf() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	in := e.board.Batting()
	if in == nil {
		return &domain.InvalidStateTransitionError{State: "no batting side", Operation: "StartHalf"}
	}

	in.ResetForHalf()

	target := 0
	if e.board.Half() == domain.HalfSecond {
		target = e.board.Total(e.board.BattingSide().Other()) + 1
	}
	e.out.Emit(EventHalfStarted, HalfStartedPayload{
		Half:    e.board.Half(),
		Batting: e.board.BattingSide(),
		Target:  target,
	})

	e.startNextOver()
	e.startNextTurn()
	return nil
}

// RegisterInput stores side's signal for the turn in progress. Later calls
// in the same turn overwrite earlier ones. The turn is not resolved here.
func (e *TurnEngine) RegisterInput(side domain.Side, signal int) {
	e.input.Set(side, signal)
}

// Tick advances the engine by delta seconds. All scoring and progression is
// driven from here.
func (e *TurnEngine) Tick(delta float64) error {
	switch e.phase {
	case phaseCountdown:
		fired := e.countdown.Advance(delta)
		e.out.Emit(EventTurnCountdownProgress, TurnCountdownProgressPayload{
			RemainingRatio: e.countdown.RemainingRatio(),
		})
		if !fired {
			return nil
		}
		e.out.Emit(EventTurnCountdownEnded, TurnCountdownEndedPayload{Batting: e.board.BattingSide()})
		e.resolveTurn()
		e.phase = phaseDelay
		e.delay.Reset()
		if e.cfg.InterTurnDelaySeconds > 0 {
			return nil
		}
		return e.progress()
	case phaseDelay:
		if !e.delay.Advance(delta) {
			return nil
		}
		return e.progress()
	}
	return nil
}

// resolveTurn scores the buffered signals against the batting innings.
func (e *TurnEngine) resolveTurn() {
	batting := e.board.BattingSide()
	in := e.board.Batting()

	ownerSignal := e.input.Get(domain.SideOwner)
	opponentSignal := e.input.Get(domain.SideOpponent)
	ball := in.Resolve(e.input.Get(batting), e.input.Get(batting.Other()))

	e.out.Emit(EventBallResolved, BallResolvedPayload{
		Batting:        batting,
		Ball:           ball,
		TotalScore:     in.TotalScore,
		WicketsLost:    in.WicketsLost,
		OwnerSignal:    ownerSignal,
		OpponentSignal: opponentSignal,
	})
}

// progress runs after the inter-turn delay. Match end beats half end, which
// beats starting another over.
func (e *TurnEngine) progress() error {
	e.phase = phaseIdle

	if winner, ended := e.board.ChaseResult(e.cfg); ended {
		e.board.DecideOutcome(winner)
		if e.transitions == nil {
			return errNoTransitions
		}
		return e.transitions.RequestGameEnd()
	}

	if e.IsBattingSideAllOut() || e.HasHalfEnded() {
		if e.transitions == nil {
			return errNoTransitions
		}
		return e.transitions.RequestHalfTime()
	}

	if e.IsOverComplete() {
		e.startNextOver()
	}
	e.startNextTurn()
	return nil
}

func (e *TurnEngine) startNextOver() {
	in := e.board.Batting()
	in.AdvanceOver()
	e.out.Emit(EventOverStarted, OverStartedPayload{
		Batting: e.board.BattingSide(),
		Over:    in.OverCount,
	})
}

func (e *TurnEngine) startNextTurn() {
	in := e.board.Batting()
	e.countdown.Reset()
	e.input.Clear()
	in.IsOutThisTurn = false
	e.phase = phaseCountdown

	e.out.Emit(EventTurnCountdownStarted, TurnCountdownStartedPayload{
		Batting:         e.board.BattingSide(),
		Over:            in.OverCount,
		Ball:            in.BallCount + 1,
		DurationSeconds: e.cfg.TurnDurationSeconds,
	})
}

// IsOverComplete reports whether the batting side has faced every ball of the over.
func (e *TurnEngine) IsOverComplete() bool {
	in := e.board.Batting()
	return in != nil && in.IsOverComplete(e.cfg)
}

// IsLastOverOfHalf reports whether the over in progress is the innings' last.
func (e *TurnEngine) IsLastOverOfHalf() bool {
	in := e.board.Batting()
	return in != nil && in.IsLastOverOfHalf(e.cfg)
}

// IsBattingSideAllOut reports whether the batting side has lost every wicket.
func (e *TurnEngine) IsBattingSideAllOut() bool {
	in := e.board.Batting()
	return in != nil && in.IsAllOut(e.cfg)
}

// HasHalfEnded reports whether the final over of the half is complete.
func (e *TurnEngine) HasHalfEnded() bool {
	return e.IsOverComplete() && e.IsLastOverOfHalf()
}

// HasOwnerWon reports whether the second half has been decided for the owner.
func (e *TurnEngine) HasOwnerWon() bool {
	winner, ended := e.board.ChaseResult(e.cfg)
	return ended && winner == domain.SideOwner
}

// HasOpponentWon reports whether the second half has been decided for the opponent.
func (e *TurnEngine) HasOpponentWon() bool {
	winner, ended := e.board.ChaseResult(e.cfg)
	return ended && winner == domain.SideOpponent
}

// IsDraw reports whether the chasing innings finished level with the target.
func (e *TurnEngine) IsDraw() bool {
	winner, ended := e.board.ChaseResult(e.cfg)
	return ended && winner == domain.SideNone
}

// IsMatchEndConditionMet reports whether any match-ending condition holds.
func (e *TurnEngine) IsMatchEndConditionMet() bool {
	_, ended := e.board.ChaseResult(e.cfg)
	return ended
}

// RemainingRatio is the share of the turn countdown still left, in [0, 1].
func (e *TurnEngine) RemainingRatio() float64 {
	return e.countdown.RemainingRatio()
}

// Signal returns the signal registered by side for the current turn.
func (e *TurnEngine) Signal(side domain.Side) int {
	return e.input.Get(side)
}

// AcceptingInput reports whether a turn countdown is running.
func (e *TurnEngine) AcceptingInput() bool {
	return e.phase == phaseCountdown
}
