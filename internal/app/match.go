package app

import (
	"handcricket/internal/domain"
)

// Match wires one scoreboard, turn engine and state machine together for a
// single match instance. Discard it to abort a match.
type Match struct {
	cfg     domain.MatchConfiguration
	board   *domain.Scoreboard
	out     *Outbox
	engine  *TurnEngine
	machine *MatchMachine
}

// NewMatch builds a match in StatePreMatch.
func NewMatch(cfg domain.MatchConfiguration, halfTimeSeconds float64) *Match {
	board := domain.NewScoreboard()
	out := &Outbox{}
	engine := NewTurnEngine(cfg, board, out)
	machine := NewMatchMachine(board, engine, out, halfTimeSeconds)
	engine.SetTransitions(machine)

	return &Match{
		cfg:     cfg,
		board:   board,
		out:     out,
		engine:  engine,
		machine: machine,
	}
}

// Start begins the first half with firstBatting batting.
func (m *Match) Start(firstBatting domain.Side) error {
	return m.machine.Start(firstBatting)
}

// RegisterInput records a side's hand signal for the current turn.
func (m *Match) RegisterInput(side domain.Side, signal int) {
	m.engine.RegisterInput(side, signal)
}

// Update advances the match clock by delta seconds.
func (m *Match) Update(delta float64) error {
	return m.machine.Update(delta)
}

// Resume continues into the second half from half-time.
func (m *Match) Resume() error {
	return m.machine.Resume()
}

// Drain returns and clears the queued events.
func (m *Match) Drain() []Event {
	return m.out.Drain()
}

// State returns the current match state.
func (m *Match) State() State {
	return m.machine.State()
}

// Outcome returns the match outcome; it is decided once the match reaches StateGameEnd.
func (m *Match) Outcome() domain.MatchOutcome {
	return m.board.Outcome()
}

// Config returns the rules the match was built with.
func (m *Match) Config() domain.MatchConfiguration {
	return m.cfg
}

// Engine exposes the turn engine for end-condition queries.
func (m *Match) Engine() *TurnEngine {
	return m.engine
}

// InningsSnapshot is a read-only copy of one side's innings.
type InningsSnapshot struct {
	TotalScore  int
	OverCount   int
	BallCount   int
	WicketsLost int
	LastBall    domain.BallRecord
	OverBalls   []domain.BallRecord
}

// Snapshot is a point-in-time view of a match for late joiners.
type Snapshot struct {
	State          State
	Half           domain.Half
	Batting        domain.Side
	RemainingRatio float64
	AcceptingInput bool
	Owner          InningsSnapshot
	Opponent       InningsSnapshot
	Outcome        domain.MatchOutcome
}

// Snapshot copies the current match view.
func (m *Match) Snapshot() Snapshot {
	return Snapshot{
		State:          m.machine.State(),
		Half:           m.board.Half(),
		Batting:        m.board.BattingSide(),
		RemainingRatio: m.engine.RemainingRatio(),
		AcceptingInput: m.engine.AcceptingInput(),
		Owner:          snapshotInnings(m.board.Innings(domain.SideOwner)),
		Opponent:       snapshotInnings(m.board.Innings(domain.SideOpponent)),
		Outcome:        m.board.Outcome(),
	}
}

func snapshotInnings(in *domain.Innings) InningsSnapshot {
	return InningsSnapshot{
		TotalScore:  in.TotalScore,
		OverCount:   in.OverCount,
		BallCount:   in.BallCount,
		WicketsLost: in.WicketsLost,
		LastBall:    in.LastBall,
		OverBalls:   append([]domain.BallRecord(nil), in.OverBalls...),
	}
}
