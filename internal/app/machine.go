package app

import (
	"handcricket/internal/domain"
)

// State is a named match state.
type State string

const (
	StatePreMatch   State = "pre_match"
	StateFirstHalf  State = "first_half"
	StateHalfTime   State = "half_time"
	StateSecondHalf State = "second_half"
	StateGameEnd    State = "game_end"
)

// TurnProgression is the part of the turn engine the state machine drives.
type TurnProgression interface {
	StartHalf() error
	Tick(delta float64) error
}

type trigger string

const (
	triggerStart    trigger = "start"
	triggerHalfTime trigger = "half_time"
	triggerResume   trigger = "resume"
	triggerGameEnd  trigger = "game_end"
)

// nextState returns the state reached from cur by t.
func nextState(cur State, t trigger) (State, error) {
	switch cur {
	case StatePreMatch:
		if t == triggerStart {
			return StateFirstHalf, nil
		}
	case StateFirstHalf:
		if t == triggerHalfTime {
			return StateHalfTime, nil
		}
	case StateHalfTime:
		if t == triggerResume {
			return StateSecondHalf, nil
		}
	case StateSecondHalf:
		if t == triggerGameEnd {
			return StateGameEnd, nil
		}
	}
	return cur, &domain.InvalidStateTransitionError{State: string(cur), Operation: string(t)}
}

// matchState is one node of the state machine.
type matchState interface {
	Enter() error
	Exit() error
	Update(delta float64) error
}

// MatchMachine sequences the halves of a match. It never scores; it reads
// totals from the scoreboard and hands turn progression to the engine.
type MatchMachine struct {
	board       *domain.Scoreboard
	progression TurnProgression
	out         *Outbox

	current      State
	states       map[State]matchState
	firstBatting domain.Side

	halfTimeSeconds float64
	halfTimeElapsed float64
}

// NewMatchMachine returns a machine in StatePreMatch. halfTimeSeconds > 0
// resumes play automatically after that long at half-time.
func NewMatchMachine(board *domain.Scoreboard, progression TurnProgression, out *Outbox, halfTimeSeconds float64) *MatchMachine {
	m := &MatchMachine{
		board:           board,
		progression:     progression,
		out:             out,
		current:         StatePreMatch,
		halfTimeSeconds: halfTimeSeconds,
	}
	m.states = map[State]matchState{
		StatePreMatch:   preMatchState{},
		StateFirstHalf:  &battingState{m: m, half: domain.HalfFirst},
		StateHalfTime:   &halfTimeState{m: m},
		StateSecondHalf: &battingState{m: m, half: domain.HalfSecond},
		StateGameEnd:    &gameEndState{m: m},
	}
	return m
}

// State returns the current state.
func (m *MatchMachine) State() State {
	return m.current
}

// Start begins the first half with firstBatting at the crease. SideNone
// defaults to the owner.
func (m *MatchMachine) Start(firstBatting domain.Side) error {
	if m.current != StatePreMatch {
		return &domain.InvalidStateTransitionError{State: string(m.current), Operation: string(triggerStart)}
	}
	if !firstBatting.Valid() {
		firstBatting = domain.SideOwner
	}
	m.firstBatting = firstBatting
	return m.fire(triggerStart)
}

// RequestHalfTime ends the first half.
func (m *MatchMachine) RequestHalfTime() error {
	return m.fire(triggerHalfTime)
}

// Resume starts the second half from half-time.
func (m *MatchMachine) Resume() error {
	return m.fire(triggerResume)
}

// RequestGameEnd ends the match. The outcome must already be decided.
func (m *MatchMachine) RequestGameEnd() error {
	return m.fire(triggerGameEnd)
}

// Update forwards elapsed time to the current state.
func (m *MatchMachine) Update(delta float64) error {
	return m.states[m.current].Update(delta)
}

// fire exits the current state and enters the next one. If the entry action
// fails the machine stays where it was and the events it queued are dropped.
func (m *MatchMachine) fire(t trigger) error {
	to, err := nextState(m.current, t)
	if err != nil {
		return err
	}
	from := m.current
	if err := m.states[from].Exit(); err != nil {
		return err
	}

	mark := m.out.Len()
	m.current = to
	m.out.Emit(EventStateEntered, StateEnteredPayload{State: to})
	if err := m.states[to].Enter(); err != nil {
		m.current = from
		m.out.truncate(mark)
		return err
	}
	return nil
}

type preMatchState struct{}

func (preMatchState) Enter() error           { return nil }
func (preMatchState) Exit() error            { return nil }
func (preMatchState) Update(_ float64) error { return nil }

// battingState is a half in which one side bats.
type battingState struct {
	m    *MatchMachine
	half domain.Half
}

func (s *battingState) Enter() error {
	board := s.m.board
	prevHalf, prevBatting := board.Half(), board.BattingSide()

	batting := board.BattingSide()
	if s.half == domain.HalfFirst {
		batting = s.m.firstBatting
	}
	board.BeginHalf(s.half, batting)

	if err := s.m.progression.StartHalf(); err != nil {
		board.BeginHalf(prevHalf, prevBatting)
		return err
	}
	if batting == domain.SideOwner {
		board.MarkOwnerBatted()
	}
	return nil
}

func (s *battingState) Exit() error { return nil }

func (s *battingState) Update(delta float64) error {
	return s.m.progression.Tick(delta)
}

// halfTimeState keeps the first innings as it finished and swaps the batting side.
type halfTimeState struct {
	m *MatchMachine
}

func (s *halfTimeState) Enter() error {
	s.m.board.FlipBatting()
	s.m.halfTimeElapsed = 0
	return nil
}

func (s *halfTimeState) Exit() error { return nil }

func (s *halfTimeState) Update(delta float64) error {
	if s.m.halfTimeSeconds <= 0 {
		return nil
	}
	s.m.halfTimeElapsed += delta
	if s.m.halfTimeElapsed < s.m.halfTimeSeconds {
		return nil
	}
	return s.m.Resume()
}

// gameEndState is terminal; leaving or updating it is a fault.
type gameEndState struct {
	m *MatchMachine
}

func (s *gameEndState) Enter() error {
	board := s.m.board
	outcome := board.Outcome()
	if !outcome.Decided() {
		return &domain.InvalidStateTransitionError{State: string(StateGameEnd), Operation: "enter without outcome"}
	}
	s.m.out.Emit(EventGameEnded, GameEndedPayload{
		Winner:        outcome.Winner,
		IsDraw:        outcome.IsDraw,
		Result:        outcome.ResultFor(domain.SideOwner),
		Margin:        board.Margin(),
		OwnerTotal:    board.Total(domain.SideOwner),
		OpponentTotal: board.Total(domain.SideOpponent),
	})
	return nil
}

func (s *gameEndState) Exit() error {
	return &domain.InvalidStateTransitionError{State: string(StateGameEnd), Operation: "exit"}
}

func (s *gameEndState) Update(_ float64) error {
	return &domain.InvalidStateTransitionError{State: string(StateGameEnd), Operation: "update"}
}
