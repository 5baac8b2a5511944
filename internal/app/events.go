package app

import "handcricket/internal/domain"

// EventKind identifies emitted match events for Nakama dispatch.
type EventKind string

const (
	EventStateEntered          EventKind = "state_entered"
	EventHalfStarted           EventKind = "half_started"
	EventOverStarted           EventKind = "over_started"
	EventTurnCountdownStarted  EventKind = "turn_countdown_started"
	EventTurnCountdownProgress EventKind = "turn_countdown_progress"
	EventTurnCountdownEnded    EventKind = "turn_countdown_ended"
	EventBallResolved          EventKind = "ball_resolved"
	EventGameEnded             EventKind = "game_ended"
)

// Event is a match event with its typed payload.
type Event struct {
	Kind    EventKind
	Payload any
}

type StateEnteredPayload struct {
	State State
}

type HalfStartedPayload struct {
	Half    domain.Half
	Batting domain.Side
	Target  int // runs needed to win; 0 in the first half
}

type OverStartedPayload struct {
	Batting domain.Side
	Over    int
}

type TurnCountdownStartedPayload struct {
	Batting         domain.Side
	Over            int
	Ball            int // number of the ball about to be bowled
	DurationSeconds float64
}

type TurnCountdownProgressPayload struct {
	RemainingRatio float64
}

type TurnCountdownEndedPayload struct {
	Batting domain.Side
}

type BallResolvedPayload struct {
	Batting        domain.Side
	Ball           domain.BallRecord
	TotalScore     int
	WicketsLost    int
	OwnerSignal    int
	OpponentSignal int
}

type GameEndedPayload struct {
	Winner        domain.Side
	IsDraw        bool
	Result        domain.Result // owner's point of view
	Margin        int           // opponent total - owner total
	OwnerTotal    int
	OpponentTotal int
}

// Outbox queues events until the driver drains them.
type Outbox struct {
	events []Event
}

// Emit appends an event to the queue.
func (o *Outbox) Emit(kind EventKind, payload any) {
	o.events = append(o.events, Event{Kind: kind, Payload: payload})
}

// Drain returns the queued events in emission order and empties the queue.
func (o *Outbox) Drain() []Event {
	events := o.events
	o.events = nil
	return events
}

// Len returns the number of queued events.
func (o *Outbox) Len() int {
	return len(o.events)
}

// truncate drops events queued after mark.
func (o *Outbox) truncate(mark int) {
	if mark < len(o.events) {
		o.events = o.events[:mark]
	}
}
