package app

import (
	"testing"

	"handcricket/internal/domain"
)

// playBall registers both signals and ticks through the countdown and the
// inter-turn delay.
func playBall(t *testing.T, m *Match, owner, opponent int) {
	t.Helper()
	m.RegisterInput(domain.SideOwner, owner)
	m.RegisterInput(domain.SideOpponent, opponent)
	if err := m.Update(m.cfg.TurnDurationSeconds); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if m.cfg.InterTurnDelaySeconds > 0 {
		if err := m.Update(m.cfg.InterTurnDelaySeconds); err != nil {
			t.Fatalf("Update() error: %v", err)
		}
	}
}

func TestFirstOverScenario(t *testing.T) {
	cfg := domain.MatchConfiguration{BallsPerOver: 6, TotalOvers: 2, TotalWickets: 2, TurnDurationSeconds: 1, InterTurnDelaySeconds: 1}
	m := NewMatch(cfg, 0)
	if err := m.Start(domain.SideOwner); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	ownerSignals := []int{3, 4, 2, 2, 5, 3}
	opponentSignals := []int{1, 1, 1, 2, 1, 1}
	for i := 0; i < 5; i++ {
		playBall(t, m, ownerSignals[i], opponentSignals[i])
	}

	// Sixth ball: stop between resolution and progression.
	m.RegisterInput(domain.SideOwner, ownerSignals[5])
	m.RegisterInput(domain.SideOpponent, opponentSignals[5])
	if err := m.Update(cfg.TurnDurationSeconds); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	snap := m.Snapshot()
	if snap.Owner.OverCount != 1 || snap.Owner.BallCount != 6 {
		t.Fatalf("over/ball = %d/%d after ball 6, want 1/6", snap.Owner.OverCount, snap.Owner.BallCount)
	}
	if snap.Owner.TotalScore != 17 || snap.Owner.WicketsLost != 1 {
		t.Fatalf("score/wickets = %d/%d, want 17/1", snap.Owner.TotalScore, snap.Owner.WicketsLost)
	}
	if len(snap.Owner.OverBalls) != 6 || !snap.Owner.OverBalls[3].WicketLost || snap.Owner.OverBalls[3].Score != 0 {
		t.Fatalf("over balls = %+v, want ball 4 as the wicket", snap.Owner.OverBalls)
	}

	if err := m.Update(cfg.InterTurnDelaySeconds); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	snap = m.Snapshot()
	if snap.Owner.OverCount != 2 || snap.Owner.BallCount != 0 || len(snap.Owner.OverBalls) != 0 {
		t.Fatalf("over/ball = %d/%d, want 2/0 after the over advanced", snap.Owner.OverCount, snap.Owner.BallCount)
	}
	if m.State() != StateFirstHalf {
		t.Fatalf("state = %s, want %s", m.State(), StateFirstHalf)
	}
}

func TestChaseWonByOpponent(t *testing.T) {
	cfg := domain.MatchConfiguration{BallsPerOver: 6, TotalOvers: 2, TotalWickets: 2, TurnDurationSeconds: 1}
	m := NewMatch(cfg, 0)
	if err := m.Start(domain.SideOwner); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	for i := 0; i < 9; i++ {
		playBall(t, m, 5, 1)
	}
	playBall(t, m, 2, 2)
	playBall(t, m, 4, 4)

	if m.State() != StateHalfTime {
		t.Fatalf("state = %s after the owner was all out, want %s", m.State(), StateHalfTime)
	}
	if got := m.Snapshot().Owner.TotalScore; got != 45 {
		t.Fatalf("owner total = %d, want 45", got)
	}
	if err := m.Resume(); err != nil {
		t.Fatalf("Resume() error: %v", err)
	}

	for i := 0; i < 7; i++ {
		playBall(t, m, 1, 6)
		if m.Engine().HasOwnerWon() || m.Engine().IsMatchEndConditionMet() {
			t.Fatalf("match decided after %d chase balls", i+1)
		}
	}
	if m.State() != StateSecondHalf {
		t.Fatalf("state = %s, want %s", m.State(), StateSecondHalf)
	}
	m.Drain()

	playBall(t, m, 1, 4)
	if m.State() != StateGameEnd {
		t.Fatalf("state = %s, want %s", m.State(), StateGameEnd)
	}
	outcome := m.Outcome()
	if outcome.Winner != domain.SideOpponent || outcome.IsDraw {
		t.Fatalf("outcome = %+v, want opponent win", outcome)
	}
	if m.Engine().HasOwnerWon() || !m.Engine().HasOpponentWon() {
		t.Fatalf("win predicates disagree with the outcome")
	}

	var ended *GameEndedPayload
	for _, ev := range m.Drain() {
		if ev.Kind == EventGameEnded {
			p := ev.Payload.(GameEndedPayload)
			ended = &p
		}
	}
	if ended == nil {
		t.Fatalf("expected game ended event")
	}
	if ended.Result != domain.ResultLoss || ended.Margin != 1 || ended.OpponentTotal != 46 {
		t.Fatalf("game ended payload = %+v, want owner loss by 1", *ended)
	}
}

func TestChaseDrawnOnFinalBall(t *testing.T) {
	cfg := domain.MatchConfiguration{BallsPerOver: 2, TotalOvers: 1, TotalWickets: 2, TurnDurationSeconds: 1}
	m := NewMatch(cfg, 0)
	if err := m.Start(domain.SideOwner); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	playBall(t, m, 3, 1)
	playBall(t, m, 4, 1)
	if m.State() != StateHalfTime {
		t.Fatalf("state = %s, want %s", m.State(), StateHalfTime)
	}
	if err := m.Resume(); err != nil {
		t.Fatalf("Resume() error: %v", err)
	}

	playBall(t, m, 1, 3)
	if m.State() != StateSecondHalf {
		t.Fatalf("state = %s, want %s", m.State(), StateSecondHalf)
	}
	playBall(t, m, 1, 4)

	if m.State() != StateGameEnd {
		t.Fatalf("state = %s, want %s", m.State(), StateGameEnd)
	}
	outcome := m.Outcome()
	if !outcome.IsDraw || outcome.Winner != domain.SideNone {
		t.Fatalf("outcome = %+v, want draw", outcome)
	}
	if !m.Engine().IsDraw() {
		t.Fatalf("IsDraw() = false, want true")
	}
}

func TestChaseWonByOwnerBattingSecond(t *testing.T) {
	cfg := domain.MatchConfiguration{BallsPerOver: 3, TotalOvers: 1, TotalWickets: 1, TurnDurationSeconds: 1}
	m := NewMatch(cfg, 0)
	if err := m.Start(domain.SideOpponent); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	playBall(t, m, 1, 6)
	playBall(t, m, 2, 2)
	if m.State() != StateHalfTime {
		t.Fatalf("state = %s, want %s", m.State(), StateHalfTime)
	}
	if err := m.Resume(); err != nil {
		t.Fatalf("Resume() error: %v", err)
	}

	playBall(t, m, 5, 1)
	playBall(t, m, 3, 1)

	if m.State() != StateGameEnd {
		t.Fatalf("state = %s, want %s", m.State(), StateGameEnd)
	}
	snap := m.Snapshot()
	if snap.Outcome.ResultFor(domain.SideOwner) != domain.ResultWin {
		t.Fatalf("result = %s, want win", snap.Outcome.ResultFor(domain.SideOwner))
	}
	if snap.Owner.OverCount != 1 || snap.Owner.BallCount != 2 {
		t.Fatalf("owner over/ball = %d/%d, want 1/2", snap.Owner.OverCount, snap.Owner.BallCount)
	}
}

func TestOutcomeIsWrittenOnce(t *testing.T) {
	cfg := domain.MatchConfiguration{BallsPerOver: 1, TotalOvers: 1, TotalWickets: 1, TurnDurationSeconds: 1}
	m := NewMatch(cfg, 0)
	if err := m.Start(domain.SideOwner); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	playBall(t, m, 4, 1)
	if err := m.Resume(); err != nil {
		t.Fatalf("Resume() error: %v", err)
	}
	playBall(t, m, 1, 2)

	if m.Outcome().Winner != domain.SideOwner {
		t.Fatalf("winner = %s, want owner", m.Outcome().Winner)
	}
	if m.board.DecideOutcome(domain.SideNone) || m.board.DecideOutcome(domain.SideOpponent) {
		t.Fatalf("outcome overwritten after it was decided")
	}
	if outcome := m.Outcome(); outcome.Winner != domain.SideOwner || outcome.IsDraw {
		t.Fatalf("outcome = %+v, want owner win", outcome)
	}
	if err := m.Update(1); err == nil {
		t.Fatalf("Update() after game end should fail")
	}
}

func TestMatchStartConfigurationFault(t *testing.T) {
	m := NewMatch(domain.MatchConfiguration{BallsPerOver: 0, TotalOvers: 2, TotalWickets: 2, TurnDurationSeconds: 1}, 0)

	if err := m.Start(domain.SideOwner); err == nil {
		t.Fatalf("Start() should fail with zero balls per over")
	}
	if m.State() != StatePreMatch {
		t.Fatalf("state = %s, want %s", m.State(), StatePreMatch)
	}
	if events := m.Drain(); len(events) != 0 {
		t.Fatalf("events = %+v, want none", events)
	}
	snap := m.Snapshot()
	if snap.Owner.OverCount != 0 || snap.Owner.BallCount != 0 || snap.Batting != domain.SideNone {
		t.Fatalf("snapshot mutated: %+v", snap)
	}
}
