package domain

import (
	"errors"
	"testing"
)

var testConfig = MatchConfiguration{
	BallsPerOver:          6,
	TotalOvers:            2,
	TotalWickets:          2,
	TurnDurationSeconds:   1,
	InterTurnDelaySeconds: 1,
}

func TestInningsResolve(t *testing.T) {
	tests := []struct {
		name        string
		batting     int
		bowling     int
		wantScore   int
		wantOut     bool
		wantWickets int
	}{
		{name: "Scores batting signal", batting: 4, bowling: 1, wantScore: 4},
		{name: "Matching signals is out", batting: 3, bowling: 3, wantOut: true, wantWickets: 1},
		{name: "Both missing is out", batting: 0, bowling: 0, wantOut: true, wantWickets: 1},
		{name: "Bowler missing scores", batting: 6, bowling: 0, wantScore: 6},
		{name: "Batter missing scores nothing", batting: 0, bowling: 2},
		{name: "Out of range signal is scored as given", batting: 9, bowling: 1, wantScore: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Innings{OverCount: 1}
			ball := in.Resolve(tt.batting, tt.bowling)
			if ball.Score != tt.wantScore || ball.WicketLost != tt.wantOut {
				t.Fatalf("ball = %+v, want score %d out %t", ball, tt.wantScore, tt.wantOut)
			}
			if in.TotalScore != tt.wantScore || in.WicketsLost != tt.wantWickets {
				t.Fatalf("total/wickets = %d/%d, want %d/%d", in.TotalScore, in.WicketsLost, tt.wantScore, tt.wantWickets)
			}
			if ball.OverNumber != 1 || ball.BallNumber != 1 || in.BallCount != 1 {
				t.Fatalf("ball position = %d.%d, want 1.1", ball.OverNumber, ball.BallNumber)
			}
			if len(in.OverBalls) != 1 || in.OverBalls[0] != ball || in.LastBall != ball {
				t.Fatalf("ball not recorded: %+v", in.OverBalls)
			}
		})
	}
}

func TestInningsOverProgression(t *testing.T) {
	in := Innings{}
	in.ResetForHalf()
	in.AdvanceOver()
	if in.OverCount != 1 || in.BallCount != 0 {
		t.Fatalf("over/ball = %d/%d, want 1/0", in.OverCount, in.BallCount)
	}

	for i := 0; i < testConfig.BallsPerOver; i++ {
		if in.IsOverComplete(testConfig) {
			t.Fatalf("over complete after %d balls", i)
		}
		in.Resolve(2, 1)
	}
	if !in.IsOverComplete(testConfig) {
		t.Fatalf("over not complete after %d balls", testConfig.BallsPerOver)
	}
	if in.IsLastOverOfHalf(testConfig) || in.HasHalfEnded(testConfig) {
		t.Fatalf("half ended after the first of two overs")
	}

	in.AdvanceOver()
	if in.OverCount != 2 || in.BallCount != 0 || len(in.OverBalls) != 0 {
		t.Fatalf("after AdvanceOver over/ball/balls = %d/%d/%d, want 2/0/0", in.OverCount, in.BallCount, len(in.OverBalls))
	}
	if in.TotalScore != 12 {
		t.Fatalf("total = %d, want 12", in.TotalScore)
	}
	for i := 0; i < testConfig.BallsPerOver; i++ {
		in.Resolve(1, 2)
	}
	if !in.HasHalfEnded(testConfig) || !in.IsFinished(testConfig) {
		t.Fatalf("half should have ended after the last over")
	}

	in.ResetForHalf()
	if in.OverCount != 0 || in.BallCount != 0 || in.OverBalls != nil {
		t.Fatalf("ResetForHalf left counters %d/%d", in.OverCount, in.BallCount)
	}
	if in.TotalScore != 18 {
		t.Fatalf("ResetForHalf changed total to %d", in.TotalScore)
	}
}

func TestInningsAllOut(t *testing.T) {
	in := Innings{OverCount: 1}
	in.Resolve(5, 5)
	if in.IsAllOut(testConfig) {
		t.Fatalf("all out after one wicket")
	}
	in.Resolve(1, 1)
	if !in.IsAllOut(testConfig) || !in.IsFinished(testConfig) {
		t.Fatalf("not all out after %d wickets", in.WicketsLost)
	}
}

func TestTurnInputBuffer(t *testing.T) {
	var buf TurnInputBuffer
	buf.Set(SideOwner, 3)
	buf.Set(SideOwner, 5)
	buf.Set(SideOpponent, 2)
	buf.Set(SideNone, 4)

	if got := buf.Get(SideOwner); got != 5 {
		t.Fatalf("owner signal = %d, want 5", got)
	}
	if got := buf.Get(SideOpponent); got != 2 {
		t.Fatalf("opponent signal = %d, want 2", got)
	}
	if got := buf.Get(SideNone); got != 0 {
		t.Fatalf("none signal = %d, want 0", got)
	}

	buf.Clear()
	if buf.Get(SideOwner) != 0 || buf.Get(SideOpponent) != 0 {
		t.Fatalf("Clear() left signals behind")
	}
}

func TestMatchConfigurationValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *MatchConfiguration)
		wantField string
	}{
		{name: "Valid", mutate: func(c *MatchConfiguration) {}},
		{name: "Zero delay is valid", mutate: func(c *MatchConfiguration) { c.InterTurnDelaySeconds = 0 }},
		{name: "Balls per over", mutate: func(c *MatchConfiguration) { c.BallsPerOver = 0 }, wantField: "balls_per_over"},
		{name: "Total overs", mutate: func(c *MatchConfiguration) { c.TotalOvers = -1 }, wantField: "total_overs"},
		{name: "Total wickets", mutate: func(c *MatchConfiguration) { c.TotalWickets = 0 }, wantField: "total_wickets"},
		{name: "Turn duration", mutate: func(c *MatchConfiguration) { c.TurnDurationSeconds = 0 }, wantField: "turn_duration_seconds"},
		{name: "Negative delay", mutate: func(c *MatchConfiguration) { c.InterTurnDelaySeconds = -0.5 }, wantField: "inter_turn_delay_seconds"},
		{
			name: "First bad field wins",
			mutate: func(c *MatchConfiguration) {
				c.TotalWickets = 0
				c.BallsPerOver = 0
			},
			wantField: "balls_per_over",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigurationError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Fatalf("field = %s, want %s", cfgErr.Field, tt.wantField)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("error does not match ErrConfiguration")
			}
		})
	}
}
