package domain

// MatchConfiguration holds the immutable per-match rules.
type MatchConfiguration struct {
	BallsPerOver          int
	TotalOvers            int // overs per innings
	TotalWickets          int // wickets per innings
	TurnDurationSeconds   float64
	InterTurnDelaySeconds float64 // 0 progresses on the resolving tick
}

// Validate returns a *ConfigurationError for the first field that cannot start a match.
func (c MatchConfiguration) Validate() error {
	switch {
	case c.BallsPerOver <= 0:
		return &ConfigurationError{Field: "balls_per_over", Value: c.BallsPerOver}
	case c.TotalOvers <= 0:
		return &ConfigurationError{Field: "total_overs", Value: c.TotalOvers}
	case c.TotalWickets <= 0:
		return &ConfigurationError{Field: "total_wickets", Value: c.TotalWickets}
	case c.TurnDurationSeconds <= 0:
		return &ConfigurationError{Field: "turn_duration_seconds", Value: c.TurnDurationSeconds}
	case c.InterTurnDelaySeconds < 0:
		return &ConfigurationError{Field: "inter_turn_delay_seconds", Value: c.InterTurnDelaySeconds}
	}
	return nil
}
