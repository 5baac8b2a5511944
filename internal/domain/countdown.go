package domain

// Countdown accumulates tick time toward a fixed duration.
type Countdown struct {
	Duration float64
	Elapsed  float64
	Paused   bool
}

// NewCountdown returns a paused countdown of the given length.
func NewCountdown(duration float64) Countdown {
	return Countdown{Duration: duration, Paused: true}
}

// Reset restarts the countdown from zero and unpauses it.
func (c *Countdown) Reset() {
	c.Elapsed = 0
	c.Paused = false
}

// Advance adds delta seconds while running. It returns true on the tick the
// duration is reached and pauses itself, so it fires once per Reset.
func (c *Countdown) Advance(delta float64) bool {
	if c.Paused {
		return false
	}
	c.Elapsed += delta
	if c.Elapsed < c.Duration {
		return false
	}
	c.Paused = true
	return true
}

// RemainingRatio returns 1 - elapsed/duration clamped to [0, 1].
func (c *Countdown) RemainingRatio() float64 {
	if c.Duration <= 0 {
		return 0
	}
	ratio := 1 - c.Elapsed/c.Duration
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	}
	return ratio
}
