package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"handcricket/internal/domain"

	"github.com/caarlos0/env/v11"
)

// DefaultPath is where the Nakama module looks for its game configuration.
const DefaultPath = "data/game_config.json"

// Nakama accepts tick rates in this range.
const (
	minTickRate = 1
	maxTickRate = 60
)

type StakeTier struct {
	ID    string `json:"id"`
	Stake int64  `json:"stake"`
}

// Settings are the scalar options that can be overridden from the Nakama
// runtime environment.
type Settings struct {
	BallsPerOver          int     `json:"balls_per_over"           env:"HANDCRICKET_BALLS_PER_OVER"`
	TotalOvers            int     `json:"total_overs"              env:"HANDCRICKET_TOTAL_OVERS"`
	TotalWickets          int     `json:"total_wickets"            env:"HANDCRICKET_TOTAL_WICKETS"`
	TurnDurationSeconds   float64 `json:"turn_duration_seconds"    env:"HANDCRICKET_TURN_DURATION_SECONDS"`
	InterTurnDelaySeconds float64 `json:"inter_turn_delay_seconds" env:"HANDCRICKET_INTER_TURN_DELAY_SECONDS"`
	// HalfTimeSeconds resumes play automatically after half-time; 0 waits for the owner.
	HalfTimeSeconds float64 `json:"half_time_seconds" env:"HANDCRICKET_HALF_TIME_SECONDS"`
	TickRate        int     `json:"tick_rate"         env:"HANDCRICKET_TICK_RATE"`

	DefaultTier string `json:"default_tier" env:"HANDCRICKET_DEFAULT_TIER"`

	// TicketSecret signs seat tickets. Empty disables ticket checks on join.
	TicketSecret     string `json:"ticket_secret"      env:"HANDCRICKET_TICKET_SECRET"`
	TicketTTLSeconds int    `json:"ticket_ttl_seconds" env:"HANDCRICKET_TICKET_TTL_SECONDS"`
}

// GameConfig is the server-side configuration for hand cricket matches.
type GameConfig struct {
	Settings
	Tiers []StakeTier `json:"tiers"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Default returns the built-in configuration.
func Default() *GameConfig {
	return &GameConfig{
		Settings: Settings{
			BallsPerOver:          6,
			TotalOvers:            2,
			TotalWickets:          2,
			TurnDurationSeconds:   5,
			InterTurnDelaySeconds: 2,
			TickRate:              10,
			DefaultTier:           "casual",
			TicketTTLSeconds:      300,
		},
		Tiers: []StakeTier{
			{ID: "casual", Stake: 100},
			{ID: "pro", Stake: 1000},
		},
	}
}

// ParseGameConfig decodes a JSON configuration on top of the defaults.
func ParseGameConfig(data []byte) (*GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return c, nil
}

// LoadGameConfig loads the game configuration from the given path. On failure
// the defaults stay in effect and the error is returned for logging.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			cfg = Default()
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := ParseGameConfig(data)
		if err != nil {
			cfg = Default()
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults if
// nothing has been loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}

// ApplyEnv returns a copy of c with HANDCRICKET_* values from environ applied.
// Keys missing from environ keep their current value.
func ApplyEnv(c *GameConfig, environ map[string]string) (*GameConfig, error) {
	out := *c
	out.Tiers = append([]StakeTier(nil), c.Tiers...)
	if len(environ) == 0 {
		return &out, nil
	}
	if err := env.ParseWithOptions(&out.Settings, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse game config env: %w", err)
	}
	return &out, nil
}

// MatchConfiguration returns the per-match rules. They are validated when a
// match starts, not here.
func (c *GameConfig) MatchConfiguration() domain.MatchConfiguration {
	return domain.MatchConfiguration{
		BallsPerOver:          c.BallsPerOver,
		TotalOvers:            c.TotalOvers,
		TotalWickets:          c.TotalWickets,
		TurnDurationSeconds:   c.TurnDurationSeconds,
		InterTurnDelaySeconds: c.InterTurnDelaySeconds,
	}
}

// Ticks returns the match tick rate clamped to what Nakama accepts.
func (c *GameConfig) Ticks() int {
	switch {
	case c.TickRate < minTickRate:
		return minTickRate
	case c.TickRate > maxTickRate:
		return maxTickRate
	}
	return c.TickRate
}

// TickDelta is the number of seconds one match tick represents.
func (c *GameConfig) TickDelta() float64 {
	return 1 / float64(c.Ticks())
}

// TicketTTL is how long an issued seat ticket stays valid.
func (c *GameConfig) TicketTTL() time.Duration {
	if c.TicketTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.TicketTTLSeconds) * time.Second
}

// Stake returns the stake for a given tier ID, or the default tier's stake if not found.
func (c *GameConfig) Stake(tierID string) int64 {
	target := tierID
	if target == "" {
		target = c.DefaultTier
	}

	for _, tier := range c.Tiers {
		if tier.ID == target {
			return tier.Stake
		}
	}

	// Fallback to default tier if specific ID not found
	for _, tier := range c.Tiers {
		if tier.ID == c.DefaultTier {
			return tier.Stake
		}
	}

	return 100
}

// GetStake returns the stake for a tier from the global configuration.
func GetStake(tierID string) int64 {
	if cfg == nil {
		return 100 // Safe default
	}
	return cfg.Stake(tierID)
}
