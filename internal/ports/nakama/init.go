package nakama

import (
	"context"
	"database/sql"

	"handcricket/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameHandCricket, NewMatch); err != nil {
		return err
	}

	logger.Info("HandCricket Go module loaded.")
	return nil
}

// loadGameConfig returns the file configuration with the runtime environment
// applied. Failures are logged and fall back to what could be loaded.
func loadGameConfig(ctx context.Context, logger runtime.Logger) *config.GameConfig {
	if err := config.LoadGameConfig(config.DefaultPath); err != nil {
		logger.Warn("Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	environ, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	withEnv, err := config.ApplyEnv(cfg, environ)
	if err != nil {
		logger.Error("Invalid game config env, ignoring overrides: %v", err)
		return cfg
	}
	return withEnv
}
