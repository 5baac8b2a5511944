package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"handcricket/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients when requesting a joinable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
	// Ticket must be passed as the "ticket" join metadata when tickets are enabled.
	Ticket string `json:"ticket,omitempty"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

// quickMatchQuery finds matches of this game still waiting for a second player.
func quickMatchQuery() string {
	return fmt.Sprintf("+label.open:>=1 +label.game:%s +label.state:%s", GameLabel, app.StatePreMatch)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("quick_match requires an authenticated user", 16) // UNAUTHENTICATED
	}

	limit := 10
	authoritative := true
	minSize := 0
	maxSize := app.PlayersPerMatch - 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery())
	if err != nil {
		logger.Error("RpcQuickMatch [User:%s]: MatchList error: %v", userID, err)
		return "", runtime.NewError("failed to list matches", 13) // INTERNAL
	}

	resp := QuickMatchResponse{}
	if len(matches) > 0 {
		resp.MatchID = matches[0].MatchId
		logger.Info("RpcQuickMatch [User:%s]: Found existing match %s", userID, resp.MatchID)
	} else {
		// Seat assignment happens in MatchJoin (server-authoritative).
		matchID, err := nk.MatchCreate(ctx, MatchNameHandCricket, map[string]interface{}{})
		if err != nil {
			logger.Error("RpcQuickMatch [User:%s]: MatchCreate error: %v", userID, err)
			return "", runtime.NewError("failed to create match", 13) // INTERNAL
		}
		resp.MatchID = matchID
		resp.IsNew = true
		logger.Info("RpcQuickMatch [User:%s]: Created new match %s", userID, matchID)
	}

	cfg := loadGameConfig(ctx, logger)
	signer := NewTicketSigner(cfg.TicketSecret, cfg.TicketTTL())
	if signer.Enabled() {
		ticket, err := signer.Issue(resp.MatchID, userID)
		if err != nil {
			logger.Error("RpcQuickMatch [User:%s]: Failed to issue ticket: %v", userID, err)
			return "", runtime.NewError("failed to issue seat ticket", 13) // INTERNAL
		}
		resp.Ticket = ticket
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", runtime.NewError("failed to encode response", 13) // INTERNAL
	}
	return string(b), nil
}
