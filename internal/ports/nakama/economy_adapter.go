package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"handcricket/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
)

// walletCurrency is the wallet key stakes are settled in.
const walletCurrency = "coins"

// walletModule is the part of runtime.NakamaModule the ledger needs.
type walletModule interface {
	AccountGetId(ctx context.Context, userID string) (*api.Account, error)
	WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (map[string]int64, map[string]int64, error)
}

// walletLedger implements ports.StakeLedger on Nakama wallets.
type walletLedger struct {
	nk walletModule
}

func newWalletLedger(nk walletModule) *walletLedger {
	return &walletLedger{nk: nk}
}

// Balance reads the coin balance from the user's wallet.
func (l *walletLedger) Balance(ctx context.Context, userID string) (int64, error) {
	account, err := l.nk.AccountGetId(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account.GetWallet() == "" {
		return 0, nil
	}

	var wallet map[string]int64
	if err := json.Unmarshal([]byte(account.GetWallet()), &wallet); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}
	return wallet[walletCurrency], nil
}

// PayOut writes one ledger entry per non-zero payout, debits first.
func (l *walletLedger) PayOut(ctx context.Context, matchID string, payouts []ports.Payout) error {
	ordered := make([]ports.Payout, 0, len(payouts))
	for _, p := range payouts {
		if p.Amount != 0 {
			ordered = append(ordered, p)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Amount < ordered[j].Amount
	})

	for _, p := range ordered {
		reason := "match_won"
		if p.Amount < 0 {
			reason = "match_lost"
		}
		metadata := map[string]interface{}{
			"match_id": matchID,
			"reason":   reason,
		}
		if _, _, err := l.nk.WalletUpdate(ctx, p.UserID, map[string]int64{walletCurrency: p.Amount}, metadata, true); err != nil {
			return fmt.Errorf("failed to update wallet for user %s: %w", p.UserID, err)
		}
	}
	return nil
}
