package ports

import "context"

// Payout is one player's share of a settled match. The losing seat carries a
// negative amount.
type Payout struct {
	UserID string
	Amount int64
}

// StakeLedger moves match stakes between player wallets.
type StakeLedger interface {
	// Balance returns the user's coin balance.
	Balance(ctx context.Context, userID string) (int64, error)

	// PayOut applies the payouts of one finished match. Debits are applied
	// before credits so a failed debit never mints coins.
	PayOut(ctx context.Context, matchID string, payouts []Payout) error
}
