package domain

// Settlement captures the wallet changes owed once a match has ended.
type Settlement struct {
	BalanceChanges map[string]int64 // userID -> amount
}

// Settle moves stake from the losing seat to the winning seat. A draw, an
// undecided outcome or a non-positive stake settles nothing. seats holds the
// user IDs indexed by Side.Seat.
func Settle(outcome MatchOutcome, seats [2]string, stake int64) Settlement {
	settlement := Settlement{BalanceChanges: make(map[string]int64, len(seats))}
	if !outcome.Decided() || outcome.IsDraw || stake <= 0 || !outcome.Winner.Valid() {
		return settlement
	}

	winner := seats[outcome.Winner.Seat()]
	loser := seats[outcome.Winner.Other().Seat()]
	if winner != "" {
		settlement.BalanceChanges[winner] += stake
	}
	if loser != "" {
		settlement.BalanceChanges[loser] -= stake
	}
	return settlement
}
