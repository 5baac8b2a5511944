package nakama

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"handcricket/internal/app"
	"handcricket/internal/config"
	"handcricket/internal/domain"
	"handcricket/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Error codes sent with OpError.
const (
	errCodeBadRequest = 400
	errCodeForbidden  = 403
	errCodeConflict   = 409
	errCodeDisabled   = 503
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	MatchID   string                      `json:"match_id"`
	Seats     [app.PlayersPerMatch]string `json:"seats"`    // Seat 0 plays the owner side, seat 1 the opponent side
	Tick      int64                       `json:"tick"`     // Current Nakama tick
	Stake     int64                       `json:"stake"`    // Coins moved from loser to winner
	Disabled  bool                        `json:"disabled"` // Set when the configured rules cannot start a half
	Settled   bool                        `json:"settled"`  // Whether the current match has been paid out
	Presences map[string]runtime.Presence `json:"-"`        // Map UserId -> Presence for targeted messaging
	Config    *config.GameConfig          `json:"-"`
	Match     *app.Match                  `json:"-"` // Rules engine for the current match
	Tickets   *TicketSigner               `json:"-"`
	Ledger    ports.StakeLedger           `json:"-"` // Pays stakes out of Nakama wallets
}

func newMatchState(matchID string, cfg *config.GameConfig, ledger ports.StakeLedger, stake int64) *MatchState {
	return &MatchState{
		MatchID:   matchID,
		Stake:     stake,
		Presences: make(map[string]runtime.Presence),
		Config:    cfg,
		Match:     app.NewMatch(cfg.MatchConfiguration(), cfg.HalfTimeSeconds),
		Tickets:   NewTicketSigner(cfg.TicketSecret, cfg.TicketTTL()),
		Ledger:    ledger,
	}
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

// SeatOf returns the user's seat index, or -1 if the user is not seated.
func (ms *MatchState) SeatOf(userID string) int {
	if userID == "" {
		return -1
	}
	for i, seat := range ms.Seats {
		if seat == userID {
			return i
		}
	}
	return -1
}

// inPlay reports whether a half or the half-time break is in progress.
func (ms *MatchState) inPlay() bool {
	switch ms.Match.State() {
	case app.StateFirstHalf, app.StateHalfTime, app.StateSecondHalf:
		return true
	}
	return false
}

func (ms *MatchState) labelState() string {
	if ms.Disabled {
		return labelStateDisabled
	}
	return string(ms.Match.State())
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return newMatchHandler(), nil
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg := loadGameConfig(ctx, logger)
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	tier, _ := params["tier"].(string)

	state := newMatchState(matchID, cfg, newWalletLedger(nk), cfg.Stake(tier))

	label, err := matchLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, cfg.Ticks(), label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	accept, reason := admit(matchState, presence.GetUserId(), metadata)
	if !accept {
		logger.Debug("MatchJoinAttempt: Rejected %s: %s", presence.GetUserId(), reason)
	}
	return matchState, accept, reason
}

// admit decides whether userID may take a seat.
func admit(state *MatchState, userID string, metadata map[string]string) (bool, string) {
	if state.SeatOf(userID) >= 0 {
		return true, ""
	}
	if state.Disabled {
		return false, "match disabled"
	}
	if state.Match.State() != app.StatePreMatch {
		return false, "match in progress"
	}
	if state.GetOpenSeatsCount() <= 0 {
		return false, "match full"
	}
	if state.Tickets.Enabled() {
		if err := state.Tickets.Verify(metadata[metadataTicketKey], state.MatchID, userID); err != nil {
			return false, err.Error()
		}
	}
	return true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		if seat := seatPlayer(matchState, p.GetUserId()); seat < 0 {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", p.GetUserId())
		} else {
			logger.Debug("MatchJoin: User %s took seat %d.", p.GetUserId(), seat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(ctx, matchState, dispatcher, logger)

	return matchState
}

// seatPlayer puts userID in the first free seat and returns it, or -1 when
// the match is full. A seated user keeps their seat.
func seatPlayer(state *MatchState, userID string) int {
	if seat := state.SeatOf(userID); seat >= 0 {
		return seat
	}
	for i, seat := range state.Seats {
		if seat == "" {
			state.Seats[i] = userID
			return i
		}
	}
	return -1
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	userIDs := make([]string, 0, len(presences))
	for _, p := range presences {
		userIDs = append(userIDs, p.GetUserId())
	}

	if terminate := mh.removePlayers(ctx, matchState, dispatcher, logger, userIDs); terminate {
		return nil
	}
	return matchState
}

// removePlayers frees the leavers' seats. It returns true when the match
// should terminate: nobody is left, or a seat emptied during play.
func (mh *matchHandler) removePlayers(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userIDs []string) bool {
	seatLost := false
	for _, userID := range userIDs {
		delete(state.Presences, userID)

		seat := state.SeatOf(userID)
		if seat < 0 {
			continue
		}
		state.Seats[seat] = ""
		seatLost = true
		logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)

		if data, err := encodePayload(map[string]any{"user_id": userID, "seat": seat}); err == nil {
			dispatcher.BroadcastMessage(OpPlayerLeft, data, nil, nil, true)
		}
	}

	if state.GetOccupiedSeatCount() == 0 {
		logger.Info("MatchLeave: Terminating match with no players.")
		return true
	}
	if seatLost && state.inPlay() {
		logger.Info("MatchLeave: Terminating match abandoned in state %s.", state.Match.State())
		return true
	}

	// The remaining player becomes the owner.
	if state.Seats[0] == "" {
		state.Seats[0], state.Seats[1] = state.Seats[1], ""
		logger.Debug("MatchLeave: Owner moved to %s.", state.Seats[0])
	}

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(ctx, state, dispatcher, logger)
	return false
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		mh.handleMessage(ctx, matchState, dispatcher, logger, msg.GetUserId(), msg.GetOpCode(), msg.GetData())
	}

	mh.advance(ctx, matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) handleMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, opCode int64, data []byte) {
	switch opCode {
	case OpStartMatch:
		mh.handleStartMatch(state, dispatcher, logger, userID, data)
	case OpSignal:
		mh.handleSignal(state, dispatcher, logger, userID, data)
	case OpResume:
		mh.handleResume(state, dispatcher, logger, userID)
	case OpRematch:
		mh.handleRematch(ctx, state, dispatcher, logger, userID)
	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", opCode)
	}
}

// advance runs one tick of the rules engine and publishes what it produced.
func (mh *matchHandler) advance(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.inPlay() {
		if err := state.Match.Update(state.Config.TickDelta()); err != nil {
			logger.Error("MatchLoop: Update failed in state %s: %v", state.Match.State(), err)
		}
	}
	mh.flushEvents(ctx, state, dispatcher, logger)
}

func (mh *matchHandler) handleStartMatch(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, data []byte) {
	seat := state.SeatOf(userID)
	logger.Info("StartMatch: Request received from %s (seat=%d, occupied=%d)", userID, seat, state.GetOccupiedSeatCount())

	if seat != domain.SideOwner.Seat() {
		logger.Warn("StartMatch: User %s tried to start the match but is not the owner", userID)
		mh.sendError(state, dispatcher, logger, userID, errCodeForbidden, "only the owner can start the match")
		return
	}
	if state.Disabled {
		mh.sendError(state, dispatcher, logger, userID, errCodeDisabled, "match is disabled")
		return
	}
	if state.GetOccupiedSeatCount() < app.PlayersPerMatch {
		logger.Warn("StartMatch: Cannot start with %d players. Need %d.", state.GetOccupiedSeatCount(), app.PlayersPerMatch)
		mh.sendError(state, dispatcher, logger, userID, errCodeConflict, "waiting for an opponent")
		return
	}

	request, err := decodePayload(data)
	if err != nil {
		logger.Warn("StartMatch: Invalid request from %s: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, errCodeBadRequest, err.Error())
		return
	}
	firstBatting := domain.ParseSide(stringField(request, "first_batting"))

	if err := state.Match.Start(firstBatting); err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			state.Disabled = true
			logger.Error("StartMatch: Disabling match: %v", err)
			mh.updateLabel(state, dispatcher, logger)
			mh.sendError(state, dispatcher, logger, userID, errCodeDisabled, err.Error())
			return
		}
		logger.Error("StartMatch: Failed to start match: %v", err)
		mh.sendError(state, dispatcher, logger, userID, errCodeConflict, err.Error())
		return
	}

	logger.Info("StartMatch: Match started, %s batting first.", state.Match.Snapshot().Batting)
}

func (mh *matchHandler) handleSignal(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, data []byte) {
	side := domain.SideForSeat(state.SeatOf(userID))
	if !side.Valid() {
		logger.Warn("handleSignal: User %s is not seated.", userID)
		return
	}
	if !state.Match.Engine().AcceptingInput() {
		mh.sendError(state, dispatcher, logger, userID, errCodeConflict, "no turn in progress")
		return
	}

	request, err := decodePayload(data)
	if err != nil {
		logger.Warn("handleSignal: Invalid request from %s: %v", userID, err)
		mh.sendError(state, dispatcher, logger, userID, errCodeBadRequest, err.Error())
		return
	}
	signal, ok := intField(request, "signal")
	if !ok || signal < MinSignal || signal > MaxSignal {
		mh.sendError(state, dispatcher, logger, userID, errCodeBadRequest, fmt.Sprintf("signal must be a whole number from %d to %d", MinSignal, MaxSignal))
		return
	}

	state.Match.RegisterInput(side, signal)
}

func (mh *matchHandler) handleResume(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	if state.SeatOf(userID) != domain.SideOwner.Seat() {
		mh.sendError(state, dispatcher, logger, userID, errCodeForbidden, "only the owner can resume the match")
		return
	}
	if err := state.Match.Resume(); err != nil {
		logger.Error("handleResume: Failed to resume: %v", err)
		mh.sendError(state, dispatcher, logger, userID, errCodeConflict, err.Error())
	}
}

func (mh *matchHandler) handleRematch(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	if state.SeatOf(userID) != domain.SideOwner.Seat() {
		mh.sendError(state, dispatcher, logger, userID, errCodeForbidden, "only the owner can request a rematch")
		return
	}
	if state.Match.State() != app.StateGameEnd {
		mh.sendError(state, dispatcher, logger, userID, errCodeConflict, "match has not ended")
		return
	}

	mh.flushEvents(ctx, state, dispatcher, logger)
	state.Match = app.NewMatch(state.Config.MatchConfiguration(), state.Config.HalfTimeSeconds)
	state.Settled = false
	logger.Info("handleRematch: New match prepared by %s.", userID)

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(ctx, state, dispatcher, logger)
}

// flushEvents broadcasts the queued rules-engine events in order.
func (mh *matchHandler) flushEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for _, ev := range state.Match.Drain() {
		opCode, fields, reliable, err := eventMessage(ev)
		if err != nil {
			logger.Warn("Unknown event kind: %v", ev.Kind)
			continue
		}

		if ev.Kind == app.EventGameEnded {
			settlement := mh.settle(ctx, state, logger)
			changes := make(map[string]any, len(settlement.BalanceChanges))
			for userID, amount := range settlement.BalanceChanges {
				changes[userID] = amount
			}
			fields["balance_changes"] = changes
		}

		data, err := encodePayload(fields)
		if err != nil {
			logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
			continue
		}
		dispatcher.BroadcastMessage(opCode, data, nil, nil, reliable)

		if ev.Kind == app.EventStateEntered {
			mh.updateLabel(state, dispatcher, logger)
		}
	}
}

// settle pays the stake out once per match.
func (mh *matchHandler) settle(ctx context.Context, state *MatchState, logger runtime.Logger) domain.Settlement {
	if state.Settled {
		return domain.Settlement{}
	}
	state.Settled = true

	settlement := domain.Settle(state.Match.Outcome(), state.Seats, state.Stake)
	if state.Ledger == nil || len(settlement.BalanceChanges) == 0 {
		return settlement
	}

	payouts := make([]ports.Payout, 0, len(settlement.BalanceChanges))
	for userID, amount := range settlement.BalanceChanges {
		payouts = append(payouts, ports.Payout{UserID: userID, Amount: amount})
	}
	if err := state.Ledger.PayOut(ctx, state.MatchID, payouts); err != nil {
		logger.Error("Failed to pay out stake: %v", err)
	}
	return settlement
}

// broadcastMatchState sends the full match view; late joiners rebuild from it.
func (mh *matchHandler) broadcastMatchState(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	players := make([]any, 0, len(state.Seats))
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}

		displayName := userID
		if p, exists := state.Presences[userID]; exists && p != nil {
			displayName = p.GetUsername()
		}

		var balance int64
		if state.Ledger != nil {
			b, err := state.Ledger.Balance(ctx, userID)
			if err != nil {
				logger.Warn("broadcastMatchState: Could not load balance for %s: %v", userID, err)
			} else {
				balance = b
			}
		}

		players = append(players, map[string]any{
			"user_id":      userID,
			"seat":         i,
			"side":         domain.SideForSeat(i).String(),
			"is_owner":     i == domain.SideOwner.Seat(),
			"display_name": displayName,
			"balance":      balance,
		})
	}

	rules := state.Config.MatchConfiguration()
	snap := state.Match.Snapshot()
	fields := map[string]any{
		"seats":    []any{state.Seats[0], state.Seats[1]},
		"players":  players,
		"tick":     state.Tick,
		"stake":    state.Stake,
		"disabled": state.Disabled,
		"rules": map[string]any{
			"balls_per_over":           rules.BallsPerOver,
			"total_overs":              rules.TotalOvers,
			"total_wickets":            rules.TotalWickets,
			"turn_duration_seconds":    rules.TurnDurationSeconds,
			"inter_turn_delay_seconds": rules.InterTurnDelaySeconds,
		},
		"state":           string(snap.State),
		"half":            int(snap.Half),
		"batting":         snap.Batting.String(),
		"remaining_ratio": snap.RemainingRatio,
		"accepting_input": snap.AcceptingInput,
		"owner":           inningsFields(snap.Owner),
		"opponent":        inningsFields(snap.Opponent),
		"outcome":         outcomeFields(snap.Outcome),
	}

	data, err := encodePayload(fields)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpPlayerJoined, data, nil, nil, true)
}

// sendError sends an error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := encodePayload(map[string]any{
		"code":    code,
		"message": message,
	})
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpError, data, []runtime.Presence{presence}, nil, true)
}

// matchLabel builds the label used by quick_match queries.
func matchLabel(state *MatchState) (string, error) {
	data, err := encodePayload(map[string]any{
		"open":  state.GetOpenSeatsCount(),
		"game":  GameLabel,
		"state": state.labelState(),
		"stake": state.Stake,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
