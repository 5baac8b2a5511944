package nakama

import (
	"fmt"
	"math"

	"handcricket/internal/app"
	"handcricket/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Wire payloads are protobuf Structs in their canonical JSON form.

func encodePayload(fields map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build payload: %w", err)
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return data, nil
}

// decodePayload parses a client message. An empty message is an empty payload.
func decodePayload(data []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if len(data) == 0 {
		return s, nil
	}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return s, nil
}

// intField reads a whole-number field. ok is false when the field is missing
// or not an integer.
func intField(s *structpb.Struct, key string) (int, bool) {
	v, exists := s.GetFields()[key]
	if !exists {
		return 0, false
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, false
	}
	if n.NumberValue > math.MaxInt32 || n.NumberValue < math.MinInt32 {
		return 0, false
	}
	return int(n.NumberValue), true
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func ballFields(b domain.BallRecord) map[string]any {
	return map[string]any{
		"over":        b.OverNumber,
		"ball":        b.BallNumber,
		"score":       b.Score,
		"wicket_lost": b.WicketLost,
	}
}

func inningsFields(in app.InningsSnapshot) map[string]any {
	overBalls := make([]any, 0, len(in.OverBalls))
	for _, b := range in.OverBalls {
		overBalls = append(overBalls, ballFields(b))
	}
	return map[string]any{
		"total_score":  in.TotalScore,
		"over":         in.OverCount,
		"ball":         in.BallCount,
		"wickets_lost": in.WicketsLost,
		"last_ball":    ballFields(in.LastBall),
		"over_balls":   overBalls,
	}
}

func outcomeFields(o domain.MatchOutcome) map[string]any {
	if !o.Decided() {
		return map[string]any{"decided": false}
	}
	return map[string]any{
		"decided": true,
		"winner":  o.Winner.String(),
		"is_draw": o.IsDraw,
	}
}

// eventMessage maps an app event to its op code, payload and delivery mode.
func eventMessage(ev app.Event) (opCode int64, fields map[string]any, reliable bool, err error) {
	reliable = true
	switch p := ev.Payload.(type) {
	case app.StateEnteredPayload:
		return OpStateEntered, map[string]any{"state": string(p.State)}, reliable, nil
	case app.HalfStartedPayload:
		return OpHalfStarted, map[string]any{
			"half":    int(p.Half),
			"batting": p.Batting.String(),
			"target":  p.Target,
		}, reliable, nil
	case app.OverStartedPayload:
		return OpOverStarted, map[string]any{
			"batting": p.Batting.String(),
			"over":    p.Over,
		}, reliable, nil
	case app.TurnCountdownStartedPayload:
		return OpTurnCountdownStarted, map[string]any{
			"batting":          p.Batting.String(),
			"over":             p.Over,
			"ball":             p.Ball,
			"duration_seconds": p.DurationSeconds,
		}, reliable, nil
	case app.TurnCountdownProgressPayload:
		return OpTurnCountdownProgress, map[string]any{"remaining_ratio": p.RemainingRatio}, false, nil
	case app.TurnCountdownEndedPayload:
		return OpTurnCountdownEnded, map[string]any{"batting": p.Batting.String()}, reliable, nil
	case app.BallResolvedPayload:
		return OpBallResolved, map[string]any{
			"batting":         p.Batting.String(),
			"ball":            ballFields(p.Ball),
			"total_score":     p.TotalScore,
			"wickets_lost":    p.WicketsLost,
			"owner_signal":    p.OwnerSignal,
			"opponent_signal": p.OpponentSignal,
		}, reliable, nil
	case app.GameEndedPayload:
		return OpGameEnded, map[string]any{
			"winner":         p.Winner.String(),
			"is_draw":        p.IsDraw,
			"result":         string(p.Result),
			"margin":         p.Margin,
			"owner_total":    p.OwnerTotal,
			"opponent_total": p.OpponentTotal,
		}, reliable, nil
	}
	return 0, nil, false, fmt.Errorf("unknown event kind %v", ev.Kind)
}
