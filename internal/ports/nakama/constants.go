package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a joinable match.
	RpcQuickMatch = "quick_match"

	// MatchNameHandCricket is the authoritative match handler name registered with Nakama.
	MatchNameHandCricket = "handcricket_match"

	// GameLabel identifies hand cricket matches in label queries.
	GameLabel = "handcricket"
)

// Hand signals a client may show. The engine accepts any integer; the server
// keeps clients to the game's range.
const (
	MinSignal = 1
	MaxSignal = 6
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartMatch int64 = 1
	OpSignal     int64 = 2
	OpResume     int64 = 3
	OpRematch    int64 = 4

	// Server -> Client events
	OpPlayerJoined          int64 = 101
	OpPlayerLeft            int64 = 102
	OpStateEntered          int64 = 103
	OpHalfStarted           int64 = 104
	OpOverStarted           int64 = 105
	OpTurnCountdownStarted  int64 = 106
	OpTurnCountdownProgress int64 = 107 // unreliable
	OpTurnCountdownEnded    int64 = 108
	OpBallResolved          int64 = 109
	OpGameEnded             int64 = 110
	OpError                 int64 = 111
)

const (
	labelStateDisabled = "disabled"
	metadataTicketKey  = "ticket"
)
