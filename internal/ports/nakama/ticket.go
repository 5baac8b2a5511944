package nakama

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

var (
	errTicketRequired = errors.New("seat ticket is required")
	errTicketInvalid  = errors.New("seat ticket is invalid")
	errTicketExpired  = errors.New("seat ticket is expired")
	errTicketMismatch = errors.New("seat ticket does not match")
)

// ticketClaims binds a seat ticket to one user and one match.
type ticketClaims struct {
	MatchID string `json:"mid"`
	jwt.StandardClaims
}

// TicketSigner issues and verifies HS256 seat tickets handed out by quick_match.
type TicketSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTicketSigner(secret string, ttl time.Duration) *TicketSigner {
	return &TicketSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Enabled reports whether a secret is configured. Without one, tickets are
// neither issued nor required.
func (s *TicketSigner) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Issue signs a ticket letting userID take a seat in matchID.
func (s *TicketSigner) Issue(matchID, userID string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("ticket signer is not configured")
	}
	if matchID == "" || userID == "" {
		return "", fmt.Errorf("match id and user id are required")
	}

	now := s.now()
	claims := ticketClaims{
		MatchID: matchID,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks that ticket was signed by s for userID and matchID and has not expired.
func (s *TicketSigner) Verify(ticket, matchID, userID string) error {
	ticket = strings.TrimSpace(ticket)
	if ticket == "" {
		return errTicketRequired
	}

	parser := &jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}
	var claims ticketClaims
	if _, err := parser.ParseWithClaims(ticket, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		return fmt.Errorf("%w: %v", errTicketInvalid, err)
	}

	if claims.Id == "" || claims.ExpiresAt == 0 {
		return errTicketInvalid
	}
	if claims.ExpiresAt <= s.now().Unix() {
		return errTicketExpired
	}
	if claims.MatchID != matchID || claims.Subject != userID {
		return errTicketMismatch
	}
	return nil
}
