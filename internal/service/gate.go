package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	"github.com/Skotchmaster/yummy_recipes/internal/models"
	"github.com/Skotchmaster/yummy_recipes/internal/tokens"
)

// Identity is what a protected handler receives once the gate admits a request.
type Identity struct {
	Token     string
	User      *models.User
	ExpiresAt time.Time
}

// Authenticate resolves an Authorization header to an Identity. Rejections are
// *AuthError; store failures wrap ErrInfrastructure. Nothing is cached between calls.
func (s *AuthService) Authenticate(ctx context.Context, header string) (*Identity, error) {
	l := logging.FromContext(ctx).With("svc", "auth.gate")

	raw, ok := bearerToken(header)
	if !ok {
		return nil, unauthenticated(ReasonMalformedHeader)
	}

	revoked, err := s.Ledger.IsRevoked(ctx, raw)
	if err != nil {
		l.Error("gate_failed", "status", 500, "stage", "revocation", "error", err)
		return nil, infra("revocation check", err)
	}
	if revoked {
		return nil, unauthenticated(ReasonInvalidToken)
	}

	claims, err := s.Tokens.Parse(raw)
	if err != nil {
		if errors.Is(err, tokens.ErrTokenExpired) {
			return nil, unauthenticated(ReasonTokenExpired)
		}
		l.Debug("gate_rejected", "reason", ReasonInvalidToken, "error", err)
		return nil, unauthenticated(ReasonInvalidToken)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, unauthenticated(ReasonInvalidToken)
	}

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		l.Error("gate_failed", "status", 500, "stage", "user_lookup", "error", err)
		return nil, infra("load user", err)
	}
	if user == nil {
		return nil, unauthenticated(ReasonUserNotFound)
	}

	return &Identity{Token: raw, User: user, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", false
	}
	return raw, true
}
