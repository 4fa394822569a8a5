// Package revocation layers positive-only caches in front of the persistent
// revocation ledger. Only "revoked" answers are cached, so a revoke that has
// completed is visible to every later check whether or not the cache saw it.
package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/yummy_recipes/internal/repo"
)

type Ledger interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// revokeThrough writes to the backing ledger and reports whether the token is now known revoked.
func revokeThrough(ctx context.Context, next Ledger, token string, expiresAt time.Time) (bool, error) {
	err := next.Revoke(ctx, token, expiresAt)
	if err == nil || errors.Is(err, repo.ErrAlreadyRevoked) {
		return true, err
	}
	return false, err
}
