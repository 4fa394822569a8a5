package revocation

import (
	"context"
	"time"

	"github.com/Skotchmaster/yummy_recipes/internal/tokens"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// LocalLedger keeps recently seen revocations in process memory.
type LocalLedger struct {
	next  Ledger
	cache *lru.LRU[string, struct{}]
}

// NewLocalLedger caches up to size entries, each for at most ttl (the token lifetime).
func NewLocalLedger(next Ledger, size int, ttl time.Duration) *LocalLedger {
	return &LocalLedger{
		next:  next,
		cache: lru.NewLRU[string, struct{}](size, nil, ttl),
	}
}

func (l *LocalLedger) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ok, err := revokeThrough(ctx, l.next, token, expiresAt)
	if ok {
		l.cache.Add(tokens.Sha256Hex(token), struct{}{})
	}
	return err
}

func (l *LocalLedger) IsRevoked(ctx context.Context, token string) (bool, error) {
	k := tokens.Sha256Hex(token)
	if l.cache.Contains(k) {
		return true, nil
	}

	revoked, err := l.next.IsRevoked(ctx, token)
	if err != nil {
		return false, err
	}
	if revoked {
		l.cache.Add(k, struct{}{})
	}
	return revoked, nil
}

func (l *LocalLedger) Len() int {
	return l.cache.Len()
}
