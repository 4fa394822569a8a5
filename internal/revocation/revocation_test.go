package revocation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/yummy_recipes/internal/repo"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLedger struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	checks  int
	failing bool
}

func newMemLedger() *memLedger {
	return &memLedger{revoked: map[string]time.Time{}}
}

func (m *memLedger) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("store down")
	}
	if _, ok := m.revoked[token]; ok {
		return repo.ErrAlreadyRevoked
	}
	m.revoked[token] = expiresAt
	return nil
}

func (m *memLedger) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks++
	if m.failing {
		return false, errors.New("store down")
	}
	_, ok := m.revoked[token]
	return ok, nil
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLedger_RevokeVisibleImmediately(t *testing.T) {
	mr, client := newRedis(t)
	backing := newMemLedger()
	l := NewRedisLedger(backing, client, time.Hour)
	ctx := context.Background()

	revoked, err := l.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.False(t, mr.Exists(key("tok")), "negative answers are never cached")

	require.NoError(t, l.Revoke(ctx, "tok", time.Now().Add(30*time.Minute)))
	assert.True(t, mr.Exists(key("tok")))

	checks := backing.checks
	revoked, err = l.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, checks, backing.checks, "cache hit skips the store")
}

func TestRedisLedger_AlreadyRevokedStillCached(t *testing.T) {
	mr, client := newRedis(t)
	backing := newMemLedger()
	require.NoError(t, backing.Revoke(context.Background(), "tok", time.Now().Add(time.Hour)))

	l := NewRedisLedger(backing, client, time.Hour)
	err := l.Revoke(context.Background(), "tok", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, repo.ErrAlreadyRevoked)
	assert.True(t, mr.Exists(key("tok")))
}

func TestRedisLedger_FallsBackWhenRedisDown(t *testing.T) {
	mr, client := newRedis(t)
	backing := newMemLedger()
	l := NewRedisLedger(backing, client, time.Hour)
	ctx := context.Background()

	require.NoError(t, l.Revoke(ctx, "tok", time.Now().Add(time.Hour)))
	mr.Close()

	revoked, err := l.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRedisLedger_PopulatesFromStore(t *testing.T) {
	mr, client := newRedis(t)
	backing := newMemLedger()
	require.NoError(t, backing.Revoke(context.Background(), "tok", time.Now().Add(time.Hour)))

	l := NewRedisLedger(backing, client, 10*time.Minute)
	revoked, err := l.IsRevoked(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists(key("tok")))
	assert.Equal(t, 10*time.Minute, mr.TTL(key("tok")))
}

func TestRedisLedger_StoreErrorPropagates(t *testing.T) {
	_, client := newRedis(t)
	backing := newMemLedger()
	backing.failing = true
	l := NewRedisLedger(backing, client, time.Hour)

	_, err := l.IsRevoked(context.Background(), "tok")
	assert.Error(t, err)

	err = l.Revoke(context.Background(), "tok", time.Now().Add(time.Hour))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repo.ErrAlreadyRevoked)
}

func TestLocalLedger(t *testing.T) {
	backing := newMemLedger()
	l := NewLocalLedger(backing, 16, time.Hour)
	ctx := context.Background()

	revoked, err := l.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Zero(t, l.Len())

	require.NoError(t, l.Revoke(ctx, "tok", time.Now().Add(time.Hour)))
	assert.Equal(t, 1, l.Len())

	checks := backing.checks
	revoked, err = l.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, checks, backing.checks)

	assert.ErrorIs(t, l.Revoke(ctx, "tok", time.Now().Add(time.Hour)), repo.ErrAlreadyRevoked)
}

func TestLocalLedger_SeesRevokesFromOtherInstances(t *testing.T) {
	backing := newMemLedger()
	first := NewLocalLedger(backing, 16, time.Hour)
	second := NewLocalLedger(backing, 16, time.Hour)
	ctx := context.Background()

	revoked, err := second.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, first.Revoke(ctx, "tok", time.Now().Add(time.Hour)))

	revoked, err = second.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
}
