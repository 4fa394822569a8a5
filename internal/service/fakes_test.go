package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/yummy_recipes/internal/events"
	"github.com/Skotchmaster/yummy_recipes/internal/hash"
	"github.com/Skotchmaster/yummy_recipes/internal/models"
	"github.com/Skotchmaster/yummy_recipes/internal/repo"
	"github.com/Skotchmaster/yummy_recipes/internal/tokens"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errStoreDown = errors.New("store down")

type memUsers struct {
	mu      sync.Mutex
	nextID  uint
	byID    map[uint]models.User
	failing bool
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uint]models.User{}}
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errStoreDown
	}
	for _, existing := range m.byID {
		if existing.Username == u.Username {
			return &repo.DuplicateError{Field: "username"}
		}
		if existing.Email == u.Email {
			return &repo.DuplicateError{Field: "email"}
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) find(match func(models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errStoreDown
	}
	for _, u := range m.byID {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.Username == username })
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.Email == email })
}

func (m *memUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.ID == id })
}

func (m *memUsers) SaveUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errStoreDown
	}
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) delete(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

type memLedger struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	failing bool
}

func newMemLedger() *memLedger {
	return &memLedger{revoked: map[string]time.Time{}}
}

func (m *memLedger) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errStoreDown
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
	if m.failing {
		return false, errStoreDown
	}
	_, ok := m.revoked[token]
	return ok, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type authFixture struct {
	svc    *AuthService
	users  *memUsers
	ledger *memLedger
	events *recordingPublisher
	clock  *testClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	clk := &testClock{t: time.Now().Truncate(time.Second)}
	codec, err := tokens.NewCodec([]byte("test-jwt-secret"), 30*time.Minute)
	require.NoError(t, err)

	f := &authFixture{
		users:  newMemUsers(),
		ledger: newMemLedger(),
		events: &recordingPublisher{},
		clock:  clk,
	}
	f.svc = &AuthService{
		Users:  f.users,
		Ledger: f.ledger,
		Hasher: hash.NewHasher(bcrypt.MinCost),
		Tokens: codec.WithClock(clk.Now),
		Events: f.events,
	}
	return f
}

func (f *authFixture) register(t *testing.T, username, password string) *models.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterInput{
		Username:        username,
		Email:           username + "@example.com",
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)
	return u
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "service.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return repo.New(db)
}
