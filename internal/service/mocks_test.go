package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
)

const testPassword = "correct-horse"

// memoryUserRepo is an in-memory UserRepository for service tests. It
// mimics the pgx contract: pgx.ErrNoRows for misses, full record returned
// on every read.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Issuer:                "auth-service-test",
		Audience:              "test-clients",
		AccessTokenTTLMinutes: 60,
		RefreshTokenTTLHours:  168,
		ResetTokenTTLMinutes:  15,
		VerificationTTLHours:  24,
		RenewalCodeTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}
}

type testEnv struct {
	repo       *memoryUserRepo
	codec      *auth.TokenCodec
	dispatcher events.Dispatcher
	tokens     *TokenService
	accounts   *AccountService
	renewals   *RenewalService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testAuthConfig()
	repo := newMemoryUserRepo()
	codec := auth.NewTokenCodec(cfg.Issuer, cfg.Audience)
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher(logger)

	return &testEnv{
		repo:       repo,
		codec:      codec,
		dispatcher: dispatcher,
		tokens:     NewTokenService(cfg, repo, codec, dispatcher, logger),
		accounts:   NewAccountService(cfg, repo, dispatcher, logger),
		renewals:   NewRenewalService(cfg, repo, dispatcher, logger),
	}
}

// seedActiveUser stores a verified, active account with fresh keys and the
// standard test password.
func (e *testEnv) seedActiveUser(t *testing.T, id, email string) domain.User {
	t.Helper()

	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	accessKey, err := auth.NewSigningKey()
	require.NoError(t, err)
	refreshKey, err := auth.NewSigningKey()
	require.NoError(t, err)

	user := domain.User{
		ID:                id,
		Name:              "Test User",
		Email:             email,
		PasswordHash:      hash,
		AccessSigningKey:  accessKey,
		RefreshSigningKey: refreshKey,
		IsActive:          true,
		EmailVerified:     true,
		Status:            domain.AuthStatusActive,
	}
	require.NoError(t, e.repo.Create(context.Background(), &user))
	return user
}

func (e *testEnv) mustGet(t *testing.T, id string) domain.User {
	t.Helper()
	user, err := e.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return *user
}

// collectEvents subscribes a recorder for the given event type.
func (e *testEnv) collectEvents(eventType events.EventType) *[]events.Event {
	collected := &[]events.Event{}
	e.dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
		*collected = append(*collected, event)
		return nil
	})
	return collected
}
