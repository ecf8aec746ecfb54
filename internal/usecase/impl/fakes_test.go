package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gatekeeper/config"
	"gatekeeper/internal/domain/entity"
	"gatekeeper/internal/domain/repository"
)

// memStore is an in-memory stand-in for the credential store, shared by the
// fake repositories and the fake transaction manager.
type memStore struct {
	mu           sync.Mutex
	credentials  map[uuid.UUID]*entity.Credential
	consumptions map[uuid.UUID]*entity.RecoveryConsumption
}

func newMemStore() *memStore {
	return &memStore{
		credentials:  make(map[uuid.UUID]*entity.Credential),
		consumptions: make(map[uuid.UUID]*entity.RecoveryConsumption),
	}
}

type memCredentialRepo struct {
	store *memStore
}

func (r *memCredentialRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Credential, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cred, ok := r.store.credentials[id]
	if !ok {
		return nil, repository.ErrCredentialNotFound
	}
	clone := *cred

	return &clone, nil
}

func (r *memCredentialRepo) FindByEmail(_ context.Context, email string) (*entity.Credential, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, cred := range r.store.credentials {
		if cred.Email == email {
			clone := *cred

			return &clone, nil
		}
	}

	return nil, repository.ErrCredentialNotFound
}

func (r *memCredentialRepo) Create(_ context.Context, cred *entity.Credential) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.credentials {
		if existing.Email == cred.Email {
			return repository.ErrEmailTaken
		}
	}

	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	now := time.Now().UTC()
	cred.CreatedAt = now
	cred.UpdatedAt = now
	clone := *cred
	r.store.credentials[cred.ID] = &clone

	return nil
}

func (r *memCredentialRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cred, ok := r.store.credentials[id]
	if !ok {
		return repository.ErrCredentialNotFound
	}
	cred.PasswordHash = hash
	cred.UpdatedAt = time.Now().UTC()

	return nil
}

type memConsumptionRepo struct {
	store *memStore
}

func (r *memConsumptionRepo) MarkConsumed(_ context.Context, consumption *entity.RecoveryConsumption) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.consumptions[consumption.Nonce]; exists {
		return repository.ErrNonceAlreadyConsumed
	}
	clone := *consumption
	r.store.consumptions[consumption.Nonce] = &clone

	return nil
}

func (r *memConsumptionRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	var deleted int64
	for nonce, consumption := range r.store.consumptions {
		if consumption.ExpiresAt.Before(now) {
			delete(r.store.consumptions, nonce)
			deleted++
		}
	}

	return deleted, nil
}

type memFactory struct {
	store *memStore
}

func (f *memFactory) CredentialRepo() repository.CredentialRepository {
	return &memCredentialRepo{store: f.store}
}

func (f *memFactory) ConsumptionRepo() repository.ConsumptionRepository {
	return &memConsumptionRepo{store: f.store}
}

type memTxManager struct {
	store *memStore
	// failWith, when set, is returned for every Execute call.
	failWith error
}

func (m *memTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	if m.failWith != nil {
		return m.failWith
	}

	return fn(&memFactory{store: m.store})
}

// captureMailer signals each send on a channel so tests can wait for the
// asynchronous dispatch.
type captureMailer struct {
	ch chan capturedMail
}

type capturedMail struct {
	email string
	token string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{ch: make(chan capturedMail, 8)}
}

func (m *captureMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.ch <- capturedMail{email: email, token: token}

	return nil
}

func (m *captureMailer) waitForSend(timeout time.Duration) (capturedMail, bool) {
	select {
	case sent := <-m.ch:
		return sent, true
	case <-time.After(timeout):
		return capturedMail{}, false
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuthConfig(sessionTTL, recoveryTTL time.Duration) *config.Config {
	cfg := &config.Config{}
	cfg.Auth = &config.AuthConfig{
		SigningKeys: []config.SigningKey{
			{KID: "test-1", Secret: "usecase-test-secret"},
		},
		ActiveKID:        "test-1",
		SessionLifetime:  sessionTTL,
		RecoveryLifetime: recoveryTTL,
		BcryptCost:       4,
		StoreTimeout:     time.Second,
	}
	cfg.PasswordPolicy = &config.PasswordPolicyConfig{MinLength: 10, MaxLength: 128}

	return cfg
}
