// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"gatekeeper/config"
	"gatekeeper/internal/domain/entity"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// credentialRepository implements the domain's CredentialRepository using GORM.
// Every access runs under a bounded timeout; a store that does not answer in
// time fails with the retryable unavailable error instead of hanging.
type credentialRepository struct {
	db           *gorm.DB
	storeTimeout time.Duration
}

// NewCredentialRepository is the constructor for credentialRepository.
// It returns the repository as a domain interface, adhering to dependency inversion.
func NewCredentialRepository(db *gorm.DB, cfg *config.Config) repository.CredentialRepository {
	return newCredentialRepository(db, storeTimeoutFromConfig(cfg))
}

func newCredentialRepository(db *gorm.DB, storeTimeout time.Duration) *credentialRepository {
	return &credentialRepository{
		db:           db,
		storeTimeout: storeTimeout,
	}
}

func (repo *credentialRepository) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if repo.storeTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, repo.storeTimeout)
}

// FindByID retrieves a single credential record by account id.
func (repo *credentialRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Credential, error) {
	ctx, cancel := repo.bounded(ctx)
	defer cancel()

	var credM model.CredentialModel
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&credM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCredentialNotFound
		}

		return nil, classifyStoreError(err, "failed to find credential by id")
	}

	return toCredentialDomain(&credM), nil
}

// FindByEmail retrieves a single credential record by normalized email.
// Callers are expected to have normalized the address already.
func (repo *credentialRepository) FindByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	ctx, cancel := repo.bounded(ctx)
	defer cancel()

	var credM model.CredentialModel
	if err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&credM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCredentialNotFound
		}

		return nil, classifyStoreError(err, "failed to find credential by email")
	}

	return toCredentialDomain(&credM), nil
}

// Create persists a new credential record. The unique email constraint backs
// duplicate-registration detection.
func (repo *credentialRepository) Create(ctx context.Context, cred *entity.Credential) error {
	ctx, cancel := repo.bounded(ctx)
	defer cancel()

	credM := fromCredentialDomain(cred)

	if err := repo.db.WithContext(ctx).Create(credM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrEmailTaken
		}

		return classifyStoreError(err, "failed to create credential")
	}

	// Copy back the generated id and timestamps.
	cred.ID = credM.ID
	cred.CreatedAt = credM.CreatedAt
	cred.UpdatedAt = credM.UpdatedAt

	return nil
}

// UpdatePasswordHash overwrites the stored password hash of an account.
func (repo *credentialRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	ctx, cancel := repo.bounded(ctx)
	defer cancel()

	result := repo.db.WithContext(ctx).
		Model(&model.CredentialModel{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)

	if result.Error != nil {
		return classifyStoreError(result.Error, "failed to update password hash")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCredentialNotFound
	}

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toCredentialDomain converts a GORM CredentialModel to a domain Credential entity.
func toCredentialDomain(data *model.CredentialModel) *entity.Credential {
	if data == nil {
		return nil
	}

	return &entity.Credential{
		ID:           data.ID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		IsActive:     data.IsActive,
		IsSuperuser:  data.IsSuperuser,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromCredentialDomain converts a domain Credential entity to a GORM CredentialModel.
func fromCredentialDomain(data *entity.Credential) *model.CredentialModel {
	if data == nil {
		return nil
	}

	return &model.CredentialModel{
		ID:           data.ID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		IsActive:     data.IsActive,
		IsSuperuser:  data.IsSuperuser,
	}
}
