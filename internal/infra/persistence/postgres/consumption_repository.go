package postgres

import (
	"context"
	"time"

	"gatekeeper/config"
	"gatekeeper/internal/domain/entity"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// consumptionRepository implements the domain's ConsumptionRepository using GORM.
type consumptionRepository struct {
	db           *gorm.DB
	storeTimeout time.Duration
}

// NewConsumptionRepository is the constructor for consumptionRepository.
func NewConsumptionRepository(db *gorm.DB, cfg *config.Config) repository.ConsumptionRepository {
	return newConsumptionRepository(db, storeTimeoutFromConfig(cfg))
}

func newConsumptionRepository(db *gorm.DB, storeTimeout time.Duration) *consumptionRepository {
	return &consumptionRepository{
		db:           db,
		storeTimeout: storeTimeout,
	}
}

func (repo *consumptionRepository) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if repo.storeTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, repo.storeTimeout)
}

// MarkConsumed atomically records the nonce as used. The insert conflicts on
// the nonce primary key, so of any number of racing calls exactly one
// inserts a row; the rest see zero rows affected and fail as already
// consumed. This is the subsystem's single linearizable check-and-set.
func (repo *consumptionRepository) MarkConsumed(ctx context.Context, consumption *entity.RecoveryConsumption) error {
	ctx, cancel := repo.bounded(ctx)
	defer cancel()

	consumptionM := &model.RecoveryConsumptionModel{
		Nonce:      consumption.Nonce,
		UserID:     consumption.UserID,
		ConsumedAt: consumption.ConsumedAt,
		ExpiresAt:  consumption.ExpiresAt,
	}

	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(consumptionM)

	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrNonceAlreadyConsumed
		}

		return classifyStoreError(result.Error, "failed to mark recovery token consumed")
	}
	if result.RowsAffected == 0 {
		return repository.ErrNonceAlreadyConsumed
	}

	return nil
}

// DeleteExpired removes consumption records whose token expiry has passed.
// Expired tokens no longer verify, so the rows only occupy space.
func (repo *consumptionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := repo.bounded(ctx)
	defer cancel()

	result := repo.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.RecoveryConsumptionModel{})

	if result.Error != nil {
		return 0, classifyStoreError(result.Error, "failed to delete expired consumption records")
	}

	return result.RowsAffected, nil
}
