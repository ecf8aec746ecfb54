// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"gatekeeper/config"
	"gatekeeper/internal/domain/repository"

	"gorm.io/gorm"
)

// gormTransactionManager implements the domain's TransactionManager interface using GORM.
type gormTransactionManager struct {
	db           *gorm.DB
	storeTimeout time.Duration
}

// gormRepositoryFactory implements the domain's RepositoryFactory interface.
// It holds a specific GORM transaction object and hands out repository
// instances bound to that single transaction.
type gormRepositoryFactory struct {
	tx           *gorm.DB // In GORM, a transaction object is also a *gorm.DB
	storeTimeout time.Duration
}

// CredentialRepo returns a credential repository bound to the transaction.
func (f *gormRepositoryFactory) CredentialRepo() repository.CredentialRepository {
	return newCredentialRepository(f.tx, f.storeTimeout)
}

// ConsumptionRepo returns a consumption repository bound to the transaction.
func (f *gormRepositoryFactory) ConsumptionRepo() repository.ConsumptionRepository {
	return newConsumptionRepository(f.tx, f.storeTimeout)
}

// NewTransactionManager is the constructor for gormTransactionManager.
// This function will be used as an Fx provider.
func NewTransactionManager(db *gorm.DB, cfg *config.Config) repository.TransactionManager {
	return &gormTransactionManager{
		db:           db,
		storeTimeout: storeTimeoutFromConfig(cfg),
	}
}

func storeTimeoutFromConfig(cfg *config.Config) time.Duration {
	if cfg == nil || cfg.Auth == nil {
		return 0
	}

	return cfg.Auth.StoreTimeout
}

// Execute runs the given function within a single database transaction.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	// If the callback panics, the transaction must still be rolled back
	// before the panic continues up the stack.
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	factory := &gormRepositoryFactory{tx: tx, storeTimeout: tm.storeTimeout}

	err := fn(factory)
	if err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			// Return the original, more meaningful business error.
			return fmt.Errorf("transaction rollback failed: %v (original error: %w)", rbErr, err)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
