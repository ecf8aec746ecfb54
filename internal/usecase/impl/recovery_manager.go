// Package impl provides the concrete implementations of the usecase
// interfaces.
package impl

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"gatekeeper/internal/domain/entity"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/errors"
	"gatekeeper/internal/usecase"
)

type recoveryManager struct {
	txManager repository.TransactionManager
	tokens    service.TokenService
	logger    *slog.Logger
}

// RecoveryManagerParams defines the dependencies for the recovery token manager.
type RecoveryManagerParams struct {
	fx.In

	TxManager repository.TransactionManager
	Tokens    service.TokenService
	Logger    *slog.Logger
}

// NewRecoveryManager creates a new recovery token manager.
func NewRecoveryManager(params RecoveryManagerParams) usecase.RecoveryTokenManager {
	return &recoveryManager{
		txManager: params.TxManager,
		tokens:    params.Tokens,
		logger:    params.Logger,
	}
}

// IssueForEmail mints a recovery token for the account behind email. The
// lookup and the signing both run even when the account does not exist: a
// throwaway subject is signed instead, so the unknown-email path costs the
// same as the real one.
func (m *recoveryManager) IssueForEmail(ctx context.Context, email string) (string, uuid.UUID, error) {
	normalized := entity.NormalizeEmail(email)

	var cred *entity.Credential
	err := m.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		found, findErr := factory.CredentialRepo().FindByEmail(ctx, normalized)
		if findErr != nil {
			return findErr
		}
		cred = found
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			// Sign and discard a token for a random subject so issuance
			// work is done on this path too.
			if _, _, signErr := m.tokens.IssueRecovery(uuid.New()); signErr != nil {
				m.logger.ErrorContext(ctx, "decoy recovery issuance failed", slog.Any("error", signErr))
			}
			return "", uuid.Nil, repository.ErrCredentialNotFound
		}
		return "", uuid.Nil, errors.Wrap(err, "find credential for recovery")
	}

	token, nonce, err := m.tokens.IssueRecovery(cred.ID)
	if err != nil {
		return "", uuid.Nil, errors.Wrap(err, "issue recovery token")
	}

	m.logger.InfoContext(ctx, "recovery token issued",
		slog.String("user_id", cred.ID.String()),
		slog.String("nonce", nonce.String()),
	)
	return token, cred.ID, nil
}

// Consume validates token and burns its nonce. The burn is a conditional
// insert keyed on the nonce, so under concurrent redemption exactly one call
// observes success and every other call fails with the token sentinel.
func (m *recoveryManager) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := m.tokens.ParseRecovery(token)
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, service.ErrTokenMalformed
	}
	nonce, err := uuid.Parse(claims.ID)
	if err != nil {
		return uuid.Nil, service.ErrTokenMalformed
	}

	consumption := &entity.RecoveryConsumption{
		Nonce:      nonce,
		UserID:     userID,
		ConsumedAt: time.Now().UTC(),
		ExpiresAt:  claims.ExpiresAt.Time,
	}
	err = m.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		return factory.ConsumptionRepo().MarkConsumed(ctx, consumption)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNonceAlreadyConsumed) {
			m.logger.WarnContext(ctx, "recovery token replayed",
				slog.String("nonce", nonce.String()),
			)
		}
		return uuid.Nil, err
	}

	return userID, nil
}

// PurgeExpired deletes consumption records whose tokens can no longer
// validate anyway.
func (m *recoveryManager) PurgeExpired(ctx context.Context) (int64, error) {
	var purged int64
	err := m.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		n, deleteErr := factory.ConsumptionRepo().DeleteExpired(ctx)
		purged = n
		return deleteErr
	})
	if err != nil {
		return 0, errors.Wrap(err, "purge expired consumptions")
	}
	if purged > 0 {
		m.logger.InfoContext(ctx, "expired recovery records purged", slog.Int64("count", purged))
	}
	return purged, nil
}
