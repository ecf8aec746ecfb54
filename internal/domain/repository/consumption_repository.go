// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"gatekeeper/internal/domain/entity"
)

// ErrNonceAlreadyConsumed is returned when a recovery token's nonce has
// already been marked used. Exactly one of any number of racing consume
// calls observes success; all others get this error.
var ErrNonceAlreadyConsumed = errors.New("recovery token already consumed")

// ConsumptionRepository tracks redeemed recovery tokens. It is the single
// synchronization point of the subsystem: MarkConsumed must be a
// linearizable check-and-set, so racing redeemers of the same nonce cannot
// both succeed. No other component writes this record.
type ConsumptionRepository interface {
	// MarkConsumed atomically records the nonce as used. Returns
	// ErrNonceAlreadyConsumed if a record for the nonce already exists.
	MarkConsumed(ctx context.Context, consumption *entity.RecoveryConsumption) error

	// DeleteExpired removes consumption records whose token expiry has
	// passed; such tokens can no longer verify anyway. Returns the number
	// of rows removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
