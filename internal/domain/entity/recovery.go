// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RecoveryConsumption records that a recovery token has been redeemed.
// The nonce is the token's embedded identifier; the existence of a row is
// what makes a token unusable a second time, independent of its expiry.
// Rows past ExpiresAt carry no information anymore and may be purged.
type RecoveryConsumption struct {
	Nonce      uuid.UUID // The token identifier embedded in the signed payload.
	UserID     uuid.UUID // The account the token was issued for.
	ConsumedAt time.Time // When the token was redeemed.
	ExpiresAt  time.Time // The token's natural expiry, used for garbage collection.
}
