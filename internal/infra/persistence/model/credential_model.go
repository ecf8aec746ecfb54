package model

import (
	"time"

	"github.com/google/uuid"
)

// CredentialModel mirrors the 'credentials' table. PostgreSQL generates UUIDs
// via uuid_generate_v7(); the email column carries the unique constraint that
// backs duplicate-registration detection.
type CredentialModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email        string    `gorm:"type:varchar(255);unique;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	IsSuperuser  bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (CredentialModel) TableName() string {
	return "credentials"
}

// RecoveryConsumptionModel mirrors the 'recovery_consumptions' table. The
// nonce primary key is the uniqueness constraint that makes consumption a
// check-and-set: the second insert of the same nonce conflicts.
type RecoveryConsumptionModel struct {
	Nonce      uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;not null"`
	ConsumedAt time.Time `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (RecoveryConsumptionModel) TableName() string {
	return "recovery_consumptions"
}
