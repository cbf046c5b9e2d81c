package model

import (
	"time"

	"github.com/google/uuid"
)

// CashRegister is a physical or logical drawer. Immutable once created except
// for the active flag.
type CashRegister struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number    string    `gorm:"uniqueIndex;not null"`
	Location  string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time

	Sessions []CashSession `gorm:"foreignKey:RegisterID"`
}
