package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is a way money enters or leaves the drawer (cash, debit, …).
// Methods with RequiresReference demand a reference number on every
// transaction (e.g. a card voucher id).
type PaymentMethod struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name              string    `gorm:"uniqueIndex;not null"`
	RequiresReference bool      `gorm:"not null;default:false"`
	Active            bool      `gorm:"not null;default:true"`
	CreatedAt         time.Time

	Transactions []CashTransaction `gorm:"foreignKey:PaymentMethodID"`
}
