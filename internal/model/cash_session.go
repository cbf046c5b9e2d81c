package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus: "open" | "closed". Closing is terminal — a new session must
// be opened to resume operations on the same register.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

// CashSession is one open-to-close cycle for a register by one operator.
// ExpectedClosingAmount is derived from the ledger and only persisted at close
// time; while the session is open it is recomputed on every read so it can
// never drift from the transactions.
type CashSession struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegisterID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	OperatorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	OpeningAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Populated on close only
	ExpectedClosingAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ActualClosingAmount   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Difference            *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// DifferenceLevel: "ok" | "warning" | "critical" — reporting metadata,
	// never blocks closing.
	DifferenceLevel *string       `gorm:"type:varchar(20)"`
	Status          SessionStatus `gorm:"type:varchar(20);not null;default:'open'"`
	Notes           *string
	OpenedAt        time.Time
	ClosedAt        *time.Time

	Transactions []CashTransaction `gorm:"foreignKey:SessionID"`
}

// TransactionType: sign is implied by the type — sale and income add to the
// drawer, expense subtracts. Amounts are always stored positive.
type TransactionType string

const (
	TransactionSale    TransactionType = "sale"
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionSale, TransactionIncome, TransactionExpense:
		return true
	}
	return false
}

// CashTransaction is an immutable entry in a session's ledger. Entries are
// NEVER modified or deleted — corrections create inverse entries.
type CashTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type            TransactionType `gorm:"type:varchar(20);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	ReferenceNumber *string
	Description     string
	CreatedByID     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt       time.Time
}
