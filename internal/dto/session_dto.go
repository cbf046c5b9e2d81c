package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	RegisterID    string          `json:"register_id"    validate:"required,uuid"`
	OpeningAmount decimal.Decimal `json:"opening_amount" validate:"min=0"`
	Notes         *string         `json:"notes"`
}

type RecordTransactionRequest struct {
	Type            string          `json:"type"              validate:"required,oneof=sale income expense"`
	Amount          decimal.Decimal `json:"amount"            validate:"required,gt=0"`
	PaymentMethodID string          `json:"payment_method_id" validate:"required,uuid"`
	ReferenceNumber *string         `json:"reference_number"`
	Description     string          `json:"description"`
}

type CloseSessionRequest struct {
	ActualClosingAmount decimal.Decimal `json:"actual_closing_amount" validate:"min=0"`
	Notes               *string         `json:"notes"`
}

// UpdateNotesRequest replaces a session's notes. Notes are the one field that
// stays mutable after close; nil clears them.
type UpdateNotesRequest struct {
	Notes *string `json:"notes"`
}

// SessionFilter drives list queries. Skip/Limit follow the wire contract;
// zero Limit falls back to a server-side default.
type SessionFilter struct {
	Status     string `form:"status"`
	RegisterID string `form:"register_id"`
	OperatorID string `form:"operator_id"`
	Skip       int    `form:"skip"`
	Limit      int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessionResponse struct {
	ID            string          `json:"id"`
	RegisterID    string          `json:"register_id"`
	OperatorID    string          `json:"operator_id"`
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	// ExpectedClosingAmount is live-derived from the ledger for open sessions
	// and the frozen close-time value for closed ones.
	ExpectedClosingAmount decimal.Decimal  `json:"expected_closing_amount"`
	ActualClosingAmount   *decimal.Decimal `json:"actual_closing_amount"`
	Difference            *decimal.Decimal `json:"difference"`
	DifferenceLevel       *string          `json:"difference_level"`
	Status                string           `json:"status"`
	Notes                 *string          `json:"notes"`
	OpenedAt              string           `json:"opened_at"`
	ClosedAt              *string          `json:"closed_at"`
}

type TransactionResponse struct {
	ID              string          `json:"id"`
	SessionID       string          `json:"session_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethodID string          `json:"payment_method_id"`
	ReferenceNumber *string         `json:"reference_number"`
	Description     string          `json:"description"`
	CreatedByID     string          `json:"created_by_id"`
	CreatedAt       string          `json:"created_at"`
}

type SessionListResponse struct {
	Data  []SessionResponse `json:"data"`
	Total int64             `json:"total"`
	Skip  int               `json:"skip"`
	Limit int               `json:"limit"`
}
