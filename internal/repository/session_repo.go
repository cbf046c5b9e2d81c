package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cashdesk/internal/dto"
	"cashdesk/internal/model"
)

type SessionRepository interface {
	// CreateSession inserts a session with status open. The partial unique
	// index on (register_id) WHERE status = 'open' makes the check-and-insert
	// atomic: a concurrent double-open yields exactly one ErrDuplicate.
	CreateSession(ctx context.Context, s *model.CashSession) error
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	FindOpenByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error)
	FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashSession, error)
	ListSessions(ctx context.Context, f dto.SessionFilter) ([]model.CashSession, int64, error)
	// CloseSession persists the terminal transition. The WHERE status = 'open'
	// guard makes it a no-op on an already-closed row: ErrNotFound then.
	CloseSession(ctx context.Context, s *model.CashSession) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error

	// AppendTransaction inserts a ledger entry guarded by the session's open
	// status in the same statement, so an append racing a close cannot land
	// on a closed session. ErrNotFound when the session is missing or closed.
	AppendTransaction(ctx context.Context, tx *model.CashTransaction) error
	ListTransactions(ctx context.Context, sessionID uuid.UUID) ([]model.CashTransaction, error)
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) CreateSession(ctx context.Context, s *model.CashSession) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *sessionRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *sessionRepo) FindOpenByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("register_id = ? AND status = ?", registerID, model.SessionOpen).
		First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *sessionRepo) FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("operator_id = ? AND status = ?", operatorID, model.SessionOpen).
		First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *sessionRepo) ListSessions(ctx context.Context, f dto.SessionFilter) ([]model.CashSession, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.CashSession{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RegisterID != "" {
		q = q.Where("register_id = ?", f.RegisterID)
	}
	if f.OperatorID != "" {
		q = q.Where("operator_id = ?", f.OperatorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var sessions []model.CashSession
	err := q.Order("opened_at DESC").Offset(f.Skip).Limit(f.Limit).Find(&sessions).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return sessions, total, nil
}

func (r *sessionRepo) CloseSession(ctx context.Context, s *model.CashSession) error {
	res := r.db.WithContext(ctx).Model(&model.CashSession{}).
		Where("id = ? AND status = ?", s.ID, model.SessionOpen).
		Updates(map[string]interface{}{
			"expected_closing_amount": s.ExpectedClosingAmount,
			"actual_closing_amount":   s.ActualClosingAmount,
			"difference":              s.Difference,
			"difference_level":        s.DifferenceLevel,
			"status":                  model.SessionClosed,
			"notes":                   s.Notes,
			"closed_at":               s.ClosedAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sessionRepo) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	res := r.db.WithContext(ctx).Model(&model.CashSession{}).
		Where("id = ?", id).
		Update("notes", notes)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sessionRepo) AppendTransaction(ctx context.Context, tx *model.CashTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	// INSERT ... SELECT with the status guard in one statement: the check and
	// the append commit together or not at all, so a close that wins the race
	// leaves the guard false and the insert affects zero rows.
	res := r.db.WithContext(ctx).Exec(`
		INSERT INTO cash_transactions
			(id, session_id, type, amount, payment_method_id, reference_number, description, created_by_id, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (
			SELECT 1 FROM cash_sessions WHERE id = ? AND status = ?
		)`,
		tx.ID, tx.SessionID, tx.Type, tx.Amount, tx.PaymentMethodID,
		tx.ReferenceNumber, tx.Description, tx.CreatedByID, tx.CreatedAt,
		tx.SessionID, model.SessionOpen)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTransactions returns the ledger in insertion order. created_at plus id
// as tiebreaker preserves append order for entries created in the same tick.
func (r *sessionRepo) ListTransactions(ctx context.Context, sessionID uuid.UUID) ([]model.CashTransaction, error) {
	var txs []model.CashTransaction
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&txs).Error
	if err != nil {
		return nil, translate(err)
	}
	return txs, nil
}
