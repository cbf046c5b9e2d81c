package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"cashdesk/internal/apierror"
	"cashdesk/internal/dto"
	"cashdesk/internal/ledger"
	"cashdesk/internal/model"
	"cashdesk/internal/repository"
	"cashdesk/internal/worker"
)

// SessionService is the lifecycle manager for cash sessions: it owns the
// open → closed state machine and is the only writer of session rows. All
// business-rule violations are rejected here, before reaching the store.
type SessionService interface {
	Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	Record(ctx context.Context, operatorID uuid.UUID, sessionID uuid.UUID, req dto.RecordTransactionRequest) (*dto.TransactionResponse, error)
	Close(ctx context.Context, sessionID uuid.UUID, req dto.CloseSessionRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error)
	// UpdateNotes is allowed on both open and closed sessions: notes are the
	// one field the terminal close does not freeze.
	UpdateNotes(ctx context.Context, sessionID uuid.UUID, notes *string) (*dto.SessionResponse, error)
	List(ctx context.Context, f dto.SessionFilter) (*dto.SessionListResponse, error)
	ListTransactions(ctx context.Context, sessionID uuid.UUID) ([]dto.TransactionResponse, error)
	// ActiveForRegister / ActiveForOperator return nil (no error) when there
	// is no open session — callers gate sale recording on the result.
	ActiveForRegister(ctx context.Context, registerID uuid.UUID) (*dto.SessionResponse, error)
	ActiveForOperator(ctx context.Context, operatorID uuid.UUID) (*dto.SessionResponse, error)
}

type sessionService struct {
	sessions   repository.SessionRepository
	registers  repository.RegisterRepository
	methods    repository.PaymentMethodRepository
	dispatcher *worker.Dispatcher
	// singleSessionPerOperator enforces at most one open session per operator
	// across all registers. Business policy, not a structural invariant.
	singleSessionPerOperator bool
}

func NewSessionService(
	sessions repository.SessionRepository,
	registers repository.RegisterRepository,
	methods repository.PaymentMethodRepository,
	dispatcher *worker.Dispatcher,
	singleSessionPerOperator bool,
) SessionService {
	return &sessionService{
		sessions:                 sessions,
		registers:                registers,
		methods:                  methods,
		dispatcher:               dispatcher,
		singleSessionPerOperator: singleSessionPerOperator,
	}
}

// ── Open ─────────────────────────────────────────────────────────────────────

func (s *sessionService) Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	if req.OpeningAmount.IsNegative() {
		return nil, apierror.Validation("opening amount must be zero or positive")
	}
	registerID, err := uuid.Parse(req.RegisterID)
	if err != nil {
		return nil, apierror.Validation("invalid register id")
	}

	register, err := s.registers.FindByID(ctx, registerID)
	if err != nil {
		return nil, storeErr(err, "register not found")
	}
	if !register.Active {
		return nil, apierror.Validation("register is inactive")
	}

	if s.singleSessionPerOperator {
		if open, err := s.sessions.FindOpenByOperator(ctx, operatorID); err == nil && open != nil {
			return nil, apierror.Conflict("operator already has an open session")
		}
	}

	session := &model.CashSession{
		RegisterID:    registerID,
		OperatorID:    operatorID,
		OpeningAmount: req.OpeningAmount,
		Status:        model.SessionOpen,
		Notes:         req.Notes,
		OpenedAt:      time.Now().UTC(),
	}
	// The insert itself is the uniqueness check: the partial unique indexes on
	// open sessions turn a concurrent double-open into ErrDuplicate (register)
	// or ErrOperatorBusy (operator policy), so two racing opens can never both
	// succeed even when the pre-check above read stale state.
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		switch {
		case errors.Is(err, repository.ErrOperatorBusy):
			return nil, apierror.Conflict("operator already has an open session")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apierror.Conflict("register already has an open session")
		}
		return nil, storeErr(err, "register not found")
	}

	return sessionToResponse(session, session.OpeningAmount), nil
}

// ── Record ───────────────────────────────────────────────────────────────────

func (s *sessionService) Record(ctx context.Context, operatorID uuid.UUID, sessionID uuid.UUID, req dto.RecordTransactionRequest) (*dto.TransactionResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, apierror.Validation("amount must be greater than zero")
	}
	txType := model.TransactionType(req.Type)
	if !txType.Valid() {
		return nil, apierror.Validation("unknown transaction type")
	}
	methodID, err := uuid.Parse(req.PaymentMethodID)
	if err != nil {
		return nil, apierror.Validation("invalid payment method id")
	}

	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, storeErr(err, "session not found")
	}
	if session.Status != model.SessionOpen {
		return nil, apierror.InvalidState("session is closed — transactions can only be recorded on an open session")
	}

	method, err := s.methods.FindByID(ctx, methodID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.Validation("unknown payment method")
		}
		return nil, storeErr(err, "payment method not found")
	}
	if !method.Active {
		return nil, apierror.Validation("payment method is inactive")
	}
	if method.RequiresReference && (req.ReferenceNumber == nil || *req.ReferenceNumber == "") {
		return nil, apierror.Validation("payment method " + method.Name + " requires a reference number")
	}

	tx := &model.CashTransaction{
		SessionID:       sessionID,
		Type:            txType,
		Amount:          req.Amount,
		PaymentMethodID: methodID,
		ReferenceNumber: req.ReferenceNumber,
		Description:     req.Description,
		CreatedByID:     operatorID,
	}
	if err := s.sessions.AppendTransaction(ctx, tx); err != nil {
		// The guarded insert found no open row: a concurrent close won after
		// the status check above.
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.InvalidState("session is closed — transactions can only be recorded on an open session")
		}
		return nil, storeErr(err, "session not found")
	}
	return transactionToResponse(tx), nil
}

// ── Close ────────────────────────────────────────────────────────────────────
// The single terminal transition. Expected amount is computed from a ledger
// snapshot taken here; the discrepancy — however large — never blocks closing,
// it is surfaced to the caller and graded for reporting.

func (s *sessionService) Close(ctx context.Context, sessionID uuid.UUID, req dto.CloseSessionRequest) (*dto.SessionResponse, error) {
	if req.ActualClosingAmount.IsNegative() {
		return nil, apierror.Validation("actual closing amount must be zero or positive")
	}

	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, storeErr(err, "session not found")
	}
	if session.Status != model.SessionOpen {
		return nil, apierror.InvalidState("session is already closed")
	}

	expected := ledger.ExpectedClosingAmount(session.OpeningAmount, session.Transactions)
	actual := req.ActualClosingAmount
	difference := actual.Sub(expected)
	level := ledger.ClassifyDifference(difference, expected)
	now := time.Now().UTC()

	session.ExpectedClosingAmount = &expected
	session.ActualClosingAmount = &actual
	session.Difference = &difference
	session.DifferenceLevel = &level
	session.Status = model.SessionClosed
	session.ClosedAt = &now
	if req.Notes != nil {
		session.Notes = req.Notes
	}

	if err := s.sessions.CloseSession(ctx, session); err != nil {
		// The guarded UPDATE found no open row: a concurrent close won.
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.InvalidState("session is already closed")
		}
		return nil, storeErr(err, "session not found")
	}

	s.enqueueClosingSummary(ctx, session)

	return sessionToResponse(session, expected), nil
}

// enqueueClosingSummary dispatches the async reconciliation summary. Best
// effort: a queue failure must not fail the close, the session is already
// committed.
func (s *sessionService) enqueueClosingSummary(ctx context.Context, session *model.CashSession) {
	if s.dispatcher == nil {
		return
	}
	register, err := s.registers.FindByID(ctx, session.RegisterID)
	registerNumber := ""
	if err == nil {
		registerNumber = register.Number
	}
	payload := worker.ClosingSummaryPayload{
		SessionID:      session.ID.String(),
		RegisterNumber: registerNumber,
		Expected:       session.ExpectedClosingAmount.String(),
		Actual:         session.ActualClosingAmount.String(),
		Difference:     session.Difference.String(),
		Level:          *session.DifferenceLevel,
		ClosedAt:       session.ClosedAt.Format(time.RFC3339),
	}
	if err := s.dispatcher.EnqueueClosingSummary(ctx, payload); err != nil {
		log.Error().Err(err).Str("session_id", session.ID.String()).
			Msg("failed to enqueue closing summary")
	}
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, storeErr(err, "session not found")
	}
	return sessionToResponse(session, liveExpected(session)), nil
}

func (s *sessionService) UpdateNotes(ctx context.Context, sessionID uuid.UUID, notes *string) (*dto.SessionResponse, error) {
	if err := s.sessions.UpdateNotes(ctx, sessionID, notes); err != nil {
		return nil, storeErr(err, "session not found")
	}
	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, storeErr(err, "session not found")
	}
	return sessionToResponse(session, liveExpected(session)), nil
}

func (s *sessionService) List(ctx context.Context, f dto.SessionFilter) (*dto.SessionListResponse, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 100
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Status != "" && f.Status != string(model.SessionOpen) && f.Status != string(model.SessionClosed) {
		return nil, apierror.Validation("status must be open or closed")
	}

	sessions, total, err := s.sessions.ListSessions(ctx, f)
	if err != nil {
		return nil, storeErr(err, "sessions not found")
	}

	resp := &dto.SessionListResponse{
		Data:  make([]dto.SessionResponse, 0, len(sessions)),
		Total: total,
		Skip:  f.Skip,
		Limit: f.Limit,
	}
	for i := range sessions {
		resp.Data = append(resp.Data, *sessionToResponse(&sessions[i], liveExpected(&sessions[i])))
	}
	return resp, nil
}

func (s *sessionService) ListTransactions(ctx context.Context, sessionID uuid.UUID) ([]dto.TransactionResponse, error) {
	if _, err := s.sessions.FindSessionByID(ctx, sessionID); err != nil {
		return nil, storeErr(err, "session not found")
	}
	txs, err := s.sessions.ListTransactions(ctx, sessionID)
	if err != nil {
		return nil, storeErr(err, "session not found")
	}
	resp := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		resp = append(resp, *transactionToResponse(&txs[i]))
	}
	return resp, nil
}

func (s *sessionService) ActiveForRegister(ctx context.Context, registerID uuid.UUID) (*dto.SessionResponse, error) {
	return s.active(ctx, func(ctx context.Context) (*model.CashSession, error) {
		return s.sessions.FindOpenByRegister(ctx, registerID)
	})
}

func (s *sessionService) ActiveForOperator(ctx context.Context, operatorID uuid.UUID) (*dto.SessionResponse, error) {
	return s.active(ctx, func(ctx context.Context) (*model.CashSession, error) {
		return s.sessions.FindOpenByOperator(ctx, operatorID)
	})
}

func (s *sessionService) active(ctx context.Context, find func(context.Context) (*model.CashSession, error)) (*dto.SessionResponse, error) {
	session, err := find(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, storeErr(err, "session not found")
	}
	full, err := s.sessions.FindSessionByID(ctx, session.ID)
	if err != nil {
		return nil, storeErr(err, "session not found")
	}
	return sessionToResponse(full, liveExpected(full)), nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// liveExpected returns the frozen close-time value for closed sessions and a
// fresh derivation from the loaded ledger snapshot for open ones.
func liveExpected(s *model.CashSession) decimal.Decimal {
	if s.Status == model.SessionClosed && s.ExpectedClosingAmount != nil {
		return *s.ExpectedClosingAmount
	}
	return ledger.ExpectedClosingAmount(s.OpeningAmount, s.Transactions)
}

// storeErr maps repository sentinels onto the API error taxonomy with an
// operation-specific not-found message.
func storeErr(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apierror.NotFound(notFoundMsg)
	case errors.Is(err, repository.ErrDuplicate):
		return apierror.Conflict("duplicate record")
	case errors.Is(err, repository.ErrTimeout):
		return apierror.Timeout("the store did not respond in time, try again")
	default:
		return apierror.Wrap(apierror.KindInternal, "internal server error", err)
	}
}

func sessionToResponse(s *model.CashSession, expected decimal.Decimal) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:                    s.ID.String(),
		RegisterID:            s.RegisterID.String(),
		OperatorID:            s.OperatorID.String(),
		OpeningAmount:         s.OpeningAmount,
		ExpectedClosingAmount: expected,
		ActualClosingAmount:   s.ActualClosingAmount,
		Difference:            s.Difference,
		DifferenceLevel:       s.DifferenceLevel,
		Status:                string(s.Status),
		Notes:                 s.Notes,
		OpenedAt:              s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}

func transactionToResponse(tx *model.CashTransaction) *dto.TransactionResponse {
	return &dto.TransactionResponse{
		ID:              tx.ID.String(),
		SessionID:       tx.SessionID.String(),
		Type:            string(tx.Type),
		Amount:          tx.Amount,
		PaymentMethodID: tx.PaymentMethodID.String(),
		ReferenceNumber: tx.ReferenceNumber,
		Description:     tx.Description,
		CreatedByID:     tx.CreatedByID.String(),
		CreatedAt:       tx.CreatedAt.Format(time.RFC3339),
	}
}
