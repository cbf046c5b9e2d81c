package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashdesk/internal/apierror"
	"cashdesk/internal/dto"
	"cashdesk/internal/model"
	"cashdesk/internal/repository"
	"cashdesk/internal/service"
)

// ── In-memory SessionRepository ──────────────────────────────────────────────
// The mutex plus the uniqueness checks inside CreateSession mirror what the
// partial unique indexes give the real store: concurrent double-opens yield
// exactly one ErrDuplicate / ErrOperatorBusy. AppendTransaction carries the
// same status guard as the real guarded insert.

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]model.CashSession
	txs      []model.CashTransaction
	// enforceOperator mirrors the ux_cash_sessions_open_operator policy index.
	enforceOperator bool
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]model.CashSession)}
}

func (r *memSessionRepo) CreateSession(_ context.Context, s *model.CashSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.Status != model.SessionOpen {
			continue
		}
		if existing.RegisterID == s.RegisterID {
			return repository.ErrDuplicate
		}
		if r.enforceOperator && existing.OperatorID == s.OperatorID {
			return repository.ErrOperatorBusy
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *memSessionRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.Transactions = nil
	for _, tx := range r.txs {
		if tx.SessionID == id {
			s.Transactions = append(s.Transactions, tx)
		}
	}
	return &s, nil
}

func (r *memSessionRepo) FindOpenByRegister(_ context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.RegisterID == registerID && s.Status == model.SessionOpen {
			out := s
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSessionRepo) FindOpenByOperator(_ context.Context, operatorID uuid.UUID) (*model.CashSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.OperatorID == operatorID && s.Status == model.SessionOpen {
			out := s
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSessionRepo) ListSessions(_ context.Context, f dto.SessionFilter) ([]model.CashSession, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.CashSession
	for _, s := range r.sessions {
		if f.Status != "" && string(s.Status) != f.Status {
			continue
		}
		if f.RegisterID != "" && s.RegisterID.String() != f.RegisterID {
			continue
		}
		if f.OperatorID != "" && s.OperatorID.String() != f.OperatorID {
			continue
		}
		all = append(all, s)
	}
	return all, int64(len(all)), nil
}

func (r *memSessionRepo) CloseSession(_ context.Context, s *model.CashSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[s.ID]
	if !ok || stored.Status != model.SessionOpen {
		return repository.ErrNotFound
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *memSessionRepo) UpdateNotes(_ context.Context, id uuid.UUID, notes *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Notes = notes
	r.sessions[id] = s
	return nil
}

func (r *memSessionRepo) AppendTransaction(_ context.Context, tx *model.CashTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tx.SessionID]
	if !ok || s.Status != model.SessionOpen {
		return repository.ErrNotFound
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	r.txs = append(r.txs, *tx)
	return nil
}

func (r *memSessionRepo) ListTransactions(_ context.Context, sessionID uuid.UUID) ([]model.CashTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CashTransaction
	for _, tx := range r.txs {
		if tx.SessionID == sessionID {
			out = append(out, tx)
		}
	}
	return out, nil
}

var _ repository.SessionRepository = (*memSessionRepo)(nil)

// ── In-memory register / payment-method repositories ─────────────────────────

type memRegisterRepo struct {
	mu        sync.Mutex
	registers map[uuid.UUID]model.CashRegister
}

func newMemRegisterRepo() *memRegisterRepo {
	return &memRegisterRepo{registers: make(map[uuid.UUID]model.CashRegister)}
}

func (r *memRegisterRepo) Create(_ context.Context, reg *model.CashRegister) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	r.registers[reg.ID] = *reg
	return nil
}

func (r *memRegisterRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashRegister, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.registers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &reg, nil
}

func (r *memRegisterRepo) List(_ context.Context, activeOnly bool) ([]model.CashRegister, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CashRegister
	for _, reg := range r.registers {
		if activeOnly && !reg.Active {
			continue
		}
		out = append(out, reg)
	}
	return out, nil
}

func (r *memRegisterRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.registers[id]
	if !ok {
		return repository.ErrNotFound
	}
	reg.Active = active
	r.registers[id] = reg
	return nil
}

var _ repository.RegisterRepository = (*memRegisterRepo)(nil)

type memMethodRepo struct {
	methods map[uuid.UUID]model.PaymentMethod
}

func newMemMethodRepo() *memMethodRepo {
	return &memMethodRepo{methods: make(map[uuid.UUID]model.PaymentMethod)}
}

func (r *memMethodRepo) Create(_ context.Context, m *model.PaymentMethod) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.methods[m.ID] = *m
	return nil
}

func (r *memMethodRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	m, ok := r.methods[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *memMethodRepo) List(_ context.Context, activeOnly bool) ([]model.PaymentMethod, error) {
	var out []model.PaymentMethod
	for _, m := range r.methods {
		if activeOnly && !m.Active {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

var _ repository.PaymentMethodRepository = (*memMethodRepo)(nil)

// ── Fixtures ─────────────────────────────────────────────────────────────────

type fixture struct {
	svc       service.SessionService
	sessions  *memSessionRepo
	registers *memRegisterRepo
	cash      uuid.UUID // payment method without reference requirement
	card      uuid.UUID // payment method requiring a reference
	register  uuid.UUID
}

func newFixture(t *testing.T, operatorPolicy bool) *fixture {
	t.Helper()
	sessions := newMemSessionRepo()
	sessions.enforceOperator = operatorPolicy
	registers := newMemRegisterRepo()
	methods := newMemMethodRepo()

	reg := &model.CashRegister{Number: "REG-01", Active: true}
	require.NoError(t, registers.Create(context.Background(), reg))

	cash := &model.PaymentMethod{Name: "cash", Active: true}
	require.NoError(t, methods.Create(context.Background(), cash))
	card := &model.PaymentMethod{Name: "card", RequiresReference: true, Active: true}
	require.NoError(t, methods.Create(context.Background(), card))

	return &fixture{
		svc:       service.NewSessionService(sessions, registers, methods, nil, operatorPolicy),
		sessions:  sessions,
		registers: registers,
		cash:      cash.ID,
		card:      card.ID,
		register:  reg.ID,
	}
}

func openSession(t *testing.T, f *fixture, operatorID uuid.UUID, opening string) *dto.SessionResponse {
	t.Helper()
	resp, err := f.svc.Open(context.Background(), operatorID, dto.OpenSessionRequest{
		RegisterID:    f.register.String(),
		OpeningAmount: decimal.RequireFromString(opening),
	})
	require.NoError(t, err)
	return resp
}

func record(t *testing.T, f *fixture, operatorID uuid.UUID, sessionID, txType, amount string) {
	t.Helper()
	_, err := f.svc.Record(context.Background(), operatorID, uuid.MustParse(sessionID), dto.RecordTransactionRequest{
		Type:            txType,
		Amount:          decimal.RequireFromString(amount),
		PaymentMethodID: f.cash.String(),
	})
	require.NoError(t, err)
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestOpenSession(t *testing.T) {
	f := newFixture(t, false)

	resp := openSession(t, f, uuid.New(), "100.00")

	assert.Equal(t, "open", resp.Status)
	assert.Equal(t, "100", resp.OpeningAmount.String())
	assert.Equal(t, "100", resp.ExpectedClosingAmount.String())
	assert.Nil(t, resp.ClosedAt)
}

func TestOpenSessionNegativeAmount(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		RegisterID:    f.register.String(),
		OpeningAmount: decimal.RequireFromString("-1.00"),
	})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestOpenSessionUnknownRegister(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		RegisterID:    uuid.NewString(),
		OpeningAmount: decimal.RequireFromString("10.00"),
	})
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestOpenSessionDuplicateRegister(t *testing.T) {
	f := newFixture(t, false)
	openSession(t, f, uuid.New(), "100.00")

	_, err := f.svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		RegisterID:    f.register.String(),
		OpeningAmount: decimal.RequireFromString("50.00"),
	})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
	assert.ErrorContains(t, err, "already has an open session")
}

func TestOpenSessionConcurrent(t *testing.T) {
	// Many racing opens on one register: exactly one wins, the rest conflict.
	f := newFixture(t, false)

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
				RegisterID:    f.register.String(),
				OpeningAmount: decimal.RequireFromString("100.00"),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestOpenSessionOperatorPolicy(t *testing.T) {
	f := newFixture(t, true)
	operatorID := uuid.New()
	openSession(t, f, operatorID, "100.00")

	// Same operator on a second register is still rejected under the policy.
	reg2 := &model.CashRegister{Number: "REG-02", Active: true}
	require.NoError(t, f.registers.Create(context.Background(), reg2))

	_, err := f.svc.Open(context.Background(), operatorID, dto.OpenSessionRequest{
		RegisterID:    reg2.ID.String(),
		OpeningAmount: decimal.RequireFromString("10.00"),
	})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
	assert.ErrorContains(t, err, "operator already has an open session")
}

// staleOperatorLookupRepo simulates the operator pre-check reading stale
// state: FindOpenByOperator never sees the open session, so only the insert
// guard can reject the double-open.
type staleOperatorLookupRepo struct {
	*memSessionRepo
}

func (r *staleOperatorLookupRepo) FindOpenByOperator(context.Context, uuid.UUID) (*model.CashSession, error) {
	return nil, repository.ErrNotFound
}

func TestOpenSessionOperatorPolicyStalePrecheck(t *testing.T) {
	sessions := newMemSessionRepo()
	sessions.enforceOperator = true
	stale := &staleOperatorLookupRepo{memSessionRepo: sessions}
	registers := newMemRegisterRepo()
	methods := newMemMethodRepo()

	reg1 := &model.CashRegister{Number: "REG-01", Active: true}
	require.NoError(t, registers.Create(context.Background(), reg1))
	reg2 := &model.CashRegister{Number: "REG-02", Active: true}
	require.NoError(t, registers.Create(context.Background(), reg2))

	svc := service.NewSessionService(stale, registers, methods, nil, true)

	operatorID := uuid.New()
	_, err := svc.Open(context.Background(), operatorID, dto.OpenSessionRequest{
		RegisterID:    reg1.ID.String(),
		OpeningAmount: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	// The pre-check misses the open session; the per-operator index still
	// rejects the insert, and the conflict names the operator rule.
	_, err = svc.Open(context.Background(), operatorID, dto.OpenSessionRequest{
		RegisterID:    reg2.ID.String(),
		OpeningAmount: decimal.RequireFromString("10.00"),
	})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
	assert.ErrorContains(t, err, "operator already has an open session")
}

func TestRecordTransaction(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "100.00")

	txResp, err := f.svc.Record(context.Background(), operatorID, uuid.MustParse(resp.ID), dto.RecordTransactionRequest{
		Type:            "sale",
		Amount:          decimal.RequireFromString("50.00"),
		PaymentMethodID: f.cash.String(),
		Description:     "morning sales",
	})
	require.NoError(t, err)
	assert.Equal(t, "sale", txResp.Type)
	assert.Equal(t, "50", txResp.Amount.String())
	assert.Equal(t, resp.ID, txResp.SessionID)
}

func TestRecordTransactionValidation(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "100.00")
	sessionID := uuid.MustParse(resp.ID)

	cases := []struct {
		name string
		req  dto.RecordTransactionRequest
	}{
		{"zero amount", dto.RecordTransactionRequest{
			Type: "sale", Amount: decimal.Zero, PaymentMethodID: f.cash.String()}},
		{"negative amount", dto.RecordTransactionRequest{
			Type: "sale", Amount: decimal.RequireFromString("-5.00"), PaymentMethodID: f.cash.String()}},
		{"unknown type", dto.RecordTransactionRequest{
			Type: "refund", Amount: decimal.RequireFromString("5.00"), PaymentMethodID: f.cash.String()}},
		{"unknown payment method", dto.RecordTransactionRequest{
			Type: "sale", Amount: decimal.RequireFromString("5.00"), PaymentMethodID: uuid.NewString()}},
		{"missing reference for card", dto.RecordTransactionRequest{
			Type: "sale", Amount: decimal.RequireFromString("5.00"), PaymentMethodID: f.card.String()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Record(context.Background(), operatorID, sessionID, tc.req)
			assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
		})
	}
}

func TestRecordTransactionWithReference(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "100.00")
	ref := "AUTH-4711"

	txResp, err := f.svc.Record(context.Background(), operatorID, uuid.MustParse(resp.ID), dto.RecordTransactionRequest{
		Type:            "sale",
		Amount:          decimal.RequireFromString("25.00"),
		PaymentMethodID: f.card.String(),
		ReferenceNumber: &ref,
	})
	require.NoError(t, err)
	require.NotNil(t, txResp.ReferenceNumber)
	assert.Equal(t, ref, *txResp.ReferenceNumber)
}

// hookedSessionRepo fires afterFind once after the first FindSessionByID,
// opening a window between a service's status check and its next store call.
type hookedSessionRepo struct {
	*memSessionRepo
	afterFind func()
}

func (r *hookedSessionRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, err := r.memSessionRepo.FindSessionByID(ctx, id)
	if r.afterFind != nil {
		fn := r.afterFind
		r.afterFind = nil
		fn()
	}
	return s, err
}

func TestRecordLosingRaceWithClose(t *testing.T) {
	// A close lands between Record's status check and its append. The guarded
	// insert must refuse the entry so the frozen expected amount still matches
	// the ledger.
	sessions := newMemSessionRepo()
	hooked := &hookedSessionRepo{memSessionRepo: sessions}
	registers := newMemRegisterRepo()
	methods := newMemMethodRepo()

	reg := &model.CashRegister{Number: "REG-01", Active: true}
	require.NoError(t, registers.Create(context.Background(), reg))
	cash := &model.PaymentMethod{Name: "cash", Active: true}
	require.NoError(t, methods.Create(context.Background(), cash))

	svc := service.NewSessionService(hooked, registers, methods, nil, false)
	closeSvc := service.NewSessionService(sessions, registers, methods, nil, false)

	operatorID := uuid.New()
	opened, err := svc.Open(context.Background(), operatorID, dto.OpenSessionRequest{
		RegisterID:    reg.ID.String(),
		OpeningAmount: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)
	sessionID := uuid.MustParse(opened.ID)

	hooked.afterFind = func() {
		_, err := closeSvc.Close(context.Background(), sessionID, dto.CloseSessionRequest{
			ActualClosingAmount: decimal.RequireFromString("100.00"),
		})
		require.NoError(t, err)
	}

	_, err = svc.Record(context.Background(), operatorID, sessionID, dto.RecordTransactionRequest{
		Type:            "sale",
		Amount:          decimal.RequireFromString("50.00"),
		PaymentMethodID: cash.ID.String(),
	})
	assert.Equal(t, apierror.KindInvalidState, apierror.KindOf(err))

	// Nothing landed on the closed session; expected stays frozen at 100.
	txs, err := closeSvc.ListTransactions(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Empty(t, txs)
	stored, err := closeSvc.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "100", stored.ExpectedClosingAmount.String())
}

func TestRecordOnClosedSession(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "100.00")
	sessionID := uuid.MustParse(resp.ID)

	_, err := f.svc.Close(context.Background(), sessionID, dto.CloseSessionRequest{
		ActualClosingAmount: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	_, err = f.svc.Record(context.Background(), operatorID, sessionID, dto.RecordTransactionRequest{
		Type:            "sale",
		Amount:          decimal.RequireFromString("5.00"),
		PaymentMethodID: f.cash.String(),
	})
	assert.Equal(t, apierror.KindInvalidState, apierror.KindOf(err))
}

func TestCloseSession(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "100.00")
	record(t, f, operatorID, resp.ID, "sale", "50.00")
	record(t, f, operatorID, resp.ID, "expense", "20.00")
	record(t, f, operatorID, resp.ID, "income", "10.00")

	closed, err := f.svc.Close(context.Background(), uuid.MustParse(resp.ID), dto.CloseSessionRequest{
		ActualClosingAmount: decimal.RequireFromString("138.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, "closed", closed.Status)
	assert.Equal(t, "140", closed.ExpectedClosingAmount.String())
	require.NotNil(t, closed.Difference)
	assert.Equal(t, "-1.5", closed.Difference.String())
	require.NotNil(t, closed.DifferenceLevel)
	// 1.5 over 140 ≈ 1.07% → just above the ok band.
	assert.Equal(t, "warning", *closed.DifferenceLevel)
	assert.NotNil(t, closed.ClosedAt)
}

func TestCloseSessionExactMatch(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "0.00")
	record(t, f, operatorID, resp.ID, "income", "25.00")
	record(t, f, operatorID, resp.ID, "sale", "15.00")

	closed, err := f.svc.Close(context.Background(), uuid.MustParse(resp.ID), dto.CloseSessionRequest{
		ActualClosingAmount: decimal.RequireFromString("40.00"),
	})
	require.NoError(t, err)
	assert.True(t, closed.Difference.IsZero())
	assert.Equal(t, "ok", *closed.DifferenceLevel)
}

func TestCloseSessionTwice(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "100.00")
	sessionID := uuid.MustParse(resp.ID)

	first, err := f.svc.Close(context.Background(), sessionID, dto.CloseSessionRequest{
		ActualClosingAmount: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	_, err = f.svc.Close(context.Background(), sessionID, dto.CloseSessionRequest{
		ActualClosingAmount: decimal.RequireFromString("999.00"),
	})
	assert.Equal(t, apierror.KindInvalidState, apierror.KindOf(err))

	// The losing close must not have mutated the stored session.
	stored, err := f.svc.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, first.ActualClosingAmount.String(), stored.ActualClosingAmount.String())
}

func TestLargeDiscrepancyStillCloses(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "100.00")

	closed, err := f.svc.Close(context.Background(), uuid.MustParse(resp.ID), dto.CloseSessionRequest{
		ActualClosingAmount: decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "closed", closed.Status)
	assert.Equal(t, "critical", *closed.DifferenceLevel)
	assert.Equal(t, "-90", closed.Difference.String())
}

func TestListTransactionsInsertionOrder(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "0.00")

	amounts := []string{"1.00", "2.00", "3.00", "4.00"}
	for _, a := range amounts {
		record(t, f, operatorID, resp.ID, "sale", a)
	}

	txs, err := f.svc.ListTransactions(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	require.Len(t, txs, len(amounts))
	for i, a := range amounts {
		assert.Equal(t, decimal.RequireFromString(a).String(), txs[i].Amount.String())
	}
}

func TestUpdateNotesAfterClose(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "100.00")
	sessionID := uuid.MustParse(resp.ID)

	_, err := f.svc.Close(context.Background(), sessionID, dto.CloseSessionRequest{
		ActualClosingAmount: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	notes := "counted twice, short by nothing"
	updated, err := f.svc.UpdateNotes(context.Background(), sessionID, &notes)
	require.NoError(t, err)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)
	assert.Equal(t, "closed", updated.Status)
}

func TestActiveForRegister(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()

	// Nothing open yet.
	active, err := f.svc.ActiveForRegister(context.Background(), f.register)
	require.NoError(t, err)
	assert.Nil(t, active)

	resp := openSession(t, f, operatorID, "100.00")

	active, err = f.svc.ActiveForRegister(context.Background(), f.register)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, resp.ID, active.ID)

	_, err = f.svc.Close(context.Background(), uuid.MustParse(resp.ID), dto.CloseSessionRequest{
		ActualClosingAmount: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	active, err = f.svc.ActiveForRegister(context.Background(), f.register)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestActiveForOperator(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "50.00")

	active, err := f.svc.ActiveForOperator(context.Background(), operatorID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, resp.ID, active.ID)

	active, err = f.svc.ActiveForOperator(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestGetOpenSessionLiveExpected(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "100.00")
	record(t, f, operatorID, resp.ID, "sale", "30.00")

	got, err := f.svc.Get(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, "130", got.ExpectedClosingAmount.String())
	assert.Nil(t, got.ActualClosingAmount)
}

func TestListSessionsFilter(t *testing.T) {
	f := newFixture(t, false)
	operatorID := uuid.New()
	resp := openSession(t, f, operatorID, "100.00")
	_, err := f.svc.Close(context.Background(), uuid.MustParse(resp.ID), dto.CloseSessionRequest{
		ActualClosingAmount: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)
	openSession(t, f, uuid.New(), "20.00")

	list, err := f.svc.List(context.Background(), dto.SessionFilter{Status: "open"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	list, err = f.svc.List(context.Background(), dto.SessionFilter{Status: "closed"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	_, err = f.svc.List(context.Background(), dto.SessionFilter{Status: "bogus"})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}
