package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"hms-wallet-service/internal/core/domain"
	"hms-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memoryStore backs every in-memory repo. The transactor serialises whole
// Begin..Commit spans with txMu, which gives the same effective isolation as
// SELECT FOR UPDATE on a single row: concurrent mutations run one at a time.
// Writes issued inside a transaction are staged on the lockTx and applied
// under mu when Commit runs; Rollback discards them, so a transaction that
// fails midway leaves no partial state behind.
type memoryStore struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	wallets     map[uuid.UUID]*domain.Wallet
	patients    map[uuid.UUID]*domain.Patient
	txns        []*domain.WalletTransaction
	idempotency map[string]*domain.IdempotencyRecord
	txnWriteErr error // consumed by the next transaction-log insert
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		wallets:     make(map[uuid.UUID]*domain.Wallet),
		patients:    make(map[uuid.UUID]*domain.Patient),
		idempotency: make(map[string]*domain.IdempotencyRecord),
	}
}

func (s *memoryStore) addPatient(p *domain.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[p.ID] = p
}

// failNextTxnWrite makes the next transaction-log insert return err, which
// lets tests drive a mid-transaction storage failure.
func (s *memoryStore) failNextTxnWrite(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txnWriteErr = err
}

func (s *memoryStore) consumeTxnWriteErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.txnWriteErr
	s.txnWriteErr = nil
	return err
}

// stage defers a write until the surrounding transaction commits. Callers
// outside a lockTx apply the write immediately.
func stage(tx pgx.Tx, s *memoryStore, fn func()) {
	if lt, ok := tx.(*lockTx); ok {
		lt.stage(fn)
		return
	}
	s.mu.Lock()
	fn()
	s.mu.Unlock()
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	s *memoryStore
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.s.mu.RLock()
	for _, existing := range r.s.wallets {
		if existing.HospitalID == w.HospitalID && existing.PatientID == w.PatientID {
			r.s.mu.RUnlock()
			return domain.ErrDuplicateWallet
		}
	}
	r.s.mu.RUnlock()
	cp := *w
	stage(tx, r.s, func() { r.s.wallets[cp.ID] = &cp })
	return nil
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.wallets[id]
	if !ok || w.HospitalID != hospitalID {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByPatient(ctx context.Context, hospitalID, patientID uuid.UUID) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.wallets {
		if w.HospitalID == hospitalID && w.PatientID == patientID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, hospitalID, id uuid.UUID) (*domain.Wallet, error) {
	return r.GetByID(ctx, hospitalID, id)
}

func (r *inMemoryWalletRepo) List(ctx context.Context, params ports.WalletListParams) ([]ports.WalletWithPatient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []ports.WalletWithPatient
	for _, w := range r.s.wallets {
		if w.HospitalID != params.HospitalID {
			continue
		}
		if params.Status != nil && w.Status != *params.Status {
			continue
		}
		p, ok := r.s.patients[w.PatientID]
		if !ok {
			continue
		}
		if params.Search != "" {
			needle := strings.ToLower(params.Search)
			if !strings.Contains(strings.ToLower(p.FullName()), needle) &&
				!strings.EqualFold(w.PatientID.String(), params.Search) {
				continue
			}
		}
		result = append(result, ports.WalletWithPatient{Wallet: *w, Patient: *p})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Wallet.CreatedAt.After(result[j].Wallet.CreatedAt)
	})
	return result, nil
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, newBalance int64) error {
	r.s.mu.RLock()
	_, ok := r.s.wallets[walletID]
	r.s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	stage(tx, r.s, func() {
		if w, ok := r.s.wallets[walletID]; ok {
			w.Balance = newBalance
		}
	})
	return nil
}

func (r *inMemoryWalletRepo) UpdateStatus(ctx context.Context, hospitalID, walletID uuid.UUID, status domain.WalletStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wallets[walletID]
	if !ok || w.HospitalID != hospitalID {
		return false, nil
	}
	w.Status = status
	return true, nil
}

func (r *inMemoryWalletRepo) Stats(ctx context.Context, hospitalID uuid.UUID) (*ports.WalletTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	totals := &ports.WalletTotals{}
	for _, w := range r.s.wallets {
		if w.HospitalID != hospitalID {
			continue
		}
		totals.TotalWallets++
		totals.TotalBalance += w.Balance
	}
	return totals, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	s *memoryStore
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.WalletTransaction) error {
	if err := r.s.consumeTxnWriteErr(); err != nil {
		return err
	}
	cp := *t
	stage(tx, r.s, func() { r.s.txns = append(r.s.txns, &cp) })
	return nil
}

func (r *inMemoryTransactionRepo) ListByWallet(ctx context.Context, hospitalID, walletID uuid.UUID, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []domain.WalletTransaction
	for _, t := range r.s.txns {
		if t.HospitalID == hospitalID && t.WalletID == walletID {
			all = append(all, *t)
		}
	}
	// Newest first (insertion order approximates created_at)
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []domain.WalletTransaction{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *inMemoryTransactionRepo) Stats(ctx context.Context, hospitalID uuid.UUID) (*ports.TransactionTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	totals := &ports.TransactionTotals{}
	for _, t := range r.s.txns {
		if t.HospitalID != hospitalID {
			continue
		}
		totals.TotalTransactions++
		switch t.Type {
		case domain.TransactionTypeCredit:
			totals.TotalCredits += t.Amount
		case domain.TransactionTypeDebit:
			totals.TotalDebits += t.Amount
		}
	}
	return totals, nil
}

// --- In-Memory Patient Directory ---

type inMemoryPatientDirectory struct {
	s *memoryStore
}

func (r *inMemoryPatientDirectory) Exists(ctx context.Context, hospitalID, patientID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.patients[patientID]
	return ok && p.HospitalID == hospitalID, nil
}

func (r *inMemoryPatientDirectory) GetByID(ctx context.Context, hospitalID, patientID uuid.UUID) (*domain.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.patients[patientID]
	if !ok || p.HospitalID != hospitalID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	s *memoryStore
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.idempotency[key]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (r *inMemoryIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error {
	r.s.mu.RLock()
	_, exists := r.s.idempotency[rec.Key]
	r.s.mu.RUnlock()
	if exists {
		return domain.ErrDuplicateReference
	}
	stage(tx, r.s, func() { r.s.idempotency[rec.Key] = rec })
	return nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serialises transactions with a single mutex, released on
// Commit or Rollback. This mirrors the blocking behaviour of row-level locks
// closely enough for deterministic concurrency assertions.
type inMemoryTransactor struct {
	s *memoryStore
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.s.txMu.Lock()
	return &lockTx{s: t.s}, nil
}

// lockTx holds txMu for the span of the transaction and accumulates staged
// writes. Commit applies them under mu; Rollback drops them. Staged appends
// need no locking because txMu admits one transaction at a time.
type lockTx struct {
	s      *memoryStore
	staged []func()
	once   sync.Once
}

func (t *lockTx) stage(fn func()) {
	t.staged = append(t.staged, fn)
}

func (t *lockTx) Commit(ctx context.Context) error {
	t.once.Do(func() {
		t.s.mu.Lock()
		for _, fn := range t.staged {
			fn()
		}
		t.s.mu.Unlock()
		t.s.txMu.Unlock()
	})
	return nil
}

func (t *lockTx) Rollback(ctx context.Context) error {
	t.once.Do(func() {
		t.staged = nil
		t.s.txMu.Unlock()
	})
	return nil
}

func (t *lockTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockTx) Conn() *pgx.Conn { return nil }
