package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hms-wallet-service/internal/core/domain"
	"hms-wallet-service/internal/core/ports"
	"hms-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const (
	dedupTTL = 24 * time.Hour

	opTopUp  = "topup"
	opDeduct = "deduct"

	maxHistoryPageSize = 100
)

// LedgerServiceImpl implements ports.LedgerService with pessimistic locking:
// every balance mutation locks the wallet row, re-checks business rules under
// the lock, and commits the balance update together with its transaction
// record.
type LedgerServiceImpl struct {
	walletRepo   ports.WalletRepository
	txRepo       ports.TransactionRepository
	patients     ports.PatientDirectory
	idempRepo    ports.IdempotencyRepository
	idempCache   ports.IdempotencyCache
	transactor   ports.DBTransactor
	currency     string
	historyLimit int
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	patients ports.PatientDirectory,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	currency string,
	historyLimit int,
	log zerolog.Logger,
) *LedgerServiceImpl {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &LedgerServiceImpl{
		walletRepo:   walletRepo,
		txRepo:       txRepo,
		patients:     patients,
		idempRepo:    idempRepo,
		idempCache:   idempCache,
		transactor:   transactor,
		currency:     currency,
		historyLimit: historyLimit,
		log:          log,
	}
}

// CreateWallet opens a wallet for a registered patient, optionally seeded with
// an opening balance. One wallet per patient per hospital; a race on creation
// surfaces as the same conflict as a plain duplicate.
func (s *LedgerServiceImpl) CreateWallet(ctx context.Context, req ports.CreateWalletRequest) (*ports.WalletDetail, error) {
	if req.InitialBalance < 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	known, err := s.patients.Exists(ctx, req.HospitalID, req.PatientID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("lookup patient: %w", err))
	}
	if !known {
		return nil, apperror.ErrPatientNotFound()
	}

	// Cheap pre-check; the unique index is the real guard.
	existing, err := s.walletRepo.GetByPatient(ctx, req.HospitalID, req.PatientID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("check existing wallet: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrWalletAlreadyExists()
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:         uuid.New(),
		HospitalID: req.HospitalID,
		PatientID:  req.PatientID,
		CardNumber: domain.NewCardNumber(),
		Balance:    req.InitialBalance,
		Currency:   s.currency,
		Status:     domain.WalletStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.walletRepo.Create(ctx, dbTx, wallet); err != nil {
		if errors.Is(err, domain.ErrDuplicateWallet) {
			return nil, apperror.ErrWalletAlreadyExists()
		}
		return nil, mapStorageErr(fmt.Errorf("create wallet: %w", err))
	}

	var transactions []domain.WalletTransaction
	if req.InitialBalance > 0 {
		txn := &domain.WalletTransaction{
			ID:           uuid.New(),
			HospitalID:   req.HospitalID,
			WalletID:     wallet.ID,
			Type:         domain.TransactionTypeCredit,
			Amount:       req.InitialBalance,
			Description:  "Initial wallet balance",
			BalanceAfter: req.InitialBalance,
			PerformedBy:  req.PerformedBy,
			CreatedAt:    now,
		}
		if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
			return nil, mapStorageErr(fmt.Errorf("create opening transaction: %w", err))
		}
		transactions = append(transactions, *txn)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, mapStorageErr(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("patient_id", req.PatientID.String()).
		Int64("initial_balance", req.InitialBalance).
		Msg("wallet created")

	detail := &ports.WalletDetail{
		Wallet:       *wallet,
		Transactions: transactions,
	}
	patient, err := s.patients.GetByID(ctx, req.HospitalID, req.PatientID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("resolve patient: %w", err))
	}
	if patient != nil {
		detail.Patient = *patient
	}
	return detail, nil
}

// TopUp credits an active wallet. A non-empty reference enables
// dedup-by-reference: replaying the same reference returns the recorded
// outcome of the first attempt instead of crediting twice.
func (s *LedgerServiceImpl) TopUp(ctx context.Context, req ports.TopUpRequest) (*ports.MutationResult, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dedupKey := ""
	if req.Reference != "" {
		dedupKey = domain.BuildDedupKey(req.HospitalID, req.WalletID, opTopUp, req.Reference)
		if result, err := s.replayDedup(ctx, dedupKey); err != nil || result != nil {
			return result, err
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, req.HospitalID, req.WalletID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	if !wallet.IsActive() {
		return nil, apperror.ErrWalletNotActive()
	}

	now := time.Now().UTC()
	wallet.Balance += req.Amount
	wallet.UpdatedAt = now

	description := req.Description
	if description == "" {
		description = "Wallet top-up"
		if req.Method != "" {
			description = "Wallet top-up via " + req.Method
		}
	}

	txn := &domain.WalletTransaction{
		ID:           uuid.New(),
		HospitalID:   req.HospitalID,
		WalletID:     wallet.ID,
		Type:         domain.TransactionTypeCredit,
		Amount:       req.Amount,
		Description:  description,
		Reference:    req.Reference,
		Method:       req.Method,
		BalanceAfter: wallet.Balance,
		PerformedBy:  req.PerformedBy,
		CreatedAt:    now,
	}

	result, err := s.commitMutation(ctx, dbTx, wallet, txn, dedupKey)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Int64("amount", req.Amount).
		Int64("balance", wallet.Balance).
		Msg("wallet topped up")

	return result, nil
}

// Deduct debits an active wallet. The balance check runs under the row lock,
// so concurrent deductions can never drive the balance negative.
func (s *LedgerServiceImpl) Deduct(ctx context.Context, req ports.DeductRequest) (*ports.MutationResult, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dedupKey := ""
	if req.Reference != "" {
		dedupKey = domain.BuildDedupKey(req.HospitalID, req.WalletID, opDeduct, req.Reference)
		if result, err := s.replayDedup(ctx, dedupKey); err != nil || result != nil {
			return result, err
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, req.HospitalID, req.WalletID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	if !wallet.IsActive() {
		return nil, apperror.ErrWalletNotActive()
	}
	if wallet.Balance < req.Amount {
		return nil, apperror.ErrInsufficientBalance()
	}

	now := time.Now().UTC()
	wallet.Balance -= req.Amount
	wallet.UpdatedAt = now

	txn := &domain.WalletTransaction{
		ID:           uuid.New(),
		HospitalID:   req.HospitalID,
		WalletID:     wallet.ID,
		Type:         domain.TransactionTypeDebit,
		Amount:       req.Amount,
		Description:  req.Description,
		Reference:    req.Reference,
		BalanceAfter: wallet.Balance,
		PerformedBy:  req.PerformedBy,
		CreatedAt:    now,
	}

	result, err := s.commitMutation(ctx, dbTx, wallet, txn, dedupKey)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Int64("amount", req.Amount).
		Int64("balance", wallet.Balance).
		Msg("wallet deducted")

	return result, nil
}

// SetStatus transitions a wallet between active and suspended. Idempotent:
// setting the current status again succeeds without effect.
func (s *LedgerServiceImpl) SetStatus(ctx context.Context, req ports.SetStatusRequest) (*domain.Wallet, error) {
	status, ok := domain.ParseWalletStatus(req.Status)
	if !ok {
		return nil, apperror.ErrInvalidStatus()
	}

	found, err := s.walletRepo.UpdateStatus(ctx, req.HospitalID, req.WalletID, status)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("update status: %w", err))
	}
	if !found {
		return nil, apperror.ErrWalletNotFound()
	}

	wallet, err := s.walletRepo.GetByID(ctx, req.HospitalID, req.WalletID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("reload wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("status", string(status)).
		Str("performed_by", req.PerformedBy.String()).
		Msg("wallet status changed")

	return wallet, nil
}

// GetWallet returns the wallet detail view: wallet, patient and recent
// transactions, newest first.
func (s *LedgerServiceImpl) GetWallet(ctx context.Context, hospitalID, walletID uuid.UUID) (*ports.WalletDetail, error) {
	wallet, err := s.walletRepo.GetByID(ctx, hospitalID, walletID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return s.buildDetail(ctx, wallet)
}

// GetWalletByPatient resolves a patient's wallet detail view.
func (s *LedgerServiceImpl) GetWalletByPatient(ctx context.Context, hospitalID, patientID uuid.UUID) (*ports.WalletDetail, error) {
	wallet, err := s.walletRepo.GetByPatient(ctx, hospitalID, patientID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("get wallet by patient: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return s.buildDetail(ctx, wallet)
}

// ListWallets returns a tenant's wallets with owning patients resolved.
func (s *LedgerServiceImpl) ListWallets(ctx context.Context, params ports.WalletListParams) ([]ports.WalletWithPatient, error) {
	wallets, err := s.walletRepo.List(ctx, params)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}

// ListTransactions returns one page of a wallet's history. The wallet is
// resolved first so a cross-tenant wallet ID reads as not found. The returned
// page carries the limit and offset actually applied after normalisation, so
// callers can report truthful paging metadata.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, params ports.ListTransactionsParams) (*ports.TransactionPage, error) {
	wallet, err := s.walletRepo.GetByID(ctx, params.HospitalID, params.WalletID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	limit := params.Limit
	if limit <= 0 {
		limit = s.historyLimit
	}
	if limit > maxHistoryPageSize {
		limit = maxHistoryPageSize
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.txRepo.ListByWallet(ctx, params.HospitalID, params.WalletID, limit, offset)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("list transactions: %w", err))
	}
	return &ports.TransactionPage{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// GetStats aggregates one tenant's wallet activity for the dashboard.
func (s *LedgerServiceImpl) GetStats(ctx context.Context, hospitalID uuid.UUID) (*ports.WalletStats, error) {
	walletTotals, err := s.walletRepo.Stats(ctx, hospitalID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("wallet stats: %w", err))
	}
	txTotals, err := s.txRepo.Stats(ctx, hospitalID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("transaction stats: %w", err))
	}

	return &ports.WalletStats{
		TotalWallets:      walletTotals.TotalWallets,
		TotalBalance:      walletTotals.TotalBalance,
		TotalTransactions: txTotals.TotalTransactions,
		TotalCredits:      txTotals.TotalCredits,
		TotalDebits:       txTotals.TotalDebits,
	}, nil
}

// replayDedup checks the two dedup layers: Redis (fast, best-effort) then the
// durable idempotency table. Returns the recorded result when the reference
// was already applied, nil when the mutation should proceed.
func (s *LedgerServiceImpl) replayDedup(ctx context.Context, key string) (*ports.MutationResult, error) {
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis dedup check failed, falling through to DB")
	}
	if cached != nil {
		return unmarshalCachedResult(cached)
	}

	rec, err := s.idempRepo.Get(ctx, key)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("db dedup check: %w", err))
	}
	if rec != nil {
		return unmarshalCachedResult(rec.ResponseJSON)
	}
	return nil, nil
}

// commitMutation persists the balance update, the transaction record and (when
// dedup is enabled) the idempotency row in one database transaction, then
// caches the response best-effort.
func (s *LedgerServiceImpl) commitMutation(ctx context.Context, dbTx pgx.Tx, wallet *domain.Wallet, txn *domain.WalletTransaction, dedupKey string) (*ports.MutationResult, error) {
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance); err != nil {
		return nil, mapStorageErr(fmt.Errorf("update balance: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, mapStorageErr(fmt.Errorf("create transaction: %w", err))
	}

	result := &ports.MutationResult{Wallet: wallet, Transaction: txn}

	var respJSON []byte
	if dedupKey != "" {
		var err error
		respJSON, err = json.Marshal(result)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
		}
		rec := &domain.IdempotencyRecord{
			Key:           dedupKey,
			TransactionID: txn.ID,
			ResponseJSON:  respJSON,
			CreatedAt:     txn.CreatedAt,
		}
		if err := s.idempRepo.Create(ctx, dbTx, rec); err != nil {
			if errors.Is(err, domain.ErrDuplicateReference) {
				// Lost a race with another first-time request on the same
				// reference: discard this attempt and replay the winner.
				_ = dbTx.Rollback(ctx)
				if replayed, replayErr := s.replayDedup(ctx, dedupKey); replayErr == nil && replayed != nil {
					return replayed, nil
				}
				return nil, apperror.ErrTransientConflict(err)
			}
			return nil, mapStorageErr(fmt.Errorf("save idempotency record: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, mapStorageErr(fmt.Errorf("commit tx: %w", err))
	}

	if dedupKey != "" {
		if err := s.idempCache.Set(ctx, dedupKey, respJSON, dedupTTL); err != nil {
			s.log.Warn().Err(err).Str("key", dedupKey).Msg("failed to cache dedup response in redis")
		}
	}
	return result, nil
}

func (s *LedgerServiceImpl) buildDetail(ctx context.Context, wallet *domain.Wallet) (*ports.WalletDetail, error) {
	patient, err := s.patients.GetByID(ctx, wallet.HospitalID, wallet.PatientID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("resolve patient: %w", err))
	}
	detail := &ports.WalletDetail{Wallet: *wallet}
	if patient != nil {
		detail.Patient = *patient
	}

	transactions, _, err := s.txRepo.ListByWallet(ctx, wallet.HospitalID, wallet.ID, s.historyLimit, 0)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("load recent transactions: %w", err))
	}
	detail.Transactions = transactions
	return detail, nil
}

func unmarshalCachedResult(data []byte) (*ports.MutationResult, error) {
	result := &ports.MutationResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached result: %w", err))
	}
	return result, nil
}

// mapStorageErr classifies storage failures. Serialization failures, deadlocks
// and lock timeouts are retryable and committed nothing; everything else is a
// plain storage failure.
func mapStorageErr(err error) *apperror.AppError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return apperror.ErrTransientConflict(err)
		}
	}
	return apperror.ErrStorage(err)
}
