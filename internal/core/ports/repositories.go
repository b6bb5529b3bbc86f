package ports

import (
	"context"

	"hms-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

// WalletRepository defines persistence operations for wallets. Every query is
// scoped by hospital so the store itself is tenant-safe. Methods accepting
// pgx.Tx run inside transaction blocks; GetByIDForUpdate takes a row-level
// lock held until the transaction commits.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error
	GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*domain.Wallet, error)
	GetByPatient(ctx context.Context, hospitalID, patientID uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, hospitalID, id uuid.UUID) (*domain.Wallet, error)
	List(ctx context.Context, params WalletListParams) ([]WalletWithPatient, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, newBalance int64) error
	UpdateStatus(ctx context.Context, hospitalID, walletID uuid.UUID, status domain.WalletStatus) (bool, error)
	Stats(ctx context.Context, hospitalID uuid.UUID) (*WalletTotals, error)
}

// WalletListParams holds tenant scope + optional filters for listing wallets.
type WalletListParams struct {
	HospitalID uuid.UUID
	Search     string // Patient name fragment or patient ID
	Status     *domain.WalletStatus
}

// WalletWithPatient pairs a wallet with its resolved patient for display.
type WalletWithPatient struct {
	Wallet  domain.Wallet  `json:"wallet"`
	Patient domain.Patient `json:"patient"`
}

// WalletTotals aggregates the wallets table for one tenant.
type WalletTotals struct {
	TotalWallets int64
	TotalBalance int64
}

// TransactionRepository defines persistence for the append-only transaction
// log. Create must run inside the same transaction as the balance update it
// records.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, t *domain.WalletTransaction) error
	ListByWallet(ctx context.Context, hospitalID, walletID uuid.UUID, limit, offset int) ([]domain.WalletTransaction, int64, error)
	Stats(ctx context.Context, hospitalID uuid.UUID) (*TransactionTotals, error)
}

// TransactionTotals aggregates the transaction log for one tenant.
type TransactionTotals struct {
	TotalTransactions int64
	TotalCredits      int64
	TotalDebits       int64
}

// PatientDirectory is the read-only view of patient registration the ledger
// depends on. Wallet creation validates existence; reads resolve the patient
// for display.
type PatientDirectory interface {
	Exists(ctx context.Context, hospitalID, patientID uuid.UUID) (bool, error)
	GetByID(ctx context.Context, hospitalID, patientID uuid.UUID) (*domain.Patient, error)
}

// IdempotencyRepository defines durable dedup-by-reference storage.
type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
	Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error
}

// AuditRepository persists staff action audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
