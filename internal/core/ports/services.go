package ports

import (
	"context"
	"time"

	"hms-wallet-service/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

// LedgerService implements the wallet mutation and read protocol. Every
// request carries the caller's tenant scope (hospital) and identity (staff
// user) resolved by the identity middleware; lookups that miss the tenant
// surface as not-found, never as forbidden.
type LedgerService interface {
	CreateWallet(ctx context.Context, req CreateWalletRequest) (*WalletDetail, error)
	GetWallet(ctx context.Context, hospitalID, walletID uuid.UUID) (*WalletDetail, error)
	GetWalletByPatient(ctx context.Context, hospitalID, patientID uuid.UUID) (*WalletDetail, error)
	ListWallets(ctx context.Context, params WalletListParams) ([]WalletWithPatient, error)
	TopUp(ctx context.Context, req TopUpRequest) (*MutationResult, error)
	Deduct(ctx context.Context, req DeductRequest) (*MutationResult, error)
	SetStatus(ctx context.Context, req SetStatusRequest) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, params ListTransactionsParams) (*TransactionPage, error)
	GetStats(ctx context.Context, hospitalID uuid.UUID) (*WalletStats, error)
}

// CreateWalletRequest holds validated input for wallet creation.
type CreateWalletRequest struct {
	HospitalID     uuid.UUID
	PatientID      uuid.UUID
	InitialBalance int64
	PerformedBy    uuid.UUID
}

// TopUpRequest holds validated input for crediting a wallet.
type TopUpRequest struct {
	HospitalID  uuid.UUID
	WalletID    uuid.UUID
	Amount      int64
	Description string
	Reference   string // Non-empty enables dedup-by-reference
	Method      string // Payment method used (Cash, Mobile Money, Card, ...)
	PerformedBy uuid.UUID
}

// DeductRequest holds validated input for debiting a wallet.
type DeductRequest struct {
	HospitalID  uuid.UUID
	WalletID    uuid.UUID
	Amount      int64
	Description string
	Reference   string // Bill/invoice correlation; non-empty enables dedup
	PerformedBy uuid.UUID
}

// SetStatusRequest holds input for a wallet status transition.
type SetStatusRequest struct {
	HospitalID  uuid.UUID
	WalletID    uuid.UUID
	Status      string // Validated by the service against the allowed set
	PerformedBy uuid.UUID
}

// ListTransactionsParams holds tenant scope + paging for history queries.
type ListTransactionsParams struct {
	HospitalID uuid.UUID
	WalletID   uuid.UUID
	Limit      int
	Offset     int
}

// TransactionPage is one page of wallet history. Limit and Offset are the
// values actually applied after the service normalises and clamps the
// caller's paging input.
type TransactionPage struct {
	Items  []domain.WalletTransaction
	Total  int64
	Limit  int
	Offset int
}

// MutationResult pairs the updated wallet with the transaction recorded for
// the mutation.
type MutationResult struct {
	Wallet      *domain.Wallet
	Transaction *domain.WalletTransaction
}

// WalletDetail is the wallet detail view: wallet, resolved patient and the
// most recent transactions (newest first).
type WalletDetail struct {
	Wallet       domain.Wallet
	Patient      domain.Patient
	Transactions []domain.WalletTransaction
}

// WalletStats aggregates one tenant's wallet activity for dashboards.
type WalletStats struct {
	TotalWallets      int64
	TotalBalance      int64
	TotalTransactions int64
	TotalCredits      int64
	TotalDebits       int64
}

// TokenService validates (and, for tooling, issues) staff identity tokens.
// The ledger never authenticates staff itself; it trusts validated claims.
type TokenService interface {
	Generate(hospitalID, userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*StaffClaims, error)
}

// StaffClaims is the tenant + identity context extracted from a token.
type StaffClaims struct {
	HospitalID uuid.UUID
	UserID     uuid.UUID
}

// IdempotencyCache is the Redis fast path for dedup-by-reference. Best
// effort: a miss here falls through to the durable IdempotencyRepository.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil, nil on miss
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// AuditService records staff actions (fire-and-forget).
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
