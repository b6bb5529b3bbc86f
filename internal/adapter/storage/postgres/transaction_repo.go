package postgres

import (
	"context"
	"fmt"

	"hms-wallet-service/internal/core/domain"
	"hms-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, hospital_id, wallet_id, type, amount, description, reference, method, balance_after, performed_by, created_at`

// TransactionRepo implements ports.TransactionRepository over the append-only
// wallet_transactions table. No update or delete statements exist here.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create appends a transaction within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.WalletTransaction) error {
	query := `INSERT INTO wallet_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.HospitalID, t.WalletID, t.Type, t.Amount,
		t.Description, t.Reference, t.Method, t.BalanceAfter,
		t.PerformedBy, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet transaction: %w", err)
	}
	return nil
}

// ListByWallet returns one page of a wallet's history, newest first, plus the
// total count for pagination.
func (r *TransactionRepo) ListByWallet(ctx context.Context, hospitalID, walletID uuid.UUID, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM wallet_transactions WHERE hospital_id = $1 AND wallet_id = $2`
	if err := r.pool.QueryRow(ctx, countQuery, hospitalID, walletID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count wallet transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions
		WHERE hospital_id = $1 AND wallet_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, hospitalID, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list wallet transactions: %w", err)
	}
	defer rows.Close()

	var items []domain.WalletTransaction
	for rows.Next() {
		var t domain.WalletTransaction
		err := rows.Scan(
			&t.ID, &t.HospitalID, &t.WalletID, &t.Type, &t.Amount,
			&t.Description, &t.Reference, &t.Method, &t.BalanceAfter,
			&t.PerformedBy, &t.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan wallet transaction: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list wallet transactions rows: %w", err)
	}
	return items, total, nil
}

// Stats aggregates the transaction log for one tenant.
func (r *TransactionRepo) Stats(ctx context.Context, hospitalID uuid.UUID) (*ports.TransactionTotals, error) {
	query := `SELECT COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'debit'), 0)
		FROM wallet_transactions WHERE hospital_id = $1`

	totals := &ports.TransactionTotals{}
	err := r.pool.QueryRow(ctx, query, hospitalID).Scan(
		&totals.TotalTransactions, &totals.TotalCredits, &totals.TotalDebits,
	)
	if err != nil {
		return nil, fmt.Errorf("transaction stats: %w", err)
	}
	return totals, nil
}
