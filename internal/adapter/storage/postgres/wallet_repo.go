package postgres

import (
	"context"
	"errors"
	"fmt"

	"hms-wallet-service/internal/core/domain"
	"hms-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const walletColumns = `id, hospital_id, patient_id, card_number, balance, currency, status, created_at, updated_at`

// WalletRepo implements ports.WalletRepository. All lookups filter by
// hospital_id so a wallet is invisible outside its tenant.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet within a database transaction. A violation of
// the (hospital_id, patient_id) unique index maps to domain.ErrDuplicateWallet
// so races on concurrent creation surface as a typed conflict.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		w.ID, w.HospitalID, w.PatientID, w.CardNumber,
		w.Balance, w.Currency, w.Status, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateWallet
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet by ID within a tenant (non-locking read).
func (r *WalletRepo) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE hospital_id = $1 AND id = $2`
	return scanWallet(r.pool.QueryRow(ctx, query, hospitalID, id), "get wallet by id")
}

// GetByPatient fetches a patient's wallet within a tenant (non-locking read).
func (r *WalletRepo) GetByPatient(ctx context.Context, hospitalID, patientID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE hospital_id = $1 AND patient_id = $2`
	return scanWallet(r.pool.QueryRow(ctx, query, hospitalID, patientID), "get wallet by patient")
}

// GetByIDForUpdate fetches a wallet with a row-level lock held until the
// surrounding transaction commits. MUST be called within a transaction.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, hospitalID, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE hospital_id = $1 AND id = $2 FOR UPDATE`
	return scanWallet(tx.QueryRow(ctx, query, hospitalID, id), "get wallet for update")
}

// List returns a tenant's wallets newest-created-first with the owning
// patient resolved, optionally filtered by status and by patient name or ID.
func (r *WalletRepo) List(ctx context.Context, params ports.WalletListParams) ([]ports.WalletWithPatient, error) {
	query := `SELECT w.id, w.hospital_id, w.patient_id, w.card_number, w.balance, w.currency, w.status, w.created_at, w.updated_at,
			p.id, p.hospital_id, p.first_name, p.last_name, p.created_at
		FROM wallets w
		JOIN patients p ON p.id = w.patient_id AND p.hospital_id = w.hospital_id
		WHERE w.hospital_id = $1`
	args := []any{params.HospitalID}

	if params.Status != nil {
		args = append(args, *params.Status)
		query += fmt.Sprintf(" AND w.status = $%d", len(args))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		namePattern := len(args)
		args = append(args, params.Search)
		query += fmt.Sprintf(" AND (p.first_name || ' ' || p.last_name ILIKE $%d OR w.patient_id::text = $%d)", namePattern, len(args))
	}
	query += " ORDER BY w.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var result []ports.WalletWithPatient
	for rows.Next() {
		var item ports.WalletWithPatient
		w, p := &item.Wallet, &item.Patient
		err := rows.Scan(
			&w.ID, &w.HospitalID, &w.PatientID, &w.CardNumber,
			&w.Balance, &w.Currency, &w.Status, &w.CreatedAt, &w.UpdatedAt,
			&p.ID, &p.HospitalID, &p.FirstName, &p.LastName, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list wallets rows: %w", err)
	}
	return result, nil
}

// UpdateBalance writes the new balance within a transaction. The caller must
// hold the row lock taken by GetByIDForUpdate.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, newBalance int64) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, newBalance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

// UpdateStatus atomically transitions a wallet's status within its tenant.
// Returns false if no wallet matched.
func (r *WalletRepo) UpdateStatus(ctx context.Context, hospitalID, walletID uuid.UUID, status domain.WalletStatus) (bool, error) {
	query := `UPDATE wallets SET status = $1, updated_at = NOW() WHERE hospital_id = $2 AND id = $3`

	tag, err := r.pool.Exec(ctx, query, status, hospitalID, walletID)
	if err != nil {
		return false, fmt.Errorf("update wallet status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Stats aggregates wallet count and total held balance for one tenant.
func (r *WalletRepo) Stats(ctx context.Context, hospitalID uuid.UUID) (*ports.WalletTotals, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(balance), 0) FROM wallets WHERE hospital_id = $1`

	totals := &ports.WalletTotals{}
	err := r.pool.QueryRow(ctx, query, hospitalID).Scan(&totals.TotalWallets, &totals.TotalBalance)
	if err != nil {
		return nil, fmt.Errorf("wallet stats: %w", err)
	}
	return totals, nil
}

func scanWallet(row pgx.Row, op string) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.HospitalID, &w.PatientID, &w.CardNumber,
		&w.Balance, &w.Currency, &w.Status, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}
