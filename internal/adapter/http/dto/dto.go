package dto

import (
	"time"

	"hms-wallet-service/internal/core/domain"
	"hms-wallet-service/internal/core/ports"
)

// CreateWalletRequest is the request body for opening a patient wallet.
type CreateWalletRequest struct {
	PatientID      string `json:"patient_id" binding:"required,uuid"`
	InitialBalance int64  `json:"initial_balance" binding:"gte=0"`
}

// TopUpRequest is the request body for crediting a wallet.
type TopUpRequest struct {
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Description   string `json:"description" binding:"max=255"`
	Reference     string `json:"reference" binding:"omitempty,max=100,safe_id"`
	PaymentMethod string `json:"payment_method" binding:"max=50"`
}

// DeductRequest is the request body for debiting a wallet.
type DeductRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=255"`
	Reference   string `json:"reference" binding:"omitempty,max=100,safe_id"`
}

// SetStatusRequest is the request body for a wallet status transition.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// WalletResponse is the wire shape of a wallet.
type WalletResponse struct {
	ID         string `json:"id"`
	PatientID  string `json:"patient_id"`
	CardNumber string `json:"card_number"`
	Balance    int64  `json:"balance"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// PatientResponse is the resolved patient summary on wallet views.
type PatientResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// TransactionResponse is the wire shape of a wallet transaction.
type TransactionResponse struct {
	ID           string `json:"id"`
	WalletID     string `json:"wallet_id"`
	Type         string `json:"type"`
	Amount       int64  `json:"amount"`
	Description  string `json:"description,omitempty"`
	Reference    string `json:"reference,omitempty"`
	Method       string `json:"method,omitempty"`
	BalanceAfter int64  `json:"balance_after"`
	CreatedAt    string `json:"created_at"`
}

// WalletDetailResponse is the detail view: wallet, patient and recent history.
type WalletDetailResponse struct {
	Wallet       WalletResponse        `json:"wallet"`
	Patient      PatientResponse       `json:"patient"`
	Transactions []TransactionResponse `json:"transactions"`
}

// MutationResponse is returned by top-up and deduct.
type MutationResponse struct {
	Wallet      WalletResponse      `json:"wallet"`
	Transaction TransactionResponse `json:"transaction"`
}

// WalletListItem pairs a wallet with its patient in list views.
type WalletListItem struct {
	Wallet  WalletResponse  `json:"wallet"`
	Patient PatientResponse `json:"patient"`
}

// WalletListResponse wraps the wallet list.
type WalletListResponse struct {
	Items []WalletListItem `json:"items"`
	Total int              `json:"total"`
}

// TransactionListResponse wraps a paginated transaction history page.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`
	TotalPages int64                 `json:"total_pages"`
}

// StatsResponse is the dashboard aggregate for one hospital.
type StatsResponse struct {
	TotalWallets      int64 `json:"total_wallets"`
	TotalBalance      int64 `json:"total_balance"`
	TotalTransactions int64 `json:"total_transactions"`
	TotalCredits      int64 `json:"total_credits"`
	TotalDebits       int64 `json:"total_debits"`
}

// FromWallet converts a domain wallet to its wire shape.
func FromWallet(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:         w.ID.String(),
		PatientID:  w.PatientID.String(),
		CardNumber: w.CardNumber,
		Balance:    w.Balance,
		Currency:   w.Currency,
		Status:     string(w.Status),
		CreatedAt:  w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  w.UpdatedAt.Format(time.RFC3339),
	}
}

// FromPatient converts a domain patient to its wire shape.
func FromPatient(p *domain.Patient) PatientResponse {
	return PatientResponse{
		ID:       p.ID.String(),
		FullName: p.FullName(),
	}
}

// FromTransaction converts a domain transaction to its wire shape.
func FromTransaction(t *domain.WalletTransaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID.String(),
		WalletID:     t.WalletID.String(),
		Type:         string(t.Type),
		Amount:       t.Amount,
		Description:  t.Description,
		Reference:    t.Reference,
		Method:       t.Method,
		BalanceAfter: t.BalanceAfter,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
}

// FromWalletDetail converts a service detail view to its wire shape.
func FromWalletDetail(d *ports.WalletDetail) WalletDetailResponse {
	resp := WalletDetailResponse{
		Wallet:       FromWallet(&d.Wallet),
		Patient:      FromPatient(&d.Patient),
		Transactions: make([]TransactionResponse, 0, len(d.Transactions)),
	}
	for i := range d.Transactions {
		resp.Transactions = append(resp.Transactions, FromTransaction(&d.Transactions[i]))
	}
	return resp
}

// FromMutationResult converts a mutation outcome to its wire shape.
func FromMutationResult(r *ports.MutationResult) MutationResponse {
	return MutationResponse{
		Wallet:      FromWallet(r.Wallet),
		Transaction: FromTransaction(r.Transaction),
	}
}
