package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionType carries the sign of a balance movement. Amounts are stored
// unsigned; credit increases the balance, debit decreases it.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// WalletTransaction is one immutable entry in a wallet's audit trail.
// Created atomically with the balance mutation it represents, never edited
// or deleted afterwards.
type WalletTransaction struct {
	ID           uuid.UUID       `json:"id"`
	HospitalID   uuid.UUID       `json:"hospital_id"`
	WalletID     uuid.UUID       `json:"wallet_id"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"` // Strictly positive, minor units
	Description  string          `json:"description"`
	Reference    string          `json:"reference,omitempty"`
	Method       string          `json:"method,omitempty"` // Payment method (Cash, Mobile Money, ...)
	BalanceAfter int64           `json:"balance_after"`
	PerformedBy  uuid.UUID       `json:"performed_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Signed returns the transaction amount with its sign applied.
func (t *WalletTransaction) Signed() int64 {
	if t.Type == TransactionTypeDebit {
		return -t.Amount
	}
	return t.Amount
}

// BuildDedupKey builds the dedup-by-reference key for a wallet mutation.
// Scoped by hospital, wallet and operation so the same external reference may
// legitimately appear on both a top-up and a deduction.
func BuildDedupKey(hospitalID, walletID uuid.UUID, op, reference string) string {
	return fmt.Sprintf("%s:%s:%s:%s", hospitalID, walletID, op, reference)
}
