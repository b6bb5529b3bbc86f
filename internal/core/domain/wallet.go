package domain

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// WalletStatus represents the lifecycle state of a patient wallet.
type WalletStatus string

const (
	WalletStatusActive    WalletStatus = "active"
	WalletStatusSuspended WalletStatus = "suspended"
)

// ErrDuplicateWallet is returned by stores when a wallet already exists for
// the same (hospital, patient) pair. Backed by a composite unique index.
var ErrDuplicateWallet = errors.New("wallet already exists for patient")

// Wallet is a per-patient stored-value account scoped to one hospital tenant.
// Balance is kept in minor currency units and must always equal the signed
// sum of the wallet's transactions.
type Wallet struct {
	ID         uuid.UUID    `json:"id"`
	HospitalID uuid.UUID    `json:"hospital_id"`
	PatientID  uuid.UUID    `json:"patient_id"`
	CardNumber string       `json:"card_number"`
	Balance    int64        `json:"balance"`
	Currency   string       `json:"currency"`
	Status     WalletStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// IsActive returns true if the wallet accepts balance mutations.
func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}

// ParseWalletStatus validates a raw status string.
func ParseWalletStatus(s string) (WalletStatus, bool) {
	switch WalletStatus(s) {
	case WalletStatusActive:
		return WalletStatusActive, true
	case WalletStatusSuspended:
		return WalletStatusSuspended, true
	}
	return "", false
}

// NewCardNumber generates a display card number in NNNN-NNNN-NNNN-NNNN form.
// Not a payment instrument; printed on patient wallet cards.
func NewCardNumber() string {
	group := func() int { return 1000 + rand.IntN(9000) }
	return fmt.Sprintf("%d-%d-%d-%d", group(), group(), group(), group())
}
