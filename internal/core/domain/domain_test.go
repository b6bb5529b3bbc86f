package domain

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWallet_IsActive(t *testing.T) {
	w := &Wallet{Status: WalletStatusActive}
	assert.True(t, w.IsActive())

	w.Status = WalletStatusSuspended
	assert.False(t, w.IsActive())
}

func TestParseWalletStatus(t *testing.T) {
	tests := []struct {
		input string
		want  WalletStatus
		ok    bool
	}{
		{"active", WalletStatusActive, true},
		{"suspended", WalletStatusSuspended, true},
		{"Active", "", false},
		{"closed", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseWalletStatus(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestNewCardNumber_Format(t *testing.T) {
	re := regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{4}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, re, NewCardNumber())
	}
}

func TestWalletTransaction_Signed(t *testing.T) {
	credit := &WalletTransaction{Type: TransactionTypeCredit, Amount: 5000}
	assert.Equal(t, int64(5000), credit.Signed())

	debit := &WalletTransaction{Type: TransactionTypeDebit, Amount: 3000}
	assert.Equal(t, int64(-3000), debit.Signed())
}

func TestBuildDedupKey(t *testing.T) {
	hospitalID := uuid.New()
	walletID := uuid.New()

	key := BuildDedupKey(hospitalID, walletID, "topup", "MOMO-123")
	assert.Equal(t, hospitalID.String()+":"+walletID.String()+":topup:MOMO-123", key)

	// Same reference on a different operation must produce a distinct key.
	other := BuildDedupKey(hospitalID, walletID, "deduct", "MOMO-123")
	assert.NotEqual(t, key, other)
}

func TestPatient_FullName(t *testing.T) {
	p := &Patient{FirstName: "Jane", LastName: "Doe"}
	assert.Equal(t, "Jane Doe", p.FullName())

	assert.Equal(t, "Jane", (&Patient{FirstName: "Jane"}).FullName())
	assert.Equal(t, "Doe", (&Patient{LastName: "Doe"}).FullName())
}
