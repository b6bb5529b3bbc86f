package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited staff action.
type AuditAction string

const (
	AuditActionCreateWallet AuditAction = "CREATE_WALLET"
	AuditActionTopUp        AuditAction = "WALLET_TOPUP"
	AuditActionDeduct       AuditAction = "WALLET_DEDUCT"
	AuditActionSetStatus    AuditAction = "WALLET_SET_STATUS"
)

// AuditLog records a single audited staff action.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	HospitalID   *uuid.UUID  `json:"hospital_id,omitempty"`
	UserID       *uuid.UUID  `json:"user_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
