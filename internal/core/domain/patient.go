package domain

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a read-only projection of the hospital's patient registry.
// The wallet service never creates or modifies patients; it only resolves
// them when opening wallets and rendering wallet views.
type Patient struct {
	ID         uuid.UUID `json:"id"`
	HospitalID uuid.UUID `json:"hospital_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// FullName returns the patient's display name.
func (p *Patient) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
