package postgres

import (
	"context"
	"errors"
	"fmt"

	"hms-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PatientRepo implements ports.PatientDirectory against the patients table
// owned by the registration module. Read-only.
type PatientRepo struct {
	pool Pool
}

// NewPatientRepo creates a new PatientRepo.
func NewPatientRepo(pool Pool) *PatientRepo {
	return &PatientRepo{pool: pool}
}

// Exists reports whether a patient is registered in the given hospital.
func (r *PatientRepo) Exists(ctx context.Context, hospitalID, patientID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM patients WHERE hospital_id = $1 AND id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, hospitalID, patientID).Scan(&exists); err != nil {
		return false, fmt.Errorf("patient exists: %w", err)
	}
	return exists, nil
}

// GetByID fetches a patient for display resolution.
func (r *PatientRepo) GetByID(ctx context.Context, hospitalID, patientID uuid.UUID) (*domain.Patient, error) {
	query := `SELECT id, hospital_id, first_name, last_name, created_at
		FROM patients WHERE hospital_id = $1 AND id = $2`

	p := &domain.Patient{}
	err := r.pool.QueryRow(ctx, query, hospitalID, patientID).Scan(
		&p.ID, &p.HospitalID, &p.FirstName, &p.LastName, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get patient by id: %w", err)
	}
	return p, nil
}
