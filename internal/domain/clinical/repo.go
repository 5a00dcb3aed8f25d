package clinical

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence surface for patients, doctors and
// treatments.
type Repository interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error)
	InsertPatient(ctx context.Context, p *Patient) error
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	InsertDoctor(ctx context.Context, d *Doctor) error

	InsertTreatment(ctx context.Context, t *Treatment) error
	TreatmentsForPatient(ctx context.Context, patientID uuid.UUID, status string) ([]TreatmentDetail, error)

	InsertConsent(ctx context.Context, rec *ConsentRecord) error
}
