package clinical

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a minimal demographics record keyed by ABHA identity.
type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ABHAID    string    `json:"abha_id,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	BirthDate string    `json:"birth_date,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Doctor is a practitioner who records treatments.
type Doctor struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	HospitalID string    `json:"hospital_id,omitempty"`
	Specialty  string    `json:"specialty,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Treatment is one dual-coded problem list entry.
type Treatment struct {
	ID               uuid.UUID  `json:"id"`
	PatientID        uuid.UUID  `json:"patient_id"`
	DoctorID         uuid.UUID  `json:"doctor_id"`
	HospitalID       string     `json:"hospital_id,omitempty"`
	NamasteCodeID    *uuid.UUID `json:"namaste_code_id,omitempty"`
	ICD11CodeID      *uuid.UUID `json:"icd11_code_id,omitempty"`
	ClinicalNotes    string     `json:"clinical_notes,omitempty"`
	ConsentGiven     bool       `json:"consent_given"`
	ConsentTimestamp *time.Time `json:"consent_timestamp,omitempty"`
	Status           string     `json:"status"`
	EncounterDate    time.Time  `json:"encounter_date"`
	Version          int        `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TreatmentDetail is a treatment joined with the codes and people it
// references, ready for FHIR materialization.
type TreatmentDetail struct {
	Treatment
	NamasteCode    string `json:"namaste_code,omitempty"`
	NamasteDisplay string `json:"namaste_display,omitempty"`
	NamasteSystem  string `json:"namaste_system,omitempty"`
	ICDCode        string `json:"icd_code,omitempty"`
	ICDTitle       string `json:"icd_title,omitempty"`
	PatientName    string `json:"patient_name,omitempty"`
	PatientABHA    string `json:"patient_abha,omitempty"`
	DoctorName     string `json:"doctor_name,omitempty"`
}

// ConsentRecord is an audit row written when a patient grants consent
// for a treatment record.
type ConsentRecord struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Purpose   string    `json:"purpose"`
	Scope     string    `json:"scope"`
	GrantedAt time.Time `json:"granted_at"`
}
