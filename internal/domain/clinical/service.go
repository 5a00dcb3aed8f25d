package clinical

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayushbridge/ayushbridge/internal/domain/terminology"
	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
	"github.com/ayushbridge/ayushbridge/internal/platform/fhir"
)

// CodeLookup resolves codes against the terminology store. Satisfied by
// terminology.Repository.
type CodeLookup interface {
	GetNamasteByCode(ctx context.Context, code string) (*terminology.NamasteCode, error)
	GetICD11ByCode(ctx context.Context, code string) (*terminology.ICD11Code, error)
}

// Service records dual-coded treatments and materializes them as FHIR
// resources.
type Service struct {
	repo  Repository
	codes CodeLookup
}

func NewService(repo Repository, codes CodeLookup) *Service {
	return &Service{repo: repo, codes: codes}
}

// Recorder identifies the practitioner making a change.
type Recorder struct {
	DoctorID   uuid.UUID
	HospitalID string
}

// CreateConditionInput is the payload for recording a problem list
// entry.
type CreateConditionInput struct {
	PatientID     string `json:"patientId"`
	NamasteCode   string `json:"namasteCode"`
	ICD11Code     string `json:"icd11Code"`
	ClinicalNotes string `json:"clinicalNotes"`
	ConsentGiven  bool   `json:"consentGiven"`
}

// CreateCondition records a treatment and returns it as a FHIR
// Condition. The NAMASTE code is mandatory; the ICD-11 code, when
// given, must resolve or it is dropped from the record.
func (s *Service) CreateCondition(ctx context.Context, in CreateConditionInput, rec Recorder) (*Condition, error) {
	if in.PatientID == "" || in.NamasteCode == "" {
		return nil, apperr.Validation("patientId and namasteCode are required")
	}
	patientID, err := uuid.Parse(in.PatientID)
	if err != nil {
		return nil, apperr.Validation("invalid patient id %q", in.PatientID)
	}

	namaste, err := s.codes.GetNamasteByCode(ctx, in.NamasteCode)
	if err != nil {
		return nil, err
	}
	if namaste == nil {
		return nil, apperr.NotFound("NAMASTE code %q not found", in.NamasteCode)
	}

	var icd *terminology.ICD11Code
	if in.ICD11Code != "" {
		icd, err = s.codes.GetICD11ByCode(ctx, in.ICD11Code)
		if err != nil {
			return nil, err
		}
	}

	patient, err := s.repo.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperr.NotFound("patient %s not found", patientID)
	}
	doctor, err := s.repo.GetDoctor(ctx, rec.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, apperr.NotFound("doctor %s not found", rec.DoctorID)
	}

	t := &Treatment{
		PatientID:     patientID,
		DoctorID:      doctor.ID,
		HospitalID:    rec.HospitalID,
		NamasteCodeID: &namaste.ID,
		ClinicalNotes: in.ClinicalNotes,
		ConsentGiven:  in.ConsentGiven,
	}
	if icd != nil {
		t.ICD11CodeID = &icd.ID
	}
	if in.ConsentGiven {
		now := time.Now().UTC()
		t.ConsentTimestamp = &now
	}
	if err := s.repo.InsertTreatment(ctx, t); err != nil {
		return nil, err
	}

	if in.ConsentGiven {
		scope, _ := json.Marshal(map[string]string{"treatment_id": t.ID.String()})
		if err := s.repo.InsertConsent(ctx, &ConsentRecord{
			PatientID: patientID,
			DoctorID:  doctor.ID,
			Purpose:   "Treatment record creation",
			Scope:     string(scope),
		}); err != nil {
			return nil, err
		}
	}

	detail := TreatmentDetail{
		Treatment:      *t,
		NamasteCode:    namaste.Code,
		NamasteDisplay: namaste.Display,
		NamasteSystem:  namaste.SystemType,
		PatientName:    patient.Name,
		PatientABHA:    patient.ABHAID,
		DoctorName:     doctor.Name,
	}
	if icd != nil {
		detail.ICDCode = icd.ICDCode
		detail.ICDTitle = icd.Title
	}
	return BuildCondition(detail), nil
}

// ProblemList returns a patient's conditions as a searchset Bundle,
// most recent encounter first.
func (s *Service) ProblemList(ctx context.Context, patientID uuid.UUID, status string) (*fhir.Bundle, error) {
	treatments, err := s.repo.TreatmentsForPatient(ctx, patientID, status)
	if err != nil {
		return nil, err
	}
	resources := make([]interface{}, len(treatments))
	for i, t := range treatments {
		resources[i] = BuildCondition(t)
	}
	bundle := fhir.NewSearchBundle(resources, len(treatments))
	for i, t := range treatments {
		bundle.Entry[i].FullURL = "http://ayush.gov.in/fhir/Condition/" + t.ID.String()
	}
	return bundle, nil
}

// bundleCondition is the subset of an inbound Condition entry the
// ingest path reads.
type bundleCondition struct {
	ResourceType string               `json:"resourceType"`
	Code         fhir.CodeableConcept `json:"code"`
	Subject      fhir.Reference       `json:"subject"`
	Note         []fhir.Annotation    `json:"note"`
}

// ProcessBundle ingests a transaction Bundle of dual-coded Conditions.
// Each entry succeeds or fails on its own; the response Bundle carries
// a per-entry status. Only a payload that is not a Bundle at all is
// rejected outright.
func (s *Service) ProcessBundle(ctx context.Context, bundle *fhir.Bundle, rec Recorder) (*fhir.Bundle, error) {
	if bundle == nil || bundle.ResourceType != "Bundle" {
		return nil, apperr.Validation("payload is not a FHIR Bundle")
	}

	var entries []fhir.BundleEntry
	for _, entry := range bundle.Entry {
		var cond bundleCondition
		if err := json.Unmarshal(entry.Resource, &cond); err != nil {
			entries = append(entries, fhir.FailedEntry("entry resource is not valid JSON"))
			continue
		}
		if cond.ResourceType != "Condition" {
			continue
		}
		entries = append(entries, s.ingestCondition(ctx, cond, rec))
	}
	return fhir.NewTransactionResponse(entries), nil
}

func (s *Service) ingestCondition(ctx context.Context, cond bundleCondition, rec Recorder) fhir.BundleEntry {
	var namasteCode, icdCode string
	for _, coding := range cond.Code.Coding {
		switch {
		case strings.Contains(coding.System, "namaste"):
			namasteCode = coding.Code
		case strings.Contains(coding.System, "icd"):
			icdCode = coding.Code
		}
	}
	if namasteCode == "" {
		return fhir.FailedEntry("NAMASTE code is required")
	}

	parts := strings.Split(cond.Subject.Reference, "/")
	patientID := parts[len(parts)-1]

	notes := ""
	if len(cond.Note) > 0 {
		notes = cond.Note[0].Text
	}

	created, err := s.CreateCondition(ctx, CreateConditionInput{
		PatientID:     patientID,
		NamasteCode:   namasteCode,
		ICD11Code:     icdCode,
		ClinicalNotes: notes,
		ConsentGiven:  true,
	}, rec)
	if err != nil {
		if apperr.IsValidation(err) || apperr.IsNotFound(err) {
			return fhir.FailedEntry(err.Error())
		}
		return fhir.FailedEntry(fmt.Sprintf("entry rejected: %v", err))
	}
	return fhir.CreatedEntry(fhir.FormatReference("Condition", created.ID))
}
