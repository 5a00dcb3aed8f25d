package clinical

import (
	"strconv"
	"strings"
	"time"

	"github.com/ayushbridge/ayushbridge/internal/domain/terminology"
	"github.com/ayushbridge/ayushbridge/internal/platform/fhir"
)

// Condition is the FHIR Condition shape for a dual-coded problem list
// entry.
type Condition struct {
	ResourceType   string                 `json:"resourceType"`
	ID             string                 `json:"id"`
	Meta           *fhir.Meta             `json:"meta,omitempty"`
	ClinicalStatus fhir.CodeableConcept   `json:"clinicalStatus"`
	Category       []fhir.CodeableConcept `json:"category"`
	Code           fhir.CodeableConcept   `json:"code"`
	Subject        fhir.Reference         `json:"subject"`
	Encounter      fhir.Reference         `json:"encounter"`
	OnsetDateTime  time.Time              `json:"onsetDateTime"`
	RecordedDate   time.Time              `json:"recordedDate"`
	Recorder       fhir.Reference         `json:"recorder"`
	Note           []fhir.Annotation      `json:"note,omitempty"`
}

// BuildCondition materializes a treatment row as a FHIR Condition. The
// code carries both vocabularies when both are recorded; absent codes
// are left out of the coding list rather than emitted empty.
func BuildCondition(t TreatmentDetail) *Condition {
	var coding []fhir.Coding
	if t.NamasteCode != "" {
		coding = append(coding, fhir.Coding{
			System:  terminology.NamasteSystemURI(t.NamasteSystem),
			Code:    t.NamasteCode,
			Display: t.NamasteDisplay,
		})
	}
	if t.ICDCode != "" {
		coding = append(coding, fhir.Coding{
			System:  terminology.SystemICD11,
			Code:    t.ICDCode,
			Display: t.ICDTitle,
		})
	}
	text := t.NamasteDisplay
	if text == "" {
		text = t.ICDTitle
	}

	cond := &Condition{
		ResourceType: "Condition",
		ID:           t.ID.String(),
		Meta: &fhir.Meta{
			VersionID:   strconv.Itoa(t.Version),
			LastUpdated: t.UpdatedAt,
		},
		ClinicalStatus: fhir.CodeableConcept{
			Coding: []fhir.Coding{{
				System:  "http://terminology.hl7.org/CodeSystem/condition-clinical",
				Code:    t.Status,
				Display: titleCase(t.Status),
			}},
		},
		Category: []fhir.CodeableConcept{{
			Coding: []fhir.Coding{{
				System:  "http://terminology.hl7.org/CodeSystem/condition-category",
				Code:    "problem-list-item",
				Display: "Problem List Item",
			}},
		}},
		Code: fhir.CodeableConcept{Coding: coding, Text: text},
		Subject: fhir.Reference{
			Reference: fhir.FormatReference("Patient", t.PatientID.String()),
			Display:   t.PatientName,
		},
		Encounter: fhir.Reference{
			Reference: fhir.FormatReference("Encounter", t.ID.String()),
		},
		OnsetDateTime: t.EncounterDate,
		RecordedDate:  t.CreatedAt,
		Recorder: fhir.Reference{
			Reference: fhir.FormatReference("Practitioner", t.DoctorID.String()),
			Display:   t.DoctorName,
		},
	}
	if t.ClinicalNotes != "" {
		cond.Note = []fhir.Annotation{{Text: t.ClinicalNotes}}
	}
	return cond
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
