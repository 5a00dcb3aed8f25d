package terminology

import (
	"time"

	"github.com/google/uuid"
)

// Canonical system URIs for materialized FHIR resources.
const (
	SystemNamasteBase = "http://ayush.gov.in/fhir/CodeSystem/namaste"
	SystemICD11       = "http://id.who.int/icd/release/11/2024-01"
)

// Traditional medicine system types carried by NAMASTE codes.
const (
	SystemTypeAyurveda = "ayurveda"
	SystemTypeSiddha   = "siddha"
	SystemTypeUnani    = "unani"
)

// Vocabulary identifiers used by search and translate endpoints.
const (
	VocabularyNamaste = "namaste"
	VocabularyICD11   = "icd11"
)

// Mapping types on a concept mapping row.
const (
	MappingTypePrimary   = "primary"
	MappingTypeSecondary = "secondary"
)

// NamasteCode is a single code from the NAMASTE terminology.
type NamasteCode struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Display    string    `json:"display"`
	SystemType string    `json:"system_type"`
	Definition string    `json:"definition,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ICD11Code is a single code from the ICD-11 release, either the
// biomedicine (MMS) or traditional medicine (TM2) module.
type ICD11Code struct {
	ID         uuid.UUID `json:"id"`
	ICDCode    string    `json:"icd_code"`
	Title      string    `json:"title"`
	Module     string    `json:"module"`
	Definition string    `json:"definition,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConceptMapping links a NAMASTE code to an ICD-11 code with a
// confidence score in [0,1].
type ConceptMapping struct {
	ID              uuid.UUID `json:"id"`
	NamasteCodeID   uuid.UUID `json:"namaste_code_id"`
	ICD11CodeID     uuid.UUID `json:"icd11_code_id"`
	ConfidenceScore float64   `json:"confidence_score"`
	MappingType     string    `json:"mapping_type"`
	CreatedAt       time.Time `json:"created_at"`
}

// SearchHit is one row of a dual-vocabulary autocomplete search.
type SearchHit struct {
	System     string `json:"system"`
	Code       string `json:"code"`
	Display    string `json:"display"`
	Category   string `json:"category,omitempty"`
	Definition string `json:"definition,omitempty"`
}

// Translation is one candidate target concept for a $translate request,
// ordered by descending confidence.
type Translation struct {
	Code        string  `json:"code"`
	Display     string  `json:"display"`
	System      string  `json:"system"`
	Confidence  float64 `json:"confidence"`
	MappingType string  `json:"mapping_type"`
}

// MappingRow is a fully joined mapping used by the ConceptMap
// materializer and the mappings listing endpoint.
type MappingRow struct {
	NamasteCode    string  `json:"namaste_code"`
	NamasteDisplay string  `json:"namaste_display"`
	SystemType     string  `json:"system_type"`
	ICDCode        string  `json:"icd_code"`
	ICDTitle       string  `json:"icd_title"`
	Module         string  `json:"module"`
	Confidence     float64 `json:"confidence"`
	MappingType    string  `json:"mapping_type"`
}

// DiagnosisMapping is one ICD-11 mapping attached to a diagnosis search
// result.
type DiagnosisMapping struct {
	ICDCode     string  `json:"icd_code"`
	ICDTitle    string  `json:"icd_title"`
	Module      string  `json:"module"`
	Definition  string  `json:"definition,omitempty"`
	Confidence  float64 `json:"confidence"`
	MappingType string  `json:"mapping_type"`
}

// DiagnosisResult groups one NAMASTE concept with all of its ICD-11
// mappings, best confidence first.
type DiagnosisResult struct {
	NamasteCode    string             `json:"namaste_code"`
	NamasteDisplay string             `json:"namaste_display"`
	SystemType     string             `json:"system_type"`
	Definition     string             `json:"definition,omitempty"`
	Mappings       []DiagnosisMapping `json:"mappings"`
}

// DiagnosisRow is the raw joined row behind a diagnosis search, before
// grouping. ICD fields are empty for unmapped NAMASTE codes.
type DiagnosisRow struct {
	NamasteCode    string
	NamasteDisplay string
	SystemType     string
	Definition     string
	ICDCode        string
	ICDTitle       string
	Module         string
	ICDDefinition  string
	Confidence     float64
	MappingType    string
}

// Stats summarizes terminology store contents.
type Stats struct {
	NamasteTotal    int            `json:"namaste_total"`
	NamasteBySystem map[string]int `json:"namaste_by_system"`
	ICD11Total      int            `json:"icd11_total"`
	ICD11ByModule   map[string]int `json:"icd11_by_module"`
	MappingTotal    int            `json:"mapping_total"`
	MappingByType   map[string]int `json:"mapping_by_type"`
}

// ValidSystemType reports whether s names a known traditional medicine
// system.
func ValidSystemType(s string) bool {
	switch s {
	case SystemTypeAyurveda, SystemTypeSiddha, SystemTypeUnani:
		return true
	}
	return false
}

// NamasteSystemURI returns the CodeSystem URL for a system type, or the
// base NAMASTE URL when systemType is empty.
func NamasteSystemURI(systemType string) string {
	if systemType == "" {
		return SystemNamasteBase
	}
	return SystemNamasteBase + "-" + systemType
}
