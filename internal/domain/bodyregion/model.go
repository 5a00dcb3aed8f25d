package bodyregion

import (
	"time"

	"github.com/google/uuid"
)

// Region codes for the six top-level anatomical regions.
const (
	RegionHead    = "head"
	RegionChest   = "chest"
	RegionAbdomen = "abdomen"
	RegionPelvis  = "pelvis"
	RegionArms    = "arms"
	RegionLegs    = "legs"
)

// Region is one anatomical region of the interactive body map.
type Region struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	DisplayName     string    `json:"display_name"`
	DisplaySanskrit string    `json:"display_name_sanskrit,omitempty"`
	Description     string    `json:"description,omitempty"`
}

// RegionSummary is a region plus its mapping counts for listings.
type RegionSummary struct {
	Region
	MappingCount  int `json:"mapping_count"`
	VerifiedCount int `json:"verified_count"`
}

// Mapping links a region to a NAMASTE code, an ICD-11 code, or both.
// At least one of the codes is set.
type Mapping struct {
	ID             uuid.UUID  `json:"id"`
	RegionID       uuid.UUID  `json:"body_region_id"`
	NamasteCode    string     `json:"namaste_code,omitempty"`
	ICDCode        string     `json:"icd_code,omitempty"`
	RelevanceScore float64    `json:"relevance_score"`
	MappingType    string     `json:"mapping_type"`
	Verified       bool       `json:"verified"`
	VerifiedBy     string     `json:"verified_by,omitempty"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MappingDetail is a mapping joined with terminology displays, used by
// the region diagnoses endpoint.
type MappingDetail struct {
	ID             uuid.UUID  `json:"id"`
	NamasteCode    string     `json:"namaste_code,omitempty"`
	NamasteDisplay string     `json:"namaste_display,omitempty"`
	SystemType     string     `json:"system_type,omitempty"`
	ICDCode        string     `json:"icd_code,omitempty"`
	ICDTitle       string     `json:"icd_title,omitempty"`
	RelevanceScore float64    `json:"relevance_score"`
	MappingType    string     `json:"mapping_type"`
	Verified       bool       `json:"verified"`
	Notes          string     `json:"notes,omitempty"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty"`
}

// Diagnosis groups one NAMASTE concept with its ICD-11 codes inside a
// region.
type Diagnosis struct {
	NamasteCode    string            `json:"namaste_code"`
	NamasteDisplay string            `json:"namaste_display"`
	SystemType     string            `json:"system_type"`
	RelevanceScore float64           `json:"relevance_score"`
	MappingType    string            `json:"mapping_type"`
	Verified       bool              `json:"verified"`
	Notes          string            `json:"notes,omitempty"`
	Mappings       []DiagnosisTarget `json:"mappings"`
}

// DiagnosisTarget is one ICD-11 code attached to a diagnosis.
type DiagnosisTarget struct {
	ICDCode  string `json:"icd_code"`
	ICDTitle string `json:"icd_title"`
}

// DiagnosesFilter narrows the region diagnoses listing.
type DiagnosesFilter struct {
	VerifiedOnly bool
	MinRelevance float64
	Limit        int
}

// RebuildStats reports classifier output per region.
type RebuildStats struct {
	Regions map[string]RegionStats `json:"regions"`
	Total   int                    `json:"total"`
}

// RegionStats counts classifier inserts for one region by strategy.
type RegionStats struct {
	ChapterMappings int `json:"chapter_mappings"`
	KeywordMappings int `json:"keyword_mappings"`
	Total           int `json:"total"`
}
