package bodyregion

import (
	"context"

	"github.com/google/uuid"

	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
)

// Service exposes the body map read path, mapping authoring and the
// classifier rebuild.
type Service struct {
	repo       Repository
	classifier *Classifier
}

func NewService(repo Repository, classifier *Classifier) *Service {
	return &Service{repo: repo, classifier: classifier}
}

// ListRegions returns all regions with mapping counts.
func (s *Service) ListRegions(ctx context.Context) ([]RegionSummary, error) {
	regions, err := s.repo.ListRegions(ctx)
	if err != nil {
		return nil, err
	}
	if regions == nil {
		regions = []RegionSummary{}
	}
	return regions, nil
}

// Diagnoses returns the NAMASTE concepts mapped to a region, each with
// its ICD-11 codes. Rows without a NAMASTE code (chapter evidence that
// only names an ICD code) are folded into existing concepts or skipped.
func (s *Service) Diagnoses(ctx context.Context, regionCode string, f DiagnosesFilter) (*Region, []Diagnosis, error) {
	region, err := s.repo.GetRegionByCode(ctx, regionCode)
	if err != nil {
		return nil, nil, err
	}
	if region == nil {
		return nil, nil, apperr.NotFound("body region %q not found", regionCode)
	}
	details, err := s.repo.RegionMappings(ctx, region.ID, f)
	if err != nil {
		return nil, nil, err
	}

	diagnoses := []Diagnosis{}
	index := map[string]int{}
	for _, d := range details {
		if d.NamasteCode == "" {
			continue
		}
		i, ok := index[d.NamasteCode]
		if !ok {
			diagnoses = append(diagnoses, Diagnosis{
				NamasteCode:    d.NamasteCode,
				NamasteDisplay: d.NamasteDisplay,
				SystemType:     d.SystemType,
				RelevanceScore: d.RelevanceScore,
				MappingType:    d.MappingType,
				Verified:       d.Verified,
				Notes:          d.Notes,
				Mappings:       []DiagnosisTarget{},
			})
			i = len(diagnoses) - 1
			index[d.NamasteCode] = i
		}
		if d.ICDCode != "" {
			diagnoses[i].Mappings = append(diagnoses[i].Mappings, DiagnosisTarget{
				ICDCode:  d.ICDCode,
				ICDTitle: d.ICDTitle,
			})
		}
	}
	return region, diagnoses, nil
}

// CreateMappingInput is a manual mapping authored through the API.
type CreateMappingInput struct {
	NamasteCode    string  `json:"namaste_code"`
	ICDCode        string  `json:"icd_code"`
	RelevanceScore float64 `json:"relevance_score"`
	MappingType    string  `json:"mapping_type"`
	Notes          string  `json:"notes"`
}

// CreateMapping records a clinician-authored mapping. Authored rows are
// verified on creation.
func (s *Service) CreateMapping(ctx context.Context, regionCode string, in CreateMappingInput, authoredBy string) (*Mapping, error) {
	if in.NamasteCode == "" && in.ICDCode == "" {
		return nil, apperr.Validation("either namaste_code or icd_code is required")
	}
	if in.RelevanceScore < 0 || in.RelevanceScore > 1 {
		return nil, apperr.Validation("relevance_score must be between 0 and 1")
	}
	region, err := s.repo.GetRegionByCode(ctx, regionCode)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, apperr.NotFound("body region %q not found", regionCode)
	}
	if in.NamasteCode != "" {
		ok, err := s.repo.NamasteCodeExists(ctx, in.NamasteCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.NotFound("NAMASTE code %q not found", in.NamasteCode)
		}
	}
	if in.ICDCode != "" {
		ok, err := s.repo.ICDCodeExists(ctx, in.ICDCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.NotFound("ICD-11 code %q not found", in.ICDCode)
		}
	}

	m := &Mapping{
		RegionID:       region.ID,
		NamasteCode:    in.NamasteCode,
		ICDCode:        in.ICDCode,
		RelevanceScore: in.RelevanceScore,
		MappingType:    in.MappingType,
		Verified:       true,
		VerifiedBy:     authoredBy,
		Notes:          in.Notes,
	}
	if m.RelevanceScore == 0 {
		m.RelevanceScore = 1.0
	}
	if m.MappingType == "" {
		m.MappingType = "primary"
	}
	created, err := s.repo.InsertMapping(ctx, m)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, apperr.Conflict("mapping already exists for this region and code pair")
	}
	return m, nil
}

// Verify marks a mapping as clinician-verified. Verification is one
// way; verifying an already verified row refreshes the attribution.
func (s *Service) Verify(ctx context.Context, id uuid.UUID, verifiedBy string) (*Mapping, error) {
	m, err := s.repo.VerifyMapping(ctx, id, verifiedBy)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("mapping %s not found", id)
	}
	return m, nil
}

// Delete removes a mapping.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.DeleteMapping(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("mapping %s not found", id)
	}
	return nil
}

// Rebuild regenerates all classifier mappings.
func (s *Service) Rebuild(ctx context.Context) (*RebuildStats, error) {
	return s.classifier.Rebuild(ctx)
}
