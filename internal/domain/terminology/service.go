package terminology

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
)

// Service implements terminology search, translation and FHIR
// materialization on top of the store.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SearchCodes runs a dual-vocabulary autocomplete search. system may be
// empty (both vocabularies), "namaste" or "icd11". When both
// vocabularies are searched the limit is split between them, NAMASTE
// first.
func (s *Service) SearchCodes(ctx context.Context, term, system string, limit int) ([]SearchHit, error) {
	if term == "" {
		return nil, apperr.Validation("search term is required")
	}
	if limit <= 0 {
		limit = 20
	}
	switch system {
	case "", VocabularyNamaste, VocabularyICD11:
	default:
		return nil, apperr.Validation("unknown vocabulary %q", system)
	}

	var hits []SearchHit
	if system == "" || system == VocabularyNamaste {
		perSystem := limit
		if system == "" {
			perSystem = (limit + 1) / 2
		}
		codes, err := s.repo.SearchNamaste(ctx, term, perSystem)
		if err != nil {
			return nil, err
		}
		for _, c := range codes {
			hits = append(hits, SearchHit{
				System:     VocabularyNamaste,
				Code:       c.Code,
				Display:    c.Display,
				Category:   c.SystemType,
				Definition: c.Definition,
			})
		}
	}
	if system == "" || system == VocabularyICD11 {
		perSystem := limit
		if system == "" {
			perSystem = limit - len(hits)
		}
		codes, err := s.repo.SearchICD11(ctx, term, perSystem)
		if err != nil {
			return nil, err
		}
		for _, c := range codes {
			hits = append(hits, SearchHit{
				System:     VocabularyICD11,
				Code:       c.ICDCode,
				Display:    c.Title,
				Category:   c.Module,
				Definition: c.Definition,
			})
		}
	}
	return hits, nil
}

// SearchDiagnosis searches NAMASTE concepts and returns each with all
// of its ICD-11 mappings, best confidence first. Unmapped concepts are
// returned with an empty mapping list.
func (s *Service) SearchDiagnosis(ctx context.Context, term, systemType string, limit int) ([]DiagnosisResult, error) {
	if systemType != "" && !ValidSystemType(systemType) {
		return nil, apperr.Validation("unknown system type %q", systemType)
	}
	// Queries shorter than two characters match half the vocabulary;
	// treat them as no results rather than an error.
	if len([]rune(strings.TrimSpace(term))) < 2 {
		return []DiagnosisResult{}, nil
	}
	rows, err := s.repo.SearchDiagnosis(ctx, term, systemType, limit)
	if err != nil {
		return nil, err
	}

	var results []DiagnosisResult
	index := map[string]int{}
	for _, row := range rows {
		i, ok := index[row.NamasteCode]
		if !ok {
			results = append(results, DiagnosisResult{
				NamasteCode:    row.NamasteCode,
				NamasteDisplay: row.NamasteDisplay,
				SystemType:     row.SystemType,
				Definition:     row.Definition,
				Mappings:       []DiagnosisMapping{},
			})
			i = len(results) - 1
			index[row.NamasteCode] = i
		}
		if row.ICDCode == "" {
			continue
		}
		results[i].Mappings = append(results[i].Mappings, DiagnosisMapping{
			ICDCode:     row.ICDCode,
			ICDTitle:    row.ICDTitle,
			Module:      row.Module,
			Definition:  row.ICDDefinition,
			Confidence:  row.Confidence,
			MappingType: row.MappingType,
		})
	}

	// Concepts with more crosswalk coverage rank first.
	sort.SliceStable(results, func(a, b int) bool {
		if len(results[a].Mappings) != len(results[b].Mappings) {
			return len(results[a].Mappings) > len(results[b].Mappings)
		}
		return results[a].NamasteDisplay < results[b].NamasteDisplay
	})
	return results, nil
}

// Translate maps a code between the two vocabularies. system names the
// vocabulary the code belongs to; results come back best first.
func (s *Service) Translate(ctx context.Context, code, system string) ([]Translation, error) {
	if code == "" {
		return nil, apperr.Validation("code is required")
	}
	// An unknown or unmapped code translates to an empty candidate
	// list, not an error.
	switch system {
	case VocabularyNamaste:
		return s.repo.TranslateFromNamaste(ctx, code)
	case VocabularyICD11:
		return s.repo.TranslateToNamaste(ctx, code)
	default:
		return nil, apperr.Validation("unknown vocabulary %q", system)
	}
}

// LookupNamaste fetches a single NAMASTE concept.
func (s *Service) LookupNamaste(ctx context.Context, code string) (*NamasteCode, error) {
	c, err := s.repo.GetNamasteByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("NAMASTE code %q not found", code)
	}
	return c, nil
}

// LookupICD11 fetches a single ICD-11 concept.
func (s *Service) LookupICD11(ctx context.Context, code string) (*ICD11Code, error) {
	c, err := s.repo.GetICD11ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("ICD-11 code %q not found", code)
	}
	return c, nil
}

// CreateMapping links an existing NAMASTE code to an existing ICD-11
// code. Re-linking an existing pair is a no-op and reports created ==
// false.
func (s *Service) CreateMapping(ctx context.Context, namasteCode, icdCode string, confidence float64, mappingType string) (bool, error) {
	if namasteCode == "" || icdCode == "" {
		return false, apperr.Validation("namaste_code and icd_code are required")
	}
	if confidence < 0 || confidence > 1 {
		return false, apperr.Validation("confidence must be between 0 and 1")
	}
	if mappingType == "" {
		mappingType = MappingTypePrimary
	}
	if mappingType != MappingTypePrimary && mappingType != MappingTypeSecondary {
		return false, apperr.Validation("unknown mapping type %q", mappingType)
	}
	n, err := s.repo.GetNamasteByCode(ctx, namasteCode)
	if err != nil {
		return false, err
	}
	if n == nil {
		return false, apperr.NotFound("NAMASTE code %q not found", namasteCode)
	}
	i, err := s.repo.GetICD11ByCode(ctx, icdCode)
	if err != nil {
		return false, err
	}
	if i == nil {
		return false, apperr.NotFound("ICD-11 code %q not found", icdCode)
	}
	return s.repo.InsertMapping(ctx, &ConceptMapping{
		NamasteCodeID:   n.ID,
		ICD11CodeID:     i.ID,
		ConfidenceScore: confidence,
		MappingType:     mappingType,
	})
}

// Stats reports store contents by vocabulary and mapping type.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// ListMappings pages through joined mappings, optionally filtered by
// traditional medicine system.
func (s *Service) ListMappings(ctx context.Context, systemType string, limit, offset int) ([]MappingRow, int, error) {
	if systemType != "" && !ValidSystemType(systemType) {
		return nil, 0, apperr.Validation("unknown system type %q", systemType)
	}
	return s.repo.ListMappings(ctx, systemType, limit, offset)
}

// NamasteCodeSystem materializes the NAMASTE FHIR CodeSystem,
// optionally restricted to one traditional medicine system.
func (s *Service) NamasteCodeSystem(ctx context.Context, systemType string) (*CodeSystem, error) {
	if systemType != "" && !ValidSystemType(systemType) {
		return nil, apperr.Validation("unknown system type %q", systemType)
	}
	codes, err := s.repo.ListNamaste(ctx, systemType)
	if err != nil {
		return nil, err
	}
	return BuildNamasteCodeSystem(codes, systemType), nil
}

// ICD11CodeSystem materializes the ICD-11 FHIR CodeSystem fragment,
// optionally restricted to one module.
func (s *Service) ICD11CodeSystem(ctx context.Context, module string) (*CodeSystem, error) {
	codes, err := s.repo.ListICD11(ctx, module)
	if err != nil {
		return nil, err
	}
	return BuildICD11CodeSystem(codes), nil
}

// ConceptMap materializes the NAMASTE to ICD-11 FHIR ConceptMap.
// Output is deterministic for a given set of mapping rows.
func (s *Service) ConceptMap(ctx context.Context, systemType string) (*ConceptMapDoc, error) {
	if systemType != "" && !ValidSystemType(systemType) {
		return nil, apperr.Validation("unknown system type %q", systemType)
	}
	rows, err := s.repo.AllMappings(ctx, systemType)
	if err != nil {
		return nil, err
	}
	return BuildConceptMap(rows, systemType), nil
}

// ExpandValueSet runs an autocomplete search and wraps the hits in a
// FHIR ValueSet expansion.
func (s *Service) ExpandValueSet(ctx context.Context, filter, system string, count int) (*ValueSet, error) {
	hits, err := s.SearchCodes(ctx, filter, system, count)
	if err != nil {
		return nil, err
	}
	return BuildValueSetExpansion(hits, s.now().UTC()), nil
}
