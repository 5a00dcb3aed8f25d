package terminology

import (
	"fmt"
	"time"

	"github.com/ayushbridge/ayushbridge/internal/platform/fhir"
)

// CodeSystem is the FHIR CodeSystem shape materialized from store rows.
type CodeSystem struct {
	ResourceType  string              `json:"resourceType"`
	ID            string              `json:"id"`
	URL           string              `json:"url"`
	Version       string              `json:"version"`
	Name          string              `json:"name"`
	Title         string              `json:"title"`
	Status        string              `json:"status"`
	Experimental  bool                `json:"experimental"`
	Publisher     string              `json:"publisher"`
	Description   string              `json:"description,omitempty"`
	CaseSensitive bool                `json:"caseSensitive"`
	Content       string              `json:"content"`
	Count         int                 `json:"count"`
	Concept       []CodeSystemConcept `json:"concept"`
}

// CodeSystemConcept is one concept entry in a materialized CodeSystem.
type CodeSystemConcept struct {
	Code       string `json:"code"`
	Display    string `json:"display"`
	Definition string `json:"definition,omitempty"`
}

// ConceptMapDoc is the FHIR ConceptMap shape for the NAMASTE to ICD-11
// crosswalk.
type ConceptMapDoc struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id"`
	URL          string            `json:"url"`
	Version      string            `json:"version"`
	Name         string            `json:"name"`
	Status       string            `json:"status"`
	Publisher    string            `json:"publisher"`
	Group        []ConceptMapGroup `json:"group"`
}

type ConceptMapGroup struct {
	Source  string              `json:"source"`
	Target  string              `json:"target"`
	Element []ConceptMapElement `json:"element"`
}

type ConceptMapElement struct {
	Code    string             `json:"code"`
	Display string             `json:"display"`
	Target  []ConceptMapTarget `json:"target"`
}

type ConceptMapTarget struct {
	Code        string `json:"code"`
	Display     string `json:"display"`
	Equivalence string `json:"equivalence"`
	Comment     string `json:"comment,omitempty"`
}

// ValueSet is the FHIR ValueSet shape returned by $expand.
type ValueSet struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id"`
	URL          string            `json:"url"`
	Status       string            `json:"status"`
	Expansion    ValueSetExpansion `json:"expansion"`
}

type ValueSetExpansion struct {
	Timestamp time.Time     `json:"timestamp"`
	Total     int           `json:"total"`
	Contains  []fhir.Coding `json:"contains"`
}

// BuildNamasteCodeSystem materializes the NAMASTE CodeSystem from store
// rows. Rows are expected pre-sorted by code.
func BuildNamasteCodeSystem(codes []*NamasteCode, systemType string) *CodeSystem {
	cs := &CodeSystem{
		ResourceType:  "CodeSystem",
		ID:            "namaste",
		URL:           NamasteSystemURI(systemType),
		Version:       "1.0.0",
		Name:          "NAMASTE",
		Title:         "National AYUSH Morbidity and Standardized Terminologies Electronic",
		Status:        "active",
		Publisher:     "Ministry of AYUSH, Government of India",
		Description:   "Standardized terminology codes for Ayurveda, Siddha and Unani disorders",
		CaseSensitive: true,
		Content:       "complete",
		Concept:       []CodeSystemConcept{},
	}
	if systemType != "" {
		cs.ID = "namaste-" + systemType
	}
	for _, c := range codes {
		cs.Concept = append(cs.Concept, CodeSystemConcept{
			Code:       c.Code,
			Display:    c.Display,
			Definition: c.Definition,
		})
	}
	cs.Count = len(cs.Concept)
	return cs
}

// BuildICD11CodeSystem materializes the locally cached ICD-11 fragment.
func BuildICD11CodeSystem(codes []*ICD11Code) *CodeSystem {
	cs := &CodeSystem{
		ResourceType:  "CodeSystem",
		ID:            "icd11",
		URL:           SystemICD11,
		Version:       "2024-01",
		Name:          "ICD11",
		Title:         "International Classification of Diseases 11th Revision",
		Status:        "active",
		Publisher:     "World Health Organization",
		Description:   "ICD-11 codes cached for NAMASTE crosswalk, MMS and TM2 modules",
		CaseSensitive: true,
		Content:       "fragment",
		Concept:       []CodeSystemConcept{},
	}
	for _, c := range codes {
		cs.Concept = append(cs.Concept, CodeSystemConcept{
			Code:       c.ICDCode,
			Display:    c.Title,
			Definition: c.Definition,
		})
	}
	cs.Count = len(cs.Concept)
	return cs
}

// BuildConceptMap materializes the crosswalk ConceptMap. Rows are
// expected pre-sorted by NAMASTE code then descending confidence, which
// makes the output byte-identical for a given store state.
func BuildConceptMap(rows []MappingRow, systemType string) *ConceptMapDoc {
	group := ConceptMapGroup{
		Source:  NamasteSystemURI(systemType),
		Target:  SystemICD11,
		Element: []ConceptMapElement{},
	}
	for _, row := range rows {
		target := ConceptMapTarget{
			Code:        row.ICDCode,
			Display:     row.ICDTitle,
			Equivalence: equivalenceFor(row.MappingType),
			Comment:     fmt.Sprintf("Confidence: %.0f%%", row.Confidence*100),
		}
		n := len(group.Element)
		if n > 0 && group.Element[n-1].Code == row.NamasteCode {
			group.Element[n-1].Target = append(group.Element[n-1].Target, target)
			continue
		}
		group.Element = append(group.Element, ConceptMapElement{
			Code:    row.NamasteCode,
			Display: row.NamasteDisplay,
			Target:  []ConceptMapTarget{target},
		})
	}
	return &ConceptMapDoc{
		ResourceType: "ConceptMap",
		ID:           "namaste-to-icd11",
		URL:          "http://ayush.gov.in/fhir/ConceptMap/namaste-to-icd11",
		Version:      "1.0.0",
		Name:         "NAMASTEtoICD11",
		Status:       "active",
		Publisher:    "Ministry of AYUSH, Government of India",
		Group:        []ConceptMapGroup{group},
	}
}

func equivalenceFor(mappingType string) string {
	if mappingType == MappingTypePrimary {
		return "equivalent"
	}
	return "relatedto"
}

// BuildValueSetExpansion wraps autocomplete hits in a ValueSet
// expansion.
func BuildValueSetExpansion(hits []SearchHit, now time.Time) *ValueSet {
	contains := make([]fhir.Coding, 0, len(hits))
	for _, h := range hits {
		system := SystemICD11
		if h.System == VocabularyNamaste {
			system = NamasteSystemURI(h.Category)
		}
		contains = append(contains, fhir.Coding{
			System:  system,
			Code:    h.Code,
			Display: h.Display,
		})
	}
	return &ValueSet{
		ResourceType: "ValueSet",
		ID:           "namaste-icd11-search",
		URL:          "http://ayush.gov.in/fhir/ValueSet/namaste-icd11-search",
		Status:       "active",
		Expansion: ValueSetExpansion{
			Timestamp: now,
			Total:     len(contains),
			Contains:  contains,
		},
	}
}

// BuildTranslateParameters renders $translate output. result is false
// when no mapping exists for the source code.
func BuildTranslateParameters(matches []Translation, sourceSystem string) *fhir.Parameters {
	p := fhir.NewParameters(fhir.BoolParameter("result", len(matches) > 0))
	targetSystem := SystemICD11
	if sourceSystem == VocabularyICD11 {
		targetSystem = SystemNamasteBase
	}
	for _, m := range matches {
		match := fhir.Parameter{
			Name: "match",
			Part: []fhir.Parameter{
				{Name: "equivalence", ValueCode: equivalenceFor(m.MappingType)},
				{Name: "concept", ValueCoding: &fhir.Coding{
					System:  targetSystem,
					Code:    m.Code,
					Display: m.Display,
				}},
				fhir.DecimalParameter("confidence", m.Confidence),
			},
		}
		p.Parameter = append(p.Parameter, match)
	}
	return p
}

// BuildNamasteLookupParameters renders $lookup output for a NAMASTE
// concept.
func BuildNamasteLookupParameters(c *NamasteCode) *fhir.Parameters {
	params := []fhir.Parameter{
		fhir.StringParameter("name", "NAMASTE"),
		fhir.StringParameter("display", c.Display),
		fhir.StringParameter("system", NamasteSystemURI(c.SystemType)),
	}
	if c.Definition != "" {
		params = append(params, fhir.StringParameter("definition", c.Definition))
	}
	return fhir.NewParameters(params...)
}

// BuildICD11LookupParameters renders $lookup output for an ICD-11
// concept.
func BuildICD11LookupParameters(c *ICD11Code) *fhir.Parameters {
	params := []fhir.Parameter{
		fhir.StringParameter("name", "ICD-11"),
		fhir.StringParameter("display", c.Title),
		fhir.StringParameter("system", SystemICD11),
		fhir.StringParameter("module", c.Module),
	}
	if c.Definition != "" {
		params = append(params, fhir.StringParameter("definition", c.Definition))
	}
	return fhir.NewParameters(params...)
}
