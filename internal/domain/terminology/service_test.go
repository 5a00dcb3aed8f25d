package terminology

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
)

type mockRepo struct {
	namaste  []*NamasteCode
	icd      []*ICD11Code
	mappings []MappingRow
	inserted []*ConceptMapping
	stats    *Stats
}

func (m *mockRepo) GetNamasteByCode(_ context.Context, code string) (*NamasteCode, error) {
	for _, c := range m.namaste {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) ListNamaste(_ context.Context, systemType string) ([]*NamasteCode, error) {
	var out []*NamasteCode
	for _, c := range m.namaste {
		if systemType == "" || c.SystemType == systemType {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepo) SearchNamaste(_ context.Context, term string, limit int) ([]*NamasteCode, error) {
	folded := NormalizeTerm(term)
	var out []*NamasteCode
	for _, c := range m.namaste {
		if len(out) >= limit {
			break
		}
		if containsFold(c.Display, folded) || containsFold(c.Code, folded) || containsFold(c.Definition, folded) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepo) InsertNamaste(_ context.Context, c *NamasteCode) error {
	m.namaste = append(m.namaste, c)
	return nil
}

func (m *mockRepo) GetICD11ByCode(_ context.Context, code string) (*ICD11Code, error) {
	for _, c := range m.icd {
		if c.ICDCode == code {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) ListICD11(_ context.Context, module string) ([]*ICD11Code, error) {
	var out []*ICD11Code
	for _, c := range m.icd {
		if module == "" || c.Module == module {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepo) SearchICD11(_ context.Context, term string, limit int) ([]*ICD11Code, error) {
	folded := NormalizeTerm(term)
	var out []*ICD11Code
	for _, c := range m.icd {
		if len(out) >= limit {
			break
		}
		if containsFold(c.Title, folded) || containsFold(c.ICDCode, folded) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepo) InsertICD11(_ context.Context, c *ICD11Code) error {
	m.icd = append(m.icd, c)
	return nil
}

func (m *mockRepo) InsertMapping(_ context.Context, cm *ConceptMapping) (bool, error) {
	for _, existing := range m.inserted {
		if existing.NamasteCodeID == cm.NamasteCodeID && existing.ICD11CodeID == cm.ICD11CodeID {
			return false, nil
		}
	}
	m.inserted = append(m.inserted, cm)
	return true, nil
}

func (m *mockRepo) TranslateFromNamaste(_ context.Context, code string) ([]Translation, error) {
	var out []Translation
	for _, row := range m.mappings {
		if row.NamasteCode == code {
			out = append(out, Translation{
				Code: row.ICDCode, Display: row.ICDTitle, System: row.Module,
				Confidence: row.Confidence, MappingType: row.MappingType,
			})
		}
	}
	return out, nil
}

func (m *mockRepo) TranslateToNamaste(_ context.Context, icdCode string) ([]Translation, error) {
	var out []Translation
	for _, row := range m.mappings {
		if row.ICDCode == icdCode {
			out = append(out, Translation{
				Code: row.NamasteCode, Display: row.NamasteDisplay, System: row.SystemType,
				Confidence: row.Confidence, MappingType: row.MappingType,
			})
		}
	}
	return out, nil
}

func (m *mockRepo) ListMappings(_ context.Context, systemType string, limit, offset int) ([]MappingRow, int, error) {
	rows, _ := m.AllMappings(context.Background(), systemType)
	total := len(rows)
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, total, nil
}

func (m *mockRepo) AllMappings(_ context.Context, systemType string) ([]MappingRow, error) {
	var out []MappingRow
	for _, row := range m.mappings {
		if systemType == "" || row.SystemType == systemType {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockRepo) SearchDiagnosis(_ context.Context, term, systemType string, limit int) ([]DiagnosisRow, error) {
	folded := NormalizeTerm(term)
	var out []DiagnosisRow
	for _, c := range m.namaste {
		if systemType != "" && c.SystemType != systemType {
			continue
		}
		if !containsFold(c.Display, folded) && !containsFold(c.Code, folded) {
			continue
		}
		matched := false
		for _, row := range m.mappings {
			if row.NamasteCode != c.Code {
				continue
			}
			matched = true
			out = append(out, DiagnosisRow{
				NamasteCode: c.Code, NamasteDisplay: c.Display, SystemType: c.SystemType,
				Definition: c.Definition, ICDCode: row.ICDCode, ICDTitle: row.ICDTitle,
				Module: row.Module, Confidence: row.Confidence, MappingType: row.MappingType,
			})
		}
		if !matched {
			out = append(out, DiagnosisRow{
				NamasteCode: c.Code, NamasteDisplay: c.Display,
				SystemType: c.SystemType, Definition: c.Definition,
			})
		}
	}
	return out, nil
}

func (m *mockRepo) Stats(_ context.Context) (*Stats, error) {
	if m.stats != nil {
		return m.stats, nil
	}
	return &Stats{}, nil
}

func containsFold(haystack, foldedNeedle string) bool {
	return foldedNeedle != "" && strings.Contains(NormalizeTerm(haystack), foldedNeedle)
}

func seededRepo() *mockRepo {
	kasaID := uuid.New()
	jvaraID := uuid.New()
	coughID := uuid.New()
	feverID := uuid.New()
	return &mockRepo{
		namaste: []*NamasteCode{
			{ID: jvaraID, Code: "AY-001", Display: "Jvarā", SystemType: "ayurveda", Definition: "Fever disorder"},
			{ID: kasaID, Code: "AY-002", Display: "Kāsa", SystemType: "ayurveda", Definition: "Cough disorder"},
			{ID: uuid.New(), Code: "SI-001", Display: "Suram", SystemType: "siddha"},
		},
		icd: []*ICD11Code{
			{ID: feverID, ICDCode: "MG26", Title: "Fever", Module: "mms"},
			{ID: coughID, ICDCode: "MD12", Title: "Cough", Module: "mms"},
			{ID: uuid.New(), ICDCode: "SK55", Title: "Cough disorder (TM2)", Module: "tm2"},
		},
		mappings: []MappingRow{
			{NamasteCode: "AY-001", NamasteDisplay: "Jvarā", SystemType: "ayurveda",
				ICDCode: "MG26", ICDTitle: "Fever", Module: "mms", Confidence: 0.95, MappingType: "primary"},
			{NamasteCode: "AY-002", NamasteDisplay: "Kāsa", SystemType: "ayurveda",
				ICDCode: "MD12", ICDTitle: "Cough", Module: "mms", Confidence: 0.92, MappingType: "primary"},
			{NamasteCode: "AY-002", NamasteDisplay: "Kāsa", SystemType: "ayurveda",
				ICDCode: "SK55", ICDTitle: "Cough disorder (TM2)", Module: "tm2", Confidence: 0.7, MappingType: "secondary"},
		},
	}
}

func TestSearchCodesRequiresTerm(t *testing.T) {
	svc := NewService(&mockRepo{})
	_, err := svc.SearchCodes(context.Background(), "", "", 10)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchCodesBothVocabularies(t *testing.T) {
	svc := NewService(seededRepo())
	hits, err := svc.SearchCodes(context.Background(), "cough", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	var sawNamaste, sawICD bool
	for _, h := range hits {
		switch h.System {
		case VocabularyNamaste:
			sawNamaste = true
		case VocabularyICD11:
			sawICD = true
		}
	}
	if !sawNamaste || !sawICD {
		t.Errorf("expected hits from both vocabularies, got %+v", hits)
	}
}

func TestSearchCodesDiacriticFolding(t *testing.T) {
	svc := NewService(seededRepo())
	hits, err := svc.SearchCodes(context.Background(), "kasa", VocabularyNamaste, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Code != "AY-002" {
		t.Fatalf("expected AY-002 for plain-ASCII kasa, got %+v", hits)
	}
}

func TestSearchCodesRomanizationVariants(t *testing.T) {
	svc := NewService(seededRepo())
	for _, term := range []string{"jvara", "jwara"} {
		hits, err := svc.SearchCodes(context.Background(), term, VocabularyNamaste, 10)
		if err != nil {
			t.Fatalf("%q: %v", term, err)
		}
		if len(hits) != 1 || hits[0].Code != "AY-001" {
			t.Fatalf("%q: expected AY-001, got %+v", term, hits)
		}
	}
}

func TestNormalizeTermCanonicalForm(t *testing.T) {
	cases := map[string]string{
		"Jvarā":  "jvara",
		"jwara":  "jvara",
		"Kāsa":   "kasa",
		" Śūla ": "sula",
	}
	for in, want := range cases {
		if got := NormalizeTerm(in); got != want {
			t.Errorf("NormalizeTerm(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSearchCodesRejectsUnknownVocabulary(t *testing.T) {
	svc := NewService(seededRepo())
	if _, err := svc.SearchCodes(context.Background(), "cough", "snomed", 10); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchDiagnosisGroupsMappings(t *testing.T) {
	svc := NewService(seededRepo())
	results, err := svc.SearchDiagnosis(context.Background(), "kasa", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one concept, got %d", len(results))
	}
	r := results[0]
	if r.NamasteCode != "AY-002" {
		t.Errorf("code = %q, want AY-002", r.NamasteCode)
	}
	if len(r.Mappings) != 2 {
		t.Fatalf("expected two mappings, got %d", len(r.Mappings))
	}
	if r.Mappings[0].ICDCode != "MD12" || r.Mappings[0].Confidence != 0.92 {
		t.Errorf("best mapping should be MD12 at 0.92, got %+v", r.Mappings[0])
	}
}

func TestSearchDiagnosisOrdersByMappingCount(t *testing.T) {
	svc := NewService(seededRepo())
	results, err := svc.SearchDiagnosis(context.Background(), "AY-0", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected two concepts, got %d", len(results))
	}
	if results[0].NamasteCode != "AY-002" || results[1].NamasteCode != "AY-001" {
		t.Errorf("expected AY-002 (two mappings) before AY-001, got %s then %s",
			results[0].NamasteCode, results[1].NamasteCode)
	}
}

func TestSearchDiagnosisShortQueryReturnsEmpty(t *testing.T) {
	svc := NewService(seededRepo())
	for _, term := range []string{"", " ", "k"} {
		results, err := svc.SearchDiagnosis(context.Background(), term, "", 10)
		if err != nil {
			t.Fatalf("term %q: %v", term, err)
		}
		if len(results) != 0 {
			t.Errorf("term %q: expected no results, got %d", term, len(results))
		}
	}
}

func TestSearchDiagnosisUnmappedConceptHasEmptyMappings(t *testing.T) {
	svc := NewService(seededRepo())
	results, err := svc.SearchDiagnosis(context.Background(), "suram", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one concept, got %d", len(results))
	}
	if results[0].Mappings == nil || len(results[0].Mappings) != 0 {
		t.Errorf("expected empty non-nil mapping list, got %#v", results[0].Mappings)
	}
}

func TestTranslateFromNamaste(t *testing.T) {
	svc := NewService(seededRepo())
	matches, err := svc.Translate(context.Background(), "AY-002", VocabularyNamaste)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected two matches, got %d", len(matches))
	}
	if matches[0].Code != "MD12" {
		t.Errorf("best match = %q, want MD12", matches[0].Code)
	}
}

func TestTranslateUnknownCodeReturnsEmpty(t *testing.T) {
	svc := NewService(seededRepo())
	matches, err := svc.Translate(context.Background(), "AY-999", VocabularyNamaste)
	if err != nil {
		t.Fatalf("unknown code should not be an error, got %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestTranslateToNamaste(t *testing.T) {
	svc := NewService(seededRepo())
	matches, err := svc.Translate(context.Background(), "MD12", VocabularyICD11)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Code != "AY-002" {
		t.Fatalf("expected AY-002, got %+v", matches)
	}
}

func TestCreateMappingValidation(t *testing.T) {
	svc := NewService(seededRepo())
	cases := []struct {
		name        string
		namaste     string
		icd         string
		confidence  float64
		mappingType string
	}{
		{"missing codes", "", "", 0.5, "primary"},
		{"confidence above one", "AY-001", "MG26", 1.5, "primary"},
		{"negative confidence", "AY-001", "MG26", -0.1, "primary"},
		{"bad mapping type", "AY-001", "MG26", 0.5, "tertiary"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateMapping(context.Background(), tc.namaste, tc.icd, tc.confidence, tc.mappingType)
			if !apperr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateMappingUnknownCodes(t *testing.T) {
	svc := NewService(seededRepo())
	if _, err := svc.CreateMapping(context.Background(), "AY-999", "MG26", 0.5, "primary"); !apperr.IsNotFound(err) {
		t.Errorf("expected not found for unknown NAMASTE code, got %v", err)
	}
	if _, err := svc.CreateMapping(context.Background(), "AY-001", "ZZ99", 0.5, "primary"); !apperr.IsNotFound(err) {
		t.Errorf("expected not found for unknown ICD code, got %v", err)
	}
}

func TestCreateMappingIdempotent(t *testing.T) {
	svc := NewService(seededRepo())
	created, err := svc.CreateMapping(context.Background(), "AY-001", "MD12", 0.6, "secondary")
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("first insert should create")
	}
	created, err = svc.CreateMapping(context.Background(), "AY-001", "MD12", 0.6, "secondary")
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second insert of same pair should be a no-op")
	}
}

func TestConceptMapGroupsBySourceCode(t *testing.T) {
	svc := NewService(seededRepo())
	cm, err := svc.ConceptMap(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cm.Group) != 1 {
		t.Fatalf("expected one group, got %d", len(cm.Group))
	}
	g := cm.Group[0]
	if g.Source != SystemNamasteBase || g.Target != SystemICD11 {
		t.Errorf("group source/target = %q/%q", g.Source, g.Target)
	}
	if len(g.Element) != 2 {
		t.Fatalf("expected two elements, got %d", len(g.Element))
	}
	kasa := g.Element[1]
	if kasa.Code != "AY-002" || len(kasa.Target) != 2 {
		t.Fatalf("AY-002 element malformed: %+v", kasa)
	}
	if kasa.Target[0].Comment != "Confidence: 92%" {
		t.Errorf("comment = %q, want Confidence: 92%%", kasa.Target[0].Comment)
	}
	if kasa.Target[0].Equivalence != "equivalent" || kasa.Target[1].Equivalence != "relatedto" {
		t.Errorf("equivalences = %q/%q", kasa.Target[0].Equivalence, kasa.Target[1].Equivalence)
	}
}

func TestConceptMapDeterministic(t *testing.T) {
	svc := NewService(seededRepo())
	first, err := svc.ConceptMap(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.ConceptMap(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Error("ConceptMap output should be byte-identical across calls")
	}
}

func TestNamasteCodeSystemFiltersBySystemType(t *testing.T) {
	svc := NewService(seededRepo())
	cs, err := svc.NamasteCodeSystem(context.Background(), "siddha")
	if err != nil {
		t.Fatal(err)
	}
	if cs.URL != SystemNamasteBase+"-siddha" {
		t.Errorf("url = %q", cs.URL)
	}
	if cs.Count != 1 || cs.Concept[0].Code != "SI-001" {
		t.Errorf("expected only the siddha concept, got %+v", cs.Concept)
	}
}

func TestExpandValueSetTimestamp(t *testing.T) {
	svc := NewService(seededRepo())
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	vs, err := svc.ExpandValueSet(context.Background(), "fever", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !vs.Expansion.Timestamp.Equal(fixed) {
		t.Errorf("timestamp = %v, want %v", vs.Expansion.Timestamp, fixed)
	}
	if vs.Expansion.Total != len(vs.Expansion.Contains) {
		t.Errorf("total %d != contains %d", vs.Expansion.Total, len(vs.Expansion.Contains))
	}
}
