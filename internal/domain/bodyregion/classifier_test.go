package bodyregion

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mappingKey struct {
	region  uuid.UUID
	namaste string
	icd     string
}

type mockRepo struct {
	mu       sync.Mutex
	regions  []RegionSummary
	namaste  []KeywordMatch
	icd      []string
	pairs    []ConceptPair
	mappings map[mappingKey]*Mapping
}

func newMockRepo() *mockRepo {
	regions := make([]RegionSummary, 0, 6)
	for _, code := range []string{RegionHead, RegionChest, RegionAbdomen, RegionPelvis, RegionArms, RegionLegs} {
		regions = append(regions, RegionSummary{Region: Region{
			ID:          uuid.New(),
			Code:        code,
			DisplayName: strings.ToUpper(code[:1]) + code[1:],
		}})
	}
	return &mockRepo{regions: regions, mappings: map[mappingKey]*Mapping{}}
}

func (m *mockRepo) region(code string) Region {
	for _, r := range m.regions {
		if r.Code == code {
			return r.Region
		}
	}
	return Region{}
}

func (m *mockRepo) ListRegions(context.Context) ([]RegionSummary, error) {
	return m.regions, nil
}

func (m *mockRepo) GetRegionByCode(_ context.Context, code string) (*Region, error) {
	for _, r := range m.regions {
		if r.Code == code {
			reg := r.Region
			return &reg, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) DeleteAllMappings(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings = map[mappingKey]*Mapping{}
	return nil
}

func (m *mockRepo) InsertMapping(_ context.Context, mapping *Mapping) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := mappingKey{mapping.RegionID, mapping.NamasteCode, mapping.ICDCode}
	if _, exists := m.mappings[key]; exists {
		return false, nil
	}
	mapping.ID = uuid.New()
	m.mappings[key] = mapping
	return true, nil
}

func (m *mockRepo) RegionMappings(_ context.Context, regionID uuid.UUID, f DiagnosesFilter) ([]MappingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MappingDetail
	for _, mp := range m.mappings {
		if mp.RegionID != regionID || mp.RelevanceScore < f.MinRelevance {
			continue
		}
		if f.VerifiedOnly && !mp.Verified {
			continue
		}
		display := ""
		systemType := ""
		for _, n := range m.namaste {
			if n.Code == mp.NamasteCode {
				display = n.Display
				systemType = n.SystemType
			}
		}
		out = append(out, MappingDetail{
			ID:             mp.ID,
			NamasteCode:    mp.NamasteCode,
			NamasteDisplay: display,
			SystemType:     systemType,
			ICDCode:        mp.ICDCode,
			RelevanceScore: mp.RelevanceScore,
			MappingType:    mp.MappingType,
			Verified:       mp.Verified,
			Notes:          mp.Notes,
		})
	}
	return out, nil
}

func (m *mockRepo) VerifyMapping(_ context.Context, id uuid.UUID, verifiedBy string) (*Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mp := range m.mappings {
		if mp.ID == id {
			mp.Verified = true
			mp.VerifiedBy = verifiedBy
			return mp, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) DeleteMapping(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, mp := range m.mappings {
		if mp.ID == id {
			delete(m.mappings, key)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) ConceptPairs(context.Context) ([]ConceptPair, error) {
	return m.pairs, nil
}

func (m *mockRepo) NamasteByKeyword(_ context.Context, keyword string, limit int) ([]KeywordMatch, error) {
	var out []KeywordMatch
	for _, n := range m.namaste {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(n.Display), strings.ToLower(keyword)) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockRepo) NamasteCodeExists(_ context.Context, code string) (bool, error) {
	for _, n := range m.namaste {
		if n.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) ICDCodeExists(_ context.Context, code string) (bool, error) {
	for _, c := range m.icd {
		if c == code {
			return true, nil
		}
	}
	return false, nil
}

type noopTx struct{}

func (noopTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestClassifier(repo *mockRepo) *Classifier {
	return NewClassifier(repo, noopTx{}, zerolog.Nop())
}

func TestRegionForICDCode(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"MD12", RegionChest},
		{"DA42", RegionAbdomen},
		{"8A80", RegionHead},
		{"FB32", RegionLegs},
		{"GC08", RegionPelvis},
		{"EA60", RegionArms},
		{"XX99", ""},
		{"M", ""},
	}
	for _, tc := range cases {
		if got := RegionForICDCode(tc.code); got != tc.want {
			t.Errorf("RegionForICDCode(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestRebuildChapterStrategy(t *testing.T) {
	repo := newMockRepo()
	repo.pairs = []ConceptPair{
		{NamasteCode: "AY-002", ICDCode: "MD12", Confidence: 0.92},
		{NamasteCode: "AY-010", ICDCode: "DA42", Confidence: 0},
	}
	stats, err := newTestClassifier(repo).Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Regions[RegionChest].ChapterMappings != 1 {
		t.Errorf("chest chapter mappings = %d, want 1", stats.Regions[RegionChest].ChapterMappings)
	}
	chest := repo.region(RegionChest)
	m := repo.mappings[mappingKey{chest.ID, "AY-002", "MD12"}]
	if m == nil {
		t.Fatal("expected AY-002/MD12 mapped to chest")
	}
	if m.RelevanceScore != 0.92 || m.MappingType != "primary" {
		t.Errorf("mapping = %+v", m)
	}
	if m.Notes != "ICD Chapter MD → chest" {
		t.Errorf("notes = %q", m.Notes)
	}

	abdomen := repo.region(RegionAbdomen)
	fallback := repo.mappings[mappingKey{abdomen.ID, "AY-010", "DA42"}]
	if fallback == nil || fallback.RelevanceScore != 0.9 {
		t.Errorf("zero confidence should fall back to 0.9, got %+v", fallback)
	}
}

func TestRebuildKeywordStrategy(t *testing.T) {
	repo := newMockRepo()
	repo.namaste = []KeywordMatch{
		{Code: "AY-002", Display: "Kasa (cough)", SystemType: "ayurveda"},
		{Code: "AY-020", Display: "Shirashoola", SystemType: "ayurveda"},
	}
	stats, err := newTestClassifier(repo).Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Regions[RegionChest].KeywordMappings != 1 {
		t.Errorf("chest keyword mappings = %d, want 1", stats.Regions[RegionChest].KeywordMappings)
	}
	if stats.Regions[RegionHead].KeywordMappings != 1 {
		t.Errorf("head keyword mappings = %d, want 1", stats.Regions[RegionHead].KeywordMappings)
	}
	chest := repo.region(RegionChest)
	m := repo.mappings[mappingKey{chest.ID, "AY-002", ""}]
	if m == nil {
		t.Fatal("expected keyword mapping for AY-002")
	}
	if m.RelevanceScore != 0.7 || m.MappingType != "secondary" {
		t.Errorf("mapping = %+v", m)
	}
	if m.Notes != `Keyword match: "kasa"` {
		t.Errorf("notes = %q", m.Notes)
	}
}

func TestRebuildDeduplicatesWithinRun(t *testing.T) {
	repo := newMockRepo()
	// Display matches both "kasa" and "cough" for the chest region.
	repo.namaste = []KeywordMatch{
		{Code: "AY-002", Display: "Kasa cough disorder", SystemType: "ayurveda"},
	}
	stats, err := newTestClassifier(repo).Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Regions[RegionChest].KeywordMappings != 1 {
		t.Errorf("duplicate keyword hits should insert once, got %d", stats.Regions[RegionChest].KeywordMappings)
	}
}

func TestRebuildIdempotent(t *testing.T) {
	repo := newMockRepo()
	repo.pairs = []ConceptPair{{NamasteCode: "AY-002", ICDCode: "MD12", Confidence: 0.92}}
	repo.namaste = []KeywordMatch{{Code: "AY-002", Display: "Kasa", SystemType: "ayurveda"}}

	c := newTestClassifier(repo)
	first, err := c.Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first.Total != second.Total {
		t.Errorf("rebuild totals differ: %d then %d", first.Total, second.Total)
	}
	if len(repo.mappings) != first.Total {
		t.Errorf("stored mappings = %d, stats total = %d", len(repo.mappings), first.Total)
	}
}

func TestMultiRegionMembership(t *testing.T) {
	repo := newMockRepo()
	// Sciatica belongs to legs by keyword and, via its crosswalk, to
	// the musculoskeletal chapter mapped to legs; hip pain sits in
	// pelvis. One concept may appear in several regions.
	repo.namaste = []KeywordMatch{
		{Code: "AY-030", Display: "Gridhrasi (sciatica with hip pain)", SystemType: "ayurveda"},
	}
	_, err := newTestClassifier(repo).Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	legs := repo.region(RegionLegs)
	pelvis := repo.region(RegionPelvis)
	if repo.mappings[mappingKey{legs.ID, "AY-030", ""}] == nil {
		t.Error("expected AY-030 in legs")
	}
	if repo.mappings[mappingKey{pelvis.ID, "AY-030", ""}] == nil {
		t.Error("expected AY-030 in pelvis")
	}
}
