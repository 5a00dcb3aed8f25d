package bodyregion

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ayushbridge/ayushbridge/internal/platform/apperr"
)

func newTestService(repo *mockRepo) *Service {
	return NewService(repo, newTestClassifier(repo))
}

func TestDiagnosesUnknownRegion(t *testing.T) {
	svc := newTestService(newMockRepo())
	_, _, err := svc.Diagnoses(context.Background(), "torso", DiagnosesFilter{})
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDiagnosesGroupsByNamasteCode(t *testing.T) {
	repo := newMockRepo()
	repo.namaste = []KeywordMatch{{Code: "AY-002", Display: "Kasa", SystemType: "ayurveda"}}
	chest := repo.region(RegionChest)
	svc := newTestService(repo)

	seed := []*Mapping{
		{RegionID: chest.ID, NamasteCode: "AY-002", ICDCode: "MD12", RelevanceScore: 0.92, MappingType: "primary"},
		{RegionID: chest.ID, NamasteCode: "AY-002", ICDCode: "SK55", RelevanceScore: 0.7, MappingType: "secondary"},
		{RegionID: chest.ID, ICDCode: "CA40", RelevanceScore: 0.9, MappingType: "primary"},
	}
	for _, m := range seed {
		if _, err := repo.InsertMapping(context.Background(), m); err != nil {
			t.Fatal(err)
		}
	}

	region, diagnoses, err := svc.Diagnoses(context.Background(), RegionChest, DiagnosesFilter{MinRelevance: 0.5, Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	if region.Code != RegionChest {
		t.Errorf("region = %q", region.Code)
	}
	if len(diagnoses) != 1 {
		t.Fatalf("expected one diagnosis, got %d", len(diagnoses))
	}
	d := diagnoses[0]
	if d.NamasteCode != "AY-002" || d.NamasteDisplay != "Kasa" {
		t.Errorf("diagnosis = %+v", d)
	}
	if len(d.Mappings) != 2 {
		t.Errorf("expected two ICD targets, got %d", len(d.Mappings))
	}
}

func TestDiagnosesMinRelevanceFilter(t *testing.T) {
	repo := newMockRepo()
	chest := repo.region(RegionChest)
	svc := newTestService(repo)
	if _, err := repo.InsertMapping(context.Background(), &Mapping{
		RegionID: chest.ID, NamasteCode: "AY-002", RelevanceScore: 0.3, MappingType: "secondary",
	}); err != nil {
		t.Fatal(err)
	}
	_, diagnoses, err := svc.Diagnoses(context.Background(), RegionChest, DiagnosesFilter{MinRelevance: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(diagnoses) != 0 {
		t.Errorf("low relevance rows should be filtered, got %d", len(diagnoses))
	}
}

func TestCreateMappingRequiresACode(t *testing.T) {
	svc := newTestService(newMockRepo())
	_, err := svc.CreateMapping(context.Background(), RegionChest, CreateMappingInput{}, "dr-1")
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateMappingDefaultsAndVerifies(t *testing.T) {
	repo := newMockRepo()
	repo.namaste = []KeywordMatch{{Code: "AY-002", Display: "Kāsa", SystemType: "ayurveda"}}
	svc := newTestService(repo)
	m, err := svc.CreateMapping(context.Background(), RegionChest, CreateMappingInput{NamasteCode: "AY-002"}, "dr-1")
	if err != nil {
		t.Fatal(err)
	}
	if !m.Verified || m.VerifiedBy != "dr-1" {
		t.Errorf("authored mapping should be verified: %+v", m)
	}
	if m.RelevanceScore != 1.0 || m.MappingType != "primary" {
		t.Errorf("defaults not applied: %+v", m)
	}
}

func TestCreateMappingICDOnly(t *testing.T) {
	repo := newMockRepo()
	repo.icd = []string{"SK55"}
	svc := newTestService(repo)
	m, err := svc.CreateMapping(context.Background(), RegionChest, CreateMappingInput{ICDCode: "SK55"}, "dr-1")
	if err != nil {
		t.Fatal(err)
	}
	if m.ICDCode != "SK55" {
		t.Errorf("icd code not stored: %+v", m)
	}
	if m.NamasteCode != "" {
		t.Errorf("namaste code should stay empty: %+v", m)
	}
}

func TestCreateMappingUnknownCode(t *testing.T) {
	svc := newTestService(newMockRepo())
	_, err := svc.CreateMapping(context.Background(), RegionChest, CreateMappingInput{NamasteCode: "AY-404"}, "dr-1")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found for unknown code, got %v", err)
	}
}

func TestCreateMappingDuplicateConflicts(t *testing.T) {
	repo := newMockRepo()
	repo.namaste = []KeywordMatch{{Code: "AY-002", Display: "Kāsa", SystemType: "ayurveda"}}
	repo.icd = []string{"MD12"}
	svc := newTestService(repo)
	in := CreateMappingInput{NamasteCode: "AY-002", ICDCode: "MD12"}
	if _, err := svc.CreateMapping(context.Background(), RegionChest, in, "dr-1"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CreateMapping(context.Background(), RegionChest, in, "dr-2")
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestVerifyMappingNotFound(t *testing.T) {
	svc := newTestService(newMockRepo())
	_, err := svc.Verify(context.Background(), uuid.New(), "dr-1")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteMapping(t *testing.T) {
	repo := newMockRepo()
	repo.namaste = []KeywordMatch{{Code: "AY-030", Display: "Gridhrasi", SystemType: "ayurveda"}}
	svc := newTestService(repo)
	m, err := svc.CreateMapping(context.Background(), RegionLegs, CreateMappingInput{NamasteCode: "AY-030"}, "dr-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), m.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), m.ID); !apperr.IsNotFound(err) {
		t.Errorf("second delete should be not found, got %v", err)
	}
}

func TestMappedDiagnosisReachableAfterRebuild(t *testing.T) {
	repo := newMockRepo()
	repo.namaste = []KeywordMatch{{Code: "AY-002", Display: "Kāsa", SystemType: "ayurveda"}}
	repo.pairs = []ConceptPair{{NamasteCode: "AY-002", ICDCode: "MD12", Confidence: 0.92}}
	svc := newTestService(repo)

	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	_, diagnoses, err := svc.Diagnoses(context.Background(), RegionChest, DiagnosesFilter{MinRelevance: 0.5, Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(diagnoses) != 1 || diagnoses[0].NamasteCode != "AY-002" {
		t.Fatalf("expected AY-002 under chest after rebuild, got %+v", diagnoses)
	}
	if len(diagnoses[0].Mappings) != 1 || diagnoses[0].Mappings[0].ICDCode != "MD12" {
		t.Errorf("expected MD12 target, got %+v", diagnoses[0].Mappings)
	}
}
