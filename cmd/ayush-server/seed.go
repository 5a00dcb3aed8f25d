package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayushbridge/ayushbridge/internal/domain/clinical"
	"github.com/ayushbridge/ayushbridge/internal/domain/terminology"
)

type seedMapping struct {
	namaste    string
	icd        string
	confidence float64
	kind       string
}

// runSeed loads a small demo vocabulary so search, translate and the body
// region classifier have something to work with on a fresh database.
func runSeed(ctx context.Context, pool *pgxpool.Pool) error {
	termRepo := terminology.NewPGRepo(pool)
	clinicalRepo := clinical.NewPGRepo(pool)

	namaste := []terminology.NamasteCode{
		{Code: "AY-001", Display: "Jvarā", SystemType: terminology.SystemTypeAyurveda, Definition: "Fever disorder with elevated body temperature"},
		{Code: "AY-002", Display: "Kāsa", SystemType: terminology.SystemTypeAyurveda, Definition: "Cough disorder affecting the respiratory tract"},
		{Code: "AY-003", Display: "Atisāra", SystemType: terminology.SystemTypeAyurveda, Definition: "Diarrhoeal disorder of the abdomen"},
		{Code: "AY-004", Display: "Śirahśūla", SystemType: terminology.SystemTypeAyurveda, Definition: "Headache disorder"},
		{Code: "AY-005", Display: "Gridhrasi", SystemType: terminology.SystemTypeAyurveda, Definition: "Sciatica with radiating leg pain"},
		{Code: "SI-001", Display: "Suram", SystemType: terminology.SystemTypeSiddha, Definition: "Febrile condition in Siddha practice"},
		{Code: "UN-001", Display: "Humma", SystemType: terminology.SystemTypeUnani, Definition: "Fever in Unani practice"},
	}
	icd := []terminology.ICD11Code{
		{ICDCode: "MG26", Title: "Fever of other or unknown origin", Module: "mms", Definition: "Elevated body temperature of unknown cause"},
		{ICDCode: "MD12", Title: "Cough", Module: "mms", Definition: "Sudden expulsion of air from the lungs"},
		{ICDCode: "ME05.1", Title: "Diarrhoea", Module: "mms"},
		{ICDCode: "8A80", Title: "Migraine", Module: "mms"},
		{ICDCode: "FB56.4", Title: "Sciatica", Module: "mms"},
		{ICDCode: "SK55", Title: "Cough disorder (TM2)", Module: "tm2"},
	}
	mappings := []seedMapping{
		{"AY-001", "MG26", 0.95, terminology.MappingTypePrimary},
		{"AY-002", "MD12", 0.92, terminology.MappingTypePrimary},
		{"AY-002", "SK55", 0.70, terminology.MappingTypeSecondary},
		{"AY-003", "ME05.1", 0.90, terminology.MappingTypePrimary},
		{"AY-004", "8A80", 0.85, terminology.MappingTypePrimary},
		{"AY-005", "FB56.4", 0.93, terminology.MappingTypePrimary},
		{"UN-001", "MG26", 0.88, terminology.MappingTypePrimary},
	}

	namasteIDs := map[string]*terminology.NamasteCode{}
	for i := range namaste {
		c := &namaste[i]
		if err := termRepo.InsertNamaste(ctx, c); err != nil {
			return fmt.Errorf("seed namaste %s: %w", c.Code, err)
		}
		namasteIDs[c.Code] = c
	}
	icdIDs := map[string]*terminology.ICD11Code{}
	for i := range icd {
		c := &icd[i]
		if err := termRepo.InsertICD11(ctx, c); err != nil {
			return fmt.Errorf("seed icd11 %s: %w", c.ICDCode, err)
		}
		icdIDs[c.ICDCode] = c
	}

	created := 0
	for _, m := range mappings {
		ok, err := termRepo.InsertMapping(ctx, &terminology.ConceptMapping{
			NamasteCodeID:   namasteIDs[m.namaste].ID,
			ICD11CodeID:     icdIDs[m.icd].ID,
			ConfidenceScore: m.confidence,
			MappingType:     m.kind,
		})
		if err != nil {
			return fmt.Errorf("seed mapping %s->%s: %w", m.namaste, m.icd, err)
		}
		if ok {
			created++
		}
	}

	patient := &clinical.Patient{Name: "Ramesh Kumar", ABHAID: "ABHA-1234-5678-9012", Gender: "male", BirthDate: "1978-04-12"}
	if err := clinicalRepo.InsertPatient(ctx, patient); err != nil {
		return fmt.Errorf("seed patient: %w", err)
	}
	doctor := &clinical.Doctor{Name: "Dr. Priya Sharma", HospitalID: "AIIA-DEL", Specialty: "Ayurveda"}
	if err := clinicalRepo.InsertDoctor(ctx, doctor); err != nil {
		return fmt.Errorf("seed doctor: %w", err)
	}

	fmt.Printf("Seeded %d NAMASTE code(s), %d ICD-11 code(s), %d mapping(s).\n", len(namaste), len(icd), created)
	fmt.Printf("Demo patient %s and doctor %s created.\n", patient.ID, doctor.ID)
	fmt.Println("Run 'ayush-server remap' to build body region mappings.")
	return nil
}
