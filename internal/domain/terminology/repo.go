package terminology

import "context"

// Repository is the persistence surface for the terminology store.
type Repository interface {
	// NAMASTE codes.
	GetNamasteByCode(ctx context.Context, code string) (*NamasteCode, error)
	ListNamaste(ctx context.Context, systemType string) ([]*NamasteCode, error)
	SearchNamaste(ctx context.Context, term string, limit int) ([]*NamasteCode, error)
	InsertNamaste(ctx context.Context, c *NamasteCode) error

	// ICD-11 codes.
	GetICD11ByCode(ctx context.Context, code string) (*ICD11Code, error)
	ListICD11(ctx context.Context, module string) ([]*ICD11Code, error)
	SearchICD11(ctx context.Context, term string, limit int) ([]*ICD11Code, error)
	InsertICD11(ctx context.Context, c *ICD11Code) error

	// Mappings.
	InsertMapping(ctx context.Context, m *ConceptMapping) (bool, error)
	TranslateFromNamaste(ctx context.Context, code string) ([]Translation, error)
	TranslateToNamaste(ctx context.Context, icdCode string) ([]Translation, error)
	ListMappings(ctx context.Context, systemType string, limit, offset int) ([]MappingRow, int, error)
	AllMappings(ctx context.Context, systemType string) ([]MappingRow, error)
	SearchDiagnosis(ctx context.Context, term, systemType string, limit int) ([]DiagnosisRow, error)
	Stats(ctx context.Context) (*Stats, error)
}
