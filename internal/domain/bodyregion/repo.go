package bodyregion

import (
	"context"

	"github.com/google/uuid"
)

// ConceptPair is a NAMASTE to ICD-11 link from the terminology
// crosswalk, the evidence base for chapter classification.
type ConceptPair struct {
	NamasteCode string
	ICDCode     string
	Confidence  float64
}

// KeywordMatch is a NAMASTE concept matched by a region keyword.
type KeywordMatch struct {
	Code       string
	Display    string
	SystemType string
}

// Repository is the persistence surface for body regions and their
// mappings.
type Repository interface {
	ListRegions(ctx context.Context) ([]RegionSummary, error)
	GetRegionByCode(ctx context.Context, code string) (*Region, error)

	DeleteAllMappings(ctx context.Context) error
	InsertMapping(ctx context.Context, m *Mapping) (bool, error)
	RegionMappings(ctx context.Context, regionID uuid.UUID, f DiagnosesFilter) ([]MappingDetail, error)
	VerifyMapping(ctx context.Context, id uuid.UUID, verifiedBy string) (*Mapping, error)
	DeleteMapping(ctx context.Context, id uuid.UUID) (bool, error)

	// Classifier evidence queries against the terminology store.
	ConceptPairs(ctx context.Context) ([]ConceptPair, error)
	NamasteByKeyword(ctx context.Context, keyword string, limit int) ([]KeywordMatch, error)

	// Vocabulary checks for manually authored mappings.
	NamasteCodeExists(ctx context.Context, code string) (bool, error)
	ICDCodeExists(ctx context.Context, code string) (bool, error)
}

// TxRunner runs a function inside a database transaction. The rebuild
// uses it so readers never observe a half-built mapping table.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
