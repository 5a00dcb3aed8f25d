package bodyregion

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayushbridge/ayushbridge/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type pgRepo struct{ pool *pgxpool.Pool }

// NewPGRepo returns a Repository backed by PostgreSQL.
func NewPGRepo(pool *pgxpool.Pool) Repository { return &pgRepo{pool: pool} }

func (r *pgRepo) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// pgTxRunner adapts db.WithTx to the TxRunner interface.
type pgTxRunner struct{ pool *pgxpool.Pool }

func NewTxRunner(pool *pgxpool.Pool) TxRunner { return pgTxRunner{pool: pool} }

func (r pgTxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.WithTx(ctx, r.pool, fn)
}

func (r *pgRepo) ListRegions(ctx context.Context) ([]RegionSummary, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT br.id, br.code, br.display_name, COALESCE(br.display_name_sanskrit,''),
		        COALESCE(br.description,''),
		        COUNT(brm.id), COUNT(brm.id) FILTER (WHERE brm.verified)
		 FROM body_regions br
		 LEFT JOIN body_region_mappings brm ON brm.body_region_id = br.id
		 GROUP BY br.id
		 ORDER BY br.code`)
	if err != nil {
		return nil, fmt.Errorf("regions list: %w", err)
	}
	defer rows.Close()
	var out []RegionSummary
	for rows.Next() {
		var s RegionSummary
		if err := rows.Scan(&s.ID, &s.Code, &s.DisplayName, &s.DisplaySanskrit,
			&s.Description, &s.MappingCount, &s.VerifiedCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *pgRepo) GetRegionByCode(ctx context.Context, code string) (*Region, error) {
	var reg Region
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, code, display_name, COALESCE(display_name_sanskrit,''), COALESCE(description,'')
		 FROM body_regions WHERE code = $1`, code).
		Scan(&reg.ID, &reg.Code, &reg.DisplayName, &reg.DisplaySanskrit, &reg.Description)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("region get: %w", err)
	}
	return &reg, nil
}

func (r *pgRepo) DeleteAllMappings(ctx context.Context) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM body_region_mappings`); err != nil {
		return fmt.Errorf("mappings clear: %w", err)
	}
	return nil
}

func (r *pgRepo) InsertMapping(ctx context.Context, m *Mapping) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO body_region_mappings
		   (body_region_id, namaste_code, icd_code, relevance_score, mapping_type,
		    verified, verified_by, verified_at, notes)
		 VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, $6, NULLIF($7,''),
		         CASE WHEN $6 THEN NOW() END, NULLIF($8,''))
		 ON CONFLICT (body_region_id, namaste_code, icd_code) DO NOTHING`,
		m.RegionID, m.NamasteCode, m.ICDCode, m.RelevanceScore, m.MappingType,
		m.Verified, m.VerifiedBy, m.Notes)
	if err != nil {
		return false, fmt.Errorf("mapping insert: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgRepo) RegionMappings(ctx context.Context, regionID uuid.UUID, f DiagnosesFilter) ([]MappingDetail, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT brm.id, COALESCE(brm.namaste_code,''), COALESCE(nc.display,''),
		        COALESCE(nc.system_type,''), COALESCE(brm.icd_code,''), COALESCE(ic.title,''),
		        brm.relevance_score, brm.mapping_type, brm.verified,
		        COALESCE(brm.notes,''), brm.verified_at
		 FROM body_region_mappings brm
		 LEFT JOIN namaste_codes nc ON nc.code = brm.namaste_code
		 LEFT JOIN icd11_codes ic ON ic.icd_code = brm.icd_code
		 WHERE brm.body_region_id = $1
		   AND brm.relevance_score >= $2
		   AND (NOT $3 OR brm.verified)
		 ORDER BY brm.relevance_score DESC, brm.verified DESC, brm.id
		 LIMIT $4`,
		regionID, f.MinRelevance, f.VerifiedOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("region mappings: %w", err)
	}
	defer rows.Close()
	var out []MappingDetail
	for rows.Next() {
		var d MappingDetail
		if err := rows.Scan(&d.ID, &d.NamasteCode, &d.NamasteDisplay, &d.SystemType,
			&d.ICDCode, &d.ICDTitle, &d.RelevanceScore, &d.MappingType,
			&d.Verified, &d.Notes, &d.VerifiedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *pgRepo) VerifyMapping(ctx context.Context, id uuid.UUID, verifiedBy string) (*Mapping, error) {
	var m Mapping
	err := r.conn(ctx).QueryRow(ctx,
		`UPDATE body_region_mappings
		 SET verified = true, verified_by = $1, verified_at = NOW()
		 WHERE id = $2
		 RETURNING id, body_region_id, COALESCE(namaste_code,''), COALESCE(icd_code,''),
		           relevance_score, mapping_type, verified, COALESCE(verified_by,''),
		           verified_at, COALESCE(notes,''), created_at`,
		verifiedBy, id).
		Scan(&m.ID, &m.RegionID, &m.NamasteCode, &m.ICDCode, &m.RelevanceScore,
			&m.MappingType, &m.Verified, &m.VerifiedBy, &m.VerifiedAt, &m.Notes, &m.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mapping verify: %w", err)
	}
	return &m, nil
}

func (r *pgRepo) DeleteMapping(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM body_region_mappings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("mapping delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgRepo) ConceptPairs(ctx context.Context) ([]ConceptPair, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT DISTINCT nc.code, ic.icd_code, cm.confidence_score
		 FROM concept_mappings cm
		 JOIN namaste_codes nc ON nc.id = cm.namaste_code_id
		 JOIN icd11_codes ic ON ic.id = cm.icd11_code_id
		 ORDER BY nc.code, ic.icd_code`)
	if err != nil {
		return nil, fmt.Errorf("concept pairs: %w", err)
	}
	defer rows.Close()
	var out []ConceptPair
	for rows.Next() {
		var p ConceptPair
		if err := rows.Scan(&p.NamasteCode, &p.ICDCode, &p.Confidence); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pgRepo) NamasteByKeyword(ctx context.Context, keyword string, limit int) ([]KeywordMatch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT code, display, system_type FROM namaste_codes
		 WHERE display ILIKE $1
		 ORDER BY code
		 LIMIT $2`, "%"+keyword+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	defer rows.Close()
	var out []KeywordMatch
	for rows.Next() {
		var m KeywordMatch
		if err := rows.Scan(&m.Code, &m.Display, &m.SystemType); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *pgRepo) NamasteCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM namaste_codes WHERE code = $1)`, code).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("namaste code check: %w", err)
	}
	return exists, nil
}

func (r *pgRepo) ICDCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM icd11_codes WHERE icd_code = $1)`, code).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("icd code check: %w", err)
	}
	return exists, nil
}
