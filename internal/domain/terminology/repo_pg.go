package terminology

import (
	"context"
	"fmt"
	"strings"

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

// foldedDisplay strips the transliteration marks that appear in NAMASTE
// displays so searches typed without diacritics still match, and folds
// the w romanization variant to v (jwara and jvara are the same word).
// Must stay in step with NormalizeTerm, which folds the query side.
const foldedDisplay = `REPLACE(LOWER(REPLACE(REPLACE(REPLACE(REPLACE(REPLACE(display, 'ā','a'), 'ī','i'), 'ū','u'), 'ṛ','r'), 'ḥ','h')), 'w', 'v')`

// =========== NAMASTE codes ===========

const namasteCols = `id, code, display, system_type, COALESCE(definition,''), created_at`

func scanNamaste(row pgx.Row) (*NamasteCode, error) {
	var c NamasteCode
	err := row.Scan(&c.ID, &c.Code, &c.Display, &c.SystemType, &c.Definition, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgRepo) GetNamasteByCode(ctx context.Context, code string) (*NamasteCode, error) {
	c, err := scanNamaste(r.conn(ctx).QueryRow(ctx,
		`SELECT `+namasteCols+` FROM namaste_codes WHERE code = $1`, code))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("namaste get: %w", err)
	}
	return c, nil
}

func (r *pgRepo) ListNamaste(ctx context.Context, systemType string) ([]*NamasteCode, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+namasteCols+` FROM namaste_codes
		 WHERE ($1 = '' OR system_type = $1)
		 ORDER BY code`, systemType)
	if err != nil {
		return nil, fmt.Errorf("namaste list: %w", err)
	}
	defer rows.Close()
	var out []*NamasteCode
	for rows.Next() {
		c, err := scanNamaste(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *pgRepo) SearchNamaste(ctx context.Context, term string, limit int) ([]*NamasteCode, error) {
	if limit <= 0 {
		limit = 20
	}
	folded := NormalizeTerm(term)
	contains := "%" + folded + "%"
	prefix := folded + "%"
	// Raw match unions with the folded one so queries typed with
	// diacritics still hit displays the fold expression leaves alone.
	raw := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+namasteCols+` FROM namaste_codes
		 WHERE `+foldedDisplay+` LIKE $1 OR LOWER(display) LIKE $4
		    OR LOWER(code) LIKE $1
		    OR LOWER(COALESCE(definition,'')) LIKE $1
		 ORDER BY CASE WHEN `+foldedDisplay+` LIKE $2 THEN 0 ELSE 1 END, display
		 LIMIT $3`, contains, prefix, limit, raw)
	if err != nil {
		return nil, fmt.Errorf("namaste search: %w", err)
	}
	defer rows.Close()
	var out []*NamasteCode
	for rows.Next() {
		c, err := scanNamaste(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *pgRepo) InsertNamaste(ctx context.Context, c *NamasteCode) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO namaste_codes (code, display, system_type, definition)
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 ON CONFLICT (code) DO UPDATE SET display = EXCLUDED.display,
		   system_type = EXCLUDED.system_type, definition = EXCLUDED.definition
		 RETURNING id, created_at`,
		c.Code, c.Display, c.SystemType, c.Definition).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("namaste insert: %w", err)
	}
	return nil
}

// =========== ICD-11 codes ===========

const icdCols = `id, icd_code, title, module, COALESCE(definition,''), created_at`

func scanICD(row pgx.Row) (*ICD11Code, error) {
	var c ICD11Code
	err := row.Scan(&c.ID, &c.ICDCode, &c.Title, &c.Module, &c.Definition, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgRepo) GetICD11ByCode(ctx context.Context, code string) (*ICD11Code, error) {
	c, err := scanICD(r.conn(ctx).QueryRow(ctx,
		`SELECT `+icdCols+` FROM icd11_codes WHERE icd_code = $1`, code))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("icd11 get: %w", err)
	}
	return c, nil
}

func (r *pgRepo) ListICD11(ctx context.Context, module string) ([]*ICD11Code, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+icdCols+` FROM icd11_codes
		 WHERE ($1 = '' OR module = $1)
		 ORDER BY icd_code`, module)
	if err != nil {
		return nil, fmt.Errorf("icd11 list: %w", err)
	}
	defer rows.Close()
	var out []*ICD11Code
	for rows.Next() {
		c, err := scanICD(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *pgRepo) SearchICD11(ctx context.Context, term string, limit int) ([]*ICD11Code, error) {
	if limit <= 0 {
		limit = 20
	}
	folded := NormalizeTerm(term)
	contains := "%" + folded + "%"
	prefix := folded + "%"
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+icdCols+` FROM icd11_codes
		 WHERE LOWER(title) LIKE $1 OR LOWER(icd_code) LIKE $1
		 ORDER BY CASE WHEN LOWER(title) LIKE $2 THEN 0 ELSE 1 END, title
		 LIMIT $3`, contains, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("icd11 search: %w", err)
	}
	defer rows.Close()
	var out []*ICD11Code
	for rows.Next() {
		c, err := scanICD(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *pgRepo) InsertICD11(ctx context.Context, c *ICD11Code) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO icd11_codes (icd_code, title, module, definition)
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 ON CONFLICT (icd_code) DO UPDATE SET title = EXCLUDED.title,
		   module = EXCLUDED.module, definition = EXCLUDED.definition
		 RETURNING id, created_at`,
		c.ICDCode, c.Title, c.Module, c.Definition).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("icd11 insert: %w", err)
	}
	return nil
}

// =========== Mappings ===========

func (r *pgRepo) InsertMapping(ctx context.Context, m *ConceptMapping) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO concept_mappings (namaste_code_id, icd11_code_id, confidence_score, mapping_type)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (namaste_code_id, icd11_code_id) DO NOTHING`,
		m.NamasteCodeID, m.ICD11CodeID, m.ConfidenceScore, m.MappingType)
	if err != nil {
		return false, fmt.Errorf("mapping insert: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgRepo) TranslateFromNamaste(ctx context.Context, code string) ([]Translation, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT i.icd_code, i.title, i.module, m.confidence_score, m.mapping_type
		 FROM concept_mappings m
		 JOIN namaste_codes n ON n.id = m.namaste_code_id
		 JOIN icd11_codes i ON i.id = m.icd11_code_id
		 WHERE n.code = $1
		 ORDER BY m.confidence_score DESC, i.icd_code`, code)
	if err != nil {
		return nil, fmt.Errorf("translate from namaste: %w", err)
	}
	defer rows.Close()
	return collectTranslations(rows)
}

func (r *pgRepo) TranslateToNamaste(ctx context.Context, icdCode string) ([]Translation, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT n.code, n.display, n.system_type, m.confidence_score, m.mapping_type
		 FROM concept_mappings m
		 JOIN namaste_codes n ON n.id = m.namaste_code_id
		 JOIN icd11_codes i ON i.id = m.icd11_code_id
		 WHERE i.icd_code = $1
		 ORDER BY m.confidence_score DESC, n.code`, icdCode)
	if err != nil {
		return nil, fmt.Errorf("translate to namaste: %w", err)
	}
	defer rows.Close()
	return collectTranslations(rows)
}

func collectTranslations(rows pgx.Rows) ([]Translation, error) {
	var out []Translation
	for rows.Next() {
		var t Translation
		if err := rows.Scan(&t.Code, &t.Display, &t.System, &t.Confidence, &t.MappingType); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const mappingRowSelect = `
	SELECT n.code, n.display, n.system_type, i.icd_code, i.title, i.module,
	       m.confidence_score, m.mapping_type
	FROM concept_mappings m
	JOIN namaste_codes n ON n.id = m.namaste_code_id
	JOIN icd11_codes i ON i.id = m.icd11_code_id
	WHERE ($1 = '' OR n.system_type = $1)`

func (r *pgRepo) ListMappings(ctx context.Context, systemType string, limit, offset int) ([]MappingRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM concept_mappings m
		 JOIN namaste_codes n ON n.id = m.namaste_code_id
		 WHERE ($1 = '' OR n.system_type = $1)`, systemType).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("mappings count: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		mappingRowSelect+` ORDER BY n.code, m.confidence_score DESC, i.icd_code LIMIT $2 OFFSET $3`,
		systemType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("mappings list: %w", err)
	}
	defer rows.Close()
	out, err := collectMappingRows(rows)
	return out, total, err
}

func (r *pgRepo) AllMappings(ctx context.Context, systemType string) ([]MappingRow, error) {
	rows, err := r.conn(ctx).Query(ctx,
		mappingRowSelect+` ORDER BY n.code, m.confidence_score DESC, i.icd_code`, systemType)
	if err != nil {
		return nil, fmt.Errorf("mappings all: %w", err)
	}
	defer rows.Close()
	return collectMappingRows(rows)
}

func collectMappingRows(rows pgx.Rows) ([]MappingRow, error) {
	var out []MappingRow
	for rows.Next() {
		var m MappingRow
		if err := rows.Scan(&m.NamasteCode, &m.NamasteDisplay, &m.SystemType,
			&m.ICDCode, &m.ICDTitle, &m.Module, &m.Confidence, &m.MappingType); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *pgRepo) SearchDiagnosis(ctx context.Context, term, systemType string, limit int) ([]DiagnosisRow, error) {
	if limit <= 0 {
		limit = 20
	}
	folded := NormalizeTerm(term)
	contains := "%" + folded + "%"
	prefix := folded + "%"
	rows, err := r.conn(ctx).Query(ctx,
		`WITH hits AS (
		   SELECT id, code, display, system_type, COALESCE(definition,'') AS definition
		   FROM namaste_codes
		   WHERE (`+foldedDisplay+` LIKE $1 OR LOWER(code) LIKE $1)
		     AND ($2 = '' OR system_type = $2)
		   ORDER BY CASE WHEN `+foldedDisplay+` LIKE $3 THEN 0 ELSE 1 END, display
		   LIMIT $4
		 )
		 SELECT h.code, h.display, h.system_type, h.definition,
		        COALESCE(i.icd_code,''), COALESCE(i.title,''), COALESCE(i.module,''),
		        COALESCE(i.definition,''), COALESCE(m.confidence_score,0), COALESCE(m.mapping_type,'')
		 FROM hits h
		 LEFT JOIN concept_mappings m ON m.namaste_code_id = h.id
		 LEFT JOIN icd11_codes i ON i.id = m.icd11_code_id
		 ORDER BY h.code, m.confidence_score DESC NULLS LAST, i.icd_code`,
		contains, systemType, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("diagnosis search: %w", err)
	}
	defer rows.Close()
	var out []DiagnosisRow
	for rows.Next() {
		var d DiagnosisRow
		if err := rows.Scan(&d.NamasteCode, &d.NamasteDisplay, &d.SystemType, &d.Definition,
			&d.ICDCode, &d.ICDTitle, &d.Module, &d.ICDDefinition, &d.Confidence, &d.MappingType); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *pgRepo) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{
		NamasteBySystem: map[string]int{},
		ICD11ByModule:   map[string]int{},
		MappingByType:   map[string]int{},
	}
	c := r.conn(ctx)
	if err := c.QueryRow(ctx, `SELECT COUNT(*) FROM namaste_codes`).Scan(&s.NamasteTotal); err != nil {
		return nil, fmt.Errorf("stats namaste: %w", err)
	}
	if err := c.QueryRow(ctx, `SELECT COUNT(*) FROM icd11_codes`).Scan(&s.ICD11Total); err != nil {
		return nil, fmt.Errorf("stats icd11: %w", err)
	}
	if err := c.QueryRow(ctx, `SELECT COUNT(*) FROM concept_mappings`).Scan(&s.MappingTotal); err != nil {
		return nil, fmt.Errorf("stats mappings: %w", err)
	}
	if err := groupCount(ctx, c, `SELECT system_type, COUNT(*) FROM namaste_codes GROUP BY system_type`, s.NamasteBySystem); err != nil {
		return nil, err
	}
	if err := groupCount(ctx, c, `SELECT module, COUNT(*) FROM icd11_codes GROUP BY module`, s.ICD11ByModule); err != nil {
		return nil, err
	}
	if err := groupCount(ctx, c, `SELECT mapping_type, COUNT(*) FROM concept_mappings GROUP BY mapping_type`, s.MappingByType); err != nil {
		return nil, err
	}
	return s, nil
}

func groupCount(ctx context.Context, c queryable, sql string, into map[string]int) error {
	rows, err := c.Query(ctx, sql)
	if err != nil {
		return fmt.Errorf("stats group: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}
