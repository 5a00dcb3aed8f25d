package clinical

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

func (r *pgRepo) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, COALESCE(abha_id,''), COALESCE(gender,''),
		        COALESCE(birth_date::text,''), created_at
		 FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.ABHAID, &p.Gender, &p.BirthDate, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("patient get: %w", err)
	}
	return &p, nil
}

func (r *pgRepo) InsertPatient(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO patients (name, abha_id, gender, birth_date)
		 VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,'')::date)
		 RETURNING id, created_at`,
		p.Name, p.ABHAID, p.Gender, p.BirthDate).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("patient insert: %w", err)
	}
	return nil
}

func (r *pgRepo) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	var d Doctor
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, COALESCE(hospital_id,''), COALESCE(specialty,''), created_at
		 FROM doctors WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.HospitalID, &d.Specialty, &d.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("doctor get: %w", err)
	}
	return &d, nil
}

func (r *pgRepo) InsertDoctor(ctx context.Context, d *Doctor) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO doctors (name, hospital_id, specialty)
		 VALUES ($1, NULLIF($2,''), NULLIF($3,''))
		 RETURNING id, created_at`,
		d.Name, d.HospitalID, d.Specialty).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("doctor insert: %w", err)
	}
	return nil
}

func (r *pgRepo) InsertTreatment(ctx context.Context, t *Treatment) error {
	if t.Status == "" {
		t.Status = "active"
	}
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO patient_treatments
		   (patient_id, doctor_id, hospital_id, namaste_code_id, icd11_code_id,
		    clinical_notes, consent_given, consent_timestamp, status)
		 VALUES ($1, $2, NULLIF($3,''), $4, $5, NULLIF($6,''), $7, $8, $9)
		 RETURNING id, encounter_date, version, created_at, updated_at`,
		t.PatientID, t.DoctorID, t.HospitalID, t.NamasteCodeID, t.ICD11CodeID,
		t.ClinicalNotes, t.ConsentGiven, t.ConsentTimestamp, t.Status).
		Scan(&t.ID, &t.EncounterDate, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("treatment insert: %w", err)
	}
	return nil
}

func (r *pgRepo) TreatmentsForPatient(ctx context.Context, patientID uuid.UUID, status string) ([]TreatmentDetail, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT pt.id, pt.patient_id, pt.doctor_id, COALESCE(pt.hospital_id,''),
		        pt.namaste_code_id, pt.icd11_code_id, COALESCE(pt.clinical_notes,''),
		        pt.consent_given, pt.consent_timestamp, pt.status, pt.encounter_date,
		        pt.version, pt.created_at, pt.updated_at,
		        COALESCE(nc.code,''), COALESCE(nc.display,''), COALESCE(nc.system_type,''),
		        COALESCE(ic.icd_code,''), COALESCE(ic.title,''),
		        p.name, COALESCE(p.abha_id,''), d.name
		 FROM patient_treatments pt
		 JOIN patients p ON p.id = pt.patient_id
		 JOIN doctors d ON d.id = pt.doctor_id
		 LEFT JOIN namaste_codes nc ON nc.id = pt.namaste_code_id
		 LEFT JOIN icd11_codes ic ON ic.id = pt.icd11_code_id
		 WHERE pt.patient_id = $1 AND ($2 = '' OR pt.status = $2)
		 ORDER BY pt.encounter_date DESC`, patientID, status)
	if err != nil {
		return nil, fmt.Errorf("treatments list: %w", err)
	}
	defer rows.Close()
	var out []TreatmentDetail
	for rows.Next() {
		var t TreatmentDetail
		if err := rows.Scan(&t.ID, &t.PatientID, &t.DoctorID, &t.HospitalID,
			&t.NamasteCodeID, &t.ICD11CodeID, &t.ClinicalNotes,
			&t.ConsentGiven, &t.ConsentTimestamp, &t.Status, &t.EncounterDate,
			&t.Version, &t.CreatedAt, &t.UpdatedAt,
			&t.NamasteCode, &t.NamasteDisplay, &t.NamasteSystem,
			&t.ICDCode, &t.ICDTitle,
			&t.PatientName, &t.PatientABHA, &t.DoctorName); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *pgRepo) InsertConsent(ctx context.Context, rec *ConsentRecord) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO consent_records (patient_id, doctor_id, purpose, scope, granted_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id, granted_at`,
		rec.PatientID, rec.DoctorID, rec.Purpose, rec.Scope).
		Scan(&rec.ID, &rec.GrantedAt)
	if err != nil {
		return fmt.Errorf("consent insert: %w", err)
	}
	return nil
}
