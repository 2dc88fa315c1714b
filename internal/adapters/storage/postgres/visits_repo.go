package postgres

import (
	"context"
	"database/sql"
	"time"

	"vet-clinic-api/internal/domain/visits"
)

type VisitsRepo struct {
	db *sql.DB
}

func NewVisitsRepo(db *sql.DB) *VisitsRepo {
	return &VisitsRepo{db: db}
}

func (r *VisitsRepo) Create(ctx context.Context, v visits.Visit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO visits (
			id, visit_date, visit_time, approved,
			description, pet_id, vet_user_id, owner_user_id,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		v.ID,
		v.Date,
		v.Time,
		v.Approved,
		v.Description,
		v.PetID,
		v.VetUserID,
		v.OwnerUserID,
		v.CreatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "visits_date_time_key" {
			return visits.ErrInvalidVisitDate
		}
		return err
	}
	return nil
}

func (r *VisitsRepo) GetByDateTime(ctx context.Context, date time.Time, timeSlot string) (visits.Visit, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, visit_date, visit_time, approved,
			description, pet_id, vet_user_id, owner_user_id,
			created_at
		FROM visits
		WHERE visit_date = $1 AND visit_time = $2
	`, date, timeSlot)

	return scanVisit(row)
}

func (r *VisitsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]visits.Visit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, visit_date, visit_time, approved,
			description, pet_id, vet_user_id, owner_user_id,
			created_at
		FROM visits
		WHERE owner_user_id = $1
		ORDER BY visit_date ASC, visit_time ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]visits.Visit, 0)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *VisitsRepo) DeleteAllByOwner(ctx context.Context, ownerUserID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM visits WHERE owner_user_id = $1`, ownerUserID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisit(row rowScanner) (visits.Visit, error) {
	var v visits.Visit
	if err := row.Scan(
		&v.ID,
		&v.Date,
		&v.Time,
		&v.Approved,
		&v.Description,
		&v.PetID,
		&v.VetUserID,
		&v.OwnerUserID,
		&v.CreatedAt,
	); err != nil {
		return visits.Visit{}, err
	}

	// visit_date es DATE: pgx lo devuelve como midnight en local, lo
	// normalizamos a medianoche UTC que es como lo maneja el dominio.
	v.Date = time.Date(v.Date.Year(), v.Date.Month(), v.Date.Day(), 0, 0, 0, 0, time.UTC)
	return v, nil
}
