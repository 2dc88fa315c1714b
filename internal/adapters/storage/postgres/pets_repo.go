package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vet-clinic-api/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (
			id, owner_user_id,
			name, species, breed,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		p.Species,
		p.Breed,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "pets_owner_name_key" {
			return pets.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			species = $3,
			breed = $4,
			updated_at = $5
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Species,
		p.Breed,
		p.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "pets_owner_name_key" {
			return pets.ErrAlreadyExists
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, owner_user_id,
			name, species, breed,
			created_at, updated_at
		FROM pets
		WHERE id = $1
	`, id)

	var p pets.Pet
	if err := row.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Name,
		&p.Species,
		&p.Breed,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}

	return p, nil
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, owner_user_id,
			name, species, breed,
			created_at, updated_at
		FROM pets
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		var p pets.Pet
		if err := rows.Scan(
			&p.ID,
			&p.OwnerUserID,
			&p.Name,
			&p.Species,
			&p.Breed,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) DeleteAllByOwner(ctx context.Context, ownerUserID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE owner_user_id = $1`, ownerUserID)
	return err
}
