package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"vet-clinic-api/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, name, med_type, quantity, description,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		m.ID,
		m.Name,
		m.Type,
		m.Quantity,
		m.Description,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "medications_name_key" {
			return medications.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET
			name = $2,
			med_type = $3,
			quantity = $4,
			description = $5,
			updated_at = $6
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		m.Type,
		m.Quantity,
		m.Description,
		m.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "medications_name_key" {
			return medications.ErrAlreadyExists
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, medications.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, med_type, quantity, description, created_at, updated_at
		FROM medications
		WHERE id = $1
	`, id)

	return scanMedication(row)
}

func (r *MedicationsRepo) GetByName(ctx context.Context, name string) (medications.Medication, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, med_type, quantity, description, created_at, updated_at
		FROM medications
		WHERE name = $1
	`, name)

	return scanMedication(row)
}

func (r *MedicationsRepo) List(ctx context.Context) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, med_type, quantity, description, created_at, updated_at
		FROM medications
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

// DecrementQuantity descuenta con un UPDATE condicional: la base decide de
// forma atómica si hay stock, sin SELECT previo y sin lock en la app.
func (r *MedicationsRepo) DecrementQuantity(ctx context.Context, id string, amount int) (medications.Medication, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE medications
		SET quantity = quantity - $2, updated_at = $3
		WHERE id = $1 AND quantity >= $2
		RETURNING id, name, med_type, quantity, description, created_at, updated_at
	`, id, amount, time.Now().UTC())

	m, err := scanMedication(row)
	if err == nil {
		return m, nil
	}
	if err != medications.ErrNotFound {
		return medications.Medication{}, err
	}

	// Cero filas: puede ser id inexistente o stock insuficiente.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return medications.Medication{}, getErr
	}
	return medications.Medication{}, medications.ErrInsufficientQuantity
}

func scanMedication(row rowScanner) (medications.Medication, error) {
	var m medications.Medication
	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Type,
		&m.Quantity,
		&m.Description,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}
	return m, nil
}
