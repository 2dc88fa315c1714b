package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vet-clinic-api/internal/domain/authz"
	"vet-clinic-api/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (
			id, username, password_hash, email,
			first_name, last_name, phone, vet_specialty,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		u.ID,
		u.Username,
		u.PasswordHash,
		u.Email,
		u.FirstName,
		u.LastName,
		u.Phone,
		u.VetSpecialty,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case "users_username_key":
				return users.ErrUsernameExists
			case "users_email_key":
				return users.ErrEmailExists
			}
		}
		return err
	}

	for _, role := range u.Roles {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role_name)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, u.ID, string(role)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			first_name = $2,
			last_name = $3,
			phone = $4,
			vet_specialty = $5,
			updated_at = $6
		WHERE id = $1
	`,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Phone,
		u.VetSpecialty,
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.getBy(ctx, "id = $1", strings.TrimSpace(id))
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	return r.getBy(ctx, "username = $1", strings.TrimSpace(username))
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.getBy(ctx, "email = $1", strings.TrimSpace(email))
}

func (r *UsersRepo) getBy(ctx context.Context, where, arg string) (users.User, error) {
	if arg == "" {
		return users.User{}, users.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, username, password_hash, email,
			first_name, last_name, phone, vet_specialty,
			created_at, updated_at
		FROM users
		WHERE `+where, arg)

	var u users.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.VetSpecialty,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}

	roles, err := r.rolesOf(ctx, u.ID)
	if err != nil {
		return users.User{}, err
	}
	u.Roles = roles

	return u, nil
}

func (r *UsersRepo) rolesOf(ctx context.Context, userID string) ([]authz.Role, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT role_name FROM user_roles WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0, 2)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return authz.ParseAll(names), nil
}

func (r *UsersRepo) List(ctx context.Context) ([]users.User, error) {
	// Un solo query con join; los roles se pliegan en Go.
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			u.id, u.username, u.password_hash, u.email,
			u.first_name, u.last_name, u.phone, u.vet_specialty,
			u.created_at, u.updated_at,
			ur.role_name
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		ORDER BY u.created_at ASC, u.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	index := map[string]int{}

	for rows.Next() {
		var u users.User
		var role sql.NullString
		if err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.PasswordHash,
			&u.Email,
			&u.FirstName,
			&u.LastName,
			&u.Phone,
			&u.VetSpecialty,
			&u.CreatedAt,
			&u.UpdatedAt,
			&role,
		); err != nil {
			return nil, err
		}

		i, seen := index[u.ID]
		if !seen {
			out = append(out, u)
			i = len(out) - 1
			index[u.ID] = i
		}
		if role.Valid {
			if parsed, err := authz.Parse(role.String); err == nil {
				out[i].Roles = append(out[i].Roles, parsed)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	// user_roles cae solo por el ON DELETE CASCADE del schema.
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

// EnsureRoles siembra el catálogo de roles en el primer arranque.
// Es idempotente: corre en cada boot y no pisa nada.
func (r *UsersRepo) EnsureRoles(ctx context.Context) error {
	for _, role := range authz.All() {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO roles (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, string(role)); err != nil {
			return err
		}
	}
	return nil
}
