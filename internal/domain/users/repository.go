package users

import "context"

type Repository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error

	// EnsureRoles siembra los cuatro roles en el primer arranque si faltan.
	EnsureRoles(ctx context.Context) error
}
