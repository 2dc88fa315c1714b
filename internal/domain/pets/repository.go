package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
	Delete(ctx context.Context, id string) error

	// DeleteAllByOwner lo usa el cascade de borrado de usuario.
	DeleteAllByOwner(ctx context.Context, ownerUserID string) error
}
