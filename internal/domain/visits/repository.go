package visits

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, v Visit) error
	GetByDateTime(ctx context.Context, date time.Time, timeSlot string) (Visit, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Visit, error)

	// DeleteAllByOwner lo usa el cascade de borrado de usuario.
	DeleteAllByOwner(ctx context.Context, ownerUserID string) error
}
