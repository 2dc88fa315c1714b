package medications

import "context"

type Repository interface {
	Create(ctx context.Context, m Medication) error
	Update(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, id string) (Medication, error)
	GetByName(ctx context.Context, name string) (Medication, error)
	List(ctx context.Context) ([]Medication, error)
	Delete(ctx context.Context, id string) error

	// DecrementQuantity descuenta stock de forma atómica (UPDATE condicional
	// en postgres, mutex en memoria) para no perder updates concurrentes.
	DecrementQuantity(ctx context.Context, id string, amount int) (Medication, error)
}
