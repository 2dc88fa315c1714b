package medications

import "time"

// Medication representa un ítem del inventario de la clínica.
// Invariantes: el nombre es único global y la cantidad nunca queda negativa
// (el decremento valida stock antes de mutar).
type Medication struct {
	ID          string
	Name        string
	Type        string
	Quantity    int
	Description string

	CreatedAt time.Time
	UpdatedAt time.Time
}
