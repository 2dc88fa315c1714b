package pets

import "time"

// Pet representa una mascota registrada por un cliente de la clínica.
// Invariante: un mismo dueño no puede tener dos mascotas con el mismo nombre
// (match exacto, case-sensitive).
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species string
	Breed   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
