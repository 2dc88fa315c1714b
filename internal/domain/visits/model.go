package visits

import "time"

// Visit representa un turno pedido por un cliente para una mascota con un vet.
// Invariantes: el par (date, time) es único en todo el sistema y la fecha no
// puede ser anterior al día de creación. Approved arranca en false.
type Visit struct {
	ID string

	Date time.Time // solo fecha (medianoche UTC)
	Time string    // slot HH:MM

	Approved    bool
	Description string

	PetID       string
	VetUserID   string
	OwnerUserID string

	CreatedAt time.Time
}
