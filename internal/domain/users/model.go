package users

import (
	"time"

	"vet-clinic-api/internal/domain/authz"
)

// User representa una cuenta del sistema (clientes, vets, admins).
// PasswordHash es bcrypt; la contraseña en claro nunca se persiste ni se loguea.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	VetSpecialty string // solo para cuentas con rol VET

	Roles []authz.Role // todo usuario tiene al menos un rol

	CreatedAt time.Time
	UpdatedAt time.Time
}
