package authz

import (
	"errors"
	"strings"
)

var ErrUnknownRole = errors.New("unknown role")

// Role define las autoridades soportadas.
// @Enum MANAGER, CUSTOMER, ADMIN, VET
type Role string

const (
	RoleManager  Role = "MANAGER"
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
	RoleVet      Role = "VET"
)

// All devuelve el set cerrado de roles (se usa para el seed al arrancar).
func All() []Role {
	return []Role{RoleManager, RoleCustomer, RoleAdmin, RoleVet}
}

func Parse(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleManager, RoleCustomer, RoleAdmin, RoleVet:
		return r, nil
	default:
		return "", ErrUnknownRole
	}
}

// ParseAll descarta strings inválidos; si ninguno es válido devuelve vacío
// (y Allowed sobre un set vacío niega siempre).
func ParseAll(ss []string) []Role {
	out := make([]Role, 0, len(ss))
	for _, s := range ss {
		r, err := Parse(s)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

func HasRole(actor []Role, want Role) bool {
	for _, r := range actor {
		if r == want {
			return true
		}
	}
	return false
}

// Allowed decide si el actor puede ejecutar una operación que exige
// alguno de los roles requeridos. Cierra por defecto: actor vacío o
// requeridos vacíos => deny.
func Allowed(actor []Role, required ...Role) bool {
	if len(actor) == 0 || len(required) == 0 {
		return false
	}
	for _, want := range required {
		if HasRole(actor, want) {
			return true
		}
	}
	return false
}

// IsOwnerOrAdmin: el actor puede tocar el recurso si es su dueño o si es ADMIN.
func IsOwnerOrAdmin(actorID, resourceOwnerID string, actor []Role) bool {
	if strings.TrimSpace(actorID) == "" {
		return false
	}
	if actorID == resourceOwnerID {
		return true
	}
	return HasRole(actor, RoleAdmin)
}

// Strings convierte el set de roles a strings para claims/respuestas.
func Strings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
