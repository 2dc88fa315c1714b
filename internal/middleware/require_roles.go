package middleware

import (
	"net/http"

	"vet-clinic-api/internal/domain/authz"
	"vet-clinic-api/internal/platform/httpx"
)

// RequireRoles corta el request si el actor no trae claims o si su set de
// roles no incluye ninguno de los requeridos.
// Sin token => 401 body vacío. Roles insuficientes => 401 con body de error
// (la API colapsa forbidden en 401, igual que el resto de respuestas de auth).
func RequireRoles(required ...authz.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok {
				httpx.Unauthorized(w)
				return
			}

			if !authz.Allowed(authz.ParseAll(claims.Roles), required...) {
				httpx.WriteError(w, http.StatusUnauthorized, "insufficient authorities")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
