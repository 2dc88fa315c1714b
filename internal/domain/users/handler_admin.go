package users

import (
	"net/http"
	"strings"

	"vet-clinic-api/internal/domain/authz"
	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

// RegisterAdminRoutes registra la administración de usuarios (solo ADMIN).
// Las rutas van planas (sin Route/Mount) porque pets cuelga
// /admin/users/{userID}/pets sobre el mismo prefijo.
func RegisterAdminRoutes(r chi.Router, svc *Service) {
	admin := middleware.RequireRoles(authz.RoleAdmin)

	r.With(admin).Get("/admin/users", listUsersHandler(svc))
	r.With(admin).Delete("/admin/users", deleteUserHandler(svc))
	r.With(admin).Get("/admin/users/{userID}", getUserHandler(svc))
}

// listUsersHandler godoc
// @Summary Lista todos los usuarios
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} userInfoResponse
// @Router /admin/users [get]
func listUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.List(r.Context())
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]userInfoResponse, 0, len(all))
		for _, u := range all {
			out = append(out, toUserInfoResponse(u))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getUserHandler godoc
// @Summary Info de un usuario por id
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} userInfoResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /admin/users/{userID} [get]
func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.GetByID(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toUserInfoResponse(u))
	}
}

// deleteUserHandler godoc
// @Summary Borra un usuario con cascade (visits, pets, user)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userId query string true "id del usuario a borrar"
// @Success 200 {object} userInfoResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /admin/users [delete]
func deleteUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.URL.Query().Get("userId"))
		if userID == "" {
			httpx.WriteError(w, http.StatusBadRequest, "userId query param required")
			return
		}

		u, err := svc.Delete(r.Context(), userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toUserInfoResponse(u))
	}
}
