package pets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-clinic-api/internal/domain/authz"
	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

// UserDirectory valida referencias a usuarios sin importar el módulo users.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) error
}

// RegisterRoutes registra todas las rutas que tocan mascotas, incluidas las
// que cuelgan de /users y /admin (los DTOs de pet viven en este paquete).
// Rutas planas a propósito: varios módulos comparten los prefijos.
func RegisterRoutes(r chi.Router, svc *Service, usersDir UserDirectory) {
	customer := middleware.RequireRoles(authz.RoleCustomer)
	customerOrAdmin := middleware.RequireRoles(authz.RoleCustomer, authz.RoleAdmin)
	admin := middleware.RequireRoles(authz.RoleAdmin)

	r.With(customer).Post("/pets", createPetHandler(svc))
	r.With(customer).Get("/users/pets", listPetsHandler(svc))
	r.With(customer).Delete("/users/pets", deletePetHandler(svc))
	r.With(customerOrAdmin).Patch("/users/pets", updatePetHandler(svc))
	r.With(admin).Get("/admin/users/{userID}/pets", listPetsForUserHandler(svc, usersDir))
}

type createPetRequest struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name    *string `json:"name"`
	Species *string `json:"species"`
	Breed   *string `json:"breed"`
}

type petResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// createPetHandler godoc
// @Summary Registra una mascota para el usuario logueado
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} petResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:    req.Name,
			Species: req.Species,
			Breed:   req.Breed,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler godoc
// @Summary Mascotas del usuario logueado
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} petResponse
// @Router /users/pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// deletePetHandler godoc
// @Summary Borra una mascota (dueño o ADMIN)
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param petId query string true "id de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users/pets [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		petID := strings.TrimSpace(r.URL.Query().Get("petId"))
		if petID == "" {
			httpx.WriteError(w, http.StatusBadRequest, "petId query param required")
			return
		}

		p, err := svc.Delete(r.Context(), petID, claims.UserID, authz.ParseAll(claims.Roles))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Patch de una mascota (ausente = sin cambios)
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param petId query string true "id de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users/pets [patch]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := strings.TrimSpace(r.URL.Query().Get("petId"))
		if petID == "" {
			httpx.WriteError(w, http.StatusBadRequest, "petId query param required")
			return
		}

		var req updatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.UpdateProfile(r.Context(), petID, UpdateInput{
			Name:    req.Name,
			Species: req.Species,
			Breed:   req.Breed,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// listPetsForUserHandler godoc
// @Summary Mascotas de un usuario arbitrario (solo ADMIN)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} petResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /admin/users/{userID}/pets [get]
func listPetsForUserHandler(svc *Service, usersDir UserDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if err := usersDir.Exists(r.Context(), userID); err != nil {
			httpx.WriteError(w, http.StatusNotFound, "user not found")
			return
		}

		items, err := svc.ListByOwner(r.Context(), userID)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		httpx.WriteError(w, http.StatusUnauthorized, err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
