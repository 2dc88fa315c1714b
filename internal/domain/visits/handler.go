package visits

import (
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

func RegisterRoutes(r chi.Router, svc *Service) {
	customer := middleware.RequireRoles(authz.RoleCustomer)

	r.With(customer).Post("/visits", createVisitHandler(svc))
	r.With(customer).Get("/users/visits", listVisitsHandler(svc))
}

type createVisitRequest struct {
	PetID       string `json:"pet_id"`
	VetID       string `json:"vet_id"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM
	Description string `json:"description"`
}

type visitResponse struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Approved    bool      `json:"approved"`
	Description string    `json:"description"`
	PetID       string    `json:"pet_id"`
	VetID       string    `json:"vet_id"`
	OwnerUserID string    `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// createVisitHandler godoc
// @Summary Pide un turno para una mascota con un vet
// @Tags visits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} visitResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /visits [post]
func createVisitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createVisitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if errs := validateCreate(req); len(errs) > 0 {
			httpx.WriteError(w, http.StatusBadRequest, "validation failed", errs...)
			return
		}

		date, _ := time.Parse("2006-01-02", req.Date)

		v, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			PetID:       req.PetID,
			VetUserID:   req.VetID,
			Date:        date,
			Time:        req.Time,
			Description: req.Description,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toVisitResponse(v))
	}
}

// listVisitsHandler godoc
// @Summary Turnos del usuario logueado
// @Tags visits
// @Produce json
// @Security BearerAuth
// @Success 200 {array} visitResponse
// @Router /users/visits [get]
func listVisitsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]visitResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVisitResponse(v))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func validateCreate(req createVisitRequest) []string {
	errs := make([]string, 0)

	if strings.TrimSpace(req.PetID) == "" {
		errs = append(errs, "pet_id: required")
	}
	if strings.TrimSpace(req.VetID) == "" {
		errs = append(errs, "vet_id: required")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errs = append(errs, "date: must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		errs = append(errs, "time: must be HH:MM")
	}
	if n := len(strings.TrimSpace(req.Description)); n < 10 || n > 100 {
		errs = append(errs, "description: must be between 10 and 100 characters")
	}

	return errs
}

func toVisitResponse(v Visit) visitResponse {
	return visitResponse{
		ID:          v.ID,
		Date:        v.Date.Format("2006-01-02"),
		Time:        v.Time,
		Approved:    v.Approved,
		Description: v.Description,
		PetID:       v.PetID,
		VetID:       v.VetUserID,
		OwnerUserID: v.OwnerUserID,
		CreatedAt:   v.CreatedAt,
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPetNotFound), errors.Is(err, ErrVetNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidVisitDate), errors.Is(err, ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
