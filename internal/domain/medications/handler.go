package medications

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

// RegisterRoutes monta el inventario de medicaciones. Todo el CRUD es para
// staff (ADMIN o VET); el decremento de stock es exclusivo de VET porque es
// la operación de "usé N unidades en una visita".
func RegisterRoutes(r chi.Router, svc *Service) {
	staff := middleware.RequireRoles(authz.RoleAdmin, authz.RoleVet)
	vet := middleware.RequireRoles(authz.RoleVet)

	r.With(staff).Post("/meds", createMedicationHandler(svc))
	r.With(staff).Get("/meds", listMedicationsHandler(svc))
	r.With(staff).Delete("/meds", deleteMedicationHandler(svc))
	r.With(staff).Patch("/meds", updateMedicationHandler(svc))
	r.With(vet).Patch("/meds/{medID}", decrementMedicationHandler(svc))
}

type createMedicationRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
}

type updateMedicationRequest struct {
	// Punteros para distinguir "no vino" de "vino vacío/cero".
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Quantity    *int    `json:"quantity"`
	Description *string `json:"description"`
}

type decrementMedicationRequest struct {
	Quantity int `json:"quantity"`
}

type medicationResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// createMedicationHandler godoc
// @Summary Alta de medicación en el inventario
// @Tags medications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} medicationResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /meds [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if errs := validateCreate(req); len(errs) > 0 {
			httpx.WriteError(w, http.StatusBadRequest, "validation failed", errs...)
			return
		}

		m, err := svc.Create(r.Context(), CreateInput{
			Name:        req.Name,
			Type:        req.Type,
			Quantity:    req.Quantity,
			Description: req.Description,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// listMedicationsHandler godoc
// @Summary Lista el inventario completo
// @Tags medications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} medicationResponse
// @Router /meds [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// deleteMedicationHandler godoc
// @Summary Borra una medicación por id
// @Tags medications
// @Produce json
// @Security BearerAuth
// @Param medId query string true "medication id"
// @Success 200 {object} medicationResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /meds [delete]
func deleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		medID := r.URL.Query().Get("medId")
		if strings.TrimSpace(medID) == "" {
			httpx.WriteError(w, http.StatusBadRequest, "medId query param is required")
			return
		}

		m, err := svc.Delete(r.Context(), medID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// updateMedicationHandler godoc
// @Summary Actualiza campos de una medicación (patch parcial)
// @Tags medications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param medId query string true "medication id"
// @Success 200 {object} medicationResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /meds [patch]
func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		medID := r.URL.Query().Get("medId")
		if strings.TrimSpace(medID) == "" {
			httpx.WriteError(w, http.StatusBadRequest, "medId query param is required")
			return
		}

		var req updateMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		m, err := svc.UpdateProperty(r.Context(), medID, UpdateInput{
			Name:        req.Name,
			Type:        req.Type,
			Quantity:    req.Quantity,
			Description: req.Description,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// decrementMedicationHandler godoc
// @Summary Descuenta stock de una medicación
// @Tags medications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param medId path string true "medication id"
// @Success 200 {object} medicationResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /meds/{medId} [patch]
func decrementMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		medID := chi.URLParam(r, "medID")

		var req decrementMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		m, err := svc.DecrementQuantity(r.Context(), medID, req.Quantity)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

func validateCreate(req createMedicationRequest) []string {
	errs := make([]string, 0)

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name: required")
	}
	if strings.TrimSpace(req.Type) == "" {
		errs = append(errs, "type: required")
	}
	if req.Quantity < 0 {
		errs = append(errs, "quantity: must be zero or positive")
	}

	return errs
}

func toMedicationResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:          m.ID,
		Name:        m.Name,
		Type:        m.Type,
		Quantity:    m.Quantity,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrInsufficientQuantity):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
