package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"vet-clinic-api/internal/domain/authz"
	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Registro y login son abiertos. El register igual lee claims si vienen:
	// un ADMIN autenticado puede pedir un rol arbitrario para la cuenta nueva.
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", registerHandler(svc))
		ar.Post("/login", loginHandler(svc))
	})

	customerOrAdmin := middleware.RequireRoles(authz.RoleCustomer, authz.RoleAdmin)
	r.With(customerOrAdmin).Get("/users", getLoggedUserHandler(svc))
	r.With(customerOrAdmin).Patch("/users", updateUserHandler(svc))
	r.With(customerOrAdmin).Get("/users/vets", listVetsHandler(svc))
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Authority string `json:"authority"`
}

type registerResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type userInfoResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone,omitempty"`
	VetSpecialty string `json:"vet_specialty,omitempty"`
	Role         string `json:"role"`
}

type updateUserRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// registerHandler godoc
// @Summary Registra una cuenta nueva
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} registerResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /auth/register [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if errs := validateRegister(req); len(errs) > 0 {
			httpx.WriteError(w, http.StatusBadRequest, "validation failed", errs...)
			return
		}

		// Roles del actor (si hay sesión); para anónimos queda vacío y el
		// service ignora cualquier authority pedida.
		var actorRoles []authz.Role
		if claims, ok := middleware.GetClaims(r.Context()); ok {
			actorRoles = authz.ParseAll(claims.Roles)
		}

		u, err := svc.Register(r.Context(), actorRoles, RegisterInput{
			Username:  req.Username,
			Password:  req.Password,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Authority: req.Authority,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, registerResponse{
			Username: u.Username,
			Email:    u.Email,
		})
	}
}

// loginHandler godoc
// @Summary Autentica y devuelve un token bearer
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} loginResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /auth/login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		token, u, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, loginResponse{
			Token: token,
			Role:  firstRole(u.Roles),
		})
	}
}

// getLoggedUserHandler godoc
// @Summary Info del usuario logueado
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} userInfoResponse
// @Router /users [get]
func getLoggedUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toUserInfoResponse(u))
	}
}

// updateUserHandler godoc
// @Summary Patch de perfil (solo el propio usuario o un ADMIN)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId query string true "id del usuario target"
// @Success 200 {object} userInfoResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users [patch]
func updateUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		targetID := strings.TrimSpace(r.URL.Query().Get("userId"))
		if targetID == "" {
			httpx.WriteError(w, http.StatusBadRequest, "userId query param required")
			return
		}

		var req updateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if errs := validateUpdate(req); len(errs) > 0 {
			httpx.WriteError(w, http.StatusBadRequest, "validation failed", errs...)
			return
		}

		u, err := svc.UpdateProfile(r.Context(), claims.UserID, authz.ParseAll(claims.Roles), targetID, UpdateProfileInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toUserInfoResponse(u))
	}
}

// listVetsHandler godoc
// @Summary Lista los usuarios con rol VET
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} userInfoResponse
// @Router /users/vets [get]
func listVetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vets, err := svc.ListVets(r.Context())
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]userInfoResponse, 0, len(vets))
		for _, u := range vets {
			out = append(out, toUserInfoResponse(u))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func toUserInfoResponse(u User) userInfoResponse {
	return userInfoResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		VetSpecialty: u.VetSpecialty,
		Role:         firstRole(u.Roles),
	}
}

func firstRole(roles []authz.Role) string {
	if len(roles) == 0 {
		return ""
	}
	return string(roles[0])
}

// writeDomainError traduce los sentinels del módulo al body uniforme.
// Forbidden colapsa en 401, igual que el resto de las respuestas de auth.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUsernameExists), errors.Is(err, ErrEmailExists):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidAuthorities):
		httpx.WriteError(w, http.StatusUnauthorized, err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func validateRegister(req registerRequest) []string {
	errs := make([]string, 0)

	if n := len(strings.TrimSpace(req.Username)); n < 3 || n > 20 {
		errs = append(errs, "username: must be between 3 and 20 characters")
	}
	if n := len(req.Password); n < 5 || n > 80 {
		errs = append(errs, "password: must be between 5 and 80 characters")
	}
	email := strings.TrimSpace(req.Email)
	if n := len(email); n < 5 || n > 50 || !strings.Contains(email, "@") {
		errs = append(errs, "email: must be a valid email address")
	}
	errs = append(errs, validateName("first_name", req.FirstName)...)
	errs = append(errs, validateName("last_name", req.LastName)...)
	if p := strings.TrimSpace(req.Phone); p != "" {
		if n := len(p); n < 8 || n > 15 {
			errs = append(errs, "phone: must be between 8 and 15 characters")
		}
	}

	return errs
}

func validateUpdate(req updateUserRequest) []string {
	errs := make([]string, 0)

	if req.FirstName != nil {
		errs = append(errs, validateName("first_name", *req.FirstName)...)
	}
	if req.LastName != nil {
		errs = append(errs, validateName("last_name", *req.LastName)...)
	}
	if req.Phone != nil {
		if p := strings.TrimSpace(*req.Phone); p != "" {
			if n := len(p); n < 8 || n > 15 {
				errs = append(errs, "phone: must be between 8 and 15 characters")
			}
		}
	}

	return errs
}

func validateName(field, value string) []string {
	if n := len(strings.TrimSpace(value)); n < 3 || n > 15 {
		return []string{fmt.Sprintf("%s: must be between 3 and 15 characters", field)}
	}
	return nil
}
