package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-clinic-api/internal/domain/authz"
	"vet-clinic-api/internal/ports/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidAuthorities = errors.New("insufficient authorities")
)

// PetPurger y VisitPurger son interfaces angostas para el cascade de borrado
// de usuario (visits -> pets -> user). Se declaran acá para no importar los
// módulos pets/visits y evitar ciclos.
type PetPurger interface {
	DeleteAllByOwner(ctx context.Context, ownerUserID string) error
}

type VisitPurger interface {
	DeleteAllByOwner(ctx context.Context, ownerUserID string) error
}

type Service struct {
	repo   Repository
	pets   PetPurger
	visits VisitPurger
	tokens auth.TokenIssuer
	now    func() time.Time
}

func NewService(repo Repository, pets PetPurger, visits VisitPurger, tokens auth.TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		pets:   pets,
		visits: visits,
		tokens: tokens,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	Phone     string

	// Authority solo se respeta si el actor es ADMIN; cualquier otro actor
	// (o ninguno) recibe CUSTOMER aunque pida otra cosa.
	Authority string
}

func (s *Service) Register(ctx context.Context, actorRoles []authz.Role, in RegisterInput) (User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" || in.Password == "" || email == "" ||
		strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return User{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return User{}, ErrUsernameExists
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailExists
	}

	role := authz.RoleCustomer
	if authz.HasRole(actorRoles, authz.RoleAdmin) && strings.TrimSpace(in.Authority) != "" {
		parsed, err := authz.Parse(in.Authority)
		if err != nil {
			return User{}, ErrInvalidInput
		}
		role = parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Roles:        []authz.Role{role},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// El chequeo de existencia de arriba es best-effort: el repo cierra la
	// carrera con sus índices únicos y devuelve el mismo sentinel.
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Login valida credenciales y emite el token con identidad + roles.
// Username inexistente y password incorrecta devuelven el mismo error
// para no permitir enumerar usuarios.
func (s *Service) Login(ctx context.Context, username, password string) (string, User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", User{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, auth.Claims{
		UserID:   u.ID,
		Username: u.Username,
		Roles:    authz.Strings(u.Roles),
	})
	if err != nil {
		return "", User{}, err
	}
	return token, u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Exists lo usan otros módulos para validar referencias a usuarios.
func (s *Service) Exists(ctx context.Context, id string) error {
	_, err := s.GetByID(ctx, id)
	return err
}

// RolesOf expone el set de roles de un usuario (lo usa visits para validar
// que el "vet" referenciado realmente tenga rol VET).
func (s *Service) RolesOf(ctx context.Context, id string) ([]authz.Role, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Roles, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// ListVets filtra el listado por rol VET (el filtro vive acá y no en el repo).
func (s *Service) ListVets(ctx context.Context) ([]User, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0)
	for _, u := range all {
		if authz.HasRole(u.Roles, authz.RoleVet) {
			out = append(out, u)
		}
	}
	return out, nil
}

// Delete borra al usuario y todo lo que le pertenece.
// El orden importa: visits primero, después pets, al final el usuario,
// para no dejar referencias colgando.
func (s *Service) Delete(ctx context.Context, id string) (User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if err := s.visits.DeleteAllByOwner(ctx, u.ID); err != nil {
		return User{}, err
	}
	if err := s.pets.DeleteAllByOwner(ctx, u.ID); err != nil {
		return User{}, err
	}
	if err := s.repo.Delete(ctx, u.ID); err != nil {
		return User{}, err
	}
	return u, nil
}

type UpdateProfileInput struct {
	// Punteros para PATCH real: nil = no tocar.
	FirstName *string
	LastName  *string
	Phone     *string
}

// UpdateProfile aplica un patch sobre el usuario target.
// Solo el propio usuario o un ADMIN pueden hacerlo.
func (s *Service) UpdateProfile(ctx context.Context, actorID string, actorRoles []authz.Role, targetID string, in UpdateProfileInput) (User, error) {
	u, err := s.GetByID(ctx, targetID)
	if err != nil {
		return User{}, err
	}

	if !authz.IsOwnerOrAdmin(actorID, u.ID, actorRoles) {
		return User{}, ErrInvalidAuthorities
	}

	if in.FirstName != nil {
		if strings.TrimSpace(*in.FirstName) == "" {
			return User{}, ErrInvalidInput
		}
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		if strings.TrimSpace(*in.LastName) == "" {
			return User{}, ErrInvalidInput
		}
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}

	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}
