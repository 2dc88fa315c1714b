package visits

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-clinic-api/internal/domain/authz"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrPetNotFound  = errors.New("pet not found")
	ErrVetNotFound  = errors.New("vet not found")

	// ErrInvalidVisitDate cubre dos condiciones distintas con el mismo kind:
	// fecha en el pasado o slot (date, time) ya tomado.
	ErrInvalidVisitDate = errors.New("visit date invalid or slot already taken")
)

// PetDirectory y VetDirectory son interfaces angostas sobre los módulos
// pets/users; se declaran acá para no importarlos y evitar ciclos.
type PetDirectory interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}

type VetDirectory interface {
	RolesOf(ctx context.Context, userID string) ([]authz.Role, error)
}

type Service struct {
	repo Repository
	pets PetDirectory
	vets VetDirectory
	now  func() time.Time
}

func NewService(repo Repository, pets PetDirectory, vets VetDirectory) *Service {
	return &Service{
		repo: repo,
		pets: pets,
		vets: vets,
		now:  time.Now,
	}
}

type CreateInput struct {
	PetID       string
	VetUserID   string
	Date        time.Time
	Time        string
	Description string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Visit, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Visit{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.PetID) == "" || strings.TrimSpace(in.VetUserID) == "" ||
		in.Date.IsZero() || strings.TrimSpace(in.Time) == "" || strings.TrimSpace(in.Description) == "" {
		return Visit{}, ErrInvalidInput
	}

	if _, err := s.pets.OwnerOf(ctx, in.PetID); err != nil {
		return Visit{}, ErrPetNotFound
	}

	// El vet tiene que existir y además tener rol VET.
	vetRoles, err := s.vets.RolesOf(ctx, in.VetUserID)
	if err != nil || !authz.HasRole(vetRoles, authz.RoleVet) {
		return Visit{}, ErrVetNotFound
	}

	date := truncateToDate(in.Date)
	if date.Before(truncateToDate(s.now())) {
		return Visit{}, ErrInvalidVisitDate
	}

	// Pre-chequeo best-effort del slot; el repo cierra la carrera con su
	// índice único sobre (date, time) y devuelve el mismo sentinel.
	if _, err := s.repo.GetByDateTime(ctx, date, in.Time); err == nil {
		return Visit{}, ErrInvalidVisitDate
	}

	v := Visit{
		ID:          uuid.NewString(),
		Date:        date,
		Time:        in.Time,
		Approved:    false,
		Description: strings.TrimSpace(in.Description),
		PetID:       in.PetID,
		VetUserID:   in.VetUserID,
		OwnerUserID: ownerUserID,
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return Visit{}, err
	}
	return v, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Visit, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
