package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-clinic-api/internal/domain/authz"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("pet not found")
	ErrAlreadyExists = errors.New("pet with the same name and owner already exists")
	ErrForbidden     = errors.New("insufficient authorities")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name    string
	Species string
	Breed   string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.Species) == "" || strings.TrimSpace(in.Breed) == "" {
		return Pet{}, ErrInvalidInput
	}

	// Pre-chequeo best-effort de unicidad (nombre, dueño); el repo cierra la
	// carrera con su índice único y devuelve el mismo sentinel.
	existing, err := s.repo.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return Pet{}, err
	}
	for _, p := range existing {
		if p.Name == name {
			return Pet{}, ErrAlreadyExists
		}
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        name,
		Species:     strings.TrimSpace(in.Species),
		Breed:       strings.TrimSpace(in.Breed),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	if strings.TrimSpace(id) == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// Delete borra la mascota y devuelve el snapshot borrado.
// Solo el dueño o un ADMIN pueden borrarla.
func (s *Service) Delete(ctx context.Context, petID, actorID string, actorRoles []authz.Role) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}

	if !authz.IsOwnerOrAdmin(actorID, p.OwnerUserID, actorRoles) {
		return Pet{}, ErrForbidden
	}

	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return Pet{}, err
	}
	return p, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name    *string
	Species *string
	Breed   *string
}

// UpdateProfile aplica un patch sobre la mascota: los campos presentes
// pisan el valor, los ausentes quedan como están.
func (s *Service) UpdateProfile(ctx context.Context, petID string, in UpdateInput) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Species != nil {
		if strings.TrimSpace(*in.Species) == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Species = strings.TrimSpace(*in.Species)
	}
	if in.Breed != nil {
		if strings.TrimSpace(*in.Breed) == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Breed = strings.TrimSpace(*in.Breed)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}
