package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("medication not found")
	ErrAlreadyExists        = errors.New("medication with the same name already exists")
	ErrInsufficientQuantity = errors.New("insufficient medication quantity")
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
	Name        string
	Type        string
	Quantity    int
	Description string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Medication, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.Type) == "" || in.Quantity < 0 {
		return Medication{}, ErrInvalidInput
	}

	// Pre-chequeo best-effort; el repo cierra la carrera con su índice único.
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return Medication{}, ErrAlreadyExists
	}

	now := s.now()
	m := Medication{
		ID:          uuid.NewString(),
		Name:        name,
		Type:        strings.TrimSpace(in.Type),
		Quantity:    in.Quantity,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]Medication, error) {
	return s.repo.List(ctx)
}

// Delete borra la medicación y devuelve el snapshot borrado.
func (s *Service) Delete(ctx context.Context, id string) (Medication, error) {
	m, err := s.getByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}

	if err := s.repo.Delete(ctx, m.ID); err != nil {
		return Medication{}, err
	}
	return m, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name        *string
	Type        *string
	Quantity    *int
	Description *string
}

// UpdateProperty aplica un patch directo, cantidad incluida. Setear cantidad
// acá es un set (no un delta), así que no pasa por el chequeo de stock del
// decremento; solo se exige que no quede negativa.
func (s *Service) UpdateProperty(ctx context.Context, id string, in UpdateInput) (Medication, error) {
	m, err := s.getByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		if strings.TrimSpace(*in.Type) == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Type = strings.TrimSpace(*in.Type)
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return Medication{}, ErrInvalidInput
		}
		m.Quantity = *in.Quantity
	}
	if in.Description != nil {
		m.Description = strings.TrimSpace(*in.Description)
	}

	m.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// DecrementQuantity descuenta stock. Falla con ErrInsufficientQuantity si
// amount supera la cantidad actual; en ese caso el stock queda intacto.
func (s *Service) DecrementQuantity(ctx context.Context, id string, amount int) (Medication, error) {
	if amount <= 0 {
		return Medication{}, ErrInvalidInput
	}

	return s.repo.DecrementQuantity(ctx, id, amount)
}

func (s *Service) getByID(ctx context.Context, id string) (Medication, error) {
	if strings.TrimSpace(id) == "" {
		return Medication{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}
