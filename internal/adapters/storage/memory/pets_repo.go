package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-clinic-api/internal/domain/pets"
)

type petRepo struct {
	mu   sync.RWMutex
	byID map[string]pets.Pet
}

func NewPetRepo() pets.Repository {
	return &petRepo{
		byID: make(map[string]pets.Pet),
	}
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pet already exists")
	}

	// Unicidad (owner, name) bajo el lock; la comparación es exacta.
	for _, existing := range r.byID {
		if existing.OwnerUserID == p.OwnerUserID && existing.Name == p.Name {
			return pets.ErrAlreadyExists
		}
	}

	r.byID[p.ID] = p
	return nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return pets.ErrNotFound
	}

	// Un rename también tiene que respetar la unicidad (owner, name).
	for id, existing := range r.byID {
		if id != p.ID && existing.OwnerUserID == p.OwnerUserID && existing.Name == p.Name {
			return pets.ErrAlreadyExists
		}
	}

	r.byID[p.ID] = p
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return pets.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *petRepo) DeleteAllByOwner(ctx context.Context, ownerUserID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			delete(r.byID, id)
		}
	}
	return nil
}
