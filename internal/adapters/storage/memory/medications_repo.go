package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"vet-clinic-api/internal/domain/medications"
)

type medicationRepo struct {
	mu   sync.RWMutex
	byID map[string]medications.Medication
	now  func() time.Time
}

func NewMedicationRepo() medications.Repository {
	return &medicationRepo{
		byID: make(map[string]medications.Medication),
		now:  time.Now,
	}
}

func (r *medicationRepo) Create(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("medication id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("medication already exists")
	}

	// Unicidad del nombre bajo el lock.
	for _, existing := range r.byID {
		if existing.Name == m.Name {
			return medications.ErrAlreadyExists
		}
	}

	r.byID[m.ID] = m
	return nil
}

func (r *medicationRepo) Update(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[m.ID]; !exists {
		return medications.ErrNotFound
	}
	for id, existing := range r.byID {
		if id != m.ID && existing.Name == m.Name {
			return medications.ErrAlreadyExists
		}
	}
	r.byID[m.ID] = m
	return nil
}

func (r *medicationRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return medications.Medication{}, medications.ErrNotFound
	}
	return m, nil
}

func (r *medicationRepo) GetByName(ctx context.Context, name string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.byID {
		if m.Name == name {
			return m, nil
		}
	}
	return medications.Medication{}, medications.ErrNotFound
}

func (r *medicationRepo) List(ctx context.Context) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Medication, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}

	// Orden estable por nombre asc
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out, nil
}

func (r *medicationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return medications.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// DecrementQuantity chequea y descuenta bajo el mismo lock, así dos requests
// concurrentes no pueden gastar el mismo stock dos veces.
func (r *medicationRepo) DecrementQuantity(ctx context.Context, id string, amount int) (medications.Medication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return medications.Medication{}, medications.ErrNotFound
	}
	if m.Quantity < amount {
		return medications.Medication{}, medications.ErrInsufficientQuantity
	}

	m.Quantity -= amount
	m.UpdatedAt = r.now()
	r.byID[id] = m
	return m, nil
}
