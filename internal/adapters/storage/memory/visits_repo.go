package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"vet-clinic-api/internal/domain/visits"
)

type visitRepo struct {
	mu   sync.RWMutex
	byID map[string]visits.Visit
}

func NewVisitRepo() visits.Repository {
	return &visitRepo{
		byID: make(map[string]visits.Visit),
	}
}

func (r *visitRepo) Create(ctx context.Context, v visits.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(v.ID) == "" {
		return errors.New("visit id required")
	}
	if _, exists := r.byID[v.ID]; exists {
		return errors.New("visit already exists")
	}

	// Unicidad del slot (date, time) bajo el lock.
	for _, existing := range r.byID {
		if existing.Date.Equal(v.Date) && existing.Time == v.Time {
			return visits.ErrInvalidVisitDate
		}
	}

	r.byID[v.ID] = v
	return nil
}

func (r *visitRepo) GetByDateTime(ctx context.Context, date time.Time, timeSlot string) (visits.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.byID {
		if v.Date.Equal(date) && v.Time == timeSlot {
			return v, nil
		}
	}
	return visits.Visit{}, errors.New("visit not found")
}

func (r *visitRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]visits.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]visits.Visit, 0)
	for _, v := range r.byID {
		if v.OwnerUserID == ownerUserID {
			out = append(out, v)
		}
	}

	// Orden estable por (date, time) asc
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})

	return out, nil
}

func (r *visitRepo) DeleteAllByOwner(ctx context.Context, ownerUserID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, v := range r.byID {
		if v.OwnerUserID == ownerUserID {
			delete(r.byID, id)
		}
	}
	return nil
}
