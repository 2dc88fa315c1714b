package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-clinic-api/internal/domain/users"
)

// Los repos de memoria devuelven los sentinels del dominio directamente,
// igual que los de postgres, para que la capa HTTP mapee sin traducir.

type userRepo struct {
	mu   sync.RWMutex
	byID map[string]users.User
}

func NewUserRepo() users.Repository {
	return &userRepo{
		byID: make(map[string]users.User),
	}
}

func (r *userRepo) Create(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("user already exists")
	}

	// Unicidad de username/email bajo el mismo lock: acá se cierra la carrera
	// que el pre-chequeo del service no cubre.
	for _, existing := range r.byID {
		if existing.Username == u.Username {
			return users.ErrUsernameExists
		}
		if existing.Email == u.Email {
			return users.ErrEmailExists
		}
	}

	r.byID[u.ID] = u
	return nil
}

func (r *userRepo) Update(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[u.ID]; !exists {
		return users.ErrNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (r *userRepo) List(ctx context.Context) ([]users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]users.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return users.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// EnsureRoles es un no-op en memoria: los roles viven dentro de cada User.
func (r *userRepo) EnsureRoles(ctx context.Context) error { return nil }
