package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-clinic-api/internal/domain/pets"
)

func seedPet(t *testing.T, repo pets.Repository, id, owner, name string) pets.Pet {
	t.Helper()

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	p := pets.Pet{
		ID:          id,
		OwnerUserID: owner,
		Name:        name,
		Species:     "dog",
		Breed:       "mixed",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Create %s error: %v", name, err)
	}
	return p
}

func TestPetRepo_Create_DuplicateOwnerName(t *testing.T) {
	repo := NewPetRepo()

	seedPet(t, repo, "p1", "owner-1", "Firulais")

	err := repo.Create(context.Background(), pets.Pet{
		ID: "p2", OwnerUserID: "owner-1", Name: "Firulais",
	})
	if !errors.Is(err, pets.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// Otro dueño sí puede usar el mismo nombre.
	if err := repo.Create(context.Background(), pets.Pet{
		ID: "p3", OwnerUserID: "owner-2", Name: "Firulais",
	}); err != nil {
		t.Fatalf("expected no error for different owner, got %v", err)
	}
}

func TestPetRepo_Update_RenameKeepsOwnerNameUnique(t *testing.T) {
	repo := NewPetRepo()

	seedPet(t, repo, "p1", "owner-1", "Firulais")
	rocky := seedPet(t, repo, "p2", "owner-1", "Rocky")

	// Renombrar Rocky al nombre de un hermano tiene que fallar.
	rocky.Name = "Firulais"
	if err := repo.Update(context.Background(), rocky); !errors.Is(err, pets.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on duplicate rename, got %v", err)
	}

	// El rechazo no toca el registro.
	got, err := repo.GetByID(context.Background(), "p2")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Name != "Rocky" {
		t.Fatalf("expected name unchanged at Rocky, got %q", got.Name)
	}

	// Un rename a nombre libre sigue funcionando, incluido el update sobre
	// sí mismo sin cambiar el nombre.
	rocky.Name = "Rocky II"
	if err := repo.Update(context.Background(), rocky); err != nil {
		t.Fatalf("expected rename to free name to work, got %v", err)
	}
	rocky.Breed = "labrador"
	if err := repo.Update(context.Background(), rocky); err != nil {
		t.Fatalf("expected same-name self update to work, got %v", err)
	}
}
