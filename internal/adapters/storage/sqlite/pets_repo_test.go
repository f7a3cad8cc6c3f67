package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-marketplace/internal/domain/pets"
)

func TestPetsRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	repo := NewPetsRepo(db)
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rex := pets.Pet{
		ID: "p1", OwnerUserID: "user-1", Name: "Rex", Species: pets.SpeciesDog, Sex: pets.SexMale,
		Age: 3, WeightKg: 21.5, Photos: []string{"http://x/1.jpg"}, Version: 1, CreatedAt: t0, UpdatedAt: t0,
	}
	milo := pets.Pet{
		ID: "p2", OwnerUserID: "user-1", Name: "Milo", Species: pets.SpeciesCat, Sex: pets.SexUnknown,
		Version: 1, CreatedAt: t0.Add(time.Minute), UpdatedAt: t0.Add(time.Minute),
	}
	other := pets.Pet{ID: "p3", OwnerUserID: "user-2", Name: "Kiwi", Species: pets.SpeciesBird, Version: 1, CreatedAt: t0, UpdatedAt: t0}

	for _, p := range []pets.Pet{rex, milo, other} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create %s: %v", p.ID, err)
		}
	}

	got, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Rex" || got.WeightKg != 21.5 || len(got.Photos) != 1 || !got.CreatedAt.Equal(t0) {
		t.Fatalf("unexpected pet %#v", got)
	}

	list, err := repo.ListByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 2 || list[0].ID != "p2" || list[1].ID != "p1" {
		t.Fatalf("expected [p2 p1] newest first, got %#v", list)
	}

	rex.Name = "Rex II"
	rex.Version = 2
	rex.Photos = append(rex.Photos, "http://x/2.jpg")
	if err := repo.Update(ctx, rex); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.GetByID(ctx, "p1")
	if got.Name != "Rex II" || got.Version != 2 || len(got.Photos) != 2 {
		t.Fatalf("update not persisted: %#v", got)
	}

	if err := repo.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "p1"); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "p1"); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
	if err := repo.Update(ctx, rex); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating deleted pet, got %v", err)
	}
}
