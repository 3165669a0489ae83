package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jaekwang-park/todo-items-api/internal/model"
	"github.com/jaekwang-park/todo-items-api/internal/repository"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestMemoryItem_CreateAndGet(t *testing.T) {
	repo := repository.NewMemoryItem()
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Item{Title: "Buy milk", Completed: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected id to be assigned")
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("expected created_at == updated_at and non-zero, got %v / %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != created {
		t.Errorf("expected %+v, got %+v", created, got)
	}
}

func TestMemoryItem_UniqueIDs(t *testing.T) {
	repo := repository.NewMemoryItem()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		it, err := repo.Create(ctx, model.Item{Title: "x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[it.ID] {
			t.Fatalf("duplicate id %s", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestMemoryItem_Update(t *testing.T) {
	tests := []struct {
		name          string
		patch         model.ItemPatch
		wantTitle     string
		wantCompleted bool
	}{
		{"title only", model.ItemPatch{Title: strPtr("New")}, "New", false},
		{"completed only", model.ItemPatch{Completed: boolPtr(true)}, "Old", true},
		{"both", model.ItemPatch{Title: strPtr("New"), Completed: boolPtr(true)}, "New", true},
		{"empty patch", model.ItemPatch{}, "Old", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewMemoryItem()
			ctx := context.Background()
			created, _ := repo.Create(ctx, model.Item{Title: "Old"})

			got, err := repo.Update(ctx, created.ID, tt.patch)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("expected title=%q, got %q", tt.wantTitle, got.Title)
			}
			if got.Completed != tt.wantCompleted {
				t.Errorf("expected completed=%v, got %v", tt.wantCompleted, got.Completed)
			}
			if got.ID != created.ID || !got.CreatedAt.Equal(created.CreatedAt) {
				t.Errorf("id and created_at must not change")
			}
			if got.UpdatedAt.Before(created.UpdatedAt) {
				t.Errorf("updated_at moved backwards")
			}
		})
	}
}

func TestMemoryItem_NotFound(t *testing.T) {
	repo := repository.NewMemoryItem()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetByID: expected sql.ErrNoRows, got %v", err)
	}
	if _, err := repo.Update(ctx, "missing", model.ItemPatch{}); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Update: expected sql.ErrNoRows, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Delete: expected sql.ErrNoRows, got %v", err)
	}
}

func TestMemoryItem_Delete(t *testing.T) {
	repo := repository.NewMemoryItem()
	ctx := context.Background()

	a, _ := repo.Create(ctx, model.Item{Title: "a"})
	b, _ := repo.Create(ctx, model.Item{Title: "b"})

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.GetByID(ctx, a.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected deleted item to be gone, got %v", err)
	}

	items, err := repo.List(ctx, model.ItemListParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != b.ID {
		t.Errorf("expected only %s to remain, got %+v", b.ID, items)
	}
}

func TestMemoryItem_List(t *testing.T) {
	repo := repository.NewMemoryItem()
	ctx := context.Background()

	first, _ := repo.Create(ctx, model.Item{Title: "first"})
	second, _ := repo.Create(ctx, model.Item{Title: "second", Completed: true})
	third, _ := repo.Create(ctx, model.Item{Title: "third"})

	tests := []struct {
		name    string
		params  model.ItemListParams
		wantIDs []string
	}{
		{"all", model.ItemListParams{}, []string{first.ID, second.ID, third.ID}},
		{"completed", model.ItemListParams{Completed: boolPtr(true)}, []string{second.ID}},
		{"pending", model.ItemListParams{Completed: boolPtr(false)}, []string{first.ID, third.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := repo.List(ctx, tt.params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(items) != len(tt.wantIDs) {
				t.Fatalf("expected %d items, got %d", len(tt.wantIDs), len(items))
			}
			for i, id := range tt.wantIDs {
				if items[i].ID != id {
					t.Errorf("items[%d]: expected id=%s, got %s", i, id, items[i].ID)
				}
			}
		})
	}
}

func TestMemoryItem_ListEmptyIsNotNil(t *testing.T) {
	repo := repository.NewMemoryItem()

	items, err := repo.List(context.Background(), model.ItemListParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestMemoryItem_CanceledContext(t *testing.T) {
	repo := repository.NewMemoryItem()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.Create(ctx, model.Item{Title: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
