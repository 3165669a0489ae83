package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaekwang-park/todo-items-api/internal/model"
)

// MemoryItemRepository keeps items in process memory. Items are listed in
// insertion order.
type MemoryItemRepository struct {
	mu    sync.RWMutex
	items map[string]model.Item
	order []string
	now   func() time.Time
}

func NewMemoryItem() *MemoryItemRepository {
	return &MemoryItemRepository{
		items: make(map[string]model.Item),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryItemRepository) Create(ctx context.Context, item model.Item) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now()
	created := model.Item{
		ID:        uuid.NewString(),
		Title:     item.Title,
		Completed: item.Completed,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	r.items[created.ID] = created
	r.order = append(r.order, created.ID)

	return created, nil
}

func (r *MemoryItemRepository) GetByID(ctx context.Context, id string) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return model.Item{}, sql.ErrNoRows
	}
	return item, nil
}

func (r *MemoryItemRepository) Update(ctx context.Context, id string, patch model.ItemPatch) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return model.Item{}, sql.ErrNoRows
	}
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Completed != nil {
		item.Completed = *patch.Completed
	}
	item.UpdatedAt = r.now()
	r.items[id] = item

	return item, nil
}

func (r *MemoryItemRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

func (r *MemoryItemRepository) List(ctx context.Context, params model.ItemListParams) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]model.Item, 0, len(r.order))
	for _, id := range r.order {
		item := r.items[id]
		if params.Completed != nil && item.Completed != *params.Completed {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

var _ ItemRepository = (*MemoryItemRepository)(nil)
