package repository

import (
	"context"

	"github.com/jaekwang-park/todo-items-api/internal/model"
)

// ItemRepository persists items. Implementations report a missing row as
// sql.ErrNoRows (possibly wrapped) from GetByID, Update and Delete.
type ItemRepository interface {
	Create(ctx context.Context, item model.Item) (model.Item, error)
	GetByID(ctx context.Context, id string) (model.Item, error)
	Update(ctx context.Context, id string, patch model.ItemPatch) (model.Item, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params model.ItemListParams) ([]model.Item, error)
}
