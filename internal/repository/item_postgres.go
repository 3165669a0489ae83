package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jaekwang-park/todo-items-api/internal/model"
)

const itemColumns = `id, title, completed, created_at, updated_at`

type PostgresItemRepository struct {
	db *sql.DB
}

func NewPostgresItem(db *sql.DB) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

func (r *PostgresItemRepository) Create(ctx context.Context, item model.Item) (model.Item, error) {
	query := `
		INSERT INTO items (title, completed)
		VALUES ($1, $2)
		RETURNING ` + itemColumns

	row := r.db.QueryRowContext(ctx, query, item.Title, item.Completed)
	return scanItem(row)
}

func (r *PostgresItemRepository) GetByID(ctx context.Context, id string) (model.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	return scanItem(row)
}

// Update writes the non-nil patch fields in a single statement.
func (r *PostgresItemRepository) Update(ctx context.Context, id string, patch model.ItemPatch) (model.Item, error) {
	query := `
		UPDATE items
		SET title = COALESCE($1::varchar, title),
		    completed = COALESCE($2::boolean, completed),
		    updated_at = now()
		WHERE id = $3
		RETURNING ` + itemColumns

	row := r.db.QueryRowContext(ctx, query, patch.Title, patch.Completed, id)
	return scanItem(row)
}

func (r *PostgresItemRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *PostgresItemRepository) List(ctx context.Context, params model.ItemListParams) ([]model.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items`

	var args []any
	if params.Completed != nil {
		query += ` WHERE completed = $1`
		args = append(args, *params.Completed)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanItem(row scannable) (model.Item, error) {
	var it model.Item
	err := row.Scan(&it.ID, &it.Title, &it.Completed, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to scan item: %w", err)
	}
	return it, nil
}

// ensure compile-time interface compliance
var _ ItemRepository = (*PostgresItemRepository)(nil)
