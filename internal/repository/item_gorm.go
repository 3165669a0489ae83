package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jinzhu/copier"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jaekwang-park/todo-items-api/internal/model"
)

// itemRecord is the GORM mapping of the items table.
type itemRecord struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string    `gorm:"type:varchar(200);not null"`
	Completed bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (itemRecord) TableName() string {
	return "items"
}

type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItem builds a GORM session on top of an already opened pool.
// Every write is a single statement, so no implicit transaction is opened.
func NewGormItem(db *sql.DB, logger *slog.Logger) (*GormItemRepository, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger:                 NewGormLogger(logger),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}
	return &GormItemRepository{db: gdb}, nil
}

func (r *GormItemRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&itemRecord{}); err != nil {
		return fmt.Errorf("failed to migrate items: %w", err)
	}
	return nil
}

func (r *GormItemRepository) Create(ctx context.Context, item model.Item) (model.Item, error) {
	rec := itemRecord{
		Title:     item.Title,
		Completed: item.Completed,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return model.Item{}, fmt.Errorf("failed to insert item: %w", err)
	}
	return recordToItem(rec)
}

func (r *GormItemRepository) GetByID(ctx context.Context, id string) (model.Item, error) {
	var rec itemRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return model.Item{}, fmt.Errorf("failed to get item: %w", notFound(err))
	}
	return recordToItem(rec)
}

func (r *GormItemRepository) Update(ctx context.Context, id string, patch model.ItemPatch) (model.Item, error) {
	updates := map[string]any{"updated_at": time.Now()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}

	var rec itemRecord
	res := r.db.WithContext(ctx).
		Model(&rec).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return model.Item{}, fmt.Errorf("failed to update item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.Item{}, fmt.Errorf("failed to update item: %w", sql.ErrNoRows)
	}
	return recordToItem(rec)
}

func (r *GormItemRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&itemRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *GormItemRepository) List(ctx context.Context, params model.ItemListParams) ([]model.Item, error) {
	q := r.db.WithContext(ctx).Order("created_at, id")
	if params.Completed != nil {
		q = q.Where("completed = ?", *params.Completed)
	}

	var recs []itemRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items := make([]model.Item, 0, len(recs))
	for _, rec := range recs {
		item, err := recordToItem(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func recordToItem(rec itemRecord) (model.Item, error) {
	var item model.Item
	if err := copier.Copy(&item, &rec); err != nil {
		return model.Item{}, fmt.Errorf("failed to copy item record: %w", err)
	}
	return item, nil
}

// notFound converts GORM's missing-row error into the sql.ErrNoRows contract.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sql.ErrNoRows
	}
	return err
}

var _ ItemRepository = (*GormItemRepository)(nil)
