package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jaekwang-park/todo-items-api/internal/model"
	"github.com/jaekwang-park/todo-items-api/internal/repository"
)

func newGormRepo(t *testing.T) (*repository.GormItemRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	repo, err := repository.NewGormItem(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to open gorm repository: %v", err)
	}
	return repo, mock
}

func TestGormItem_Create(t *testing.T) {
	repo, mock := newGormRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO "items" ("title","completed","created_at","updated_at") VALUES ($1,$2,$3,$4) RETURNING "id"`)).
		WithArgs("Buy groceries", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testItemID))

	got, err := repo.Create(context.Background(), model.Item{Title: "Buy groceries", Completed: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != testItemID || got.Title != "Buy groceries" || !got.Completed {
		t.Errorf("unexpected item: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Errorf("expected timestamps to be set, got %v %v", got.CreatedAt, got.UpdatedAt)
	}
	expectMet(t, mock)
}

func TestGormItem_GetByID(t *testing.T) {
	repo, mock := newGormRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "items" WHERE id = $1 ORDER BY "items"."id" LIMIT $2`)).
		WithArgs(testItemID, 1).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(testItemID, "Buy groceries", true, testCreated, testUpdated))

	got, err := repo.GetByID(context.Background(), testItemID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != testItemID || got.Title != "Buy groceries" || !got.Completed {
		t.Errorf("unexpected item: %+v", got)
	}
	if !got.CreatedAt.Equal(testCreated) || !got.UpdatedAt.Equal(testUpdated) {
		t.Errorf("unexpected timestamps: %v %v", got.CreatedAt, got.UpdatedAt)
	}
	expectMet(t, mock)
}

func TestGormItem_GetByIDNotFound(t *testing.T) {
	repo, mock := newGormRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "items" WHERE id = \$1`).
		WithArgs(testItemID, 1).
		WillReturnRows(sqlmock.NewRows(itemCols))

	_, err := repo.GetByID(context.Background(), testItemID)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
	expectMet(t, mock)
}

func TestGormItem_Update(t *testing.T) {
	tests := []struct {
		name          string
		patch         model.ItemPatch
		wantSQL       string
		wantArgs      []driver.Value
		rowTitle      string
		rowCompleted  bool
		wantTitle     string
		wantCompleted bool
	}{
		{
			name:          "full update",
			patch:         model.ItemPatch{Title: strPtr("Renamed"), Completed: boolPtr(false)},
			wantSQL:       `UPDATE "items" SET "completed"=$1,"title"=$2,"updated_at"=$3 WHERE id = $4 RETURNING *`,
			wantArgs:      []driver.Value{false, "Renamed", sqlmock.AnyArg(), testItemID},
			rowTitle:      "Renamed",
			wantTitle:     "Renamed",
			wantCompleted: false,
		},
		{
			name:          "completed only",
			patch:         model.ItemPatch{Completed: boolPtr(true)},
			wantSQL:       `UPDATE "items" SET "completed"=$1,"updated_at"=$2 WHERE id = $3 RETURNING *`,
			wantArgs:      []driver.Value{true, sqlmock.AnyArg(), testItemID},
			rowTitle:      "Buy groceries",
			rowCompleted:  true,
			wantTitle:     "Buy groceries",
			wantCompleted: true,
		},
		{
			name:          "empty patch",
			patch:         model.ItemPatch{},
			wantSQL:       `UPDATE "items" SET "updated_at"=$1 WHERE id = $2 RETURNING *`,
			wantArgs:      []driver.Value{sqlmock.AnyArg(), testItemID},
			rowTitle:      "Buy groceries",
			wantTitle:     "Buy groceries",
			wantCompleted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newGormRepo(t)

			mock.ExpectQuery(regexp.QuoteMeta(tt.wantSQL)).
				WithArgs(tt.wantArgs...).
				WillReturnRows(sqlmock.NewRows(itemCols).
					AddRow(testItemID, tt.rowTitle, tt.rowCompleted, testCreated, testUpdated))

			got, err := repo.Update(context.Background(), testItemID, tt.patch)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != testItemID {
				t.Errorf("expected id=%s, got %s", testItemID, got.ID)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("expected title=%q, got %q", tt.wantTitle, got.Title)
			}
			if got.Completed != tt.wantCompleted {
				t.Errorf("expected completed=%v, got %v", tt.wantCompleted, got.Completed)
			}
			if !got.CreatedAt.Equal(testCreated) || !got.UpdatedAt.Equal(testUpdated) {
				t.Errorf("unexpected timestamps: %v %v", got.CreatedAt, got.UpdatedAt)
			}
			expectMet(t, mock)
		})
	}
}

func TestGormItem_UpdateNotFound(t *testing.T) {
	repo, mock := newGormRepo(t)

	mock.ExpectQuery(`UPDATE "items" SET .* WHERE id = \$2 RETURNING \*`).
		WithArgs(sqlmock.AnyArg(), testItemID).
		WillReturnRows(sqlmock.NewRows(itemCols))

	_, err := repo.Update(context.Background(), testItemID, model.ItemPatch{})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
	expectMet(t, mock)
}

func TestGormItem_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"existing", 1, nil},
		{"missing", 0, sql.ErrNoRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newGormRepo(t)

			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "items" WHERE id = $1`)).
				WithArgs(testItemID).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.Delete(context.Background(), testItemID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			expectMet(t, mock)
		})
	}
}

func TestGormItem_List(t *testing.T) {
	t.Run("unfiltered", func(t *testing.T) {
		repo, mock := newGormRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "items" ORDER BY created_at, id`)).
			WillReturnRows(sqlmock.NewRows(itemCols).
				AddRow(testItemID, "first", false, testCreated, testCreated).
				AddRow("0b9f2c1e-7a5d-4b8e-9c3a-1f2e3d4c5b6a", "second", true, testUpdated, testUpdated))

		got, err := repo.List(context.Background(), model.ItemListParams{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[0].Title != "first" || got[1].Title != "second" || !got[1].Completed {
			t.Errorf("unexpected items: %+v", got)
		}
		expectMet(t, mock)
	})

	t.Run("filtered empty", func(t *testing.T) {
		repo, mock := newGormRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "items" WHERE completed = $1 ORDER BY created_at, id`)).
			WithArgs(true).
			WillReturnRows(sqlmock.NewRows(itemCols))

		got, err := repo.List(context.Background(), model.ItemListParams{Completed: boolPtr(true)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", got)
		}
		expectMet(t, mock)
	})
}
