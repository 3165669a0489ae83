package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jaekwang-park/todo-items-api/internal/model"
	"github.com/jaekwang-park/todo-items-api/internal/repository"
)

const (
	msgRequired = "This field is required."
	msgBlank    = "This field may not be blank."
	msgNullChar = "Null characters are not allowed."
)

// ItemInput carries the writable item fields. A nil field was not submitted.
type ItemInput struct {
	Title     *string
	Completed *bool
}

type ItemService struct {
	repo repository.ItemRepository
}

func NewItemService(repo repository.ItemRepository) *ItemService {
	return &ItemService{repo: repo}
}

func (s *ItemService) Create(ctx context.Context, input ItemInput) (model.Item, error) {
	input, err := normalizeItemInput(input, false)
	if err != nil {
		return model.Item{}, err
	}

	item := model.Item{Title: *input.Title}
	if input.Completed != nil {
		item.Completed = *input.Completed
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to create item: %w", err)
	}
	return created, nil
}

func (s *ItemService) GetByID(ctx context.Context, id string) (model.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, ErrNotFound
		}
		return model.Item{}, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// Replace performs a full update: fields missing from input fall back to
// their defaults.
func (s *ItemService) Replace(ctx context.Context, id string, input ItemInput) (model.Item, error) {
	input, err := normalizeItemInput(input, false)
	if err != nil {
		return model.Item{}, err
	}

	completed := false
	if input.Completed != nil {
		completed = *input.Completed
	}

	return s.update(ctx, id, model.ItemPatch{
		Title:     input.Title,
		Completed: &completed,
	})
}

// Patch performs a partial update: only submitted fields change.
func (s *ItemService) Patch(ctx context.Context, id string, input ItemInput) (model.Item, error) {
	input, err := normalizeItemInput(input, true)
	if err != nil {
		return model.Item{}, err
	}

	return s.update(ctx, id, model.ItemPatch{
		Title:     input.Title,
		Completed: input.Completed,
	})
}

func (s *ItemService) update(ctx context.Context, id string, patch model.ItemPatch) (model.Item, error) {
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, ErrNotFound
		}
		return model.Item{}, fmt.Errorf("failed to update item: %w", err)
	}
	return updated, nil
}

func (s *ItemService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func (s *ItemService) List(ctx context.Context, params model.ItemListParams) ([]model.Item, error) {
	items, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// normalizeItemInput trims the submitted title and checks the field rules.
// Length is measured on the trimmed value.
func normalizeItemInput(input ItemInput, partial bool) (ItemInput, error) {
	verr := NewValidationError()

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		input.Title = &title
	}

	switch {
	case input.Title == nil:
		if !partial {
			verr.Add("title", msgRequired)
		}
	case strings.ContainsRune(*input.Title, '\x00'):
		verr.Add("title", msgNullChar)
	case *input.Title == "":
		verr.Add("title", msgBlank)
	case utf8.RuneCountInString(*input.Title) > model.TitleMaxLength:
		verr.Add("title", fmt.Sprintf("Ensure this field has no more than %d characters.", model.TitleMaxLength))
	}

	if verr.HasErrors() {
		return ItemInput{}, verr
	}
	return input, nil
}
