package model

import "time"

// TitleMaxLength matches the width of items.title.
const TitleMaxLength = 200

type ItemStatus string

const (
	ItemStatusAll       ItemStatus = "all"
	ItemStatusCompleted ItemStatus = "completed"
	ItemStatusPending   ItemStatus = "pending"
)

func (s ItemStatus) IsValid() bool {
	return s == ItemStatusAll || s == ItemStatusCompleted || s == ItemStatusPending
}

// Completed returns the completion flag selected by the status, or nil for all items.
func (s ItemStatus) Completed() *bool {
	switch s {
	case ItemStatusCompleted:
		v := true
		return &v
	case ItemStatusPending:
		v := false
		return &v
	default:
		return nil
	}
}

type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemPatch holds the columns an update writes. Nil fields keep their stored value.
type ItemPatch struct {
	Title     *string
	Completed *bool
}

type ItemListParams struct {
	Completed *bool
}
