package domain

import (
	"encoding/json"
	"time"
)

// TitleMaxLength is the maximum title length in characters.
const TitleMaxLength = 100

// DueDateLayout is the accepted due_date format.
const DueDateLayout = time.DateOnly

// Task is a stored task record. Fields the service does not know about are
// kept in Extra and written back unchanged.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     string
	CreatedAt   *time.Time
	Extra       map[string]any
}

// Task JSON keys.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDueDate     = "due_date"
	FieldCreatedAt   = "created_at"
)

// MarshalJSON flattens Extra next to the known fields. Known fields win.
func (t Task) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Extra)+5)
	for k, v := range t.Extra {
		out[k] = v
	}
	out[FieldID] = t.ID
	out[FieldTitle] = t.Title
	out[FieldDescription] = t.Description
	if t.DueDate != "" {
		out[FieldDueDate] = t.DueDate
	}
	if t.CreatedAt != nil {
		out[FieldCreatedAt] = t.CreatedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(out)
}
