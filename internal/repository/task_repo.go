package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/oops"

	"taskapi/internal/docstore"
	"taskapi/internal/domain"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskRepository struct {
	coll docstore.Collection
	now  func() time.Time
}

func NewTaskRepository(db docstore.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(docstore.TasksCollection), now: time.Now}
}

func (r *TaskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	docs, err := r.coll.FindAll(ctx, docstore.Filter{})
	if err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").With("operation", "list tasks").Wrap(err)
	}

	res := make([]*domain.Task, 0, len(docs))
	for _, doc := range docs {
		res = append(res, taskFromDocument(doc))
	}
	return res, nil
}

// Create inserts t and fills in its ID, and CreatedAt when unset.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	if t.CreatedAt == nil {
		now := r.now().UTC().Truncate(time.Millisecond)
		t.CreatedAt = &now
	}

	id, err := r.coll.InsertOne(ctx, taskToDocument(t))
	if err != nil {
		return oops.Code("TASK_CREATE_FAILED").
			With("operation", "insert task").
			With("title", t.Title).
			Wrap(err)
	}
	t.ID = id
	return nil
}

// Update merges fields into the task with the given id. Identifier keys in
// fields are ignored.
func (r *TaskRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	partial := make(docstore.Document, len(fields))
	for k, v := range fields {
		if k == docstore.IDField || k == domain.FieldID {
			continue
		}
		partial[k] = v
	}

	matched, err := r.coll.UpdateOne(ctx, docstore.IDFilter(id), partial)
	if err != nil {
		return oops.Code("TASK_UPDATE_FAILED").
			With("operation", "update task").
			With("id", id).
			Wrap(err)
	}
	if matched == 0 {
		return oops.Code("TASK_NOT_FOUND").With("id", id).Wrap(ErrTaskNotFound)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	deleted, err := r.coll.DeleteOne(ctx, docstore.IDFilter(id))
	if err != nil {
		return oops.Code("TASK_DELETE_FAILED").
			With("operation", "delete task").
			With("id", id).
			Wrap(err)
	}
	if deleted == 0 {
		return oops.Code("TASK_NOT_FOUND").With("id", id).Wrap(ErrTaskNotFound)
	}
	return nil
}

func taskToDocument(t *domain.Task) docstore.Document {
	doc := make(docstore.Document, len(t.Extra)+4)
	for k, v := range t.Extra {
		if k == docstore.IDField || k == domain.FieldID {
			continue
		}
		doc[k] = v
	}
	doc[domain.FieldTitle] = t.Title
	doc[domain.FieldDescription] = t.Description
	if t.DueDate != "" {
		doc[domain.FieldDueDate] = t.DueDate
	}
	if t.CreatedAt != nil {
		doc[domain.FieldCreatedAt] = *t.CreatedAt
	}
	return doc
}

func taskFromDocument(doc docstore.Document) *domain.Task {
	t := &domain.Task{Extra: map[string]any{}}
	for k, v := range doc {
		switch k {
		case docstore.IDField:
			t.ID = asString(v)
		case domain.FieldID:
			// superseded by the store identifier
		case domain.FieldTitle:
			t.Title = asString(v)
		case domain.FieldDescription:
			t.Description = asString(v)
		case domain.FieldDueDate:
			t.DueDate = asString(v)
		case domain.FieldCreatedAt:
			if at, ok := asTime(v); ok {
				t.CreatedAt = &at
			}
		default:
			t.Extra[k] = v
		}
	}
	return t
}

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func asTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), true
	case string:
		at, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return time.Time{}, false
		}
		return at.UTC(), true
	default:
		return time.Time{}, false
	}
}
