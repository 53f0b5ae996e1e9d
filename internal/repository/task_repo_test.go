package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/internal/docstore"
	"taskapi/internal/domain"
)

func TestTaskRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(docstore.NewMemory())
	fixed := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	task := &domain.Task{
		Title:       "write report",
		Description: "quarterly",
		DueDate:     "2026-05-10",
		Extra:       map[string]any{"priority": "high", "id": "client-id"},
	}
	require.NoError(t, repo.Create(ctx, task))
	require.NotEmpty(t, task.ID)
	require.NotNil(t, task.CreatedAt)
	assert.Equal(t, fixed, *task.CreatedAt)

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "write report", got.Title)
	assert.Equal(t, "quarterly", got.Description)
	assert.Equal(t, "2026-05-10", got.DueDate)
	assert.Equal(t, fixed, *got.CreatedAt)
	assert.Equal(t, map[string]any{"priority": "high"}, got.Extra)
}

func TestTaskRepository_ListEmpty(t *testing.T) {
	tasks, err := NewTaskRepository(docstore.NewMemory()).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(docstore.NewMemory())

	task := &domain.Task{Title: "a", Description: "b", Extra: map[string]any{"owner": "x"}}
	require.NoError(t, repo.Create(ctx, task))

	t.Run("partial merge changes only supplied fields", func(t *testing.T) {
		err := repo.Update(ctx, task.ID, map[string]any{"title": "new", "_id": "other", "id": "other"})
		require.NoError(t, err)

		tasks, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, task.ID, tasks[0].ID)
		assert.Equal(t, "new", tasks[0].Title)
		assert.Equal(t, "b", tasks[0].Description)
		assert.Equal(t, "x", tasks[0].Extra["owner"])
	})

	t.Run("empty merge on existing task", func(t *testing.T) {
		assert.NoError(t, repo.Update(ctx, task.ID, map[string]any{}))
	})

	t.Run("unknown id", func(t *testing.T) {
		err := repo.Update(ctx, "missing", map[string]any{"title": "x"})
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(docstore.NewMemory())

	task := &domain.Task{Title: "a", Description: "b"}
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, repo.Delete(ctx, task.ID))
	assert.ErrorIs(t, repo.Delete(ctx, task.ID), ErrTaskNotFound)

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskRepository_StoreErrors(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(brokenDB{})

	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, errBroken)

	err = repo.Create(ctx, &domain.Task{Title: "a", Description: "b"})
	assert.ErrorIs(t, err, errBroken)

	err = repo.Update(ctx, "id", map[string]any{"title": "a"})
	assert.ErrorIs(t, err, errBroken)
	assert.NotErrorIs(t, err, ErrTaskNotFound)

	err = repo.Delete(ctx, "id")
	assert.ErrorIs(t, err, errBroken)
}

func TestTaskFromDocument(t *testing.T) {
	task := taskFromDocument(docstore.Document{
		"_id":         "abc",
		"title":       42,
		"description": "d",
		"created_at":  "2026-01-02T03:04:05.678Z",
		"tags":        []any{"x"},
	})

	assert.Equal(t, "abc", task.ID)
	assert.Equal(t, "42", task.Title)
	require.NotNil(t, task.CreatedAt)
	assert.Equal(t, 678*time.Millisecond, time.Duration(task.CreatedAt.Nanosecond()))
	assert.Equal(t, map[string]any{"tags": []any{"x"}}, task.Extra)
}
