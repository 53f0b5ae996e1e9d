package api

import (
	"context"
	"errors"
	"net/http"

	"taskapi/internal/domain"
	"taskapi/internal/repository"
)

func (d *Dispatcher) listTasks(ctx context.Context) result {
	tasks, err := d.tasks.List(ctx)
	if err != nil {
		return failure(storeError(MsgFetchTasksFailed, err))
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return success(jsonResponse(http.StatusOK, tasks))
}

// createTask echoes the stored record, including its new id.
func (d *Dispatcher) createTask(ctx context.Context, ev Event) result {
	body, apiErr := parseBody(ev.Body)
	if apiErr != nil {
		return failure(apiErr)
	}
	task, apiErr := newTaskFromBody(body)
	if apiErr != nil {
		return failure(apiErr)
	}

	if err := d.tasks.Create(ctx, task); err != nil {
		return failure(storeError(MsgCreateTaskFailed, err))
	}
	return success(jsonResponse(http.StatusCreated, task))
}

func (d *Dispatcher) updateTask(ctx context.Context, ev Event) result {
	body, apiErr := parseBody(ev.Body)
	if apiErr != nil {
		return failure(apiErr)
	}
	id, fields, apiErr := taskUpdateFromBody(body)
	if apiErr != nil {
		return failure(apiErr)
	}

	err := d.tasks.Update(ctx, id, fields)
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		return failure(notFoundError(MsgTaskNotFound, err))
	case err != nil:
		return failure(storeError(MsgUpdateTaskFailed, err))
	}
	return success(messageResponse(http.StatusOK, "Task updated successfully"))
}

func (d *Dispatcher) deleteTask(ctx context.Context, ev Event) result {
	body, apiErr := parseBody(ev.Body)
	if apiErr != nil {
		return failure(apiErr)
	}
	id, found := taskID(body)
	if !found {
		return failure(validationError(MsgTaskIDRequired))
	}

	err := d.tasks.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		return failure(notFoundError(MsgTaskNotFound, err))
	case err != nil:
		return failure(storeError(MsgDeleteTaskFailed, err))
	}
	return success(messageResponse(http.StatusOK, "Task deleted successfully"))
}
