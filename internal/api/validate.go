package api

import (
	"strings"
	"time"
	"unicode/utf8"

	"taskapi/internal/docstore"
	"taskapi/internal/domain"
)

// newTaskFromBody validates a create request. Checks run in a fixed order
// and the first failure is returned.
func newTaskFromBody(body map[string]any) (*domain.Task, *Error) {
	title, _ := body[domain.FieldTitle].(string)
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationError(MsgTitleRequired)
	}
	if utf8.RuneCountInString(title) > domain.TitleMaxLength {
		return nil, validationError(MsgTitleTooLong)
	}

	description, _ := body[domain.FieldDescription].(string)
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, validationError(MsgDescriptionRequired)
	}

	dueDate, apiErr := dueDateFrom(body)
	if apiErr != nil {
		return nil, apiErr
	}

	task := &domain.Task{
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Extra:       map[string]any{},
	}
	for k, v := range body {
		switch k {
		case domain.FieldID, docstore.IDField, domain.FieldTitle, domain.FieldDescription,
			domain.FieldDueDate, domain.FieldCreatedAt:
		default:
			task.Extra[k] = v
		}
	}
	return task, nil
}

// taskUpdateFromBody validates an update request and returns the target id
// and the fields to merge.
func taskUpdateFromBody(body map[string]any) (string, map[string]any, *Error) {
	id, found := taskID(body)
	if !found {
		return "", nil, validationError(MsgTaskIDRequired)
	}

	fields := make(map[string]any, len(body))
	for k, v := range body {
		if k != domain.FieldID && k != docstore.IDField {
			fields[k] = v
		}
	}

	if v, present := body[domain.FieldTitle]; present {
		title, _ := v.(string)
		title = strings.TrimSpace(title)
		if title == "" {
			return "", nil, validationError(MsgTitleEmpty)
		}
		if utf8.RuneCountInString(title) > domain.TitleMaxLength {
			return "", nil, validationError(MsgTitleTooLong)
		}
		fields[domain.FieldTitle] = title
	}

	if v, present := body[domain.FieldDescription]; present {
		description, _ := v.(string)
		description = strings.TrimSpace(description)
		if description == "" {
			return "", nil, validationError(MsgDescriptionEmpty)
		}
		fields[domain.FieldDescription] = description
	}

	if _, present := body[domain.FieldDueDate]; present {
		dueDate, apiErr := dueDateFrom(body)
		if apiErr != nil {
			return "", nil, apiErr
		}
		fields[domain.FieldDueDate] = dueDate
	}

	return id, fields, nil
}

// taskID reads the identifier from "id", falling back to the legacy "_id".
func taskID(body map[string]any) (string, bool) {
	for _, key := range []string{domain.FieldID, docstore.IDField} {
		if s, _ := body[key].(string); strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

// dueDateFrom returns the due date in body. Absent, null and empty values
// mean no due date.
func dueDateFrom(body map[string]any) (string, *Error) {
	v, present := body[domain.FieldDueDate]
	if !present || v == nil {
		return "", nil
	}
	s, isString := v.(string)
	if !isString {
		return "", validationError(MsgDueDateFormat)
	}
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(domain.DueDateLayout, s); err != nil {
		return "", validationError(MsgDueDateFormat)
	}
	return s, nil
}
