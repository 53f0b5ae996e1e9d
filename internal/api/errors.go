package api

import "net/http"

// Kind classifies a failed request.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindNotFound
	KindStore
	KindRouting
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	case KindRouting:
		return "routing"
	default:
		return "unknown"
	}
}

// Status is the HTTP status code reported for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindRouting:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a request failure. Message is shown to the caller; Err is only
// logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// User-visible messages.
const (
	MsgInvalidBody         = "Invalid request body"
	MsgCredentialsRequired = "Email and password are required"
	MsgEmailTaken          = "Email is already registered"
	MsgPasswordTooLong     = "Password must be at most 72 bytes"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgTokenRequired       = "Authorization token is required"
	MsgTokenExpired        = "Token has expired"
	MsgTokenInvalid        = "Invalid token"
	MsgUnsupportedMethod   = "Unsupported method"
	MsgTitleRequired       = "Title is required and cannot be empty."
	MsgTitleTooLong        = "Title must be 100 characters or fewer."
	MsgDescriptionRequired = "Description is required and cannot be empty."
	MsgDueDateFormat       = "Due date must be in YYYY-MM-DD format."
	MsgTitleEmpty          = "Title cannot be empty."
	MsgDescriptionEmpty    = "Description cannot be empty."
	MsgTaskIDRequired      = "Task ID is required"
	MsgTaskNotFound        = "Task not found"
	MsgFetchTasksFailed    = "Error fetching tasks"
	MsgCreateTaskFailed    = "Error creating task"
	MsgUpdateTaskFailed    = "Error updating task"
	MsgDeleteTaskFailed    = "Error deleting task"
	MsgRegisterFailed      = "Error registering user"
	MsgLoginFailed         = "Error logging in"
)

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func authError(msg string, err error) *Error {
	return &Error{Kind: KindAuth, Message: msg, Err: err}
}

func storeError(msg string, err error) *Error {
	return &Error{Kind: KindStore, Message: msg, Err: err}
}

func notFoundError(msg string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}
