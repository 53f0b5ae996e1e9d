package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"taskapi/internal/domain"
	"taskapi/internal/logger"
	"taskapi/internal/service"
)

// Authenticator runs the anonymous registration and login flows.
type Authenticator interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// TokenVerifier resolves a bearer token to its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// TaskStore is the task persistence used by the CRUD handlers.
type TaskStore interface {
	List(ctx context.Context) ([]*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

// Dispatcher decides, per event, which operation runs and under which
// preconditions. It is stateless and safe for concurrent use.
type Dispatcher struct {
	auth   Authenticator
	tokens TokenVerifier
	tasks  TaskStore
}

func NewDispatcher(auth Authenticator, tokens TokenVerifier, tasks TaskStore) *Dispatcher {
	return &Dispatcher{auth: auth, tokens: tokens, tasks: tasks}
}

type subjectKey struct{}

// SubjectFromContext returns the authenticated user id, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey{}).(string)
	return s, ok && s != ""
}

// Handle runs one event to completion. Every response carries the CORS
// header set.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) Response {
	method := strings.ToUpper(ev.Method)

	switch {
	case method == http.MethodOptions:
		return emptyResponse(http.StatusOK)
	case method == http.MethodPost && routeIs(ev.Path, routeRegister):
		return d.respond(ctx, d.register(ctx, ev))
	case method == http.MethodPost && routeIs(ev.Path, routeLogin):
		return d.respond(ctx, d.login(ctx, ev))
	}

	subject, apiErr := d.authenticate(ev)
	if apiErr != nil {
		return d.fail(ctx, apiErr)
	}
	ctx = context.WithValue(ctx, subjectKey{}, subject)

	switch method {
	case http.MethodGet:
		return d.respond(ctx, d.listTasks(ctx))
	case http.MethodPost:
		return d.respond(ctx, d.createTask(ctx, ev))
	case http.MethodPut:
		return d.respond(ctx, d.updateTask(ctx, ev))
	case http.MethodDelete:
		return d.respond(ctx, d.deleteTask(ctx, ev))
	default:
		return d.fail(ctx, &Error{Kind: KindRouting, Message: MsgUnsupportedMethod})
	}
}

func (d *Dispatcher) authenticate(ev Event) (string, *Error) {
	token, err := service.BearerToken(ev.Headers)
	if err != nil {
		if errors.Is(err, service.ErrMissingToken) {
			return "", authError(MsgTokenRequired, err)
		}
		return "", authError(MsgTokenInvalid, err)
	}

	subject, err := d.tokens.Verify(token)
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return "", authError(MsgTokenExpired, err)
	case err != nil:
		return "", authError(MsgTokenInvalid, err)
	}
	return subject, nil
}

// result is what a handler produced: either a response or an error.
type result struct {
	resp Response
	err  *Error
}

func success(resp Response) result { return result{resp: resp} }
func failure(err *Error) result { return result{err: err} }

func (d *Dispatcher) respond(ctx context.Context, r result) Response {
	if r.err != nil {
		return d.fail(ctx, r.err)
	}
	return r.resp
}

func (d *Dispatcher) fail(ctx context.Context, e *Error) Response {
	switch e.Kind {
	case KindStore:
		logger.LogError(ctx, e.Message, e.Err)
	case KindAuth:
		logger.WithContext(ctx).Debug("request rejected", "reason", e.Message)
	}
	return jsonResponse(e.Kind.Status(), map[string]string{"error": e.Message})
}

const (
	routeRegister = "register"
	routeLogin    = "login"
)

// IsAnonymous reports whether method and path select registration or login,
// the only operations that run without a token.
func IsAnonymous(method, path string) bool {
	return strings.EqualFold(method, http.MethodPost) &&
		(routeIs(path, routeRegister) || routeIs(path, routeLogin))
}

// routeIs reports whether the last segment of path is name.
func routeIs(path, name string) bool {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	return strings.EqualFold(path, name)
}
