package api

import (
	"context"
	"errors"
	"net/http"

	"taskapi/internal/repository"
	"taskapi/internal/service"
)

func credentials(body map[string]any) (string, string) {
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	return email, password
}

func (d *Dispatcher) register(ctx context.Context, ev Event) result {
	body, apiErr := parseBody(ev.Body)
	if apiErr != nil {
		return failure(apiErr)
	}
	email, password := credentials(body)

	token, err := d.auth.Register(ctx, email, password)
	switch {
	case err == nil:
		return success(jsonResponse(http.StatusCreated, map[string]string{
			"message": "User registered successfully",
			"token":   token,
		}))
	case errors.Is(err, service.ErrMissingCredentials), errors.Is(err, service.ErrEmptyPassword):
		return failure(validationError(MsgCredentialsRequired))
	case errors.Is(err, repository.ErrEmailTaken):
		return failure(validationError(MsgEmailTaken))
	case errors.Is(err, service.ErrPasswordTooLong):
		return failure(validationError(MsgPasswordTooLong))
	default:
		return failure(storeError(MsgRegisterFailed, err))
	}
}

func (d *Dispatcher) login(ctx context.Context, ev Event) result {
	body, apiErr := parseBody(ev.Body)
	if apiErr != nil {
		return failure(apiErr)
	}
	email, password := credentials(body)

	token, err := d.auth.Login(ctx, email, password)
	switch {
	case err == nil:
		return success(jsonResponse(http.StatusOK, map[string]string{"token": token}))
	case errors.Is(err, service.ErrMissingCredentials):
		return failure(validationError(MsgCredentialsRequired))
	case errors.Is(err, service.ErrInvalidCredentials):
		return failure(authError(MsgInvalidCredentials, err))
	default:
		return failure(storeError(MsgLoginFailed, err))
	}
}
