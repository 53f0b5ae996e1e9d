package repository

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"

	"taskapi/internal/docstore"
	"taskapi/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const (
	userEmailField        = "email"
	userPasswordHashField = "password_hash"
	userCreatedAtField    = "created_at"
)

type UserRepository struct {
	coll docstore.Collection
}

func NewUserRepository(db docstore.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(docstore.UsersCollection)}
}

// GetByEmail looks a user up by exact (case-sensitive) email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	doc, err := r.coll.FindOne(ctx, docstore.Filter{userEmailField: email})
	if errors.Is(err, docstore.ErrNoDocuments) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(ErrUserNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	u := &domain.User{
		ID:           asString(doc[docstore.IDField]),
		Email:        asString(doc[userEmailField]),
		PasswordHash: asString(doc[userPasswordHashField]),
	}
	if at, ok := asTime(doc[userCreatedAtField]); ok {
		u.CreatedAt = at
	}
	return u, nil
}

// Create inserts u and fills in its ID. A duplicate email reported by the
// store's unique index yields ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	id, err := r.coll.InsertOne(ctx, docstore.Document{
		userEmailField:        u.Email,
		userPasswordHashField: u.PasswordHash,
		userCreatedAtField:    u.CreatedAt,
	})
	if errors.Is(err, docstore.ErrDuplicate) {
		return oops.Code("USER_EMAIL_TAKEN").Wrap(ErrEmailTaken)
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}
	u.ID = id
	return nil
}
