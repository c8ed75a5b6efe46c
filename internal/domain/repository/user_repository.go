package repository

import (
	"context"
	"errors"

	"github.com/loopers/commerce-api/internal/domain/entity"
)

// ErrUserNotFound is returned by lookups when no user matches.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the persistence contract for the User aggregate.
type UserRepository interface {
	// FindByID returns ErrUserNotFound when no user has the id.
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	// FindByIDForUpdate is FindByID that also locks the row until the
	// surrounding transaction ends, so a read-check-write on it is atomic.
	FindByIDForUpdate(ctx context.Context, id int64) (*entity.User, error)
	// FindByLoginID returns ErrUserNotFound when no user has the login id.
	FindByLoginID(ctx context.Context, loginID string) (*entity.User, error)
	ExistsByLoginID(ctx context.Context, loginID string) (bool, error)
	// Save inserts a new user (assigning its id) or updates an existing one.
	// A login id uniqueness violation is reported as entity.ErrDuplicateLoginID.
	Save(ctx context.Context, u *entity.User) (*entity.User, error)
}

// Transactor runs fn as one atomic unit of work. Repository calls made with
// the ctx passed to fn take part in the transaction; a non-nil error from fn
// rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
