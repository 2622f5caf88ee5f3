package store

import (
	"context"
	"errors"

	"github.com/minhkq1998/SampleJWT/internal/accounts/domain"
)

var (
	ErrNotFound = errors.New("store: not found")

	// Uniqueness violations, one sentinel per constrained column so callers
	// can report which field collided without re-querying.
	ErrIDTaken       = errors.New("store: id already taken")
	ErrUsernameTaken = errors.New("store: username already taken")
	ErrEmailTaken    = errors.New("store: email already in use")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement it. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn returns
	// an error and committing otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying database handle.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repositories, plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by its numeric id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is the sign-in lookup.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// ExistsByID reports whether an account with this id exists.
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// ExistsByUsername reports whether the username is taken.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether the email is in use.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CreateUser inserts a new user. Returns ErrIDTaken, ErrUsernameTaken or
	// ErrEmailTaken when the matching unique constraint fires.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser rewrites username and email in place for the given id and
	// bumps updated_at. Returns ErrNotFound for an unknown id and the
	// conflict sentinels on constraint violations.
	UpdateUser(ctx context.Context, id int64, username, email string) error

	// DeleteUser removes the row. Returns ErrNotFound for an unknown id.
	DeleteUser(ctx context.Context, id int64) error

	// CountUsers returns the number of accounts.
	CountUsers(ctx context.Context) (int64, error)
}
