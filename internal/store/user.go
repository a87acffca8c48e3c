package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

// UserStore defines the interface for user and auth token persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// It handles domain validation and password hashing internally.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their (normalized) email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user's profile.
	// If a new plaintext Password is set it is hashed and replaces HashedPassword.
	// Returns ErrUserNotFound if the user does not exist and
	// ErrEmailExists if the new email belongs to another user.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user together with their tasks and tokens.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddToken records an issued auth token for the user.
	AddToken(ctx context.Context, userID uuid.UUID, token string) error

	// GetByToken resolves the user whose token set contains token.
	// Returns ErrTokenNotFound if no user holds it.
	GetByToken(ctx context.Context, token string) (*domain.User, error)

	// RemoveToken revokes a single token of the user.
	// Returns ErrTokenNotFound if the user does not hold it.
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveAllTokens revokes every token of the user.
	RemoveAllTokens(ctx context.Context, userID uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
