package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = "id, name, email, hashed_password, age, created_at, updated_at"

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// A bcrypt cost outside bcrypt's accepted range falls back to bcrypt.DefaultCost.
// If logger is nil, the default logger is used.
func NewPostgresUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresUserStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx returns a new UserStore instance that uses the provided transaction.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:         tx,
		bcryptCost: s.bcryptCost,
		logger:     s.logger,
	}
}

// hashPassword replaces the plaintext password on user with its bcrypt hash.
func (s *PostgresUserStore) hashPassword(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = string(hash)
	user.Password = ""
	return nil
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return err
	}
	if err := s.hashPassword(user); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Name, user.Email, user.HashedPassword, user.Age, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrEmailExists) {
			log.Debug("email already registered", slog.String("user_id", user.ID.String()))
			return mapped
		}
		log.Error("failed to create user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create user: %w", mapped)
	}

	log.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

func scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.Age, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresUserStore) getOne(ctx context.Context, notFound error, query string, args ...any) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query user: %w", MapError(err))
	}
	return user, nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, store.ErrUserNotFound,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, store.ErrUserNotFound,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, domain.NormalizeEmail(email))
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return err
	}
	if err := s.hashPassword(user); err != nil {
		return err
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users
		 SET name = $1, email = $2, hashed_password = $3, age = $4, updated_at = $5
		 WHERE id = $6`,
		user.Name, user.Email, user.HashedPassword, user.Age, user.UpdatedAt, user.ID,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrEmailExists) {
			return mapped
		}
		log.Error("failed to update user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update user: %w", mapped)
	}

	return checkRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete.
// Tasks and tokens are removed by ON DELETE CASCADE.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete user",
			slog.String("user_id", id.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete user: %w", MapError(err))
	}
	return checkRowsAffected(result, store.ErrUserNotFound)
}

// AddToken implements store.UserStore.AddToken
func (s *PostgresUserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_tokens (token, user_id, created_at) VALUES ($1, $2, $3)`,
		token, userID, time.Now().UTC(),
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrInvalidEntity) {
			return store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to store token",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to store token: %w", mapped)
	}
	return nil
}

// GetByToken implements store.UserStore.GetByToken
func (s *PostgresUserStore) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	return s.getOne(ctx, store.ErrTokenNotFound,
		`SELECT u.id, u.name, u.email, u.hashed_password, u.age, u.created_at, u.updated_at
		 FROM users u
		 JOIN user_tokens t ON t.user_id = u.id
		 WHERE t.token = $1`, token)
}

// RemoveToken implements store.UserStore.RemoveToken
func (s *PostgresUserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	if err != nil {
		return fmt.Errorf("failed to remove token: %w", MapError(err))
	}
	return checkRowsAffected(result, store.ErrTokenNotFound)
}

// RemoveAllTokens implements store.UserStore.RemoveAllTokens
func (s *PostgresUserStore) RemoveAllTokens(ctx context.Context, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to remove tokens: %w", MapError(err))
	}
	if n, err := result.RowsAffected(); err == nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("tokens revoked",
			slog.String("user_id", userID.String()),
			slog.Int64("count", n))
	}
	return nil
}
