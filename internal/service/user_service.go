package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/events"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// SignUpInput carries the fields of a new account.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// UserService provides account and session operations.
type UserService interface {
	// SignUp creates the account and its first token in one transaction,
	// then emits events.UserCreated.
	SignUp(ctx context.Context, input SignUpInput) (*domain.User, string, error)

	// Login verifies credentials and issues an additional token.
	// Returns ErrInvalidCredentials on any mismatch.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)

	// Authenticate resolves a bearer token to its user. The token must verify
	// and still be recorded for that user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)

	// Logout revokes a single token.
	Logout(ctx context.Context, userID uuid.UUID, token string) error

	// LogoutAll revokes every token of the user.
	LogoutAll(ctx context.Context, userID uuid.UUID) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile applies a partial update and returns the updated user.
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch domain.UserPatch) (*domain.User, error)

	// DeleteAccount removes the user with their tasks and tokens, emits
	// events.UserDeleted and returns the deleted profile.
	DeleteAccount(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	userStore  store.UserStore
	tx         store.Transactor
	jwtService auth.JWTService
	verifier   auth.PasswordVerifier
	emitter    events.EventEmitter
	logger     *slog.Logger
}

var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a new UserService.
func NewUserService(
	userStore store.UserStore,
	tx store.Transactor,
	jwtService auth.JWTService,
	verifier auth.PasswordVerifier,
	emitter events.EventEmitter,
	logger *slog.Logger,
) UserService {
	if userStore == nil || tx == nil || jwtService == nil || verifier == nil || emitter == nil {
		// ALLOW-PANIC: Constructor enforcing required dependencies
		panic("user service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		userStore:  userStore,
		tx:         tx,
		jwtService: jwtService,
		verifier:   verifier,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "user_service")),
	}
}

// emit publishes a user event. Handler failures are logged and never fail
// the operation that triggered them.
func (s *userServiceImpl) emit(ctx context.Context, eventType string, user *domain.User) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, events.UserPayload{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	})
	if err != nil {
		log.Error("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event handler failed",
			slog.String("event_type", eventType),
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
	}
}

// SignUp implements UserService.
func (s *userServiceImpl) SignUp(ctx context.Context, input SignUpInput) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(input.Name, input.Email, input.Password, input.Age)
	if err != nil {
		return nil, "", err
	}

	var token string
	err = s.tx.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		if err := txStore.Create(ctx, user); err != nil {
			return err
		}

		issued, err := s.jwtService.GenerateToken(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		if err := txStore.AddToken(ctx, user.ID, issued); err != nil {
			return err
		}

		token = issued
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to sign up with existing email")
			return nil, "", err
		}
		if !errors.Is(err, domain.ErrValidation) {
			log.Error("failed to sign up user", slog.String("error", err.Error()))
		}
		return nil, "", fmt.Errorf("failed to sign up user: %w", err)
	}

	log.Info("user signed up", slog.String("user_id", user.ID.String()))
	s.emit(ctx, events.UserCreated, user)

	return user, token, nil
}

// Login implements UserService.
func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login attempt for unknown email")
			return nil, "", ErrInvalidCredentials
		}
		log.Error("failed to look up user for login", slog.String("error", err.Error()))
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			log.Error("failed to verify password",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
		}
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.userStore.AddToken(ctx, user.ID, token); err != nil {
		log.Error("failed to store token",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return nil, "", fmt.Errorf("failed to store token: %w", err)
	}

	log.Debug("user logged in", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// Authenticate implements UserService.
func (s *userServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, auth.ErrMissingToken
	}

	claims, err := s.jwtService.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	// A recorded token must belong to the user it was issued for.
	if user.ID != claims.UserID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("token subject does not match token owner",
			slog.String("claims_user_id", claims.UserID.String()),
			slog.String("owner_user_id", user.ID.String()))
		return nil, auth.ErrInvalidToken
	}

	return user, nil
}

// Logout implements UserService.
func (s *userServiceImpl) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.userStore.RemoveToken(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("token revoked", slog.String("user_id", userID.String()))
	return nil
}

// LogoutAll implements UserService.
func (s *userServiceImpl) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	err := s.tx.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)
		if _, err := txStore.GetByID(ctx, userID); err != nil {
			return err
		}
		return txStore.RemoveAllTokens(ctx, userID)
	})
	if err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("all tokens revoked", slog.String("user_id", userID.String()))
	return nil
}

// GetUser implements UserService.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// UpdateProfile implements UserService.
func (s *userServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	patch domain.UserPatch,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user for update: %w", err)
	}

	if patch.IsEmpty() {
		return user, nil
	}

	if err := user.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.userStore.Update(ctx, user); err != nil {
		if !errors.Is(err, store.ErrEmailExists) {
			log.Error("failed to update user",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	log.Info("user profile updated", slog.String("user_id", userID.String()))
	return user, nil
}

// DeleteAccount implements UserService.
func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user for deletion: %w", err)
	}

	if err := s.userStore.Delete(ctx, userID); err != nil {
		log.Error("failed to delete user",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	log.Info("user deleted", slog.String("user_id", userID.String()))
	s.emit(ctx, events.UserDeleted, user)

	return user, nil
}
