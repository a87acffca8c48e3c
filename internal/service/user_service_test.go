package service_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/events"
	"github.com/phrazzld/taskmanager-api/internal/mocks"
	"github.com/phrazzld/taskmanager-api/internal/service"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/phrazzld/taskmanager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPassword = "MyPass777!xyz"

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (r *recordingEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingEmitter) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type userFixture struct {
	users   *mocks.MockUserStore
	tx      *mocks.MockTransactor
	jwt     *mocks.MockJWTService
	emitter *recordingEmitter
	svc     service.UserService
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		users:   mocks.NewMockUserStore(),
		tx:      &mocks.MockTransactor{},
		jwt:     &mocks.MockJWTService{},
		emitter: &recordingEmitter{},
	}
	f.svc = service.NewUserService(f.users, f.tx, f.jwt, auth.NewBcryptVerifier(), f.emitter, quietLogger())
	return f
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func (f *userFixture) signUp(t *testing.T, email string) (*domain.User, string) {
	t.Helper()
	user, token, err := f.svc.SignUp(context.Background(), service.SignUpInput{
		Name:     "Jess",
		Email:    email,
		Password: testPassword,
		Age:      27,
	})
	require.NoError(t, err)
	return user, token
}

func TestNewUserService_NilDependencies(t *testing.T) {
	assert.Panics(t, func() {
		service.NewUserService(nil, &mocks.MockTransactor{}, &mocks.MockJWTService{},
			auth.NewBcryptVerifier(), &recordingEmitter{}, nil)
	})
}

func TestUserService_SignUp(t *testing.T) {
	t.Run("creates user with token and emits event", func(t *testing.T) {
		f := newUserFixture(t)

		user, token, err := f.svc.SignUp(context.Background(), service.SignUpInput{
			Name:     "  Jess  ",
			Email:    "Jess@Example.COM",
			Password: testPassword,
			Age:      27,
		})
		require.NoError(t, err)

		assert.Equal(t, "Jess", user.Name)
		assert.Equal(t, "jess@example.com", user.Email)
		assert.Empty(t, user.Password)
		assert.NotEmpty(t, user.HashedPassword)
		assert.NotEmpty(t, token)
		assert.Equal(t, 1, f.users.TokenCount(user.ID))
		assert.Equal(t, 1, f.tx.Calls)
		assert.Equal(t, []string{events.UserCreated}, f.emitter.types())

		var payload events.UserPayload
		require.NoError(t, f.emitter.events[0].UnmarshalPayload(&payload))
		assert.Equal(t, user.ID, payload.UserID)
		assert.Equal(t, "jess@example.com", payload.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newUserFixture(t)
		f.signUp(t, "taken@example.com")

		_, _, err := f.svc.SignUp(context.Background(), service.SignUpInput{
			Name:     "Other",
			Email:    "TAKEN@example.com",
			Password: testPassword,
		})
		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.Len(t, f.emitter.types(), 1)
	})

	t.Run("validation failure", func(t *testing.T) {
		f := newUserFixture(t)

		_, _, err := f.svc.SignUp(context.Background(), service.SignUpInput{
			Name:     "Jess",
			Email:    "jess@example.com",
			Password: "password12345",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrPasswordContainsWord)
		assert.Zero(t, f.tx.Calls)
		assert.Empty(t, f.emitter.types())
	})

	t.Run("negative age", func(t *testing.T) {
		f := newUserFixture(t)

		_, _, err := f.svc.SignUp(context.Background(), service.SignUpInput{
			Name:     "Jess",
			Email:    "jess@example.com",
			Password: testPassword,
			Age:      -1,
		})
		assert.ErrorIs(t, err, domain.ErrNegativeAge)
	})

	t.Run("token generation failure", func(t *testing.T) {
		f := newUserFixture(t)
		boom := errors.New("signing failed")
		f.jwt.Err = boom

		_, _, err := f.svc.SignUp(context.Background(), service.SignUpInput{
			Name:     "Jess",
			Email:    "jess@example.com",
			Password: testPassword,
		})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, f.emitter.types())
	})

	t.Run("emitter failure does not fail sign up", func(t *testing.T) {
		f := newUserFixture(t)
		f.emitter.err = errors.New("queue full")

		_, token := f.signUp(t, "jess@example.com")
		assert.NotEmpty(t, token)
	})
}

func TestUserService_Login(t *testing.T) {
	f := newUserFixture(t)
	user, _ := f.signUp(t, "jess@example.com")

	t.Run("issues additional token", func(t *testing.T) {
		got, token, err := f.svc.Login(context.Background(), " JESS@example.com ", testPassword)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotEmpty(t, token)
		assert.Equal(t, 2, f.users.TokenCount(user.ID))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := f.svc.Login(context.Background(), "jess@example.com", "NotMyPass999!")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := f.svc.Login(context.Background(), "nobody@example.com", testPassword)
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("connection reset")
		users := new(mocks.TestifyMockUserStore)
		users.On("GetByEmail", mock.Anything, "jess@example.com").Return(nil, boom)

		svc := service.NewUserService(users, &mocks.MockTransactor{}, &mocks.MockJWTService{},
			auth.NewBcryptVerifier(), &recordingEmitter{}, quietLogger())

		_, _, err := svc.Login(context.Background(), "jess@example.com", testPassword)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, service.ErrInvalidCredentials)
		users.AssertExpectations(t)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	f := newUserFixture(t)
	user, token := f.signUp(t, "jess@example.com")

	t.Run("valid token", func(t *testing.T) {
		got, err := f.svc.Authenticate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := f.svc.Authenticate(context.Background(), "")
		assert.ErrorIs(t, err, auth.ErrMissingToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.svc.Authenticate(context.Background(), "forged")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("revoked token", func(t *testing.T) {
		_, second, err := f.svc.Login(context.Background(), "jess@example.com", testPassword)
		require.NoError(t, err)
		require.NoError(t, f.svc.Logout(context.Background(), user.ID, second))

		_, err = f.svc.Authenticate(context.Background(), second)
		assert.ErrorIs(t, err, store.ErrTokenNotFound)
	})

	t.Run("subject mismatch", func(t *testing.T) {
		users := new(mocks.TestifyMockUserStore)
		other := &domain.User{ID: uuid.New()}
		users.On("GetByToken", mock.Anything, "tok").Return(other, nil)

		jwt := &mocks.MockJWTService{
			ValidateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
				return &auth.Claims{UserID: uuid.New()}, nil
			},
		}
		svc := service.NewUserService(users, &mocks.MockTransactor{}, jwt,
			auth.NewBcryptVerifier(), &recordingEmitter{}, quietLogger())

		_, err := svc.Authenticate(context.Background(), "tok")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestUserService_Logout(t *testing.T) {
	f := newUserFixture(t)
	user, token := f.signUp(t, "jess@example.com")
	_, other, err := f.svc.Login(context.Background(), "jess@example.com", testPassword)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), user.ID, token))
	assert.Equal(t, 1, f.users.TokenCount(user.ID))

	_, err = f.svc.Authenticate(context.Background(), other)
	assert.NoError(t, err)

	err = f.svc.Logout(context.Background(), user.ID, token)
	assert.ErrorIs(t, err, store.ErrTokenNotFound)
}

func TestUserService_LogoutAll(t *testing.T) {
	t.Run("revokes every token", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.signUp(t, "jess@example.com")
		_, _, err := f.svc.Login(context.Background(), "jess@example.com", testPassword)
		require.NoError(t, err)

		require.NoError(t, f.svc.LogoutAll(context.Background(), user.ID))
		assert.Zero(t, f.users.TokenCount(user.ID))
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newUserFixture(t)
		err := f.svc.LogoutAll(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("transaction failure", func(t *testing.T) {
		f := newUserFixture(t)
		boom := errors.New("begin failed")
		f.tx.Err = boom

		err := f.svc.LogoutAll(context.Background(), uuid.New())
		assert.ErrorIs(t, err, boom)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("applies patch", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.signUp(t, "jess@example.com")

		name := "Jessica"
		age := 28
		got, err := f.svc.UpdateProfile(context.Background(), user.ID, domain.UserPatch{Name: &name, Age: &age})
		require.NoError(t, err)
		assert.Equal(t, "Jessica", got.Name)
		assert.Equal(t, 28, got.Age)

		stored, err := f.svc.GetUser(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jessica", stored.Name)
	})

	t.Run("password change allows login with new password", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.signUp(t, "jess@example.com")

		newPass := "AnotherPass42!"
		_, err := f.svc.UpdateProfile(context.Background(), user.ID, domain.UserPatch{Password: &newPass})
		require.NoError(t, err)

		_, _, err = f.svc.Login(context.Background(), "jess@example.com", newPass)
		assert.NoError(t, err)
		_, _, err = f.svc.Login(context.Background(), "jess@example.com", testPassword)
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("empty patch returns user unchanged", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.signUp(t, "jess@example.com")

		got, err := f.svc.UpdateProfile(context.Background(), user.ID, domain.UserPatch{})
		require.NoError(t, err)
		assert.Equal(t, user.UpdatedAt, got.UpdatedAt)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.signUp(t, "jess@example.com")

		bad := "not-an-email"
		_, err := f.svc.UpdateProfile(context.Background(), user.ID, domain.UserPatch{Email: &bad})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})

	t.Run("email taken", func(t *testing.T) {
		f := newUserFixture(t)
		user, _ := f.signUp(t, "jess@example.com")
		f.signUp(t, "other@example.com")

		taken := "other@example.com"
		_, err := f.svc.UpdateProfile(context.Background(), user.ID, domain.UserPatch{Email: &taken})
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestUserService_DeleteAccount(t *testing.T) {
	t.Run("removes user and emits event", func(t *testing.T) {
		f := newUserFixture(t)
		user, token := f.signUp(t, "jess@example.com")

		var cascaded uuid.UUID
		f.users.OnDelete = func(id uuid.UUID) { cascaded = id }

		deleted, err := f.svc.DeleteAccount(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, deleted.ID)
		assert.Equal(t, user.ID, cascaded)
		assert.Equal(t, []string{events.UserCreated, events.UserDeleted}, f.emitter.types())

		_, err = f.svc.Authenticate(context.Background(), token)
		assert.Error(t, err)
		_, err = f.svc.GetUser(context.Background(), user.ID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newUserFixture(t)
		_, err := f.svc.DeleteAccount(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.Empty(t, f.emitter.types())
	})

	t.Run("delete failure", func(t *testing.T) {
		boom := errors.New("disk full")
		id := uuid.New()
		users := new(mocks.TestifyMockUserStore)
		users.On("GetByID", mock.Anything, id).Return(&domain.User{ID: id}, nil)
		users.On("Delete", mock.Anything, id).Return(boom)
		emitter := &recordingEmitter{}

		svc := service.NewUserService(users, &mocks.MockTransactor{}, &mocks.MockJWTService{},
			auth.NewBcryptVerifier(), emitter, quietLogger())

		_, err := svc.DeleteAccount(context.Background(), id)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, emitter.types())
		users.AssertExpectations(t)
	})
}
