package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// MockUserStore implements store.UserStore for testing.
//
// Each method first checks its function field; when that is nil an
// in-memory implementation is used. Passwords are hashed with bcrypt at
// MinCost so the real auth.BcryptVerifier works against stored users.
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn          func(ctx context.Context, user *domain.User) error
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn      func(ctx context.Context, email string) (*domain.User, error)
	UpdateFn          func(ctx context.Context, user *domain.User) error
	DeleteFn          func(ctx context.Context, id uuid.UUID) error
	AddTokenFn        func(ctx context.Context, userID uuid.UUID, token string) error
	GetByTokenFn      func(ctx context.Context, token string) (*domain.User, error)
	RemoveTokenFn     func(ctx context.Context, userID uuid.UUID, token string) error
	RemoveAllTokensFn func(ctx context.Context, userID uuid.UUID) error

	// OnDelete runs after the default Delete removes a user, for cascading
	// into other mocks.
	OnDelete func(id uuid.UUID)

	mu     sync.Mutex
	Users  map[uuid.UUID]*domain.User
	Tokens map[string]uuid.UUID
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users:  make(map[uuid.UUID]*domain.User),
		Tokens: make(map[string]uuid.UUID),
	}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (m *MockUserStore) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range m.Users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func hashInPlace(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	user.HashedPassword = string(hash)
	user.Password = ""
	return nil
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTaken(user.Email, uuid.Nil) {
		return store.ErrEmailExists
	}
	if err := hashInPlace(user); err != nil {
		return err
	}
	m.Users[user.ID] = copyUser(user)
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for _, u := range m.Users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	if m.emailTaken(user.Email, user.ID) {
		return store.ErrEmailExists
	}
	if err := hashInPlace(user); err != nil {
		return err
	}
	m.Users[user.ID] = copyUser(user)
	return nil
}

// Delete implements the UserStore interface. Tokens of the user are removed too.
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	if _, ok := m.Users[id]; !ok {
		m.mu.Unlock()
		return store.ErrUserNotFound
	}
	delete(m.Users, id)
	for token, owner := range m.Tokens {
		if owner == id {
			delete(m.Tokens, token)
		}
	}
	m.mu.Unlock()

	if m.OnDelete != nil {
		m.OnDelete(id)
	}
	return nil
}

// AddToken implements the UserStore interface
func (m *MockUserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	if m.AddTokenFn != nil {
		return m.AddTokenFn(ctx, userID, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Users[userID]; !ok {
		return store.ErrUserNotFound
	}
	if _, exists := m.Tokens[token]; exists {
		return store.ErrDuplicate
	}
	m.Tokens[token] = userID
	return nil
}

// GetByToken implements the UserStore interface
func (m *MockUserStore) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	if m.GetByTokenFn != nil {
		return m.GetByTokenFn(ctx, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	userID, ok := m.Tokens[token]
	if !ok {
		return nil, store.ErrTokenNotFound
	}
	u, ok := m.Users[userID]
	if !ok {
		return nil, store.ErrTokenNotFound
	}
	return copyUser(u), nil
}

// RemoveToken implements the UserStore interface
func (m *MockUserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	if m.RemoveTokenFn != nil {
		return m.RemoveTokenFn(ctx, userID, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if owner, ok := m.Tokens[token]; !ok || owner != userID {
		return store.ErrTokenNotFound
	}
	delete(m.Tokens, token)
	return nil
}

// RemoveAllTokens implements the UserStore interface
func (m *MockUserStore) RemoveAllTokens(ctx context.Context, userID uuid.UUID) error {
	if m.RemoveAllTokensFn != nil {
		return m.RemoveAllTokensFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for token, owner := range m.Tokens {
		if owner == userID {
			delete(m.Tokens, token)
		}
	}
	return nil
}

// TokenCount returns how many tokens userID currently holds.
func (m *MockUserStore) TokenCount(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, owner := range m.Tokens {
		if owner == userID {
			n++
		}
	}
	return n
}

// WithTx returns the same mock; transactions are not simulated.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
