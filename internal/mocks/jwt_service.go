package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
//
// Without function overrides it issues "token-<userID>-<n>" and validates
// any token it issued itself, which is enough for end-to-end handler tests.
type MockJWTService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Err and ValidateErr force the default implementations to fail.
	Err         error
	ValidateErr error

	mu     sync.Mutex
	issued map[string]uuid.UUID
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	if m.Err != nil {
		return "", m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.issued == nil {
		m.issued = make(map[string]uuid.UUID)
	}
	token := "token-" + userID.String() + "-" + uuid.NewString()[:8]
	m.issued[token] = userID
	return token, nil
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}

	m.mu.Lock()
	userID, ok := m.issued[tokenString]
	m.mu.Unlock()
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: userID, Subject: userID.String()}, nil
}
