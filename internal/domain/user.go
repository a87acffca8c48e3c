package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Password length bounds. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 72
)

// User validation errors. All of them wrap ErrValidation.
var (
	ErrEmptyUserID          = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyName            = fmt.Errorf("%w: name cannot be empty", ErrValidation)
	ErrEmptyEmail           = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrInvalidEmail         = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrPasswordTooShort     = fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, MinPasswordLength)
	ErrPasswordTooLong      = fmt.Errorf("%w: password must be at most %d characters long", ErrValidation, MaxPasswordLength)
	ErrPasswordContainsWord = fmt.Errorf("%w: password cannot contain \"password\"", ErrValidation)
	ErrEmptyPassword        = fmt.Errorf("%w: password cannot be empty", ErrValidation)
	ErrNegativeAge          = fmt.Errorf("%w: age must be a non-negative number", ErrValidation)
)

var validate = validator.New()

// User represents a registered account. Tasks and auth tokens belong to a user
// and are removed together with it.
type User struct {
	ID             uuid.UUID `json:"_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Age            int       `json:"age"`
	Password       string    `json:"-"` // Plaintext, only set while creating or changing the password
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser creates a new User with a fresh ID and timestamps. Name is trimmed
// and email is normalized before validation.
//
// The caller is responsible for hashing the password before storing the user.
func NewUser(name, email, password string, age int) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Age:       age,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizeEmail trims and lower-cases an email address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Name == "" {
		return ErrEmptyName
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if err := validate.Var(u.Email, "email"); err != nil {
		return ErrInvalidEmail
	}

	if u.Age < 0 {
		return ErrNegativeAge
	}

	// Existing users loaded from storage only carry the hash.
	if u.Password == "" {
		if u.HashedPassword == "" {
			return ErrEmptyPassword
		}
		return nil
	}

	return validatePassword(u.Password)
}

func validatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	case strings.Contains(strings.ToLower(password), "password"):
		return ErrPasswordContainsWord
	}
	return nil
}

// UserPatch is a partial profile update. Nil fields are left unchanged.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Age == nil
}

// Apply copies the patch onto u and re-validates. On error u is left unchanged.
func (u *User) Apply(p UserPatch) error {
	updated := *u
	if p.Name != nil {
		updated.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		updated.Email = NormalizeEmail(*p.Email)
	}
	if p.Password != nil {
		updated.Password = *p.Password
		if updated.Password == "" {
			return ErrEmptyPassword
		}
	}
	if p.Age != nil {
		updated.Age = *p.Age
	}

	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now().UTC()
	*u = updated
	return nil
}
