package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for User
var (
	ErrEmptyUserID       = errors.New("user ID cannot be empty")
	ErrEmptyUserEmail    = errors.New("user email cannot be empty")
	ErrEmptyUserPassword = errors.New("user password hash cannot be empty")
)

// User represents an account that owns campaigns and generation jobs.
// The password is stored only as a bcrypt hash.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email and password hash.
// It generates a new UUID and sets the timestamps.
// Returns an error if validation fails.
func NewUser(email, hashedPassword string) (*User, error) {
	user := &User{
		ID:             uuid.New(),
		Email:          strings.ToLower(strings.TrimSpace(email)),
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyUserEmail
	}

	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}

	if u.HashedPassword == "" {
		return ErrEmptyUserPassword
	}

	return nil
}
