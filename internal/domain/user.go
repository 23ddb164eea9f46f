package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrValidation marks input rejected before it reaches storage
	ErrValidation = errors.New("validation failed")
	// ErrUserNotFound is returned when no registration record exists
	ErrUserNotFound = errors.New("user not found")
	// ErrStorage marks failures of the persistence layer
	ErrStorage = errors.New("storage unavailable")
)

var phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)

// User represents a registered bot user
type User struct {
	UserID      int64
	Phone       string
	DisplayName string
	CreatedAt   time.Time
}

// Registered reports whether registration is complete
func (u *User) Registered() bool {
	return u != nil && u.DisplayName != ""
}

// IsValidPhone checks an optional leading plus followed by 10-15 digits
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NormalizeName trims surrounding whitespace from a display name
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
