// Package credential holds the login credential value objects.
package credential

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	apperrors "coinhub/internal/errors"
)

const maxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email is a normalised (trimmed, lower-cased) email address.
// The zero value is not a valid email.
type Email struct {
	value string
}

// NewEmail validates and normalises raw.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{}, apperrors.NewValidationError("email", "Email cannot be empty")
	}
	if !emailPattern.MatchString(normalized) {
		return Email{}, apperrors.NewValidationError("email", "Invalid email format")
	}
	if len(normalized) > maxEmailLength {
		return Email{}, apperrors.NewValidationError("email", "Email is too long")
	}
	return Email{value: normalized}, nil
}

// MustEmail is NewEmail for fixtures and seed data; it panics on invalid input.
func MustEmail(raw string) Email {
	e, err := NewEmail(raw)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Email) String() string {
	return e.value
}

// Equal compares normalised values.
func (e Email) Equal(other Email) bool {
	return e.value == other.value
}

// IsZero reports whether e was never set.
func (e Email) IsZero() bool {
	return e.value == ""
}

// GormDataType maps the column to a plain string.
func (Email) GormDataType() string {
	return "string"
}

// Value implements driver.Valuer.
func (e Email) Value() (driver.Value, error) {
	return e.value, nil
}

// Scan implements sql.Scanner.
func (e *Email) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*e = Email{}
		return nil
	default:
		return fmt.Errorf("scan email: unsupported type %T", src)
	}
	parsed, err := NewEmail(raw)
	if err != nil {
		return fmt.Errorf("scan email: %w", err)
	}
	*e = parsed
	return nil
}

// MarshalJSON encodes the email as a JSON string.
func (e Email) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.value)
}

// UnmarshalJSON decodes and validates a JSON string.
func (e *Email) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewEmail(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
