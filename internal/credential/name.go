package credential

import (
	"strings"
	"unicode/utf8"

	apperrors "coinhub/internal/errors"
)

const maxPersonNameLength = 255

// NewPersonName trims raw and checks it is present and at most 255 characters.
// field is the request field reported on failure, e.g. "firstName".
func NewPersonName(field, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apperrors.NewValidationError(field, field+" is required")
	}
	if utf8.RuneCountInString(name) > maxPersonNameLength {
		return "", apperrors.NewValidationError(field, field+" is too long")
	}
	return name, nil
}
