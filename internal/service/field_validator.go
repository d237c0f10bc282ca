package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apperrors "coinhub/internal/errors"
)

const maxDescriptionLength = 255

var (
	currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)
	colorPattern    = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// FieldValidator normalises and checks resource fields before they reach storage.
type FieldValidator struct{}

// NewFieldValidator creates a new field validator.
func NewFieldValidator() *FieldValidator {
	return &FieldValidator{}
}

// AccountName trims name and requires 5 to 50 characters.
func (v *FieldValidator) AccountName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if n := utf8.RuneCountInString(trimmed); n < 5 || n > 50 {
		return "", apperrors.NewValidationError("name", "Account name must be between 5 and 50 characters")
	}
	return trimmed, nil
}

// Currency requires a 3-letter code and upper-cases it.
func (v *FieldValidator) Currency(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if !currencyPattern.MatchString(trimmed) {
		return "", apperrors.NewValidationError("currency", "Currency must be a valid 3-letter code")
	}
	return strings.ToUpper(trimmed), nil
}

// CategoryName trims name and requires 2 to 50 characters.
func (v *FieldValidator) CategoryName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if n := utf8.RuneCountInString(trimmed); n < 2 || n > 50 {
		return "", apperrors.NewValidationError("name", "Category name must be between 2 and 50 characters")
	}
	return trimmed, nil
}

// Color requires #RRGGBB and upper-cases it.
func (v *FieldValidator) Color(color string) (string, error) {
	if !colorPattern.MatchString(color) {
		return "", apperrors.NewValidationError("color", "Color must be a valid hexadecimal format (#RRGGBB)")
	}
	return strings.ToUpper(color), nil
}

// Description returns nil for a blank description.
func (v *FieldValidator) Description(desc *string) (*string, error) {
	if desc == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > maxDescriptionLength {
		return nil, apperrors.NewValidationError("description", "Description cannot exceed 255 characters")
	}
	return &trimmed, nil
}

// Amount requires a strictly positive value with at most two decimals.
func (v *FieldValidator) Amount(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.NewValidationError("amount", "Amount must be positive")
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, apperrors.NewValidationError("amount", "Amount cannot have more than 2 decimals")
	}
	return amount, nil
}

// Balance allows any sign but at most two decimals.
func (v *FieldValidator) Balance(balance decimal.Decimal) (decimal.Decimal, error) {
	if !balance.Equal(balance.Round(2)) {
		return decimal.Zero, apperrors.NewValidationError("initialBalance", "Initial balance cannot have more than 2 decimals")
	}
	return balance, nil
}
