package credential

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"

	apperrors "coinhub/internal/errors"
)

// argon2id parameters.
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // KiB
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	passwordSymbols   = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

// decoyHash has the same cost parameters as real hashes and matches no password.
var decoyHash = fmt.Sprintf(
	"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
	argon2.Version, argon2Memory, argon2Time, argon2Threads,
	strings.Repeat("A", 22), strings.Repeat("A", 43),
)

// Password holds an argon2id hash in PHC string form. It never carries plaintext.
type Password struct {
	hash string
}

// NewPassword checks strength rules on plain and hashes it.
// Hashing is abandoned if ctx is cancelled first.
func NewPassword(ctx context.Context, plain string) (Password, error) {
	if err := ValidatePasswordStrength(plain); err != nil {
		return Password{}, err
	}

	type result struct {
		hash string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		h, err := hashArgon2id(plain)
		done <- result{hash: h, err: err}
	}()

	select {
	case <-ctx.Done():
		return Password{}, oops.Code("PASSWORD_HASH_CANCELLED").Wrap(ctx.Err())
	case r := <-done:
		if r.err != nil {
			return Password{}, r.err
		}
		return Password{hash: r.hash}, nil
	}
}

// PasswordFromHash wraps a stored hash. Strength rules are not re-applied.
func PasswordFromHash(hash string) (Password, error) {
	if hash == "" {
		return Password{}, oops.Code("PASSWORD_INVALID_HASH").Errorf("invalid hashed password")
	}
	return Password{hash: hash}, nil
}

// DecoyPassword returns a password that verifies nothing but costs as much as a real one.
func DecoyPassword() Password {
	return Password{hash: decoyHash}
}

// ValidatePasswordStrength applies the password policy without hashing.
func ValidatePasswordStrength(plain string) error {
	if plain == "" {
		return apperrors.NewValidationError("password", "Password cannot be empty")
	}
	n := utf8.RuneCountInString(plain)
	if n < minPasswordLength {
		return apperrors.NewValidationError("password", "Password must be at least 8 characters long")
	}
	if n > maxPasswordLength {
		return apperrors.NewValidationError("password", "Password is too long")
	}
	if !strings.ContainsAny(plain, "abcdefghijklmnopqrstuvwxyz") {
		return apperrors.NewValidationError("password", "Password must contain at least one lowercase letter")
	}
	if !strings.ContainsAny(plain, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return apperrors.NewValidationError("password", "Password must contain at least one uppercase letter")
	}
	if !strings.ContainsAny(plain, "0123456789") {
		return apperrors.NewValidationError("password", "Password must contain at least one number")
	}
	if !strings.ContainsAny(plain, passwordSymbols) {
		return apperrors.NewValidationError("password", "Password must contain at least one special character")
	}
	return nil
}

// Hash returns the PHC-encoded hash for storage.
func (p Password) Hash() string {
	return p.hash
}

// String never reveals the hash.
func (p Password) String() string {
	return "[REDACTED]"
}

// MarshalJSON keeps the hash out of any serialised output.
func (p Password) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// Verify reports whether candidate matches. Any failure, including a
// malformed hash or a cancelled ctx, is reported as a mismatch.
func (p Password) Verify(ctx context.Context, candidate string) bool {
	if ctx.Err() != nil {
		return false
	}

	done := make(chan bool, 1)
	go func() {
		ok, err := verifyArgon2id(candidate, p.hash)
		done <- err == nil && ok
	}()

	select {
	case <-ctx.Done():
		return false
	case ok := <-done:
		return ok
	}
}

func hashArgon2id(plain string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("PASSWORD_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(plain), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2id(candidate, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, oops.Code("PASSWORD_INVALID_HASH").Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return false, oops.Code("PASSWORD_INVALID_HASH").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("PASSWORD_INVALID_HASH").Wrap(err)
	}
	if version != argon2.Version {
		return false, oops.Code("PASSWORD_INVALID_HASH").Errorf("unsupported argon2 version %d", version)
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, oops.Code("PASSWORD_INVALID_HASH").Wrap(err)
	}
	if threads == 0 || threads > 255 || iterations == 0 || memory == 0 {
		return false, oops.Code("PASSWORD_INVALID_HASH").Errorf("invalid argon2 parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("PASSWORD_INVALID_HASH").Wrap(err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("PASSWORD_INVALID_HASH").Wrap(err)
	}
	if len(expected) == 0 || len(expected) > 1024 {
		return false, oops.Code("PASSWORD_INVALID_HASH").Errorf("invalid hash key length: %d", len(expected))
	}

	computed := argon2.IDKey([]byte(candidate), salt, iterations, memory, uint8(threads), uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
