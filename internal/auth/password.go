package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 12

func HashPassword(password string) (string, error) {
	return hashPasswordWithCost(password, DefaultBcryptCost)
}

func hashPasswordWithCost(password string, cost int) (string, error) {
	trimmed := strings.TrimSpace(password)
	if trimmed == "" {
		return "", fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(trimmed), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func VerifyPassword(password, hash string) bool {
	trimmedPassword := strings.TrimSpace(password)
	trimmedHash := strings.TrimSpace(hash)
	if trimmedPassword == "" || trimmedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(trimmedHash), []byte(trimmedPassword)) == nil
}

func NormalizeUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Credentials guard the HTTP API with a single basic-auth account.
type Credentials struct {
	User         string
	PasswordHash string
}

// Enabled reports whether an account is configured.
func (c Credentials) Enabled() bool {
	return NormalizeUsername(c.User) != "" && strings.TrimSpace(c.PasswordHash) != ""
}

// Verify checks a username/password pair against the configured account.
func (c Credentials) Verify(user, password string) bool {
	if !c.Enabled() {
		return false
	}
	expected := []byte(NormalizeUsername(c.User))
	given := []byte(NormalizeUsername(user))
	userOK := subtle.ConstantTimeCompare(expected, given) == 1
	passwordOK := VerifyPassword(password, c.PasswordHash)
	return userOK && passwordOK
}
