package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := hashPasswordWithCost("changeme123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "" {
		t.Fatalf("expected non-empty hash")
	}
	if !VerifyPassword("changeme123", hash) {
		t.Fatalf("expected password verification to succeed")
	}
	if VerifyPassword("wrong-password", hash) {
		t.Fatalf("did not expect wrong password to verify")
	}
	if _, err := HashPassword("   "); err == nil {
		t.Fatalf("expected blank password to fail")
	}
}

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	if got := NormalizeUsername(" Admin "); got != "admin" {
		t.Fatalf("unexpected normalized username: %q", got)
	}
}

func TestCredentials(t *testing.T) {
	t.Parallel()

	hash, err := hashPasswordWithCost("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	creds := Credentials{User: "Translator", PasswordHash: hash}

	if !creds.Enabled() {
		t.Fatalf("expected credentials to be enabled")
	}
	if !creds.Verify(" translator ", "s3cret") {
		t.Fatalf("expected matching credentials to verify")
	}
	if creds.Verify("someone", "s3cret") || creds.Verify("translator", "nope") {
		t.Fatalf("expected mismatches to fail")
	}
	if (Credentials{}).Verify("", "") {
		t.Fatalf("expected disabled credentials to reject everything")
	}
}
