package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret.pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "s3cret.pass" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret.pass")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret.pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if !VerifyPassword("s3cret.pass", hash) {
		t.Fatalf("expected correct password to verify")
	}
	if VerifyPassword("wrong.pass1", hash) {
		t.Fatalf("expected wrong password to fail")
	}
	if VerifyPassword("s3cret.pass", "not-a-hash") {
		t.Fatalf("expected malformed hash to fail")
	}
	if VerifyPassword("", hash) {
		t.Fatalf("expected empty password to fail")
	}
}
