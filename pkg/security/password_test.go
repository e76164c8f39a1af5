package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ojastore/storefront-backend/pkg/config"
	"github.com/ojastore/storefront-backend/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	bad := []string{
		"not-a-hash",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=16$m=65536,t=3,p=2$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=0,t=3,p=2$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=65536,t=3,p=2$!!$a2V5a2V5",
		"$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHQ$",
	}
	for _, encoded := range bad {
		if _, err := security.VerifyPassword("irrelevant", encoded); !errors.Is(err, security.ErrInvalidHash) {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", encoded, err)
		}
	}
}

func TestHashPasswordEmbedsClampedParams(t *testing.T) {
	hash, err := security.HashPassword("pw", config.PasswordConfig{ArgonMemoryKB: 1, ArgonTime: 99, ArgonParallelism: 0})
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8,t=10,p=1$") {
		t.Fatalf("unexpected params in %q", hash)
	}
	if _, err := security.HashPassword("", config.PasswordConfig{}); err == nil {
		t.Fatal("expected empty password to be rejected")
	}
}

func TestRandomString(t *testing.T) {
	first, err := security.RandomString(12)
	if err != nil {
		t.Fatalf("RandomString returned error: %v", err)
	}
	if len(first) != 12 {
		t.Fatalf("expected 12 characters, got %d", len(first))
	}
	if strings.Trim(first, "abcdefghijklmnopqrstuvwxyz0123456789") != "" {
		t.Fatalf("unexpected characters in %q", first)
	}
	second, _ := security.RandomString(12)
	if first == second {
		t.Fatalf("expected distinct values, got %q twice", first)
	}
	if _, err := security.RandomString(0); err == nil {
		t.Fatal("expected error for zero length")
	}
}
