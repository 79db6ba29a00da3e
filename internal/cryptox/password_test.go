package cryptox

import (
	"bytes"
	"testing"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt-value")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != KeySize {
		t.Errorf("expected %d-byte key, got %d", KeySize, len(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveKey(password, []byte("salt-1"))
	key2 := DeriveKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	salt, hash := HashPassword("correct horse battery")

	if len(salt) != SaltSize {
		t.Fatalf("expected %d-byte salt, got %d", SaltSize, len(salt))
	}
	if !VerifyPassword("correct horse battery", salt, hash) {
		t.Fatalf("expected password to verify")
	}
	if VerifyPassword("wrong horse battery", salt, hash) {
		t.Fatalf("expected wrong password to be rejected")
	}
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	s1, h1 := HashPassword("same")
	s2, h2 := HashPassword("same")

	if bytes.Equal(s1, s2) {
		t.Errorf("two salts are identical")
	}
	if bytes.Equal(h1, h2) {
		t.Errorf("same password under different salts produced the same hash")
	}
}

func TestVerifyPassword_EmptyHash(t *testing.T) {
	if VerifyPassword("anything", dummySalt, nil) {
		t.Fatalf("nil hash must never verify")
	}
	BurnPasswordCheck("anything")
}
