package cryptox

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != keySize {
		t.Errorf("expected %d byte key, got %d", keySize, len(key1))
	}
}

func TestDeriveKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveKey(password, []byte("salt-1"))
	key2 := DeriveKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestHashAndVerify(t *testing.T) {
	encoded := HashPassword("hunter2")

	ok, err := VerifyPassword(encoded, "hunter2")
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = VerifyPassword(encoded, "hunter3")
	if err != nil || ok {
		t.Fatalf("expected mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	if HashPassword("same") == HashPassword("same") {
		t.Fatalf("expected different hashes for the same password")
	}
}

func TestVerifyPassword_Malformed(t *testing.T) {
	cases := []string{
		"no-separator",
		"zz$" + hex.EncodeToString([]byte("k")),
		hex.EncodeToString([]byte("s")) + "$zz",
	}
	for _, c := range cases {
		if _, err := VerifyPassword(c, "x"); !errors.Is(err, ErrMalformedHash) {
			t.Errorf("%q: expected ErrMalformedHash, got %v", c, err)
		}
	}
}
