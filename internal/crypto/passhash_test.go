package crypto

import (
	"bytes"
	"testing"
)

func TestRandBytes_LengthAndUniqueness(t *testing.T) {
	t.Parallel()

	a, err := RandBytes(SaltLen)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	if len(a) != SaltLen {
		t.Fatalf("len=%d, want=%d", len(a), SaltLen)
	}
	b, err := RandBytes(SaltLen)
	if err != nil {
		t.Fatalf("RandBytes(2): %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two subsequent salts are equal")
	}
}

func TestNewHash_SaltPerCall(t *testing.T) {
	t.Parallel()

	h1, s1, err := NewHash("Str0ngPass!")
	if err != nil {
		t.Fatalf("NewHash: %v", err)
	}
	h2, s2, err := NewHash("Str0ngPass!")
	if err != nil {
		t.Fatalf("NewHash(2): %v", err)
	}
	if len(s1) != SaltLen || len(h1) == 0 {
		t.Fatalf("bad salt/hash sizes: salt=%d hash=%d", len(s1), len(h1))
	}
	if bytes.Equal(s1, s2) || bytes.Equal(h1, h2) {
		t.Fatalf("same password must hash differently under fresh salts")
	}
	if !bytes.Equal(HashPassword([]byte("Str0ngPass!"), s1), h1) {
		t.Fatalf("hash not reproducible from stored salt")
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, salt, err := NewHash("correct horse battery staple")
	if err != nil {
		t.Fatalf("NewHash: %v", err)
	}

	if !VerifyPassword([]byte("correct horse battery staple"), salt, hash) {
		t.Fatalf("expected true for correct password")
	}
	if VerifyPassword([]byte("wrong"), salt, hash) {
		t.Fatalf("expected false for wrong password")
	}
	if VerifyPassword([]byte("correct horse battery staple"), []byte("other-salt"), hash) {
		t.Fatalf("expected false for wrong salt")
	}
	if VerifyPassword([]byte{}, salt, hash) {
		t.Fatalf("expected false for empty password")
	}
	if VerifyPassword([]byte("correct horse battery staple"), salt, nil) {
		t.Fatalf("expected false against empty stored hash")
	}
}
