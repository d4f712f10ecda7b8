package identity

import (
	"strings"
	"testing"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()

	password := "correct-horse-battery"
	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == password {
		t.Error("Hash() returned plaintext password")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}

	if !hasher.Verify(password, hash) {
		t.Error("Verify() rejected the correct password")
	}
	if hasher.Verify("wrong-password", hash) {
		t.Error("Verify() accepted a wrong password")
	}
}

func TestPasswordHasher_DifferentHashesForSamePassword(t *testing.T) {
	hasher := NewPasswordHasher()

	hash1, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	hash2, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// bcrypt salts every hash
	if hash1 == hash2 {
		t.Error("expected different hashes for the same password")
	}
}

func TestPasswordHasher_VerifyEmptyHash(t *testing.T) {
	hasher := NewPasswordHasher()

	if hasher.Verify("anything", "") {
		t.Error("Verify() should reject an empty hash")
	}
}
