package auth

import "testing"

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal plaintext")
	}
	if !VerifyPassword(hash, "correct horse battery") {
		t.Error("expected matching password to verify")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Error("expected mismatched password to fail")
	}
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Error("expected invalid hash to fail verification")
	}
}
