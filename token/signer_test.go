package token

import (
	"testing"

	"github.com/google/uuid"

	"github.com/coreauth/tokensvc/category"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	signer, err := NewSigner("salt")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	id := uuid.MustParse("00000000-0000-1000-8000-000000000001")
	sig := signer.Sign(category.Access, id, 1234)

	if !signer.Verify(category.Access, id, 1234, sig) {
		t.Fatal("Verify rejected its own signature")
	}
}

func TestVerifyRejectsDifferentSalt(t *testing.T) {
	id := uuid.MustParse("00000000-0000-1000-8000-000000000001")

	s1, _ := NewSigner("salt-one")
	s2, _ := NewSigner("salt-two")

	sig := s1.Sign(category.Access, id, noExpiration)
	if s2.Verify(category.Access, id, noExpiration, sig) {
		t.Fatal("Verify accepted a signature produced under a different salt")
	}
}

func TestVerifyRejectsDifferentExpires(t *testing.T) {
	id := uuid.MustParse("00000000-0000-1000-8000-000000000001")
	signer, _ := NewSigner("salt")

	sig := signer.Sign(category.Access, id, 1000)
	if signer.Verify(category.Access, id, 2000, sig) {
		t.Fatal("Verify accepted a signature under a different expires value")
	}
}

func TestVerifyRejectsDifferentCategory(t *testing.T) {
	id := uuid.MustParse("00000000-0000-1000-8000-000000000001")
	signer, _ := NewSigner("salt")

	sig := signer.Sign(category.Access, id, noExpiration)
	if signer.Verify(category.Refresh, id, noExpiration, sig) {
		t.Fatal("Verify accepted a signature produced under a different category prefix")
	}
}

func TestNewSignerRejectsEmptySalt(t *testing.T) {
	if _, err := NewSigner(""); err == nil {
		t.Fatal("expected error for empty secret salt")
	}
}
