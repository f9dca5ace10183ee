package token

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/coreauth/tokensvc/category"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()
	signer, err := NewSigner("salt")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return NewCodec(signer, map[category.Category]time.Duration{
		category.Access:  24 * time.Hour,
		category.Refresh: 7 * 24 * time.Hour,
		category.Email:   7 * 24 * time.Hour,
		category.Offline: 7 * 24 * time.Hour,
	})
}

func withFixedNow(t *testing.T, ms int64) {
	t.Helper()
	prev := nowMillis
	nowMillis = func() int64 { return ms }
	t.Cleanup(func() { nowMillis = prev })
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := testCodec(t)
	id := uuid.MustParse("00000000-0000-1000-8000-000000000001")
	withFixedNow(t, TimestampFromUUID(id))

	for _, cat := range category.All() {
		opaque, err := codec.Encode(cat, id)
		if err != nil {
			t.Fatalf("Encode(%s): %v", cat.Name(), err)
		}

		gotCat, gotID, err := codec.Decode(opaque, true)
		if err != nil {
			t.Fatalf("Decode(%s): %v", cat.Name(), err)
		}
		if gotCat.Name() != cat.Name() {
			t.Fatalf("Decode category = %s, want %s", gotCat.Name(), cat.Name())
		}
		if gotID != id {
			t.Fatalf("Decode id = %s, want %s", gotID, id)
		}
	}
}

func TestDecodeTamperDetection(t *testing.T) {
	codec := testCodec(t)
	id := uuid.MustParse("00000000-0000-1000-8000-000000000001")
	withFixedNow(t, TimestampFromUUID(id))

	opaque, err := codec.Encode(category.Access, id)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	tampered := tamperLastChar(opaque)
	if _, _, err := codec.Decode(tampered, true); err == nil {
		t.Fatal("Decode accepted a tampered token")
	}
}

func tamperLastChar(s string) string {
	alphabet := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	last := s[len(s)-1]
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] != last {
			return s[:len(s)-1] + string(alphabet[i])
		}
	}
	return s
}

func TestSignatureDomainSeparation(t *testing.T) {
	id := uuid.MustParse("00000000-0000-1000-8000-000000000001")

	signerA, _ := NewSigner("salt-a")
	signerB, _ := NewSigner("salt-b")
	ages := map[category.Category]time.Duration{category.Offline: 7 * 24 * time.Hour}

	codecA := NewCodec(signerA, ages)
	codecB := NewCodec(signerB, ages)

	opaque, err := codecA.Encode(category.Offline, id)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if _, _, err := codecB.Decode(opaque, true); err == nil {
		t.Fatal("Decode under a different salt should fail")
	}
}

func TestMaxAgeMatchesConfiguredExpiration(t *testing.T) {
	codec := testCodec(t)
	age, ok := codec.MaxAge(category.Access)
	if !ok {
		t.Fatal("expected Access to have a configured max age")
	}
	if age != 24*time.Hour {
		t.Fatalf("MaxAge(Access) = %v, want 24h", age)
	}
}

func TestDecodeExpiredAbsolute(t *testing.T) {
	codec := testCodec(t)
	id := uuid.MustParse("00000000-0000-1000-8000-000000000001")
	created := TimestampFromUUID(id)

	opaque, err := codec.Encode(category.Access, id)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	withFixedNow(t, created+24*time.Hour.Milliseconds()+1)

	_, _, err = codec.Decode(opaque, true)
	if err == nil {
		t.Fatal("expected ExpiredToken")
	}
	var expired *ErrExpiredToken
	if !errors.As(err, &expired) {
		t.Fatalf("expected ErrExpiredToken, got %v (%T)", err, err)
	}
}

func TestOfflineTokenHasNoExpirationBytes(t *testing.T) {
	codec := testCodec(t)
	id := uuid.MustParse("00000000-0000-1000-8000-000000000001")
	withFixedNow(t, TimestampFromUUID(id))

	opaque, err := codec.Encode(category.Offline, id)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if !strings.HasPrefix(opaque, category.Offline.Base64Prefix()) {
		t.Fatalf("expected offline prefix, got %q", opaque[:2])
	}

	body, err := base64.RawURLEncoding.DecodeString(opaque[category.Base64PrefixLength:])
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body) != 36 {
		t.Fatalf("body length = %d, want 36 (16-byte id + 20-byte signature, no expires)", len(body))
	}

	if category.Offline.CarriesExpiration() {
		t.Fatal("Offline must not carry an embedded expiration")
	}

	// codec.MaxAge still reports a configured age for Offline: it governs
	// the codec's own decode-time staleness check (applied to every
	// category), a separate concern from the wire-embedded expiration
	// this test is about.
	if _, ok := codec.MaxAge(category.Offline); !ok {
		t.Fatal("expected Offline to have a configured max age for the decode-time staleness check")
	}
}
