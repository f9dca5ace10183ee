package token

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/coreauth/tokensvc/category"
)

// ErrBadToken indicates the input could not be parsed, or its signature
// did not verify.
type ErrBadToken struct {
	Reason string
}

func (e *ErrBadToken) Error() string { return "bad token: " + e.Reason }

// ErrExpiredToken indicates the token's absolute expiration has passed.
// ElapsedMillis reports how far past expiration the check ran.
type ErrExpiredToken struct {
	ElapsedMillis int64
}

func (e *ErrExpiredToken) Error() string {
	return fmt.Sprintf("expired token: %dms past expiration", e.ElapsedMillis)
}

// Codec encodes and decodes the opaque wire format described by the token
// category registry: a category prefix, a 16-byte identifier, an optional
// 8-byte absolute expiration, and a 20-byte signature.
type Codec struct {
	signer *Signer
	maxAge map[string]time.Duration
}

// NewCodec builds a Codec from a signer and a per-category maximum age
// table. A category absent from maxAge, or mapped to a non-positive
// duration, has no expiration check applied.
func NewCodec(signer *Signer, maxAge map[category.Category]time.Duration) *Codec {
	c := &Codec{signer: signer, maxAge: make(map[string]time.Duration, len(maxAge))}
	for cat, age := range maxAge {
		c.maxAge[cat.Name()] = age
	}
	return c
}

// MaxAge returns the configured maximum age for cat, and whether one is
// configured at all.
func (c *Codec) MaxAge(cat category.Category) (time.Duration, bool) {
	age, ok := c.maxAge[cat.Name()]
	if !ok || age <= 0 {
		return 0, false
	}
	return age, true
}

// Encode produces the opaque wire string for id under cat. When cat
// carries an expiration, the embedded absolute expiration is derived from
// id's own timestamp plus cat's configured maximum age.
func (c *Codec) Encode(cat category.Category, id uuid.UUID) (string, error) {
	expires := noExpiration
	if cat.CarriesExpiration() {
		age, ok := c.MaxAge(cat)
		if !ok {
			return "", fmt.Errorf("token: category %q carries expiration but has no configured max age", cat.Name())
		}
		expires = TimestampFromUUID(id) + age.Milliseconds()
	}

	sig := c.signer.Sign(cat, id, expires)

	size := 16 + 20
	if cat.CarriesExpiration() {
		size += 8
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("token: marshal id: %w", err)
	}
	buf.Write(idBytes)

	if cat.CarriesExpiration() {
		if err := binary.Write(buf, binary.BigEndian, expires); err != nil {
			return "", fmt.Errorf("token: write expires: %w", err)
		}
	}

	buf.Write(sig[:])

	return cat.Base64Prefix() + base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode parses and authenticates an opaque wire string, returning the
// category and identifier it encodes. The signature is verified before
// any expiration check is applied, so a forged token cannot be
// distinguished from a merely-expired one before authentication.
//
// checkExpiry applies the codec's own static expiration check (creation
// time plus the category's configured maximum age). Callers that slide
// the effective deadline forward using a persisted "accessed" value
// (Config.ExpiresFromLastUse) should pass false here and apply their own
// check once the backing record has been read.
func (c *Codec) Decode(s string, checkExpiry bool) (category.Category, uuid.UUID, error) {
	cat, err := category.FromBase64Prefix(s)
	if err != nil {
		return category.Category{}, uuid.UUID{}, &ErrBadToken{Reason: err.Error()}
	}

	body, err := base64.RawURLEncoding.Strict().DecodeString(s[category.Base64PrefixLength:])
	if err != nil {
		return category.Category{}, uuid.UUID{}, &ErrBadToken{Reason: "invalid base64 body"}
	}

	wantLen := 16 + 20
	if cat.CarriesExpiration() {
		wantLen += 8
	}
	if len(body) != wantLen {
		return category.Category{}, uuid.UUID{}, &ErrBadToken{Reason: "wrong body length"}
	}

	reader := bytes.NewReader(body)

	var idBytes [16]byte
	if _, err := io.ReadFull(reader, idBytes[:]); err != nil {
		return category.Category{}, uuid.UUID{}, &ErrBadToken{Reason: "short identifier"}
	}
	id, err := uuid.FromBytes(idBytes[:])
	if err != nil {
		return category.Category{}, uuid.UUID{}, &ErrBadToken{Reason: "malformed identifier"}
	}

	expires := noExpiration
	if cat.CarriesExpiration() {
		if err := binary.Read(reader, binary.BigEndian, &expires); err != nil {
			return category.Category{}, uuid.UUID{}, &ErrBadToken{Reason: "short expiration"}
		}
	}

	var sig [20]byte
	if _, err := io.ReadFull(reader, sig[:]); err != nil {
		return category.Category{}, uuid.UUID{}, &ErrBadToken{Reason: "short signature"}
	}

	if !c.signer.Verify(cat, id, expires, sig) {
		return category.Category{}, uuid.UUID{}, &ErrBadToken{Reason: "signature mismatch"}
	}

	if checkExpiry {
		if age, ok := c.MaxAge(cat); ok {
			deadline := TimestampFromUUID(id) + age.Milliseconds()
			now := nowMillis()
			if now > deadline {
				return category.Category{}, uuid.UUID{}, &ErrExpiredToken{ElapsedMillis: now - deadline}
			}
		}
	}

	return cat, id, nil
}

// TimestampFromUUID extracts the millisecond creation timestamp embedded
// in a time-ordered (version-1-like) UUID.
func TimestampFromUUID(id uuid.UUID) int64 {
	sec, nsec := id.Time().UnixTime()
	return sec*1000 + nsec/int64(time.Millisecond)
}

var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}
