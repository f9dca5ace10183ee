package token

import (
	"crypto/sha1"
	"crypto/subtle"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/coreauth/tokensvc/category"
)

// noExpiration is substituted for the expires field when a category does
// not carry an embedded expiration, matching the maximum value of a
// signed 64-bit integer.
const noExpiration int64 = 1<<63 - 1

// Signer computes and verifies the keyed digest carried in a token's
// trailing bytes. The digest is SHA-1 for wire compatibility with
// already-issued tokens; it must not be silently upgraded without a new,
// versioned category.
type Signer struct {
	secretSalt string
}

// NewSigner builds a Signer over the given secret salt. The Signer keeps
// the salt in an unexported field and exposes no accessor for it.
func NewSigner(secretSalt string) (*Signer, error) {
	if secretSalt == "" {
		return nil, fmt.Errorf("token: secret salt must not be empty")
	}
	return &Signer{secretSalt: secretSalt}, nil
}

// Sign computes the 20-byte digest over cat's text prefix, the canonical
// uuid string, the configured salt, and the decimal form of expires, with
// no delimiters between the parts.
func (s *Signer) Sign(cat category.Category, id uuid.UUID, expires int64) [20]byte {
	return sha1.Sum(s.signedString(cat, id, expires))
}

// Verify reports whether sig matches the digest computed over the same
// inputs, using a constant-time comparison so a forged token cannot be
// distinguished from a merely-stale one by timing.
func (s *Signer) Verify(cat category.Category, id uuid.UUID, expires int64, sig [20]byte) bool {
	expected := s.Sign(cat, id, expires)
	return subtle.ConstantTimeCompare(expected[:], sig[:]) == 1
}

func (s *Signer) signedString(cat category.Category, id uuid.UUID, expires int64) []byte {
	buf := make([]byte, 0, len(cat.TextPrefix())+36+len(s.secretSalt)+20)
	buf = append(buf, cat.TextPrefix()...)
	buf = append(buf, id.String()...)
	buf = append(buf, s.secretSalt...)
	buf = append(buf, strconv.FormatInt(expires, 10)...)
	return buf
}
