// Package category enumerates the recognized token kinds and their
// fixed wire-level properties.
package category

import "fmt"

// Base64PrefixLength is the number of bytes a category contributes to the
// front of an encoded token string, before the base64-url body begins.
const Base64PrefixLength = 2

// Category describes one of the closed set of recognized token kinds.
type Category struct {
	name              string
	textPrefix        string
	base64Prefix      string
	carriesExpiration bool
}

// Name returns the category's textual identifier, e.g. "access".
func (c Category) Name() string { return c.name }

// TextPrefix is the two printable bytes used inside the signed string.
func (c Category) TextPrefix() string { return c.textPrefix }

// Base64Prefix is the two bytes that lead the encoded token string.
func (c Category) Base64Prefix() string { return c.base64Prefix }

// CarriesExpiration reports whether tokens of this category embed an
// absolute expiration timestamp in the wire body.
func (c Category) CarriesExpiration() bool { return c.carriesExpiration }

// IsZero reports whether c is the zero Category (no category resolved).
func (c Category) IsZero() bool { return c.textPrefix == "" }

var (
	// Access tokens carry a short-lived absolute expiration.
	Access = Category{name: "access", textPrefix: "ac", base64Prefix: "YW", carriesExpiration: true}
	// Refresh tokens do not embed an expiration; lifetime is governed by
	// the persisted record's TTL.
	Refresh = Category{name: "refresh", textPrefix: "re", base64Prefix: "cm", carriesExpiration: false}
	// Email tokens are single-purpose, long-lived, non-expiring (in the
	// wire body) identifiers used for email confirmation flows.
	Email = Category{name: "email", textPrefix: "em", base64Prefix: "ZW", carriesExpiration: false}
	// Offline tokens grant long-lived offline access and embed no
	// expiration either.
	Offline = Category{name: "offline", textPrefix: "of", base64Prefix: "b2", carriesExpiration: false}
)

var byBase64Prefix = map[string]Category{
	Access.base64Prefix:  Access,
	Refresh.base64Prefix: Refresh,
	Email.base64Prefix:   Email,
	Offline.base64Prefix: Offline,
}

// FromBase64Prefix resolves a Category from the first Base64PrefixLength
// bytes of an encoded token string.
func FromBase64Prefix(s string) (Category, error) {
	if len(s) < Base64PrefixLength {
		return Category{}, fmt.Errorf("category: token too short for prefix")
	}

	c, ok := byBase64Prefix[s[:Base64PrefixLength]]
	if !ok {
		return Category{}, fmt.Errorf("category: unrecognized prefix %q", s[:Base64PrefixLength])
	}

	return c, nil
}

// All returns every registered category, in a stable order.
func All() []Category {
	return []Category{Access, Refresh, Email, Offline}
}
