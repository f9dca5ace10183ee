package store

import "github.com/google/uuid"

// PrincipalType is the closed set of principal kinds a token may be
// issued for.
type PrincipalType string

const (
	AdminUser        PrincipalType = "adminuser"
	OrganizationUser PrincipalType = "organizationuser"
	ApplicationUser  PrincipalType = "applicationuser"
	Organization     PrincipalType = "organization"
	Application      PrincipalType = "application"
)

// AuthPrincipalInfo identifies the subject a token was issued for. All
// three fields are present together, or the principal is entirely absent
// from a TokenInfo.
type AuthPrincipalInfo struct {
	Type          PrincipalType
	EntityID      uuid.UUID
	ApplicationID uuid.UUID
}

// TokenInfo is the persistent record addressed by a token's embedded
// identifier.
type TokenInfo struct {
	UUID      uuid.UUID
	Type      string
	Created   int64
	Accessed  int64
	Inactive  int64
	Principal *AuthPrincipalInfo
	State     map[string]any
}
