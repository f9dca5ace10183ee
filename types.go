package tokensvc

import (
	"github.com/coreauth/tokensvc/store"
)

// TokenInfo is the persistent record addressed by a token's embedded
// identifier.
type TokenInfo = store.TokenInfo

// AuthPrincipalInfo identifies the subject a token was issued for.
type AuthPrincipalInfo = store.AuthPrincipalInfo

// PrincipalType is the closed set of principal kinds a token may be
// issued for.
type PrincipalType = store.PrincipalType

const (
	AdminUser        = store.AdminUser
	OrganizationUser = store.OrganizationUser
	ApplicationUser  = store.ApplicationUser
	Organization     = store.Organization
	Application      = store.Application
)
