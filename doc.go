// Package tokensvc issues, validates, and refreshes opaque bearer tokens.
// A token is a small signed binary blob; the service's other half is a
// persistent record, addressed by the token's embedded identifier, that
// carries the associated principal, activity timestamps, and
// application-defined state.
//
// All coordination is deferred to the configured store.Client; Service
// itself holds only immutable configuration and atomic metric counters
// once built, so its methods are safe for concurrent use.
//
// Performance contract: Issue performs one store round-trip (a write),
// Validate two (a read and a write), and Refresh three (Validate's two
// plus a full rewrite); Decode/Encode are CPU-only and never block.
package tokensvc
