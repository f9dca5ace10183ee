package tokensvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/coreauth/tokensvc/category"
	"github.com/coreauth/tokensvc/store"
	"github.com/coreauth/tokensvc/token"
)

var tracer = otel.Tracer("github.com/coreauth/tokensvc")

// Service issues, validates, and refreshes opaque bearer tokens. It is
// immutable after Builder.Build and safe for concurrent use.
type Service struct {
	config  Config
	codec   *token.Codec
	adapter *store.Adapter
	audit   AuditSink
	metrics *Metrics
}

// Issue allocates a new time-ordered identifier, persists a fresh
// TokenInfo record for it, and returns the encoded opaque token string.
// tokenType defaults to "access" when empty.
func (s *Service) Issue(ctx context.Context, cat category.Category, tokenType string, principal *AuthPrincipalInfo, state map[string]any) (string, error) {
	ctx, span := tracer.Start(ctx, "tokensvc.Issue")
	defer span.End()

	id, err := uuid.NewUUID()
	if err != nil {
		return "", fmt.Errorf("tokensvc: allocate identifier: %w", err)
	}

	if tokenType == "" {
		tokenType = "access"
	}

	created := token.TimestampFromUUID(id)
	info := &TokenInfo{
		UUID:      id,
		Type:      tokenType,
		Created:   created,
		Accessed:  created,
		Inactive:  0,
		Principal: principal,
		State:     state,
	}

	if err := s.adapter.Put(ctx, info); err != nil {
		s.metrics.Inc(MetricStoreError)
		s.emitAudit(ctx, "issue", cat, id, false, err)
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	opaque, err := s.codec.Encode(cat, id)
	if err != nil {
		return "", err
	}

	s.metrics.Inc(MetricIssued)
	s.emitAudit(ctx, "issue", cat, id, true, nil)

	return opaque, nil
}

// Validate decodes and authenticates opaque, then reads and touches its
// backing record. On success the returned TokenInfo reflects any
// inactive-gap update the touch applied.
func (s *Service) Validate(ctx context.Context, opaque string) (*TokenInfo, error) {
	ctx, span := tracer.Start(ctx, "tokensvc.Validate")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.Observe(MetricValidateLatency, time.Since(start)) }()

	cat, id, err := s.codec.Decode(opaque, !s.config.ExpiresFromLastUse)
	if err != nil {
		return nil, s.classifyDecodeError(ctx, cat, id, err)
	}

	info, err := s.adapter.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrInvalidToken) {
			s.metrics.Inc(MetricRejectedInvalidToken)
			s.emitAudit(ctx, "validate", cat, id, false, ErrInvalidToken)
			return nil, ErrInvalidToken
		}
		s.metrics.Inc(MetricStoreError)
		s.emitAudit(ctx, "validate", cat, id, false, err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if s.config.ExpiresFromLastUse {
		age, ok := s.codec.MaxAge(cat)
		if ok {
			deadline := info.Accessed + age.Milliseconds()
			now := time.Now().UnixMilli()
			if now > deadline {
				s.metrics.Inc(MetricRejectedExpiredToken)
				s.emitAudit(ctx, "validate", cat, id, false, ErrExpiredToken)
				return nil, ErrExpiredToken
			}
		}
	}

	now := time.Now().UnixMilli()
	inactive, err := s.adapter.Touch(ctx, id, now, info.Accessed, info.Inactive)
	if err != nil {
		s.metrics.Inc(MetricStoreError)
		s.emitAudit(ctx, "validate", cat, id, false, err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	info.Accessed = now
	info.Inactive = inactive

	s.metrics.Inc(MetricValidated)
	s.emitAudit(ctx, "validate", cat, id, true, nil)

	return info, nil
}

// Refresh validates opaque, then rewrites its backing record with a fresh
// accessed timestamp (created and inactive are carried over) and returns
// a freshly encoded Access token. When
// Config.RefreshReusesID is true (the default) the identifier is
// preserved; otherwise a new identifier replaces it and the old record is
// left to expire via its own TTL.
func (s *Service) Refresh(ctx context.Context, opaque string) (string, error) {
	ctx, span := tracer.Start(ctx, "tokensvc.Refresh")
	defer span.End()

	info, err := s.Validate(ctx, opaque)
	if err != nil {
		return "", err
	}

	newID := info.UUID
	if !s.config.RefreshReusesID {
		newID, err = uuid.NewUUID()
		if err != nil {
			return "", fmt.Errorf("tokensvc: allocate identifier: %w", err)
		}
	}

	refreshed := &TokenInfo{
		UUID:      newID,
		Type:      info.Type,
		Created:   info.Created,
		Accessed:  time.Now().UnixMilli(),
		Inactive:  info.Inactive,
		Principal: info.Principal,
		State:     info.State,
	}

	if err := s.adapter.Put(ctx, refreshed); err != nil {
		s.metrics.Inc(MetricStoreError)
		s.emitAudit(ctx, "refresh", category.Access, newID, false, err)
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	opaqueOut, err := s.codec.Encode(category.Access, newID)
	if err != nil {
		return "", err
	}

	s.metrics.Inc(MetricRefreshed)
	s.emitAudit(ctx, "refresh", category.Access, newID, true, nil)

	return opaqueOut, nil
}

// MaxTokenAge returns the maximum age configured for opaque's category, in
// milliseconds since creation, without validating its signature. Only
// categories that carry an embedded wire expiration have a finite answer;
// for the others it returns the maximum positive 64-bit value, the same
// value the signer uses in place of an absent expires field.
func (s *Service) MaxTokenAge(opaque string) (int64, error) {
	cat, err := category.FromBase64Prefix(opaque)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadToken, err)
	}

	if !cat.CarriesExpiration() {
		return noExpirationMillis, nil
	}

	age, ok := s.codec.MaxAge(cat)
	if !ok {
		return noExpirationMillis, nil
	}

	return age.Milliseconds(), nil
}

// MetricsSnapshot returns a point-in-time read of the service's counters.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

const noExpirationMillis = 1<<63 - 1

func (s *Service) classifyDecodeError(ctx context.Context, cat category.Category, id uuid.UUID, err error) error {
	var badToken *token.ErrBadToken
	var expiredToken *token.ErrExpiredToken

	switch {
	case errors.As(err, &badToken):
		s.metrics.Inc(MetricRejectedBadToken)
		s.emitAudit(ctx, "validate", cat, id, false, ErrBadToken)
		return fmt.Errorf("%w: %s", ErrBadToken, badToken.Reason)
	case errors.As(err, &expiredToken):
		s.metrics.Inc(MetricRejectedExpiredToken)
		s.emitAudit(ctx, "validate", cat, id, false, ErrExpiredToken)
		return ErrExpiredToken
	default:
		s.metrics.Inc(MetricRejectedBadToken)
		s.emitAudit(ctx, "validate", cat, id, false, err)
		return fmt.Errorf("%w: %v", ErrBadToken, err)
	}
}

func (s *Service) emitAudit(ctx context.Context, eventType string, cat category.Category, id uuid.UUID, success bool, err error) {
	if s.audit == nil || !s.config.Audit.Enabled {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Category:  cat.Name(),
		TokenUUID: id.String(),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}

	s.audit.Emit(ctx, event)
}
