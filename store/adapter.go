package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidToken indicates a token parsed and signed correctly but has no
// corresponding record (never existed, or its TTL elapsed).
var ErrInvalidToken = errors.New("store: no such record")

const (
	columnUUID        = "uuid"
	columnType        = "type"
	columnCreated     = "created"
	columnAccessed    = "accessed"
	columnInactive    = "inactive"
	columnPrincipal   = "principal"
	columnEntity      = "entity"
	columnApplication = "application"
	columnState       = "state"
)

var requiredColumns = []string{columnUUID, columnType, columnCreated, columnAccessed, columnInactive}

var allColumns = []string{
	columnUUID, columnType, columnCreated, columnAccessed, columnInactive,
	columnPrincipal, columnEntity, columnApplication, columnState,
}

// Adapter translates between TokenInfo records and the wide-column shape
// a Client persists, applying the per-column TTL and the principal
// all-or-nothing rule.
type Adapter struct {
	client     Client
	keyspace   string
	family     string
	persistTTL time.Duration
}

// NewAdapter builds an Adapter over client, using keyspace/family as the
// wide-column coordinates and persistTTL as the TTL applied to every
// column on every write.
func NewAdapter(client Client, keyspace, family string, persistTTL time.Duration) *Adapter {
	return &Adapter{client: client, keyspace: keyspace, family: family, persistTTL: persistTTL}
}

// Put writes the full record, resetting every column's TTL.
func (a *Adapter) Put(ctx context.Context, info *TokenInfo) error {
	columns := make(map[string][]byte, len(allColumns))

	columns[columnUUID] = must(info.UUID.MarshalBinary())
	columns[columnType] = []byte(info.Type)
	columns[columnCreated] = encodeInt64(info.Created)
	columns[columnAccessed] = encodeInt64(info.Accessed)
	columns[columnInactive] = encodeInt64(info.Inactive)

	if info.Principal != nil {
		columns[columnPrincipal] = []byte(info.Principal.Type)
		columns[columnEntity] = must(info.Principal.EntityID.MarshalBinary())
		columns[columnApplication] = must(info.Principal.ApplicationID.MarshalBinary())
	}

	state := info.State
	if state == nil {
		state = map[string]any{}
	}
	stateBytes, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("store: encode state: %w", err)
	}
	columns[columnState] = stateBytes

	var rowKey [16]byte
	copy(rowKey[:], must(info.UUID.MarshalBinary()))

	if err := a.client.SetColumns(ctx, a.keyspace, a.family, rowKey, columns, a.persistTTL); err != nil {
		return err
	}

	return nil
}

// Get reads a record by its identifier. It returns ErrInvalidToken when
// any required column is missing.
func (a *Adapter) Get(ctx context.Context, id uuid.UUID) (*TokenInfo, error) {
	var rowKey [16]byte
	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("store: marshal id: %w", err)
	}
	copy(rowKey[:], idBytes)

	columns, err := a.client.GetColumns(ctx, a.keyspace, a.family, rowKey, allColumns)
	if err != nil {
		return nil, err
	}

	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, ErrInvalidToken
		}
	}

	info := &TokenInfo{
		UUID:     id,
		Type:     string(columns[columnType]),
		Created:  decodeInt64(columns[columnCreated]),
		Accessed: decodeInt64(columns[columnAccessed]),
		Inactive: decodeInt64(columns[columnInactive]),
	}

	if principalType, ok := columns[columnPrincipal]; ok {
		entityBytes, hasEntity := columns[columnEntity]
		appBytes, hasApp := columns[columnApplication]
		pt := PrincipalType(principalType)
		if hasEntity && hasApp && isKnownPrincipalType(pt) {
			entityID, errEntity := uuid.FromBytes(entityBytes)
			appID, errApp := uuid.FromBytes(appBytes)
			if errEntity == nil && errApp == nil {
				info.Principal = &AuthPrincipalInfo{
					Type:          pt,
					EntityID:      entityID,
					ApplicationID: appID,
				}
			}
		}
	}

	if stateBytes, ok := columns[columnState]; ok && len(stateBytes) > 0 {
		state := map[string]any{}
		if err := json.Unmarshal(stateBytes, &state); err == nil {
			info.State = state
		}
	}
	if info.State == nil {
		info.State = map[string]any{}
	}

	return info, nil
}

// Touch updates accessed to now, and inactive when now-previousAccessed
// exceeds previousInactive. It returns the (possibly unchanged) inactive
// value that results.
func (a *Adapter) Touch(ctx context.Context, id uuid.UUID, now, previousAccessed, previousInactive int64) (int64, error) {
	var rowKey [16]byte
	idBytes, err := id.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("store: marshal id: %w", err)
	}
	copy(rowKey[:], idBytes)

	columns := map[string][]byte{
		columnAccessed: encodeInt64(now),
	}

	inactive := previousInactive
	if gap := now - previousAccessed; gap > previousInactive {
		inactive = gap
		columns[columnInactive] = encodeInt64(inactive)
	}

	if err := a.client.SetColumns(ctx, a.keyspace, a.family, rowKey, columns, a.persistTTL); err != nil {
		return 0, err
	}

	return inactive, nil
}

func isKnownPrincipalType(pt PrincipalType) bool {
	switch pt {
	case AdminUser, OrganizationUser, ApplicationUser, Organization, Application:
		return true
	default:
		return false
	}
}

func encodeInt64(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func decodeInt64(b []byte) int64 {
	if len(b) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

func must(b []byte, err error) []byte {
	if err != nil {
		panic(err)
	}
	return b
}
