package store

import (
	"context"
	"sync"
	"time"
)

type memoryCell struct {
	value    []byte
	deadline time.Time
}

// MemoryClient is an in-process Client implementation backed by a map. It
// exists for tests that exercise the token service's record semantics
// without standing up Redis.
type MemoryClient struct {
	mu   sync.Mutex
	rows map[string]map[string]memoryCell
	now  func() time.Time
}

// NewMemoryClient builds an empty MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		rows: make(map[string]map[string]memoryCell),
		now:  time.Now,
	}
}

func rowID(keyspace, family string, rowKey [16]byte) string {
	return keyspace + "\x00" + family + "\x00" + string(rowKey[:])
}

// SetColumns implements Client.
func (m *MemoryClient) SetColumns(_ context.Context, keyspace, family string, rowKey [16]byte, columns map[string][]byte, ttl time.Duration) error {
	if len(columns) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := rowID(keyspace, family, rowKey)
	row, ok := m.rows[id]
	if !ok {
		row = make(map[string]memoryCell, len(columns))
		m.rows[id] = row
	}

	deadline := m.now().Add(ttl)
	for name, value := range columns {
		cp := make([]byte, len(value))
		copy(cp, value)
		row[name] = memoryCell{value: cp, deadline: deadline}
	}

	return nil
}

// GetColumns implements Client.
func (m *MemoryClient) GetColumns(_ context.Context, keyspace, family string, rowKey [16]byte, columnNames []string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := rowID(keyspace, family, rowKey)
	row, ok := m.rows[id]
	result := make(map[string][]byte, len(columnNames))
	if !ok {
		return result, nil
	}

	now := m.now()
	for _, name := range columnNames {
		cell, ok := row[name]
		if !ok {
			continue
		}
		if now.After(cell.deadline) {
			delete(row, name)
			continue
		}
		result[name] = cell.value
	}

	return result, nil
}
