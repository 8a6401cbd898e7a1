package store

import (
	"context"
	"sync"

	"github.com/serroba/link-lifecycle/internal/shortener"
	"go.uber.org/zap"
)

// MemoryCollection keeps the serialized collection in process memory.
type MemoryCollection struct {
	mu     sync.RWMutex
	data   []byte
	logger *zap.Logger
}

// NewMemoryCollection creates an empty in-memory collection slot.
func NewMemoryCollection(logger *zap.Logger) *MemoryCollection {
	return &MemoryCollection{logger: logger}
}

func (m *MemoryCollection) Load(_ context.Context) ([]shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return decodeLinks(m.data, shortener.DefaultSlot, m.logger), nil
}

func (m *MemoryCollection) Save(_ context.Context, links []shortener.Link) error {
	data, err := encodeLinks(links)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = data

	return nil
}

// Raw returns a copy of the stored bytes.
func (m *MemoryCollection) Raw() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]byte(nil), m.data...)
}

// SetRaw replaces the stored bytes verbatim.
func (m *MemoryCollection) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = append([]byte(nil), data...)
}

// Ping always succeeds.
func (m *MemoryCollection) Ping(_ context.Context) error {
	return nil
}

// Compile-time check.
var _ shortener.Collection = (*MemoryCollection)(nil)
