package credstore

import (
	"context"
	"sync"

	session "github.com/jobconnect/go-session"
)

// Memory is an in-process Store, used in tests and single-process setups.
type Memory struct {
	mu     sync.RWMutex
	record *session.SessionObject
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (*session.SessionObject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.record == nil {
		return nil, ErrNotFound
	}
	return m.record.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, sess *session.SessionObject) error {
	if sess == nil || !sess.Valid() {
		return ErrInvalidRecord
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = sess.Clone()
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = nil
	return nil
}
