package catalog

import (
	"context"
	"sync"

	apperrors "towquote/internal/errors"
)

// MemorySource holds documents in process. Used by tests and the load runner.
type MemorySource struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemorySource(docs map[string][]byte) *MemorySource {
	m := &MemorySource{docs: make(map[string][]byte, len(docs))}
	for k, v := range docs {
		m.docs[k] = append([]byte(nil), v...)
	}
	return m
}

func (m *MemorySource) Document(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.docs[name]
	if !ok {
		return nil, apperrors.Configuration("missing configuration document %q", name)
	}
	return append([]byte(nil), body...), nil
}

func (m *MemorySource) Put(_ context.Context, name string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[name] = append([]byte(nil), body...)
	return nil
}
