// Package testutil holds fakes and helpers shared by package tests.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/idilsaglam/taskday/internal/store/slot"
)

// ErrInjected is returned by MemSlot when a failure is forced.
var ErrInjected = errors.New("injected failure")

// MemSlot is an in-memory slot.Slot with failure injection.
type MemSlot struct {
	mu      sync.Mutex
	data    map[string][]byte
	Writes  int
	FailGet bool
	FailSet bool
}

// NewMemSlot creates an empty MemSlot.
func NewMemSlot() *MemSlot {
	return &MemSlot{data: make(map[string][]byte)}
}

func (m *MemSlot) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet {
		return nil, ErrInjected
	}
	b, ok := m.data[key]
	if !ok {
		return nil, slot.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemSlot) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet {
		return ErrInjected
	}
	m.data[key] = append([]byte(nil), value...)
	m.Writes++
	return nil
}

func (m *MemSlot) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemSlot) Close() error { return nil }

// Raw returns the stored bytes for key, or nil.
func (m *MemSlot) Raw(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// Put stores value under key without counting a write.
func (m *MemSlot) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}
