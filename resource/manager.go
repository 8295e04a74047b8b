// Package resource provides reference-counted, name-deduplicated
// managers for GPU assets: meshes, materials, textures and offscreen
// framebuffers.
//
// Loading the same key twice returns the same object and bumps its
// reference count; the GPU allocation is released when the count drops
// back to zero. Scene nodes acquire references when built and release
// them when removed, so shared assets live exactly as long as something
// on screen uses them.
package resource

import (
	"errors"
	"fmt"
	"sync"
)

// Manager errors.
var (
	// ErrResourceCreationFailed wraps a factory error. The failed key is
	// not poisoned; a later GetOrCreate with a working factory succeeds.
	ErrResourceCreationFailed = errors.New("resource: creation failed")

	// ErrUnknownResource is returned by Release for a key the manager
	// does not hold.
	ErrUnknownResource = errors.New("resource: unknown key")
)

type entry[T any] struct {
	value T
	refs  int
}

// Manager is a keyed cache of reference-counted resources. The destroy
// callback runs when a resource's last reference is released.
type Manager[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	destroy func(T)
}

// NewManager creates a Manager whose resources are finalized by destroy.
// A nil destroy is allowed for resources without GPU state.
func NewManager[T any](destroy func(T)) *Manager[T] {
	return &Manager[T]{
		entries: make(map[string]*entry[T]),
		destroy: destroy,
	}
}

// GetOrCreate returns the resource stored under key, building it with
// factory on first use. Every successful call takes one reference that
// must be paired with a Release.
func (m *Manager[T]) GetOrCreate(key string, factory func() (T, error)) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		e.refs++
		return e.value, nil
	}
	v, err := factory()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s: %v", ErrResourceCreationFailed, key, err)
	}
	m.entries[key] = &entry[T]{value: v, refs: 1}
	return v, nil
}

// Get returns the resource under key without taking a reference.
// The second result reports whether the key is present.
func (m *Manager[T]) Get(key string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		return e.value, true
	}
	var zero T
	return zero, false
}

// Acquire takes an extra reference on an existing resource. Nodes use
// it when cloning subtrees that share assets.
func (m *Manager[T]) Acquire(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownResource, key)
	}
	e.refs++
	return nil
}

// Release drops one reference. When the count reaches zero the resource
// is destroyed and the key forgotten.
func (m *Manager[T]) Release(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownResource, key)
	}
	e.refs--
	if e.refs > 0 {
		return nil
	}
	delete(m.entries, key)
	if m.destroy != nil {
		m.destroy(e.value)
	}
	return nil
}

// RefCount reports the current reference count of key, zero when absent.
func (m *Manager[T]) RefCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		return e.refs
	}
	return 0
}

// Len reports how many distinct resources the manager holds.
func (m *Manager[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Clear destroys every resource regardless of reference count. Owners
// call it on shutdown.
func (m *Manager[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.entries {
		delete(m.entries, key)
		if m.destroy != nil {
			m.destroy(e.value)
		}
	}
}
