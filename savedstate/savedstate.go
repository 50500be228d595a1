// Package savedstate persists small serializable values under fixed keys so a
// view-model can restore its state after being recreated.
//
// Values are encoded as JSON. Decoding is strict: unknown fields or values of
// the wrong type fail with ErrDecode instead of producing a half-filled value.
package savedstate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrDecode is returned when a stored payload does not fit the target type.
var ErrDecode = errors.New("savedstate: payload does not match target type")

// Handle is a key/value store for serializable values.
type Handle interface {
	// Load decodes the value stored under key into dst. It reports false
	// when nothing is stored.
	Load(key string, dst any) (bool, error)
	// Save stores value under key, replacing any previous value.
	Save(key string, value any) error
}

func encode(key string, value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("savedstate: encode %q: %w", key, err)
	}
	return data, nil
}

func decode(key string, data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: key %q: %v", ErrDecode, key, err)
	}
	return nil
}

// Memory is an in-process Handle. It survives view-model recreation but not
// process restarts.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory handle.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(key string, dst any) (bool, error) {
	m.mu.RLock()
	data, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := decode(key, data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Save(key string, value any) error {
	data, err := encode(key, value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = data
	m.mu.Unlock()
	return nil
}

// SaveRaw stores an already encoded payload. It exists for seeding tests and
// migrations.
func (m *Memory) SaveRaw(key string, payload []byte) {
	m.mu.Lock()
	m.data[key] = bytes.Clone(payload)
	m.mu.Unlock()
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Backend is durable storage for encoded payloads, partitioned by owner.
type Backend interface {
	LoadState(ctx context.Context, owner, key string) ([]byte, bool, error)
	SaveState(ctx context.Context, owner, key string, payload []byte) error
}

// DefaultTimeout bounds a single backend call made by a Store.
const DefaultTimeout = 5 * time.Second

// Store is a Handle over a Backend, scoped to one owner (usually one screen
// route).
type Store struct {
	ctx     context.Context
	backend Backend
	owner   string
	timeout time.Duration
}

// NewStore returns a handle that reads and writes owner's entries. ctx
// supplies values only: cancelling it does not abort a call, so the final save
// of a view-model torn down by that same ctx still lands. Every call is bounded
// by DefaultTimeout instead.
func NewStore(ctx context.Context, backend Backend, owner string) *Store {
	return &Store{ctx: ctx, backend: backend, owner: owner, timeout: DefaultTimeout}
}

// Owner returns the partition this store writes to.
func (s *Store) Owner() string { return s.owner }

func (s *Store) Load(key string, dst any) (bool, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), s.timeout)
	defer cancel()
	data, ok, err := s.backend.LoadState(ctx, s.owner, key)
	if err != nil {
		return false, fmt.Errorf("savedstate: load %s/%s: %w", s.owner, key, err)
	}
	if !ok {
		return false, nil
	}
	if err := decode(key, data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Save(key string, value any) error {
	data, err := encode(key, value)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), s.timeout)
	defer cancel()
	if err := s.backend.SaveState(ctx, s.owner, key, data); err != nil {
		return fmt.Errorf("savedstate: save %s/%s: %w", s.owner, key, err)
	}
	return nil
}
