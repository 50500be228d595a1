// Package prefs keeps saved view state in a JSON file when no database is
// configured.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const stateFile = "state.json"

// FileBackend stores every owner's entries in one JSON document. Writes go
// through a temp file and a rename.
type FileBackend struct {
	path string

	mu sync.Mutex
}

// NewFileBackend returns a backend writing to dir/state.json.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir state dir: %w", err)
	}
	return &FileBackend{path: filepath.Join(dir, stateFile)}, nil
}

// Path returns the file the backend writes to.
func (b *FileBackend) Path() string { return b.path }

type document map[string]map[string]json.RawMessage

func (b *FileBackend) read() (document, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return document{}, nil
		}
		return nil, err
	}
	doc := document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.path, err)
	}
	return doc, nil
}

func (b *FileBackend) LoadState(ctx context.Context, owner, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return nil, false, err
	}
	payload, ok := doc[owner][key]
	if !ok {
		return nil, false, nil
	}
	return []byte(payload), true, nil
}

// SaveState replaces owner/key. payload must be valid JSON.
func (b *FileBackend) SaveState(ctx context.Context, owner, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(payload) {
		return fmt.Errorf("save %s/%s: payload is not JSON", owner, key)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return err
	}
	if doc[owner] == nil {
		doc[owner] = map[string]json.RawMessage{}
	}
	doc[owner][key] = json.RawMessage(payload)
	return b.write(doc)
}

func (b *FileBackend) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, b.path)
}

// Reset drops every entry of the given owners and returns how many were
// removed.
func (b *FileBackend) Reset(ctx context.Context, owners ...string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, owner := range owners {
		removed += len(doc[owner])
		delete(doc, owner)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, b.write(doc)
}
