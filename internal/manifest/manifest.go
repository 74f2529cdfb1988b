// Package manifest loads the static tool manifest served to discovery clients.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DefaultPath is the manifest file read when no other path is configured.
const DefaultPath = "tool_manifest.json"

var (
	// ErrNotFound is returned when the manifest file does not exist.
	ErrNotFound = errors.New("manifest file not found")
	// ErrInvalid is returned when the manifest is not a JSON object.
	ErrInvalid = errors.New("manifest is not a valid JSON object")
)

// Store holds the manifest loaded at startup. It is never mutated after Load
// and can be shared between requests without locking.
type Store struct {
	path string
	raw  []byte
	doc  map[string]any
}

// Load reads and validates the manifest at path.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s: document is null", ErrInvalid, path)
	}
	return &Store{path: path, raw: raw, doc: doc}, nil
}

// Raw returns the manifest bytes exactly as read from disk.
// Callers must not modify the returned slice.
func (s *Store) Raw() []byte { return s.raw }

// Document returns the decoded manifest.
func (s *Store) Document() map[string]any { return s.doc }

// Path returns the file the manifest was loaded from.
func (s *Store) Path() string { return s.path }

// ToolNames lists the "name" of every entry under the manifest's "tools" key,
// in document order. Entries without a string name are skipped.
func (s *Store) ToolNames() []string {
	tools, _ := s.doc["tools"].([]any)
	out := make([]string, 0, len(tools))
	for _, t := range tools {
		m, _ := t.(map[string]any)
		if name, ok := m["name"].(string); ok && name != "" {
			out = append(out, name)
		}
	}
	return out
}
