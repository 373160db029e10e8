// Package dictionary serves bundled JSON word lists without altering them.
package dictionary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

const ext = ".json"

var (
	ErrNotFound    = errors.New("dictionary not found")
	ErrInvalidJSON = errors.New("dictionary is not valid JSON")
	ErrInvalidName = errors.New("invalid dictionary name")
	ErrNoEntries   = errors.New("dictionary has no entries array")
)

// Loader reads dictionaries from a file system root.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a Loader over fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// List returns the dictionary names (file names without .json), sorted.
func (l *Loader) List() ([]string, error) {
	matches, err := fs.Glob(l.fsys, "*"+ext)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, ext))
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the raw bytes of a dictionary, unchanged, after checking they
// are valid JSON.
func (l *Loader) Load(name string) ([]byte, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, ErrInvalidName
	}
	data, err := fs.ReadFile(l.fsys, path.Clean(name+ext))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read dictionary %s: %w", name, err)
	}
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	return data, nil
}

// Entries returns the raw "entries" array of a dictionary object, the part a
// word-list viewer renders.
func (l *Loader) Entries(name string) (json.RawMessage, error) {
	data, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Entries json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || len(doc.Entries) == 0 || doc.Entries[0] != '[' {
		return nil, ErrNoEntries
	}
	return doc.Entries, nil
}
