package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store holds validated documents keyed by name.
type Store struct {
	mu        sync.RWMutex
	documents map[string]Document
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{documents: make(map[string]Document)}
}

// LoadFS walks the provided filesystem and parses every JSON or YAML schema
// document it finds. When fsys is nil the returned store is empty. A
// document without a name is registered under its file name.
func LoadFS(fsys fs.FS) (*Store, error) {
	return loadFS(fsys, SourceFromFS)
}

func loadFS(fsys fs.FS, source func(string) Source) (*Store, error) {
	store := NewStore()
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(name) {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", name, err)
		}

		doc, err := Parse(data, source(name))
		if err != nil {
			return err
		}
		if strings.TrimSpace(doc.Name) == "" {
			doc.Name = strings.TrimSuffix(path.Base(name), path.Ext(name))
		}
		return store.Add(doc)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes a single document, trying JSON first and YAML second.
func Parse(data []byte, src Source) (Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, fmt.Errorf("schema: file %s is empty", location(src))
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = Document{}
		if yamlErr := yaml.Unmarshal(data, &doc); yamlErr != nil {
			return Document{}, fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", location(src), yamlErr)
		}
	}
	doc.Name = strings.TrimSpace(doc.Name)
	doc.Source = src
	return doc, nil
}

// Add validates and registers a document.
func (s *Store) Add(doc Document) error {
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		return fmt.Errorf("schema: document from %s has no name", location(doc.Source))
	}
	if err := Validate(doc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.documents == nil {
		s.documents = make(map[string]Document)
	}
	if prev, exists := s.documents[name]; exists {
		return fmt.Errorf("schema: duplicate document %q (%s and %s)", name, location(prev.Source), location(doc.Source))
	}
	s.documents[name] = doc
	return nil
}

// Merge copies every document of other into s. Documents already present in
// s win, which lets callers layer a directory over the embedded defaults.
func (s *Store) Merge(other *Store) {
	if other == nil {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.documents == nil {
		s.documents = make(map[string]Document)
	}
	for name, doc := range other.documents {
		if _, exists := s.documents[name]; exists {
			continue
		}
		s.documents[name] = doc
	}
}

// Document returns the document registered under name.
func (s *Store) Document(name string) (Document, bool) {
	if s == nil {
		return Document{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[strings.TrimSpace(name)]
	return doc, ok
}

// Require mirrors Document but returns ErrUnknownDocument when missing.
func (s *Store) Require(name string) (Document, error) {
	doc, ok := s.Document(name)
	if !ok {
		return Document{}, fmt.Errorf("%w: %q", ErrUnknownDocument, name)
	}
	return doc, nil
}

// Names returns the registered document names in sorted order.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.documents))
	for name := range s.documents {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Empty reports whether the store holds any documents.
func (s *Store) Empty() bool {
	return len(s.Names()) == 0
}

func isSchemaFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
