package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store keeps run artifacts: raw portal pages, the finished tables and the
// run manifest. Keys may contain slashes.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	SetJSON(key string, v interface{}) error
	SetWithExtension(key string, ext string, value []byte) error
}

// LocalStore is a file-based implementation of Store.
type LocalStore struct {
	dir string
	mu  sync.RWMutex
}

// NewLocal creates a new LocalStore with the specified directory.
func NewLocal(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

// Get retrieves a value by key. Returns the value and true if found,
// or nil and false if not found.
func (s *LocalStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a value under key exactly as named.
func (s *LocalStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(s.path(key), value)
}

// SetJSON marshals v and stores it under key + ".json".
func (s *LocalStore) SetJSON(key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return s.SetWithExtension(key, ".json", data)
}

// SetWithExtension stores raw bytes under key + ext.
func (s *LocalStore) SetWithExtension(key string, ext string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(s.path(key+ext), value)
}

func (s *LocalStore) write(path string, value []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, value, 0644)
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}
