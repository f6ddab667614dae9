package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"mangarchive/internal/fileutil"
)

// Store is the key-value view of an artifact directory.
type Store interface {
	Exists(key string) (bool, error)
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	MkdirAll(key string) error
	// Path returns a human-readable location for key, used in logs and by
	// collaborators that need a filesystem path.
	Path(key string) string
}

// ValidateKey rejects keys that could escape the store root.
func ValidateKey(key string) error {
	if !fs.ValidPath(key) || key == "." {
		return fmt.Errorf("invalid artifact key %q", key)
	}
	return nil
}

// FSStore keeps artifacts on the local filesystem under Root.
type FSStore struct {
	root string
}

// NewFSStore returns a store rooted at root. The directory is not created
// until the first write.
func NewFSStore(root string) *FSStore {
	return &FSStore{root: filepath.Clean(root)}
}

// Root returns the store's base directory.
func (s *FSStore) Root() string { return s.root }

func (s *FSStore) Path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *FSStore) Exists(key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	return fileutil.Exists(s.Path(key))
}

func (s *FSStore) Read(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path(key))
}

func (s *FSStore) Write(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(s.Path(key), data, 0o644)
}

func (s *FSStore) MkdirAll(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return os.MkdirAll(s.Path(key), 0o755)
}

// MemStore is an in-memory Store used by tests and dry runs.
type MemStore struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]struct{}
	// Writes counts successful Write calls.
	Writes int
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{files: map[string][]byte{}, dirs: map[string]struct{}{}}
}

func (s *MemStore) Path(key string) string { return "mem://" + key }

func (s *MemStore) Exists(key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[key]; ok {
		return true, nil
	}
	_, ok := s.dirs[key]
	return ok, nil
}

func (s *MemStore) Read(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", key, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (s *MemStore) Write(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, isDir := s.dirs[key]; isDir {
		return fmt.Errorf("write %s: %w", key, errors.New("is a directory"))
	}
	s.files[key] = append([]byte(nil), data...)
	s.Writes++
	return nil
}

func (s *MemStore) MkdirAll(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[key] = struct{}{}
	return nil
}

// Keys lists stored file keys in sorted order.
func (s *MemStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.files))
	for key := range s.files {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// KeysWithPrefix lists stored file keys starting with prefix.
func (s *MemStore) KeysWithPrefix(prefix string) []string {
	var out []string
	for _, key := range s.Keys() {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out
}
