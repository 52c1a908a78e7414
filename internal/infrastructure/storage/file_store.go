// Package storage persists the session credentials between runs. The token
// and the identity live in one document written atomically, so a restore can
// never see one without the other.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/openshelf/libctl/internal/core/domain"
	"github.com/openshelf/libctl/internal/core/ports"
)

const sessionFile = "session.json"

var _ ports.CredentialStore = (*FileStore)(nil)

type sessionDocument struct {
	Token    string           `json:"token"`
	Identity *domain.Identity `json:"identity"`
}

// FileStore keeps the credentials in a mode-0600 JSON file under the state
// directory. Reads are served from an in-memory copy once loaded.
type FileStore struct {
	dir string

	mu    sync.Mutex
	cache *sessionDocument
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, sessionFile)
}

// Save writes the token and identity together, via a temp file and rename so
// a crash mid-write cannot leave a torn document.
func (s *FileStore) Save(token string, identity domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := sessionDocument{Token: token, Identity: &identity}
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return fmt.Errorf("commit session file: %w", err)
	}

	s.cache = &doc
	return nil
}

// Load returns the persisted token and identity. Nothing persisted is not an
// error: both come back empty.
func (s *FileStore) Load() (string, *domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked()
	if err != nil {
		return "", nil, err
	}
	return doc.Token, doc.Identity, nil
}

// Clear removes the session file. Clearing an empty store succeeds.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = &sessionDocument{}
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Token returns the current bearer token, or "" when no session is
// persisted. It backs the REST client's per-request token source.
func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked()
	if err != nil {
		return ""
	}
	return doc.Token
}

func (s *FileStore) loadLocked() (*sessionDocument, error) {
	if s.cache != nil {
		return s.cache, nil
	}

	raw, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		s.cache = &sessionDocument{}
		return s.cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var doc sessionDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	s.cache = &doc
	return s.cache, nil
}
