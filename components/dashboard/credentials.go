package dashboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// CredentialKey is the storage key holding the bearer token.
const CredentialKey = "JWT-Token"

// CredentialStore is the single accessor for the persisted bearer token.
// Nothing else in the client reads or writes the underlying storage.
type CredentialStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// InMemoryCredentialStore keeps the token for the lifetime of the process.
type InMemoryCredentialStore struct {
	mu    sync.RWMutex
	token string
}

// NewInMemoryCredentialStore creates a store seeded with token (may be empty).
func NewInMemoryCredentialStore(token string) *InMemoryCredentialStore {
	return &InMemoryCredentialStore{token: token}
}

// Token returns the stored token or an empty string.
func (s *InMemoryCredentialStore) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// SetToken overwrites the stored token.
func (s *InMemoryCredentialStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear removes the stored token.
func (s *InMemoryCredentialStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// FileCredentialStore persists the token in a YAML key-value file. Keys
// other than CredentialKey are preserved across writes.
type FileCredentialStore struct {
	path string
	mu   sync.Mutex
}

// NewFileCredentialStore builds a store backed by path.
func NewFileCredentialStore(path string) (*FileCredentialStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("dashboard: credential storage path is required")
	}
	return &FileCredentialStore{path: path}, nil
}

// DefaultCredentialPath returns the per-user storage file location.
func DefaultCredentialPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "go-analytics-console", "storage.yaml")
}

// Path exposes the backing file location.
func (s *FileCredentialStore) Path() string {
	return s.path
}

// Token reads the token; a missing file means no token.
func (s *FileCredentialStore) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", err
	}
	return values[CredentialKey], nil
}

// SetToken overwrites the stored token.
func (s *FileCredentialStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	values[CredentialKey] = token
	return s.save(values)
}

// Clear removes the token entry.
func (s *FileCredentialStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[CredentialKey]; !ok {
		return nil
	}
	delete(values, CredentialKey)
	return s.save(values)
}

func (s *FileCredentialStore) load() (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("dashboard: read credential storage: %w", err)
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("dashboard: parse credential storage: %w", err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

func (s *FileCredentialStore) save(values map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("dashboard: mkdir %s: %w", dir, err)
	}
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("dashboard: encode credential storage: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".storage-*.yaml")
	if err != nil {
		return fmt.Errorf("dashboard: create temp storage: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("dashboard: write credential storage: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("dashboard: chmod credential storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("dashboard: close credential storage: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("dashboard: replace credential storage: %w", err)
	}
	return nil
}
