package passphrase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"agora/contexts/governance/voting-core/domain/commitment"
)

// Stored is what the client keeps on disk.
type Stored struct {
	Passphrase  commitment.Passphrase
	CreatedAt   time.Time
	ConfirmedAt time.Time
}

func (s Stored) Confirmed() bool {
	return !s.ConfirmedAt.IsZero()
}

// Store is client-local persistence. Implementations must never sync to the
// server.
type Store interface {
	Save(stored Stored) error
	Load() (Stored, bool, error)
	Clear() error
}

// FileStore keeps the passphrase in a single 0600 JSON file.
type FileStore struct {
	Path string
}

type fileRecord struct {
	Passphrase  string    `json:"voting_passphrase"`
	CreatedAt   time.Time `json:"created_at"`
	ConfirmedAt time.Time `json:"confirmed_at,omitempty"`
}

// DefaultPath is <user config dir>/agora/passphrase.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "agora", "passphrase.json"), nil
}

func (s FileStore) Save(stored Stored) error {
	if stored.Passphrase.IsZero() {
		return commitment.ErrEmptyPassphrase
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create passphrase dir: %w", err)
	}
	payload, err := json.MarshalIndent(fileRecord{
		Passphrase:  stored.Passphrase.Reveal(),
		CreatedAt:   stored.CreatedAt.UTC(),
		ConfirmedAt: stored.ConfirmedAt.UTC(),
	}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write passphrase: %w", err)
	}
	return os.Rename(tmp, s.Path)
}

func (s FileStore) Load() (Stored, bool, error) {
	payload, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stored{}, false, nil
		}
		return Stored{}, false, fmt.Errorf("read passphrase: %w", err)
	}
	var record fileRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return Stored{}, false, fmt.Errorf("decode passphrase file: %w", err)
	}
	secret, err := commitment.NewPassphrase(record.Passphrase)
	if err != nil {
		return Stored{}, false, fmt.Errorf("decode passphrase file %s: %w", s.Path, err)
	}
	return Stored{
		Passphrase:  secret,
		CreatedAt:   record.CreatedAt,
		ConfirmedAt: record.ConfirmedAt,
	}, true, nil
}

func (s FileStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove passphrase: %w", err)
	}
	return nil
}

// MemoryStore is for tests and embedding.
type MemoryStore struct {
	mu     sync.Mutex
	stored *Stored
}

func (s *MemoryStore) Save(stored Stored) error {
	if stored.Passphrase.IsZero() {
		return commitment.ErrEmptyPassphrase
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = &stored
	return nil
}

func (s *MemoryStore) Load() (Stored, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stored == nil {
		return Stored{}, false, nil
	}
	return *s.stored, true, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = nil
	return nil
}

var _ Store = FileStore{}
var _ Store = (*MemoryStore)(nil)
