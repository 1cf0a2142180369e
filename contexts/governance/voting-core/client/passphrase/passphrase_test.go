package passphrase

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"agora/contexts/governance/voting-core/domain/commitment"
)

var passphraseShape = regexp.MustCompile(`^[a-z]+-[a-z]+-[a-z]+-[0-9]{4}$`)

func TestGenerateShapeAndSpace(t *testing.T) {
	if Combinations < 100000 {
		t.Fatalf("passphrase space too small: %d", Combinations)
	}
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		secret, err := Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !passphraseShape.MatchString(secret.Reveal()) {
			t.Fatalf("unexpected passphrase shape %q", secret.Reveal())
		}
		seen[secret.Reveal()] = struct{}{}
	}
	if len(seen) < 45 {
		t.Fatalf("expected mostly distinct passphrases, got %d of 50", len(seen))
	}
}

func TestWordListsHaveNoDuplicates(t *testing.T) {
	for name, list := range map[string][32]string{"adjectives": adjectives, "creatures": creatures, "landmarks": landmarks} {
		seen := map[string]struct{}{}
		for _, word := range list {
			if _, ok := seen[word]; ok {
				t.Fatalf("%s repeats %q", name, word)
			}
			seen[word] = struct{}{}
		}
	}
}

func TestManagerEnsureIsStable(t *testing.T) {
	manager := Manager{Store: &MemoryStore{}}
	first, created, err := manager.Ensure()
	if err != nil || !created {
		t.Fatalf("first ensure: created=%v err=%v", created, err)
	}
	second, created, err := manager.Ensure()
	if err != nil || created {
		t.Fatalf("second ensure: created=%v err=%v", created, err)
	}
	if first.Passphrase.Reveal() != second.Passphrase.Reveal() {
		t.Fatalf("ensure must not replace an existing passphrase")
	}
}

func TestManagerRegenerateRefusesConfirmed(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	manager := Manager{Store: &MemoryStore{}, Now: func() time.Time { return fixed }}
	if _, _, err := manager.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := manager.Regenerate(false); err != nil {
		t.Fatalf("regenerate unconfirmed: %v", err)
	}
	confirmed, err := manager.Confirm()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !confirmed.ConfirmedAt.Equal(fixed) {
		t.Fatalf("expected confirmation time %v, got %v", fixed, confirmed.ConfirmedAt)
	}
	if _, err := manager.Regenerate(false); !errors.Is(err, ErrPassphraseConfirmed) {
		t.Fatalf("expected ErrPassphraseConfirmed, got %v", err)
	}
	replaced, err := manager.Regenerate(true)
	if err != nil {
		t.Fatalf("forced regenerate: %v", err)
	}
	if replaced.Confirmed() {
		t.Fatalf("forced regenerate must reset confirmation")
	}
}

func TestManagerConfirmWithoutPassphrase(t *testing.T) {
	manager := Manager{Store: &MemoryStore{}}
	if _, err := manager.Confirm(); !errors.Is(err, commitment.ErrEmptyPassphrase) {
		t.Fatalf("expected ErrEmptyPassphrase, got %v", err)
	}
}

func TestFileStoreRoundTripAndPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agora", "passphrase.json")
	store := FileStore{Path: path}
	manager := Manager{Store: store}

	if _, found, err := store.Load(); err != nil || found {
		t.Fatalf("empty load: found=%v err=%v", found, err)
	}
	imported, err := manager.Import("calm-otter-glade-0042")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := manager.Confirm(); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	loaded, found, err := store.Load()
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if loaded.Passphrase.Reveal() != imported.Passphrase.Reveal() || !loaded.Confirmed() {
		t.Fatalf("unexpected stored passphrase: confirmed=%v", loaded.Confirmed())
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
	if err := manager.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if exists, err := manager.Exists(); err != nil || exists {
		t.Fatalf("expected no passphrase after clear: exists=%v err=%v", exists, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
}

func TestFileStoreRejectsBlankPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passphrase.json")
	original := []byte(`{"voting_passphrase":"   "}`)
	if err := os.WriteFile(path, original, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := FileStore{Path: path}

	if _, found, err := store.Load(); !errors.Is(err, commitment.ErrEmptyPassphrase) || found {
		t.Fatalf("expected ErrEmptyPassphrase, found=%v err=%v", found, err)
	}
	if _, _, err := (Manager{Store: store}).Ensure(); err == nil {
		t.Fatalf("expected ensure to refuse a damaged file")
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(after) != string(original) {
		t.Fatalf("damaged file was overwritten: %s", after)
	}
}
