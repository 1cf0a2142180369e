package passphrase

import (
	"errors"
	"time"

	"agora/contexts/governance/voting-core/domain/commitment"
)

var ErrPassphraseConfirmed = errors.New("passphrase is confirmed; regenerating it orphans every earlier vote")

// Manager owns the passphrase lifecycle. Once confirmed, the passphrase is the
// permanent key for all of the identity's vote commitments. Replacing it
// (Regenerate with force, or Clear) leaves every earlier vote unverifiable;
// there is no recovery.
type Manager struct {
	Store Store
	Now   func() time.Time
}

// Ensure returns the stored passphrase, generating and saving one on first use.
func (m Manager) Ensure() (Stored, bool, error) {
	stored, found, err := m.Store.Load()
	if err != nil {
		return Stored{}, false, err
	}
	if found {
		return stored, false, nil
	}
	stored, err = m.fresh()
	if err != nil {
		return Stored{}, false, err
	}
	if err := m.Store.Save(stored); err != nil {
		return Stored{}, false, err
	}
	return stored, true, nil
}

func (m Manager) Retrieve() (commitment.Passphrase, bool, error) {
	stored, found, err := m.Store.Load()
	if err != nil || !found {
		return commitment.Passphrase{}, false, err
	}
	return stored.Passphrase, true, nil
}

func (m Manager) Exists() (bool, error) {
	_, found, err := m.Store.Load()
	return found, err
}

// Import stores a passphrase the voter already has, e.g. from another device.
func (m Manager) Import(secret string) (Stored, error) {
	passphrase, err := commitment.NewPassphrase(secret)
	if err != nil {
		return Stored{}, err
	}
	stored := Stored{Passphrase: passphrase, CreatedAt: m.now()}
	if err := m.Store.Save(stored); err != nil {
		return Stored{}, err
	}
	return stored, nil
}

// Regenerate replaces an unconfirmed passphrase. A confirmed one is only
// replaced when force is set.
func (m Manager) Regenerate(force bool) (Stored, error) {
	current, found, err := m.Store.Load()
	if err != nil {
		return Stored{}, err
	}
	if found && current.Confirmed() && !force {
		return Stored{}, ErrPassphraseConfirmed
	}
	stored, err := m.fresh()
	if err != nil {
		return Stored{}, err
	}
	if err := m.Store.Save(stored); err != nil {
		return Stored{}, err
	}
	return stored, nil
}

// Confirm marks the passphrase as the permanent key.
func (m Manager) Confirm() (Stored, error) {
	stored, found, err := m.Store.Load()
	if err != nil {
		return Stored{}, err
	}
	if !found {
		return Stored{}, commitment.ErrEmptyPassphrase
	}
	if stored.Confirmed() {
		return stored, nil
	}
	stored.ConfirmedAt = m.now()
	if err := m.Store.Save(stored); err != nil {
		return Stored{}, err
	}
	return stored, nil
}

func (m Manager) Clear() error {
	return m.Store.Clear()
}

func (m Manager) fresh() (Stored, error) {
	passphrase, err := Generate()
	if err != nil {
		return Stored{}, err
	}
	return Stored{Passphrase: passphrase, CreatedAt: m.now()}, nil
}

func (m Manager) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now().UTC()
}
