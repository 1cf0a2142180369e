// Package commitment binds a plaintext vote value to a voter and an article
// with a client-held passphrase. The server only ever stores the digest; the
// value can be recovered by whoever holds the passphrase by trying every
// legal value of the closed enumeration.
package commitment

import (
	"crypto"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"agora/contexts/governance/voting-core/domain/entities"
)

const domainTag = "agora.vote-commitment.v1"

var ErrEmptyPassphrase = errors.New("passphrase is required")

// Passphrase is the client secret. Its formatting methods never reveal the
// value so it cannot leak through logs or JSON by accident.
type Passphrase struct {
	secret string
}

func NewPassphrase(secret string) (Passphrase, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return Passphrase{}, ErrEmptyPassphrase
	}
	return Passphrase{secret: trimmed}, nil
}

// Reveal returns the raw secret. Only the client storage layer should need it.
func (p Passphrase) Reveal() string {
	return p.secret
}

func (p Passphrase) IsZero() bool {
	return p.secret == ""
}

func (p Passphrase) String() string {
	if p.secret == "" {
		return ""
	}
	return "[redacted]"
}

func (p Passphrase) GoString() string {
	return "commitment.Passphrase{[redacted]}"
}

func (p Passphrase) LogValue() slog.Value {
	return slog.StringValue(p.String())
}

func (p Passphrase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Digest is the lowercase hex SHA-256 commitment stored on the vote record.
type Digest string

// Commit is deterministic over its four inputs. Each field is length
// prefixed, so ("1","23") and ("12","3") never hash the same bytes.
func Commit(passphrase Passphrase, voterID string, articleID string, value string) Digest {
	mustHaveSHA256()
	h := sha256.New()
	writeField(h, domainTag)
	writeField(h, passphrase.secret)
	writeField(h, voterID)
	writeField(h, articleID)
	writeField(h, value)
	return Digest(hex.EncodeToString(h.Sum(nil)))
}

// Verify returns the candidate the digest commits to. A digest that literally
// equals a candidate is a pre-hashing legacy record and is returned as is.
// ok is false when nothing matches, which callers must report as "cannot
// verify" rather than "no vote".
func Verify(passphrase Passphrase, voterID string, articleID string, digest string, candidates []string) (string, bool) {
	stored := strings.TrimSpace(digest)
	if stored == "" {
		return "", false
	}
	for _, candidate := range candidates {
		if stored == candidate {
			return candidate, true
		}
	}
	if passphrase.IsZero() {
		return "", false
	}
	stored = strings.ToLower(stored)
	for _, candidate := range candidates {
		computed := Commit(passphrase, voterID, articleID, candidate)
		if subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1 {
			return candidate, true
		}
	}
	return "", false
}

// VerifyKind verifies against the enumeration for the vote kind.
func VerifyKind(passphrase Passphrase, voterID string, articleID string, digest string, kind entities.VoteKind) (string, bool) {
	return Verify(passphrase, voterID, articleID, digest, kind.Candidates())
}

func VerifyDuration(passphrase Passphrase, voterID string, articleID string, digest string) (entities.DurationValue, bool) {
	value, ok := VerifyKind(passphrase, voterID, articleID, digest, entities.VoteKindDuration)
	return entities.DurationValue(value), ok
}

func VerifyApproval(passphrase Passphrase, voterID string, articleID string, digest string) (entities.ApprovalValue, bool) {
	value, ok := VerifyKind(passphrase, voterID, articleID, digest, entities.VoteKindApproval)
	return entities.ApprovalValue(value), ok
}

// IsLegacyPlaintext reports whether a stored digest is actually an unhashed
// legal value. New records must never look like this.
func IsLegacyPlaintext(digest string, kind entities.VoteKind) bool {
	return kind.IsLegalValue(strings.TrimSpace(digest))
}

func writeField(h interface{ Write([]byte) (int, error) }, value string) {
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(value)))
	_, _ = h.Write(size[:])
	_, _ = h.Write([]byte(value))
}

// mustHaveSHA256 refuses to run without the hash primitive; there is no
// plaintext fallback.
func mustHaveSHA256() {
	if !crypto.SHA256.Available() {
		panic("commitment: sha256 is unavailable")
	}
}
