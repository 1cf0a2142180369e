// Package voterhash computes the server-side voter identity hash stored on
// each vote record. It is keyed by a server secret and says nothing about the
// vote's value.
package voterhash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"agora/contexts/governance/voting-core/domain/entities"

	"golang.org/x/crypto/hkdf"
)

var ErrSecretMissing = errors.New("voter hash secret is not configured")

const keyInfo = "agora.voter-identity-hash.v1"

// Hasher is safe for concurrent use.
type Hasher struct {
	key []byte
}

// New derives the HMAC key from the configured secret. An empty secret is a
// startup failure: votes must not be processed with weakened anonymisation.
func New(secret string) (Hasher, error) {
	if strings.TrimSpace(secret) == "" {
		return Hasher{}, ErrSecretMissing
	}
	key := make([]byte, sha256.Size)
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(reader, key); err != nil {
		return Hasher{}, fmt.Errorf("derive voter hash key: %w", err)
	}
	return Hasher{key: key}, nil
}

// MustNew is for process wiring where a missing secret should abort start.
func MustNew(secret string) Hasher {
	hasher, err := New(secret)
	if err != nil {
		panic(err)
	}
	return hasher
}

func (h Hasher) Configured() bool {
	return len(h.key) > 0
}

// Hash returns the hex HMAC-SHA256 of the length-framed inputs. It panics on
// an unconfigured Hasher, which can only happen if wiring skipped New.
func (h Hasher) Hash(voterID string, articleID string, kind entities.VoteKind) string {
	if !h.Configured() {
		panic(ErrSecretMissing)
	}
	mac := hmac.New(sha256.New, h.key)
	for _, field := range []string{voterID, articleID, string(kind)} {
		var size [4]byte
		binary.BigEndian.PutUint32(size[:], uint32(len(field)))
		_, _ = mac.Write(size[:])
		_, _ = mac.Write([]byte(field))
	}
	return hex.EncodeToString(mac.Sum(nil))
}
