// Package secrets generates one-time codes and hashes them for lookup.
package secrets

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	dErrors "unitgate/pkg/domain-errors"
)

const defaultCodeBytes = 10

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Generate returns a random code of 16 upper-case base32 characters, short
// enough to type from a text message.
func Generate() (string, error) {
	buf := make([]byte, defaultCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate code")
	}
	return codeEncoding.EncodeToString(buf), nil
}

// Hasher derives a keyed BLAKE2b-256 digest of a code. The digest is
// deterministic so stored codes can be found by hash without keeping the
// plaintext.
type Hasher struct {
	key []byte
}

func NewHasher(key []byte) (*Hasher, error) {
	if len(key) == 0 || len(key) > blake2b.Size {
		return nil, dErrors.New(dErrors.CodeValidation, "hash key must be 1 to 64 bytes")
	}
	return &Hasher{key: append([]byte(nil), key...)}, nil
}

// Hash normalizes case and whitespace before hashing, and returns hex.
func (h *Hasher) Hash(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", dErrors.New(dErrors.CodeValidation, "code cannot be empty")
	}
	mac, err := blake2b.New256(h.key)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash code")
	}
	mac.Write([]byte(code)) //nolint:errcheck // hash.Hash never fails
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify compares code against a stored digest in constant time.
func (h *Hasher) Verify(code, digest string) error {
	got, err := h.Hash(code)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(digest)) != 1 {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid code")
	}
	return nil
}
