package hashing

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Scheme string

const (
	SHA256 Scheme = "sha256"
	Bcrypt Scheme = "bcrypt"
)

var ErrUnknownScheme = errors.New("unknown password hash scheme")

func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SHA256:
		return SHA256, nil
	case Bcrypt:
		return Bcrypt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
}

// Hex returns the lowercase hex SHA-256 digest of the plaintext. Boards
// shared with older clients store their passwords this way.
func Hex(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func Hash(scheme Scheme, plaintext string) (string, error) {
	switch scheme {
	case SHA256:
		return Hex(plaintext), nil
	case Bcrypt:
		hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
		if err != nil {
			return "", err
		}
		return string(hash), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
}

// Verify reports whether the plaintext matches the stored hash. The scheme
// is recognized from the hash itself.
func Verify(hash, plaintext string) bool {
	if hash == "" {
		return false
	}
	if strings.HasPrefix(hash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
	}
	digest := Hex(plaintext)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(hash)), []byte(digest)) == 1
}
