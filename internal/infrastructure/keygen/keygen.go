// Package keygen issues and parses GoDaily bearer tokens.
//
// Tokens use a split-token layout, sk-godaily-v1-{short}-{secret}: the short token
// is stored in clear for lookup, the secret only as a BLAKE2b-256 hash.
package keygen

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/godaily/godaily/internal/domain"
)

const (
	KeyType = "sk"
	Service = "godaily"
	Version = "v1"

	prefix         = KeyType + "-" + Service + "-" + Version + "-"
	shortTokenLen  = 12 // hex chars, 48 bits of the secret's hash
	secretBytes    = 32
	secretEncLen   = 43 // base64url without padding of secretBytes
	maskedFallback = "***"
)

// Key is a parsed or freshly generated token.
type Key struct {
	ShortToken string
	Secret     string
	Plain      string
}

// Generate creates a token from 256 bits of crypto/rand entropy.
func Generate() (Key, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return Key{}, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)

	sum := blake2b.Sum256([]byte(secret))
	short := hex.EncodeToString(sum[:shortTokenLen/2])

	return Key{
		ShortToken: short,
		Secret:     secret,
		Plain:      prefix + short + "-" + secret,
	}, nil
}

// Parse splits a token into its parts. The secret may itself contain hyphens.
func Parse(token string) (Key, error) {
	rest, ok := strings.CutPrefix(token, prefix)
	if !ok {
		return Key{}, fmt.Errorf("%w: unknown prefix", domain.ErrInvalidAPIKeyFormat)
	}

	short, secret, ok := strings.Cut(rest, "-")
	if !ok {
		return Key{}, fmt.Errorf("%w: missing secret", domain.ErrInvalidAPIKeyFormat)
	}
	if len(short) != shortTokenLen {
		return Key{}, fmt.Errorf("%w: short token must be %d characters", domain.ErrInvalidAPIKeyFormat, shortTokenLen)
	}
	if _, err := hex.DecodeString(short); err != nil {
		return Key{}, fmt.Errorf("%w: short token is not hex", domain.ErrInvalidAPIKeyFormat)
	}
	if len(secret) != secretEncLen {
		return Key{}, fmt.Errorf("%w: secret must be %d characters", domain.ErrInvalidAPIKeyFormat, secretEncLen)
	}

	return Key{ShortToken: short, Secret: secret, Plain: token}, nil
}

// Display hides the secret: sk-godaily-v1-a3f5d8c2b4e6-****.
func (k Key) Display() string {
	return prefix + k.ShortToken + "-****"
}

// HashSecret returns the hex BLAKE2b-256 digest stored for a secret.
func HashSecret(secret string) string {
	sum := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Mask returns a log-safe form of token.
func Mask(token string) string {
	k, err := Parse(token)
	if err != nil {
		return maskedFallback
	}
	return k.Display()
}
