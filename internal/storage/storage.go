// Package storage defines device storage: a small string key/value store that plays
// the role browser local storage plays for the web client.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Keys used by the client. They match the names the web client uses in browser
// local storage, so exported data stays interchangeable.
const (
	KeyTasks        = "godaily_tasks"
	KeyTheme        = "godaily_theme"
	KeyProfileName  = "godaily_profile_name"
	KeyProfileEmail = "godaily_profile_email"
	KeyAuthToken    = "godaily_auth_token"
)

// ErrInvalidKey is returned for keys outside [a-z0-9_.-] or longer than 128 bytes.
var ErrInvalidKey = errors.New("invalid storage key")

var keyPattern = regexp.MustCompile(`^[a-z0-9_.-]{1,128}$`)

// KeyValue is a persistent string map.
type KeyValue interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys lists every stored key in ascending order.
	Keys(ctx context.Context) ([]string, error)
}

// ValidateKey checks that key can be stored by every backend.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
