// Package settings exposes the user preferences and session kept in device storage.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/godaily/godaily/internal/domain"
	"github.com/godaily/godaily/internal/storage"
)

// Defaults shown before the user edits their profile.
const (
	DefaultProfileName  = "GoDaily User"
	DefaultProfileEmail = "user@godaily.app"
)

// Confirmation prompts.
const (
	ResetPrompt  = "Are you sure you want to reset the app? All tasks, settings, and data will be deleted."
	LogoutPrompt = "Are you sure you want to logout?"
)

// Profile is the display identity of the local user.
type Profile struct {
	Name  string
	Email string
}

// Initials returns up to two upper-case initials of the profile name.
func (p Profile) Initials() string {
	return Initials(p.Name)
}

// Settings reads and writes preferences in device storage.
type Settings struct {
	kv storage.KeyValue
}

// New returns settings backed by kv.
func New(kv storage.KeyValue) *Settings {
	return &Settings{kv: kv}
}

func (s *Settings) get(ctx context.Context, key, def string) (string, error) {
	v, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || v == "" {
		return def, nil
	}
	return v, nil
}

// Theme returns the stored theme. Missing or unrecognised values read as light.
func (s *Settings) Theme(ctx context.Context) (domain.Theme, error) {
	raw, err := s.get(ctx, storage.KeyTheme, string(domain.ThemeLight))
	if err != nil {
		return "", err
	}
	theme, err := domain.NewTheme(raw)
	if err != nil {
		slog.WarnContext(ctx, "ignoring stored theme", "value", raw)
		return domain.ThemeLight, nil
	}
	return theme, nil
}

// SetTheme stores theme; anything other than light or dark is rejected.
func (s *Settings) SetTheme(ctx context.Context, theme string) (domain.Theme, error) {
	t, err := domain.NewTheme(theme)
	if err != nil {
		return "", err
	}
	if err := s.kv.Set(ctx, storage.KeyTheme, string(t)); err != nil {
		return "", fmt.Errorf("failed to store theme: %w", err)
	}
	return t, nil
}

// Profile returns the stored profile, with defaults for unset fields.
func (s *Settings) Profile(ctx context.Context) (Profile, error) {
	name, err := s.get(ctx, storage.KeyProfileName, DefaultProfileName)
	if err != nil {
		return Profile{}, err
	}
	email, err := s.get(ctx, storage.KeyProfileEmail, DefaultProfileEmail)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Name: name, Email: email}, nil
}

// SetProfileName stores the trimmed name. A blank name restores the default.
func (s *Settings) SetProfileName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultProfileName
	}
	if err := s.kv.Set(ctx, storage.KeyProfileName, name); err != nil {
		return fmt.Errorf("failed to store profile name: %w", err)
	}
	return nil
}

// SetProfileEmail stores the trimmed email. A blank email restores the default.
func (s *Settings) SetProfileEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		email = DefaultProfileEmail
	}
	if err := s.kv.Set(ctx, storage.KeyProfileEmail, email); err != nil {
		return fmt.Errorf("failed to store profile email: %w", err)
	}
	return nil
}

// AuthToken returns the stored bearer token.
func (s *Settings) AuthToken(ctx context.Context) (string, bool, error) {
	token, ok, err := s.kv.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		return "", false, fmt.Errorf("failed to read auth token: %w", err)
	}
	return token, ok && token != "", nil
}

// SetAuthToken stores a bearer token.
func (s *Settings) SetAuthToken(ctx context.Context, token string) error {
	if err := s.kv.Set(ctx, storage.KeyAuthToken, token); err != nil {
		return fmt.Errorf("failed to store auth token: %w", err)
	}
	return nil
}

// Logout forgets the auth token and the profile.
func (s *Settings) Logout(ctx context.Context) error {
	return s.remove(ctx, storage.KeyAuthToken, storage.KeyProfileName, storage.KeyProfileEmail)
}

// Reset deletes the tasks, theme and profile once confirm approves ResetPrompt.
// The auth token is kept.
func (s *Settings) Reset(ctx context.Context, confirm func(string) bool) (bool, error) {
	if confirm == nil || !confirm(ResetPrompt) {
		return false, nil
	}
	err := s.remove(ctx, storage.KeyTasks, storage.KeyTheme, storage.KeyProfileName, storage.KeyProfileEmail)
	return err == nil, err
}

func (s *Settings) remove(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := s.kv.Remove(ctx, key); err != nil {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
	}
	return nil
}

// Initials takes the first letter of each word of name, upper-cased, at most two.
func Initials(name string) string {
	var b strings.Builder
	n := 0
	for _, word := range strings.Fields(name) {
		if n == 2 {
			break
		}
		r := []rune(word)[0]
		b.WriteRune(unicode.ToUpper(r))
		n++
	}
	return b.String()
}
