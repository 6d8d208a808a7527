package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength is the longest title accepted, in characters.
const MaxTitleLength = 255

// Title is a validated title value object (1-255 characters).
type Title struct {
	value string
}

// NewTitle creates a new Title, validating the input.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Title{}, ErrTitleRequired
	}

	if utf8.RuneCountInString(s) > MaxTitleLength {
		return Title{}, ErrTitleTooLong
	}

	return Title{value: s}, nil
}

// String returns the title value.
func (t Title) String() string {
	return t.value
}

// Priority represents the priority level of a task.
// Value object - immutable string enum.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// NewPriority validates and creates a Priority.
// An empty string yields PriorityMedium.
func NewPriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}

	priority := Priority(strings.ToLower(strings.TrimSpace(s)))

	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return priority, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPriority, s)
	}
}

// Weight ranks priorities for suggestion tie-breaks: high=3, medium=2, low=1.
// Unknown values weigh the same as medium.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Theme is the UI colour scheme stored in device settings.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// NewTheme validates and creates a Theme.
func NewTheme(s string) (Theme, error) {
	theme := Theme(strings.ToLower(strings.TrimSpace(s)))

	switch theme {
	case ThemeLight, ThemeDark:
		return theme, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTheme, s)
	}
}

// Email is a validated, lower-cased email address.
type Email struct {
	value string
}

// NewEmail creates a new Email, validating the input.
func NewEmail(s string) (Email, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Email{}, ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return Email{}, fmt.Errorf("%w: %s", ErrInvalidEmail, s)
	}

	return Email{value: s}, nil
}

// String returns the email value.
func (e Email) String() string {
	return e.value
}
