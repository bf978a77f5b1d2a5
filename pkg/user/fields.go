package user

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Field validation errors. The API layer maps these to machine-readable
// error codes, so they must stay distinct.
var (
	ErrEmailEmpty      = errors.New("email must not be empty")
	ErrEmailInvalid    = errors.New("email is not a valid address")
	ErrUsernameEmpty   = errors.New("username must not be empty")
	ErrUsernameLength  = errors.New("username must be between 3 and 20 characters")
	ErrPasswordHashSet = errors.New("password hash must not be empty")
)

const (
	usernameMinLen = 3
	usernameMaxLen = 20
)

// Email is a validated email address. The zero value is invalid; construct
// via ParseEmail.
type Email struct {
	value string
}

// ParseEmail validates and normalizes an email address.
func ParseEmail(raw string) (Email, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Email{}, ErrEmailEmpty
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return Email{}, ErrEmailInvalid
	}
	// mail.ParseAddress accepts display names ("Bob <bob@x>"); only the
	// bare address form is valid here.
	if addr.Address != trimmed {
		return Email{}, ErrEmailInvalid
	}
	// Require a dot in the domain; "user@localhost" passes RFC 5322 but is
	// not a usable account address.
	at := strings.LastIndex(addr.Address, "@")
	if at < 0 || !strings.Contains(addr.Address[at+1:], ".") {
		return Email{}, ErrEmailInvalid
	}

	return Email{value: strings.ToLower(addr.Address)}, nil
}

// String returns the normalized address.
func (e Email) String() string { return e.value }

// IsZero reports whether the email was never parsed.
func (e Email) IsZero() bool { return e.value == "" }

// Username is a validated account name. The zero value is invalid;
// construct via ParseUsername.
type Username struct {
	value string
}

// ParseUsername validates an account name.
func ParseUsername(raw string) (Username, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Username{}, ErrUsernameEmpty
	}
	// Length limits are in characters, not bytes.
	if n := utf8.RuneCountInString(trimmed); n < usernameMinLen || n > usernameMaxLen {
		return Username{}, ErrUsernameLength
	}
	return Username{value: trimmed}, nil
}

// String returns the username.
func (u Username) String() string { return u.value }

// IsZero reports whether the username was never parsed.
func (u Username) IsZero() bool { return u.value == "" }

// PasswordHash holds an encoded password hash. It never contains the
// plaintext password.
type PasswordHash struct {
	value string
}

// NewPasswordHash wraps an already-encoded hash string.
func NewPasswordHash(encoded string) (PasswordHash, error) {
	if encoded == "" {
		return PasswordHash{}, ErrPasswordHashSet
	}
	return PasswordHash{value: encoded}, nil
}

// String returns the encoded hash.
func (p PasswordHash) String() string { return p.value }
