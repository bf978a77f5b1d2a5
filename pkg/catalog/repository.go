package catalog

import (
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// minNameLength is the shortest accepted repository name.
const minNameLength = 3

var (
	// ErrNameTooShort marks a repository name below the minimum length.
	ErrNameTooShort = errors.New("repository name must be at least 3 characters long")
	// ErrURLInvalid marks a repository URL that is not absolute http(s).
	ErrURLInvalid = errors.New("invalid repository URL")

	// ErrNotFound marks a lookup for a repository that does not exist.
	ErrNotFound = errors.New("repository not found")
	// ErrAlreadyExists marks a unique-constraint collision on name or URL.
	ErrAlreadyExists = errors.New("repository already exists")
)

// Repository is a registered package repository.
type Repository struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	URL  string    `json:"url"`
}

// CreateRepository is a validated creation request.
type CreateRepository struct {
	Name string
	URL  string
}

// NewCreateRepository validates name and URL and returns the request.
func NewCreateRepository(name, rawURL string) (CreateRepository, error) {
	name = strings.TrimSpace(name)
	if len(name) < minNameLength {
		return CreateRepository{}, ErrNameTooShort
	}

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return CreateRepository{}, ErrURLInvalid
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return CreateRepository{}, ErrURLInvalid
	}

	return CreateRepository{Name: name, URL: parsed.String()}, nil
}

// Package is one entry of a repository's remote index.
type Package struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}
