package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore implements Store on database/sql with lib/pq.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed repository store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a repository.
func (s *PostgresStore) Create(ctx context.Context, create CreateRepository) (*Repository, error) {
	repo := &Repository{
		ID:   uuid.New(),
		Name: create.Name,
		URL:  create.URL,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repositories (id, name, url)
		VALUES ($1, $2, $3)
	`, repo.ID, repo.Name, repo.URL)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert repository: %w", err)
	}
	return repo, nil
}

// FindAll returns repositories ordered by name, optionally filtered by a
// case-insensitive substring match on name or URL.
func (s *PostgresStore) FindAll(ctx context.Context, search string) ([]*Repository, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if search == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT id, name, url FROM repositories ORDER BY name`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, name, url FROM repositories
			WHERE name ILIKE '%' || $1 || '%' OR url ILIKE '%' || $1 || '%'
			ORDER BY name
		`, search)
	}
	if err != nil {
		return nil, fmt.Errorf("query repositories: %w", err)
	}
	defer rows.Close()

	var repos []*Repository
	for rows.Next() {
		var repo Repository
		if err := rows.Scan(&repo.ID, &repo.Name, &repo.URL); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, &repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}
	return repos, nil
}

// FindOne returns the repository or (nil, nil) when absent.
func (s *PostgresStore) FindOne(ctx context.Context, id uuid.UUID) (*Repository, error) {
	var repo Repository
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, url FROM repositories WHERE id = $1
	`, id).Scan(&repo.ID, &repo.Name, &repo.URL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query repository: %w", err)
	}
	return &repo, nil
}

// Delete removes a repository.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM repositories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete repository: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete repository: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
