package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresRepository implements Repository on database/sql with lib/pq.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a PostgreSQL-backed user repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = "id, username, email, password_hash, provider, created_at, updated_at"

// Create persists a new user.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, provider, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Username.String(), u.Email.String(), hashValue(u.PasswordHash), string(u.Provider), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// CreateOIDCUser persists a user and its subject link in one transaction.
func (r *PostgresRepository) CreateOIDCUser(ctx context.Context, u *User, subject string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, provider, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Username.String(), u.Email.String(), hashValue(u.PasswordHash), string(u.Provider), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO oidc_identities (subject, user_id, created_at)
		VALUES ($1, $2, $3)
	`, subject, u.ID, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert oidc identity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// FindByID returns the user or ErrNotFound.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return u, nil
}

// FindByEmail returns the user or (nil, nil) when absent.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email Email) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email.String())
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return u, nil
}

// FindByUsername returns the user or (nil, nil) when absent.
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user by username: %w", err)
	}
	return u, nil
}

// FindByOIDCSubject returns the linked user or (nil, nil) when absent.
func (r *PostgresRepository) FindByOIDCSubject(ctx context.Context, subject string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.provider, u.created_at, u.updated_at
		FROM users u
		JOIN oidc_identities oi ON oi.user_id = u.id
		WHERE oi.subject = $1
	`, subject)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user by oidc subject: %w", err)
	}
	return u, nil
}

// FindAll returns every user ordered by creation time.
func (r *PostgresRepository) FindAll(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Update persists the mutable columns of a user.
func (r *PostgresRepository) Update(ctx context.Context, u *User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, updated_at = $5
		WHERE id = $1
	`, u.ID, u.Username.String(), u.Email.String(), hashValue(u.PasswordHash), u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user. The oidc_identities row cascades via FK.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner is the subset of sql.Row/sql.Rows needed by scanUser.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (*User, error) {
	var (
		u        User
		username string
		email    string
		hash     sql.NullString
		provider string
	)
	err := row.Scan(&u.ID, &username, &email, &hash, &provider, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	// Stored rows were validated on the way in; a parse failure here means
	// the table was modified out of band.
	u.Username, err = ParseUsername(username)
	if err != nil {
		return nil, fmt.Errorf("stored username %q: %w", username, err)
	}
	u.Email, err = ParseEmail(email)
	if err != nil {
		return nil, fmt.Errorf("stored email %q: %w", email, err)
	}
	if hash.Valid {
		h, err := NewPasswordHash(hash.String)
		if err != nil {
			return nil, fmt.Errorf("stored password hash: %w", err)
		}
		u.PasswordHash = &h
	}
	u.Provider = Provider(provider)

	return &u, nil
}

func hashValue(hash *PasswordHash) interface{} {
	if hash == nil {
		return nil
	}
	return hash.String()
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
