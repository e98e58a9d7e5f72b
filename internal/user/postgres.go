package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kossahokia/bankcards/internal/apperr"
)

const userColumns = `id, username, password_hash, full_name, roles, enabled, created_at`

// PostgresStore stores users in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed user store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a user row and returns it with the generated id.
func (s *PostgresStore) Create(ctx context.Context, u User) (User, error) {
	err := s.db.QueryRow(ctx, `INSERT INTO users (username, password_hash, full_name, roles, enabled, created_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		u.Username, u.PasswordHash, u.FullName, u.Roles, u.Enabled, u.CreatedAt.UTC()).Scan(&u.ID)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// FindByID fetches a user by id.
func (s *PostgresStore) FindByID(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByUsername fetches a user by exact username.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// Update persists the mutable user fields.
func (s *PostgresStore) Update(ctx context.Context, u User) error {
	cmd, err := s.db.Exec(ctx, `UPDATE users SET full_name = $1, roles = $2, enabled = $3 WHERE id = $4`,
		u.FullName, u.Roles, u.Enabled, u.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// Delete removes a user row.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	cmd, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// List returns users matching the filter, ordered by id.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any
	var where []string
	if f.Username != "" {
		args = append(args, "%"+f.Username+"%")
		where = append(where, fmt.Sprintf("username ILIKE $%d", len(args)))
	}
	if f.Enabled != nil {
		args = append(args, *f.Enabled)
		where = append(where, fmt.Sprintf("enabled = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Roles, &u.Enabled, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound("user not found")
		}
		return User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
