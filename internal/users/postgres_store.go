package users

import (
	"context"
	"fmt"

	"member-portal/internal/db"
)

type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Name, u.Username, u.PasswordHash, string(u.Role), u.CreatedAt)
	if err != nil {
		return fmt.Errorf("users: insert %q: %w", u.Username, err)
	}
	return nil
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, username, password_hash, role, created_at
		FROM users
		WHERE username = $1
		LIMIT $2
	`, username, maxMatches)
	if err != nil {
		return nil, fmt.Errorf("users: find %q: %w", username, err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var (
			u    User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("users: scan %q: %w", username, err)
		}
		u.Role = Role(role)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: find %q: %w", username, err)
	}
	return out, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, role
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	out := []Listing{}
	for rows.Next() {
		var (
			l    Listing
			role string
		)
		if err := rows.Scan(&l.Username, &role); err != nil {
			return nil, fmt.Errorf("users: scan list: %w", err)
		}
		l.Role = Role(role)
		out = append(out, l)
	}
	return out, rows.Err()
}
