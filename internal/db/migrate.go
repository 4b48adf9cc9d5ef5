package db

import (
	"context"
	"database/sql"
)

// usernames are indexed but not unique; see users.Store.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY,
    name text NOT NULL DEFAULT '',
    username varchar(20) NOT NULL,
    password_hash text NOT NULL,
    role text NOT NULL DEFAULT 'user'
        CONSTRAINT users_role_check CHECK (role IN ('user', 'admin')),
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS users_username_idx
ON users (username);
`

func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
