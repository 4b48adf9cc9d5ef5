package users

import "context"

// Store persists user accounts. Usernames are not unique at this layer:
// FindByUsername may return more than one record, and callers must treat
// that as ambiguous. Implementations return at most two matches.
type Store interface {
	Insert(ctx context.Context, u User) error
	FindByUsername(ctx context.Context, username string) ([]User, error)
	List(ctx context.Context) ([]Listing, error)
}

const maxMatches = 2
