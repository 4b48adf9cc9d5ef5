package session

import (
	"context"
	"time"
)

// TTL is the fixed lifetime of a session, counted from login.
const TTL = time.Hour

// Session is the state shared between requests through the store.
// Admin is only ever set together with Authenticated.
type Session struct {
	SessionID     string    `json:"session_id"`
	Authenticated bool      `json:"authenticated"`
	Name          string    `json:"name"`
	Admin         bool      `json:"admin,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// New builds the session issued on a successful login.
func New(sessionID, name string, admin bool, now time.Time) Session {
	return Session{
		SessionID:     sessionID,
		Authenticated: true,
		Name:          name,
		Admin:         admin,
		CreatedAt:     now,
		ExpiresAt:     now.Add(TTL),
	}
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store is the source of truth for session state across requests.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
