package users

import (
	"errors"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var ErrInvalidRole = errors.New("users: invalid role")

// ParseRole accepts only the roles known to the portal.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

// User is a stored account. PasswordHash is a bcrypt hash, never plaintext.
type User struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password"`
	Role         Role      `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
}

// Listing is the non-sensitive projection shown on the admin page.
type Listing struct {
	Username string `bson:"username"`
	Role     Role   `bson:"role"`
}
