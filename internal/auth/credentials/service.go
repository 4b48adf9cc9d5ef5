package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"member-portal/internal/logger"
	"member-portal/internal/users"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// reuse the form binding tags so direct callers get the same rules
	validate.SetTagName("binding")
}

type Service struct {
	users users.Store
	cost  int
	now   func() time.Time
}

func NewService(store users.Store, cost int) *Service {
	return &Service{users: store, cost: cost, now: time.Now}
}

// Register creates a new account with role "user". Usernames are not
// checked for uniqueness; concurrent signups with the same username all
// succeed and the resulting duplicates fail at login.
func (s *Service) Register(ctx context.Context, in SignupInput) (users.User, error) {
	if err := validate.Struct(in); err != nil {
		return users.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.create(ctx, in.Name, in.Username, in.Password, users.RoleUser)
}

// Authenticate resolves username and password to exactly one account.
// Unknown usernames, ambiguous usernames and wrong passwords all return
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (users.User, error) {
	matches, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return users.User{}, err
	}

	switch len(matches) {
	case 1:
	case 0:
		logger.Warn("login failed: user not found", map[string]any{"username": username})
		return users.User{}, ErrInvalidCredentials
	default:
		logger.Warn("login failed: ambiguous username", map[string]any{"username": username})
		return users.User{}, ErrInvalidCredentials
	}

	u := matches[0]
	if err := VerifyPassword(u.PasswordHash, password); err != nil {
		logger.Warn("login failed: password incorrect", map[string]any{"username": username})
		return users.User{}, ErrInvalidCredentials
	}

	return u, nil
}

// Provision creates an account with an explicit role unless the username
// already exists. It reports whether an account was created.
func (s *Service) Provision(ctx context.Context, name, username, password string, role users.Role) (bool, error) {
	in := SignupInput{Name: name, Username: username, Password: password}
	if err := validate.Struct(in); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := users.ParseRole(string(role)); err != nil {
		return false, err
	}

	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	if _, err := s.create(ctx, name, username, password, role); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) create(ctx context.Context, name, username, password string, role users.Role) (users.User, error) {
	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return users.User{}, fmt.Errorf("credentials: hash password: %w", err)
	}

	u := users.User{
		ID:           uuid.NewString(),
		Name:         name,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Insert(ctx, u); err != nil {
		return users.User{}, err
	}

	logger.Info("user created", map[string]any{
		"user_id":  u.ID,
		"username": u.Username,
		"role":     string(u.Role),
	})

	return u, nil
}
