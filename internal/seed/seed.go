// Package seed provisions accounts listed in a YAML file. It is the only
// path that creates admin accounts; signup always assigns the user role.
package seed

import (
	"context"
	"fmt"
	"os"

	"member-portal/internal/logger"
	"member-portal/internal/users"

	"gopkg.in/yaml.v3"
)

type Account struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type File struct {
	Accounts []Account `yaml:"accounts"`
}

// Provisioner creates an account unless its username already exists.
type Provisioner interface {
	Provision(ctx context.Context, name, username, password string, role users.Role) (bool, error)
}

func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("seed: parse: %w", err)
	}
	for i := range f.Accounts {
		if f.Accounts[i].Role == "" {
			f.Accounts[i].Role = string(users.RoleUser)
		}
	}
	return f, nil
}

// Apply provisions every account in order and stops at the first error.
func Apply(ctx context.Context, p Provisioner, f File) (int, error) {
	created := 0
	for _, a := range f.Accounts {
		role, err := users.ParseRole(a.Role)
		if err != nil {
			return created, fmt.Errorf("seed: account %q: %w", a.Username, err)
		}

		ok, err := p.Provision(ctx, a.Name, a.Username, a.Password, role)
		if err != nil {
			return created, fmt.Errorf("seed: account %q: %w", a.Username, err)
		}
		if ok {
			created++
			logger.Info("seeded account", map[string]any{
				"username": a.Username,
				"role":     string(role),
			})
		}
	}
	return created, nil
}
