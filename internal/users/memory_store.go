package users

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps accounts in process memory. It is meant for local
// development and tests; records vanish on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	users []User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Insert(ctx context.Context, u User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, u)
	return nil
}

func (m *MemoryStore) FindByUsername(ctx context.Context, username string) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []User
	for _, u := range m.users {
		if u.Username == username {
			out = append(out, u)
			if len(out) == maxMatches {
				break
			}
		}
	}
	return out, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]Listing, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, Listing{Username: u.Username, Role: u.Role})
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
