package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain"
	"github.com/geocoder89/catalogadmin/internal/domain/user"
)

type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[int64]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Name == u.Name {
			return user.User{}, &domain.ConflictError{Entity: "user", Field: "name"}
		}
		if existing.Email == u.Email {
			return user.User{}, &domain.ConflictError{Entity: "user", Field: "email"}
		}
	}

	now := time.Now().UTC()
	r.nextID++
	u.ID = r.nextID
	u.Roles = append([]string{}, u.Roles...)
	u.CreatedAt = now
	u.UpdatedAt = now
	r.items[u.ID] = u

	return clone(u), nil
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return clone(u), nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *UsersRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *UsersRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}

func (r *UsersRepo) AssignRole(_ context.Context, userID int64, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[userID]
	if !ok {
		return user.ErrNotFound
	}
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
		sort.Strings(u.Roles)
		u.UpdatedAt = time.Now().UTC()
		r.items[userID] = u
	}
	return nil
}

// LabelsForUser returns role names plus the permissions those roles grant.
func (r *UsersRepo) LabelsForUser(_ context.Context, userID int64) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[userID]
	if !ok {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(label string) {
		if _, dup := seen[label]; !dup {
			seen[label] = struct{}{}
			out = append(out, label)
		}
	}
	for _, role := range u.Roles {
		add(role)
		for _, perm := range user.RolePermissions[role] {
			add(perm)
		}
	}
	return out, nil
}

func (r *UsersRepo) ListByRoles(_ context.Context, roles []string) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []user.User
	for _, u := range r.items {
		for _, role := range roles {
			if u.HasRole(role) {
				out = append(out, clone(u))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func clone(u user.User) user.User {
	u.Roles = append([]string{}, u.Roles...)
	return u
}
