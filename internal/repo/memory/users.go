package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/recipehub/internal/domain/user"
)

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) find(match func(user.User) bool) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) FindByEmail(_ context.Context, email string) (user.User, error) {
	return r.find(func(u user.User) bool { return u.Email == email })
}

func (r *UsersRepo) FindByUsername(_ context.Context, username string) (user.User, error) {
	return r.find(func(u user.User) bool { return u.Username == username })
}

func (r *UsersRepo) FindByID(_ context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// conflict must be called with mu held.
func (r *UsersRepo) conflict(selfID int64, username, email string) error {
	for id, u := range r.s.users {
		if id == selfID {
			continue
		}
		if u.Username == username {
			return user.ErrUsernameTaken
		}
		if u.Email == email {
			return user.ErrEmailTaken
		}
	}
	return nil
}

func (r *UsersRepo) Insert(_ context.Context, nu user.NewUser) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.conflict(0, nu.Username, nu.Email); err != nil {
		return user.User{}, err
	}

	now := r.s.now()
	u := user.User{
		ID:           r.s.next("users"),
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		IsAdmin:      nu.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) Update(_ context.Context, id int64, upd user.ProfileUpdate) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if err := r.conflict(id, upd.Username, upd.Email); err != nil {
		return user.User{}, err
	}

	u.Username = upd.Username
	u.Email = upd.Email
	u.FirstName = upd.FirstName
	u.LastName = upd.LastName
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u

	return u, nil
}

func (r *UsersRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.ErrNotFound
	}

	u.PasswordHash = hash
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u

	return nil
}

func (r *UsersRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.s.users, id)

	for rid, rc := range r.s.recipes {
		if rc.UserID == id {
			r.s.deleteRecipe(rid)
		}
	}
	for k := range r.s.ratings {
		if k.b == id {
			delete(r.s.ratings, k)
		}
	}
	for k := range r.s.favorites {
		if k.a == id {
			delete(r.s.favorites, k)
		}
	}

	return nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}
