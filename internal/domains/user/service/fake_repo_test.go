package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"diary-backend/internal/domains/user/model"
	"diary-backend/internal/domains/user/repository"
)

// fakeRepo keeps users in memory and applies the same guard as the SQL
// profile update.
type fakeRepo struct {
	mu    sync.Mutex
	users map[int64]*model.User
	// public entry counts for search results
	publicCounts map[int64]int64
	nextID       int64
}

var _ repository.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:        map[int64]*model.User{},
		publicCounts: map[int64]int64{},
		nextID:       1,
	}
}

func (f *fakeRepo) emailTaken(email string, except int64) bool {
	for id, u := range f.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (f *fakeRepo) Create(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailTaken(u.Email, 0) {
		return model.ErrEmailTaken
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp, nil
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (f *fakeRepo) GetPasswordHash(ctx context.Context, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return "", model.ErrUserNotFound
	}
	return u.PasswordHash, nil
}

func (f *fakeRepo) List(ctx context.Context, limit, offset int) ([]*model.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []*model.User{}
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		cp := *f.users[ids[i]]
		out = append(out, &cp)
	}
	return out, int64(len(ids)), nil
}

func (f *fakeRepo) Update(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.users[u.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	if f.emailTaken(u.Email, u.ID) {
		return model.ErrEmailTaken
	}
	cur.Name, cur.Email, cur.Role = u.Name, u.Email, u.Role
	if u.PasswordHash != "" {
		cur.PasswordHash = u.PasswordHash
	}
	cur.UpdatedAt = time.Now()
	u.UpdatedAt = cur.UpdatedAt
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeRepo) UpdateProfileIfAllowed(ctx context.Context, id int64, upd repository.ProfileUpdate) (*model.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, false, nil
	}
	if u.LastProfileUpdate != nil && u.LastProfileUpdate.After(upd.Cutoff) {
		return nil, false, nil
	}
	if f.emailTaken(upd.Email, id) {
		return nil, false, model.ErrEmailTaken
	}
	now := upd.Now
	u.Name, u.Email, u.Bio = upd.Name, upd.Email, upd.Bio
	u.LastProfileUpdate = &now
	u.UpdatedAt = now
	cp := *u
	cp.PasswordHash = ""
	return &cp, true, nil
}

func (f *fakeRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeRepo) SetActive(ctx context.Context, id int64, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeRepo) Search(ctx context.Context, pattern string, excludeID int64, limit int) ([]*model.SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// patterns in these tests carry no escaped wildcards
	needle := strings.ToLower(strings.Trim(pattern, "%"))

	hits := []*model.SearchHit{}
	for id, u := range f.users {
		if id == excludeID || !u.IsActive {
			continue
		}
		bio := ""
		if u.Bio != nil {
			bio = *u.Bio
		}
		hay := strings.ToLower(u.Name + "\x00" + u.Email + "\x00" + bio)
		if strings.Contains(hay, needle) {
			hits = append(hits, &model.SearchHit{User: *u, PublicDiariesCount: f.publicCounts[id]})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].ID < hits[j].ID })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// setLastProfileUpdate backdates the cooldown clock.
func (f *fakeRepo) setLastProfileUpdate(id int64, ts time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].LastProfileUpdate = &ts
}
