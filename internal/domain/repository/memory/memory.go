// Package memory provides in-process repositories for development and tests.
// All three repositories share one Store and one lock.
package memory

import (
	"context"
	"sort"
	"sync"

	"lexora/internal/common"
	"lexora/internal/domain/model"
	"lexora/internal/domain/repository"
)

var (
	_ repository.UserRepository     = (*UserRepository)(nil)
	_ repository.BlogRepository     = (*BlogRepository)(nil)
	_ repository.ActivityRepository = (*ActivityRepository)(nil)
)

type Store struct {
	mu         sync.RWMutex
	users      map[string]*model.User
	blogs      map[string]*model.Blog
	activities []*model.Activity
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*model.User),
		blogs: make(map[string]*model.Blog),
	}
}

// UserRepository

type UserRepository struct{ s *Store }

func NewUserRepository(s *Store) *UserRepository { return &UserRepository{s: s} }

func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return common.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) findBy(match func(*model.User) bool) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.findBy(func(u *model.User) bool { return u.Email == email })
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return r.findBy(func(u *model.User) bool { return u.Username == username })
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByIDs(_ context.Context, ids []string) ([]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *UserRepository) List(_ context.Context) ([]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, cloneUser(u))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *UserRepository) update(id string, fn func(*model.User)) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	fn(u)
	return cloneUser(u), nil
}

func (r *UserRepository) UpdateAvatar(_ context.Context, id, avatar string) (*model.User, error) {
	return r.update(id, func(u *model.User) { u.Avatar = avatar })
}

func (r *UserRepository) ToggleActive(_ context.Context, id string) (*model.User, error) {
	return r.update(id, func(u *model.User) { u.IsActive = !u.IsActive })
}

// BlogRepository

type BlogRepository struct{ s *Store }

func NewBlogRepository(s *Store) *BlogRepository { return &BlogRepository{s: s} }

func cloneBlog(b *model.Blog) *model.Blog {
	c := *b
	c.Author = nil
	c.Tags = append([]string{}, b.Tags...)
	c.Likes = append([]string{}, b.Likes...)
	c.Comments = append([]model.Comment{}, b.Comments...)
	return &c
}

func (r *BlogRepository) Create(_ context.Context, blog *model.Blog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[blog.AuthorID]; !ok {
		return common.Errorf("blog author %s does not exist: %w", blog.AuthorID, common.ErrNotFound)
	}
	r.s.blogs[blog.ID] = cloneBlog(blog)
	return nil
}

func (r *BlogRepository) FindByID(_ context.Context, id string) (*model.Blog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.blogs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneBlog(b), nil
}

// sorted returns copies of the blogs accepted by keep, newest first.
func (r *BlogRepository) sorted(keep func(*model.Blog) bool) []*model.Blog {
	out := []*model.Blog{}
	for _, b := range r.s.blogs {
		if keep == nil || keep(b) {
			out = append(out, cloneBlog(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *BlogRepository) List(_ context.Context) ([]*model.Blog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(nil), nil
}

func (r *BlogRepository) ListByAuthor(_ context.Context, authorID string, offset, limit int) ([]*model.Blog, int, error) {
	if offset < 0 {
		return nil, 0, common.Errorf("negative offset %d: %w", offset, common.ErrBadRequest)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.sorted(func(b *model.Blog) bool { return b.AuthorID == authorID })
	total := len(all)
	if limit <= 0 {
		return all, total, nil
	}
	if offset >= total {
		return []*model.Blog{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *BlogRepository) Trending(_ context.Context, limit int) ([]*model.Blog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.sorted(nil)
	sort.SliceStable(all, func(i, j int) bool { return len(all[i].Likes) > len(all[j].Likes) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *BlogRepository) AuthorIDs(_ context.Context, limit int) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := map[string]bool{}
	var ids []string
	for _, b := range r.sorted(nil) {
		if seen[b.AuthorID] {
			continue
		}
		seen[b.AuthorID] = true
		ids = append(ids, b.AuthorID)
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

func (r *BlogRepository) Update(_ context.Context, blog *model.Blog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.blogs[blog.ID]
	if !ok {
		return common.ErrNotFound
	}
	b.Title = blog.Title
	b.Slug = blog.Slug
	b.Content = blog.Content
	b.Excerpt = blog.Excerpt
	b.Tags = append([]string{}, blog.Tags...)
	b.Image = blog.Image
	b.UpdatedAt = blog.UpdatedAt
	return nil
}

func (r *BlogRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.blogs[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.blogs, id)
	return nil
}

func (r *BlogRepository) ToggleLike(_ context.Context, blogID, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.blogs[blogID]
	if !ok {
		return 0, common.ErrNotFound
	}
	for i, id := range b.Likes {
		if id == userID {
			b.Likes = append(b.Likes[:i:i], b.Likes[i+1:]...)
			return len(b.Likes), nil
		}
	}
	b.Likes = append(b.Likes, userID)
	return len(b.Likes), nil
}

func (r *BlogRepository) AddComment(_ context.Context, blogID string, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.blogs[blogID]
	if !ok {
		return common.ErrNotFound
	}
	b.Comments = append([]model.Comment{*c}, b.Comments...)
	return nil
}

// ActivityRepository

type ActivityRepository struct{ s *Store }

func NewActivityRepository(s *Store) *ActivityRepository { return &ActivityRepository{s: s} }

func (r *ActivityRepository) Create(_ context.Context, activity *model.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := *activity
	a.User = nil
	r.s.activities = append(r.s.activities, &a)
	return nil
}

func (r *ActivityRepository) ListRecent(_ context.Context, limit int) ([]*model.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*model.Activity, 0, len(r.s.activities))
	for _, a := range r.s.activities {
		c := *a
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
