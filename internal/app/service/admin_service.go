package service

import (
	"context"
	"errors"
	"fmt"

	"lexora/internal/common"
	"lexora/internal/domain/model"
	"lexora/internal/domain/repository"
)

const recentActivityLimit = 20

// AdminService backs the /api/admin endpoints. Callers are gated by
// security.AdminOnly before reaching it.
type AdminService struct {
	userRepo     repository.UserRepository
	blogRepo     repository.BlogRepository
	activityRepo repository.ActivityRepository
	blogs        *BlogService
}

func NewAdminService(userRepo repository.UserRepository, blogRepo repository.BlogRepository, activityRepo repository.ActivityRepository, blogs *BlogService) *AdminService {
	return &AdminService{userRepo: userRepo, blogRepo: blogRepo, activityRepo: activityRepo, blogs: blogs}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// ToggleUser flips a user's isActive flag.
func (s *AdminService) ToggleUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.ToggleActive(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("failed to toggle user: %w", err)
	}
	return user, nil
}

func (s *AdminService) ListBlogs(ctx context.Context) ([]*model.Blog, error) {
	blogs, err := s.blogRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	if err := populateAuthors(ctx, s.userRepo, blogs, authorContact); err != nil {
		return nil, err
	}
	return blogs, nil
}

func (s *AdminService) DeleteBlog(ctx context.Context, blogID string) error {
	return s.blogs.remove(ctx, blogID)
}

// ListActivities returns the newest activities with their users attached.
func (s *AdminService) ListActivities(ctx context.Context) ([]*model.Activity, error) {
	activities, err := s.activityRepo.ListRecent(ctx, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	seen := map[string]bool{}
	var ids []string
	for _, a := range activities {
		if !seen[a.UserID] {
			seen[a.UserID] = true
			ids = append(ids, a.UserID)
		}
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity users: %w", err)
	}
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, a := range activities {
		if u, ok := byID[a.UserID]; ok {
			a.User = &model.UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
		}
	}
	return activities, nil
}
