package service

import (
	"context"
	"errors"
	"fmt"

	"lexora/internal/common"
	"lexora/internal/common/security"
	"lexora/internal/domain/model"
	"lexora/internal/domain/repository"
	"lexora/internal/platform/storage"
)

var (
	errUserNotFound = common.NewPublicError(common.ErrNotFound, "User not found")
	errNoAvatar     = common.NewValidationError("avatar", "No avatar file provided")
)

type UserService struct {
	userRepo repository.UserRepository
	images   storage.ImageStore
}

func NewUserService(userRepo repository.UserRepository, images storage.ImageStore) *UserService {
	return &UserService{userRepo: userRepo, images: images}
}

type AvatarResponse struct {
	Message string             `json:"message"`
	Avatar  string             `json:"avatar"`
	User    *model.UserSummary `json:"user"`
}

// UpdateAvatar replaces the avatar of targetID. Users may only change their
// own avatar.
func (s *UserService) UpdateAvatar(ctx context.Context, id security.Identity, targetID string, upload *Upload) (*AvatarResponse, error) {
	if err := security.SelfOnly.Authorize(id, targetID); err != nil {
		return nil, err
	}
	if upload == nil {
		return nil, errNoAvatar
	}
	if _, err := s.userRepo.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	url, err := storage.SaveImage(ctx, s.images, "avatar", "avatar", upload.Data)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.UpdateAvatar(ctx, targetID, url)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	return &AvatarResponse{
		Message: "Avatar updated successfully",
		Avatar:  user.Avatar,
		User:    authorContact(user),
	}, nil
}
