package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"lexora/internal/common"
	"lexora/internal/common/security"
	"lexora/internal/domain/model"
	"lexora/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
	activity ActivityRecorder
	denylist security.Denylist
}

func NewAuthService(userRepo repository.UserRepository, activity ActivityRecorder, denylist security.Denylist) *AuthService {
	return &AuthService{userRepo: userRepo, activity: activity, denylist: denylist}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Name     string `json:"name" validate:"max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

var (
	errUserExists         = common.NewPublicError(common.ErrBadRequest, "User already exists")
	errInvalidCredentials = common.NewPublicError(common.ErrBadRequest, "Invalid credentials")
	errAccountDeactivated = common.NewPublicError(common.ErrForbidden, "Account is deactivated")
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	// bcrypt only accepts 72 bytes; the tag above counts runes.
	if len(req.Password) > security.MaxPasswordBytes {
		return nil, common.NewValidationError("password", "Password must be at most 72 bytes")
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, errUserExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, errUserExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           role,
		Avatar:         model.DefaultAvatar,
		Bio:            model.DefaultBio,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// a concurrent registration won the unique index
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(user)
}

// dummyHash keeps the unknown-email path as slow as a real comparison.
var dummyHash = sync.OnceValue(func() string {
	h, _ := security.HashPassword("lexora-timing-equaliser")
	return h
})

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			security.CheckPasswordHash(req.Password, dummyHash())
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		return nil, errAccountDeactivated
	}

	s.activity.Record(ctx, user.ID, model.ActivityLogin)
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*TokenResponse, error) {
	token, err := security.GenerateToken(security.IdentityOf(user))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &TokenResponse{Token: token}, nil
}

// Logout revokes the presented token until it expires.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return common.NewPublicError(common.ErrBadRequest, "Token cannot be revoked")
	}
	if err := s.denylist.Revoke(ctx, tokenID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
