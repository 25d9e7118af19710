package service

import (
	"context"

	"diary-backend/internal/domains/user/model"
	"diary-backend/internal/shared/auth"
)

// =====================================================
// USER SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	// ========================================
	// AUTHENTICATION
	// ========================================

	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
	// Logout revokes the viewer's current token.
	Logout(ctx context.Context, viewer auth.Viewer) error
	// CheckSession rejects revoked tokens and deleted or deactivated
	// accounts, and returns the account's current role.
	CheckSession(ctx context.Context, userID int64, tokenID string) (auth.Role, error)
	CurrentUser(ctx context.Context, viewer auth.Viewer) (*model.UserResponse, error)

	// ========================================
	// PROFILE & SETTINGS
	// ========================================

	GetProfile(ctx context.Context, viewer auth.Viewer) (*model.ProfileResponse, error)
	// UpdateProfile is limited to one edit per cooldown window.
	UpdateProfile(ctx context.Context, viewer auth.Viewer, req model.UpdateProfileRequest) (*model.UserResponse, error)
	ChangePassword(ctx context.Context, viewer auth.Viewer, req model.ChangePasswordRequest) error
	Deactivate(ctx context.Context, viewer auth.Viewer) error
	DeleteAccount(ctx context.Context, viewer auth.Viewer) error

	// ========================================
	// ACCOUNT MANAGEMENT
	// ========================================

	ListUsers(ctx context.Context, viewer auth.Viewer, page int) (*model.UserPage, error)
	GetUser(ctx context.Context, viewer auth.Viewer, userID int64) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, viewer auth.Viewer, userID int64, req model.UpdateUserRequest) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, viewer auth.Viewer, userID int64) error

	// ========================================
	// DISCOVERY
	// ========================================

	SearchUsers(ctx context.Context, viewer auth.Viewer, query string) ([]model.SearchUserResponse, error)
	PublicProfile(ctx context.Context, userID int64) (*model.PublicProfile, error)
}
