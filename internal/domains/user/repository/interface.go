package repository

import (
	"context"
	"time"

	"diary-backend/internal/domains/user/model"
)

// ProfileUpdate is the set of fields a cooldown-gated profile edit writes.
type ProfileUpdate struct {
	Name  string
	Email string
	Bio   *string
	// Now becomes last_profile_update; rows edited after Cutoff are left alone.
	Now    time.Time
	Cutoff time.Time
}

// =====================================================
// USER REPOSITORY INTERFACE
// =====================================================

type Repository interface {
	// ========================================
	// BASIC CRUD
	// ========================================

	// Create inserts u and fills ID and timestamps. A taken email returns ErrEmailTaken.
	Create(ctx context.Context, u *model.User) error
	// GetByID never loads PasswordHash.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByEmail matches case-insensitively and loads PasswordHash.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetPasswordHash(ctx context.Context, id int64) (string, error)
	List(ctx context.Context, limit, offset int) ([]*model.User, int64, error)
	// Update writes name, email, role and, when non-empty, PasswordHash.
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) error

	// ========================================
	// ACCOUNT SETTINGS
	// ========================================

	// UpdateProfileIfAllowed applies upd in one guarded statement. It
	// returns (nil, false, nil) when the cooldown guard rejects the write.
	UpdateProfileIfAllowed(ctx context.Context, id int64, upd ProfileUpdate) (*model.User, bool, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	SetActive(ctx context.Context, id int64, active bool) error

	// ========================================
	// DISCOVERY
	// ========================================

	// Search matches pattern (already escaped for LIKE) against name, email
	// and bio, skipping excludeID and deactivated accounts.
	Search(ctx context.Context, pattern string, excludeID int64, limit int) ([]*model.SearchHit, error)
}
