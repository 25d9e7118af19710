package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"diary-backend/internal/domains/user/model"
	"diary-backend/internal/domains/user/repository"
	"diary-backend/internal/infrastructure/telemetry"
	"diary-backend/internal/shared/auth"
	"diary-backend/pkg/cache"
	"diary-backend/pkg/database"
	"diary-backend/pkg/jwt"
)

const (
	tokenType         = "Bearer"
	revokedKeyPrefix  = "revoked:"
	defaultBcryptCost = 12
)

// TokenIssuer signs access tokens. *jwt.Manager implements it.
type TokenIssuer interface {
	GenerateAccessToken(userID int64, role string) (string, *jwt.Claims, error)
	TTL() time.Duration
}

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

type userService struct {
	repo     repository.Repository
	tokens   TokenIssuer
	denylist cache.Cache
	now      func() time.Time
	hashCost int
}

func NewUserService(repo repository.Repository, tokens TokenIssuer, denylist cache.Cache) ServiceInterface {
	return newUserService(repo, tokens, denylist)
}

func newUserService(repo repository.Repository, tokens TokenIssuer, denylist cache.Cache) *userService {
	return &userService{
		repo:     repo,
		tokens:   tokens,
		denylist: denylist,
		now:      time.Now,
		hashCost: defaultBcryptCost,
	}
}

func (s *userService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *userService) issueToken(u *model.User) (*model.AuthResponse, error) {
	token, claims, err := s.tokens.GenerateAccessToken(u.ID, u.Role.String())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &model.AuthResponse{
		User:      model.ToUserResponse(u),
		Token:     token,
		TokenType: tokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	// Step 1: Validate
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Hash password
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	// Step 3: Persist, the unique index decides duplicate emails
	u := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         auth.RoleClient,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", u.ID).Msg("user registered")
	return s.issueToken(u)
}

func (s *userService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, model.ErrAccountInactive
	}

	return s.issueToken(u)
}

func (s *userService) Logout(ctx context.Context, viewer auth.Viewer) error {
	return s.revoke(ctx, viewer.TokenID)
}

func (s *userService) revoke(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return nil
	}
	if err := s.denylist.Set(ctx, revokedKeyPrefix+tokenID, true, s.tokens.TTL()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *userService) CheckSession(ctx context.Context, userID int64, tokenID string) (auth.Role, error) {
	if tokenID != "" {
		revoked, err := s.denylist.Exists(ctx, revokedKeyPrefix+tokenID)
		if err != nil {
			return "", fmt.Errorf("check token denylist: %w", err)
		}
		if revoked {
			return "", model.ErrSessionRevoked
		}
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return "", model.ErrSessionRevoked
		}
		return "", err
	}
	if !u.IsActive {
		return "", model.ErrSessionRevoked
	}
	return u.Role, nil
}

func (s *userService) CurrentUser(ctx context.Context, viewer auth.Viewer) (*model.UserResponse, error) {
	u, err := s.repo.GetByID(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	resp := model.ToUserResponse(u)
	return &resp, nil
}

// ========================================
// PROFILE & SETTINGS
// ========================================

func (s *userService) GetProfile(ctx context.Context, viewer auth.Viewer) (*model.ProfileResponse, error) {
	u, err := s.repo.GetByID(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}

	cd := model.CanEditProfile(u.LastProfileUpdate, s.now())
	return &model.ProfileResponse{
		UserResponse:  model.ToUserResponse(u),
		CanEdit:       cd.Allowed,
		DaysRemaining: cd.DaysRemaining,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, viewer auth.Viewer, req model.UpdateProfileRequest) (*model.UserResponse, error) {
	// Step 1: Validate
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Policy check on the current state
	now := s.now()
	u, err := s.repo.GetByID(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	if cd := model.CanEditProfile(u.LastProfileUpdate, now); !cd.Allowed {
		return nil, s.cooldownRejected(viewer.UserID, cd.DaysRemaining)
	}

	// Step 3: Guarded write; a concurrent edit may have won in between
	updated, applied, err := s.repo.UpdateProfileIfAllowed(ctx, viewer.UserID, repository.ProfileUpdate{
		Name:   req.Name,
		Email:  req.Email,
		Bio:    req.Bio,
		Now:    now,
		Cutoff: model.CooldownCutoff(now),
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		current, err := s.repo.GetByID(ctx, viewer.UserID)
		if err != nil {
			return nil, err
		}
		days := model.CanEditProfile(current.LastProfileUpdate, now).DaysRemaining
		if days == 0 {
			days = model.ProfileCooldownDays
		}
		return nil, s.cooldownRejected(viewer.UserID, days)
	}

	resp := model.ToUserResponse(updated)
	return &resp, nil
}

func (s *userService) cooldownRejected(userID int64, days int) error {
	telemetry.CooldownRejections.Inc()
	log.Debug().Int64("user_id", userID).Int("days_remaining", days).Msg("profile edit rejected by cooldown")
	return model.NewCooldownError(days)
}

func (s *userService) ChangePassword(ctx context.Context, viewer auth.Viewer, req model.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	current, err := s.repo.GetPasswordHash(ctx, viewer.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(current), []byte(req.CurrentPassword)); err != nil {
		return model.ErrWrongPassword
	}

	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, viewer.UserID, hash)
}

// Deactivate hides the account from search and blocks further logins.
func (s *userService) Deactivate(ctx context.Context, viewer auth.Viewer) error {
	if err := s.repo.SetActive(ctx, viewer.UserID, false); err != nil {
		return err
	}
	if err := s.revoke(ctx, viewer.TokenID); err != nil {
		log.Warn().Err(err).Int64("user_id", viewer.UserID).Msg("token revocation after deactivate failed")
	}
	return nil
}

func (s *userService) DeleteAccount(ctx context.Context, viewer auth.Viewer) error {
	if err := s.repo.Delete(ctx, viewer.UserID); err != nil {
		return err
	}
	if err := s.revoke(ctx, viewer.TokenID); err != nil {
		log.Warn().Err(err).Int64("user_id", viewer.UserID).Msg("token revocation after delete failed")
	}
	log.Info().Int64("user_id", viewer.UserID).Msg("account deleted")
	return nil
}

// ========================================
// ACCOUNT MANAGEMENT
// ========================================

func (s *userService) ListUsers(ctx context.Context, viewer auth.Viewer, page int) (*model.UserPage, error) {
	if !viewer.Role.Can(auth.CapListUsers) {
		return nil, model.ErrAdminRequired
	}
	if page < 1 {
		page = 1
	}

	users, total, err := s.repo.List(ctx, model.AdminPageSize, (page-1)*model.AdminPageSize)
	if err != nil {
		return nil, err
	}

	items := make([]model.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, model.ToUserResponse(u))
	}
	return &model.UserPage{Items: items, Page: page, Limit: model.AdminPageSize, Total: total}, nil
}

func (s *userService) GetUser(ctx context.Context, viewer auth.Viewer, userID int64) (*model.UserResponse, error) {
	if !viewer.CanManageUser(userID) {
		return nil, model.ErrUserForbidden
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := model.ToUserResponse(u)
	return &resp, nil
}

func (s *userService) UpdateUser(ctx context.Context, viewer auth.Viewer, userID int64, req model.UpdateUserRequest) (*model.UserResponse, error) {
	// Step 1: Authorization
	if !viewer.CanManageUser(userID) {
		return nil, model.ErrUserForbidden
	}
	if req.Role != nil && !viewer.Role.Can(auth.CapChangeRoles) {
		return nil, model.ErrRoleChange
	}

	// Step 2: Validate
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 3: Apply the present fields
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Role != nil {
		u.Role = auth.Role(*req.Role)
	}
	u.PasswordHash = ""
	if req.Password != nil {
		if u.PasswordHash, err = s.hashPassword(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	resp := model.ToUserResponse(u)
	return &resp, nil
}

func (s *userService) DeleteUser(ctx context.Context, viewer auth.Viewer, userID int64) error {
	if !viewer.Role.Can(auth.CapDeleteUsers) {
		return model.ErrAdminRequired
	}
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return err
	}
	if userID == viewer.UserID {
		return model.ErrCannotDeleteSelf
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	log.Info().Int64("user_id", userID).Int64("admin_id", viewer.UserID).Msg("user deleted by admin")
	return nil
}

// ========================================
// DISCOVERY
// ========================================

// SearchUsers returns an empty list for a blank query.
func (s *userService) SearchUsers(ctx context.Context, viewer auth.Viewer, query string) ([]model.SearchUserResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.SearchUserResponse{}, nil
	}

	hits, err := s.repo.Search(ctx, database.ContainsPattern(query), viewer.UserID, model.SearchLimit)
	if err != nil {
		return nil, err
	}

	out := make([]model.SearchUserResponse, 0, len(hits))
	for _, h := range hits {
		out = append(out, model.ToSearchUserResponse(h))
	}
	return out, nil
}

func (s *userService) PublicProfile(ctx context.Context, userID int64) (*model.PublicProfile, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := model.ToPublicProfile(u)
	return &p, nil
}
