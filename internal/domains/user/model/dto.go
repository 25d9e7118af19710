package model

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"diary-backend/internal/shared/apperror"
	"diary-backend/internal/shared/auth"
)

// =====================================================
// REQUEST DTOs
// =====================================================

type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r RegisterRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		nameRules(&r.Name),
		emailRules(&r.Email),
		validation.Field(&r.Password,
			validation.Required.Error("The password field is required."),
			validation.RuneLength(MinPasswordLength, 0).Error("The password must be at least 8 characters."),
			validation.By(confirmed(r.PasswordConfirmation, "The password confirmation does not match.")),
		),
	)
	return apperror.FromValidation(ErrCodeInvalidUser, err)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r LoginRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("The email field is required."),
			is.EmailFormat.Error("The email must be a valid email address."),
		),
		validation.Field(&r.Password, validation.Required.Error("The password field is required.")),
	)
	return apperror.FromValidation(ErrCodeInvalidUser, err)
}

// UpdateProfileRequest replaces name, email and bio. A missing bio clears it.
type UpdateProfileRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Bio   *string `json:"bio"`
}

func (r *UpdateProfileRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Bio != nil {
		b := strings.TrimSpace(*r.Bio)
		if b == "" {
			r.Bio = nil
		} else {
			r.Bio = &b
		}
	}
}

func (r UpdateProfileRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		nameRules(&r.Name),
		emailRules(&r.Email),
		validation.Field(&r.Bio,
			validation.When(r.Bio != nil,
				validation.RuneLength(0, MaxBioLength).Error("The bio may not be greater than 500 characters."),
			),
		),
	)
	return apperror.FromValidation(ErrCodeInvalidUser, err)
}

type ChangePasswordRequest struct {
	CurrentPassword         string `json:"current_password"`
	NewPassword             string `json:"new_password"`
	NewPasswordConfirmation string `json:"new_password_confirmation"`
}

func (r ChangePasswordRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required.Error("The current password field is required.")),
		validation.Field(&r.NewPassword,
			validation.Required.Error("The new password field is required."),
			validation.RuneLength(MinPasswordLength, 0).Error("The new password must be at least 8 characters."),
			validation.By(confirmed(r.NewPasswordConfirmation, "The new password confirmation does not match.")),
		),
	)
	return apperror.FromValidation(ErrCodeInvalidUser, err)
}

// UpdateUserRequest is the account management update. Absent fields are kept.
type UpdateUserRequest struct {
	Name                 *string `json:"name"`
	Email                *string `json:"email"`
	Password             *string `json:"password"`
	PasswordConfirmation string  `json:"password_confirmation"`
	Role                 *string `json:"role"`
}

func (r *UpdateUserRequest) Normalize() {
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		r.Name = &n
	}
	if r.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &e
	}
}

func (r UpdateUserRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.When(r.Name != nil,
			validation.Required.Error("The name field is required."),
			validation.RuneLength(1, MaxNameLength).Error("The name may not be greater than 255 characters."),
		)),
		validation.Field(&r.Email, validation.When(r.Email != nil,
			validation.Required.Error("The email field is required."),
			validation.RuneLength(1, MaxEmailLength).Error("The email may not be greater than 255 characters."),
			is.EmailFormat.Error("The email must be a valid email address."),
		)),
		validation.Field(&r.Password, validation.When(r.Password != nil,
			validation.Required.Error("The password field is required."),
			validation.RuneLength(MinPasswordLength, 0).Error("The password must be at least 8 characters."),
			validation.By(confirmed(r.PasswordConfirmation, "The password confirmation does not match.")),
		)),
		validation.Field(&r.Role, validation.When(r.Role != nil,
			validation.In(string(auth.RoleClient), string(auth.RoleAdmin)).Error("The selected role is invalid."),
		)),
	)
	return apperror.FromValidation(ErrCodeInvalidUser, err)
}

// =====================================================
// VALIDATION HELPERS
// =====================================================

func nameRules(name *string) *validation.FieldRules {
	return validation.Field(name,
		validation.Required.Error("The name field is required."),
		validation.RuneLength(1, MaxNameLength).Error("The name may not be greater than 255 characters."),
	)
}

func emailRules(email *string) *validation.FieldRules {
	return validation.Field(email,
		validation.Required.Error("The email field is required."),
		validation.RuneLength(1, MaxEmailLength).Error("The email may not be greater than 255 characters."),
		is.EmailFormat.Error("The email must be a valid email address."),
	)
}

// confirmed checks a password against its confirmation field.
func confirmed(confirmation, message string) validation.RuleFunc {
	return func(value interface{}) error {
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case *string:
			if v == nil {
				return nil
			}
			s = *v
		}
		if s != confirmation {
			return errors.New(message)
		}
		return nil
	}
}

// =====================================================
// RESPONSE DTOs
// =====================================================

type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       *string   `json:"bio"`
	Role      auth.Role `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileResponse adds the cooldown state to the viewer's own account.
type ProfileResponse struct {
	UserResponse
	CanEdit       bool `json:"can_edit"`
	DaysRemaining int  `json:"days_remaining"`
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// PublicProfile is what other users may see of an account.
type PublicProfile struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Bio   *string `json:"bio"`
}

type SearchUserResponse struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Bio                *string   `json:"bio"`
	CreatedAt          time.Time `json:"created_at"`
	PublicDiariesCount int64     `json:"public_diaries_count"`
}

type UserPage struct {
	Items []UserResponse
	Page  int
	Limit int
	Total int64
}

// =====================================================
// MAPPERS
// =====================================================

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Bio:       u.Bio,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToPublicProfile(u *User) PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Email: u.Email, Bio: u.Bio}
}

func ToSearchUserResponse(h *SearchHit) SearchUserResponse {
	return SearchUserResponse{
		ID:                 h.ID,
		Name:               h.Name,
		Email:              h.Email,
		Bio:                h.Bio,
		CreatedAt:          h.CreatedAt,
		PublicDiariesCount: h.PublicDiariesCount,
	}
}
