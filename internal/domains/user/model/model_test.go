package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-backend/internal/shared/apperror"
)

func TestCanEditProfile(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name      string
		last      *time.Time
		allowed   bool
		remaining int
	}{
		{"never edited", nil, true, 0},
		{"just edited", at(0), false, 3},
		{"one day ago", at(24 * time.Hour), false, 2},
		{"almost three days", at(71*time.Hour + 59*time.Minute), false, 1},
		{"exactly three days", at(72 * time.Hour), true, 0},
		{"a week ago", at(7 * 24 * time.Hour), true, 0},
		{"clock skew", at(-time.Hour), false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanEditProfile(tt.last, now)
			assert.Equal(t, tt.allowed, got.Allowed)
			assert.Equal(t, tt.remaining, got.DaysRemaining)
		})
	}
}

func TestCooldownCutoffMatchesPolicy(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cutoff := CooldownCutoff(now)

	assert.True(t, CanEditProfile(&cutoff, now).Allowed)
	justAfter := cutoff.Add(time.Second)
	assert.False(t, CanEditProfile(&justAfter, now).Allowed)
}

func TestCooldownError(t *testing.T) {
	err := NewCooldownError(2)

	assert.True(t, IsCooldown(err))
	assert.False(t, IsCooldown(ErrUserNotFound))
	assert.False(t, IsCooldown(nil))
	assert.Equal(t, 429, err.Kind.HTTPStatus())
	assert.Equal(t, 2, err.Extra["days_remaining"])
}

func validationDetails(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	appErr := apperror.As(err)
	require.Equal(t, apperror.KindValidation, appErr.Kind)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	return details
}

func TestRegisterRequest_Validate(t *testing.T) {
	req := RegisterRequest{Name: " Alice ", Email: " Alice@Example.com ", Password: "secret123", PasswordConfirmation: "secret123"}
	req.Normalize()
	assert.NoError(t, req.Validate())
	assert.Equal(t, "alice@example.com", req.Email)
	assert.Equal(t, "Alice", req.Name)

	bad := RegisterRequest{Name: "", Email: "not-an-email", Password: "short", PasswordConfirmation: "short"}
	details := validationDetails(t, bad.Validate())
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")

	mismatch := RegisterRequest{Name: "A", Email: "a@b.co", Password: "secret123", PasswordConfirmation: "secret124"}
	details = validationDetails(t, mismatch.Validate())
	assert.Equal(t, "The password confirmation does not match.", details["password"])
}

func TestUpdateProfileRequest_Validate(t *testing.T) {
	blank := "   "
	req := UpdateProfileRequest{Name: "Bob", Email: "bob@example.com", Bio: &blank}
	req.Normalize()
	assert.Nil(t, req.Bio)
	assert.NoError(t, req.Validate())

	long := strings.Repeat("x", MaxBioLength+1)
	req.Bio = &long
	details := validationDetails(t, req.Validate())
	assert.Contains(t, details, "bio")

	atLimit := strings.Repeat("é", MaxBioLength)
	req.Bio = &atLimit
	assert.NoError(t, req.Validate())
}

func TestUpdateUserRequest_PartialFields(t *testing.T) {
	assert.NoError(t, UpdateUserRequest{}.Validate())

	role := "superuser"
	details := validationDetails(t, UpdateUserRequest{Role: &role}.Validate())
	assert.Contains(t, details, "role")

	pw := "longenough"
	details = validationDetails(t, UpdateUserRequest{Password: &pw, PasswordConfirmation: "different"}.Validate())
	assert.Contains(t, details, "password")
	assert.NoError(t, UpdateUserRequest{Password: &pw, PasswordConfirmation: pw}.Validate())
}

func TestChangePasswordRequest_Validate(t *testing.T) {
	ok := ChangePasswordRequest{CurrentPassword: "old", NewPassword: "newpassword", NewPasswordConfirmation: "newpassword"}
	assert.NoError(t, ok.Validate())

	details := validationDetails(t, ChangePasswordRequest{NewPassword: "short", NewPasswordConfirmation: "short"}.Validate())
	assert.Contains(t, details, "current_password")
	assert.Contains(t, details, "new_password")
}
