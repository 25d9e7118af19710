package model

import (
	"errors"

	"diary-backend/internal/shared/apperror"
)

// Error codes
const (
	ErrCodeUserNotFound       = "USR001"
	ErrCodeEmailTaken         = "USR002"
	ErrCodeInvalidCredentials = "USR003"
	ErrCodeAccountInactive    = "USR004"
	ErrCodeProfileCooldown    = "USR005"
	ErrCodeWrongPassword      = "USR006"
	ErrCodeCannotDeleteSelf   = "USR007"
	ErrCodeUserForbidden      = "USR008"
	ErrCodeInvalidUser        = "USR009"
	ErrCodeSessionRevoked     = "USR010"
	ErrCodeRoleChange         = "USR011"
	ErrCodeAdminRequired      = "USR012"
)

var (
	ErrUserNotFound       = apperror.New(apperror.KindNotFound, ErrCodeUserNotFound, "User not found")
	ErrEmailTaken         = apperror.New(apperror.KindConflict, ErrCodeEmailTaken, "The email has already been taken.")
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, ErrCodeInvalidCredentials, "Invalid credentials")
	ErrAccountInactive    = apperror.New(apperror.KindForbidden, ErrCodeAccountInactive, "Account is deactivated")
	ErrWrongPassword      = apperror.New(apperror.KindBadRequest, ErrCodeWrongPassword, "Current password is incorrect")
	ErrCannotDeleteSelf   = apperror.New(apperror.KindValidation, ErrCodeCannotDeleteSelf, "Cannot delete your own account")
	ErrUserForbidden      = apperror.New(apperror.KindForbidden, ErrCodeUserForbidden, "Unauthorized to access this user")
	ErrSessionRevoked     = apperror.New(apperror.KindUnauthorized, ErrCodeSessionRevoked, "Unauthenticated")
	ErrRoleChange         = apperror.New(apperror.KindForbidden, ErrCodeRoleChange, "Only admins can change roles")
	ErrAdminRequired      = apperror.New(apperror.KindForbidden, ErrCodeAdminRequired, "Unauthorized. Admin access required.")

	errProfileCooldown = apperror.New(apperror.KindRateLimited, ErrCodeProfileCooldown, "You can only update your profile once every 3 days")
)

// NewCooldownError is the 429 returned while the profile is locked.
func NewCooldownError(daysRemaining int) *apperror.Error {
	return errProfileCooldown.WithExtra("days_remaining", daysRemaining)
}

// IsCooldown reports whether err is a profile cooldown rejection.
func IsCooldown(err error) bool {
	return errors.Is(err, errProfileCooldown)
}
