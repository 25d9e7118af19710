package model

import "diary-backend/internal/shared/apperror"

// Error codes
const (
	ErrCodeDiaryNotFound    = "DIA001"
	ErrCodeDiaryForbidden   = "DIA002"
	ErrCodeNotDiaryOwner    = "DIA003"
	ErrCodeInvalidDiary     = "DIA004"
	ErrCodeCommentNotFound  = "DIA005"
	ErrCodeNotCommentAuthor = "DIA006"
	ErrCodeInvalidComment   = "DIA007"
)

var (
	ErrDiaryNotFound = apperror.New(apperror.KindNotFound, ErrCodeDiaryNotFound, "Diary not found")
	// Returned when a private entry is read or acted on by someone else.
	// The message never includes entry content.
	ErrDiaryForbidden   = apperror.New(apperror.KindForbidden, ErrCodeDiaryForbidden, "Unauthorized")
	ErrNotDiaryOwner    = apperror.New(apperror.KindForbidden, ErrCodeNotDiaryOwner, "You can only modify your own diaries")
	ErrCommentNotFound  = apperror.New(apperror.KindNotFound, ErrCodeCommentNotFound, "Comment not found")
	ErrNotCommentAuthor = apperror.New(apperror.KindForbidden, ErrCodeNotCommentAuthor, "You can only delete your own comments")
)

func NewInvalidDiaryError(details map[string]string) *apperror.Error {
	return apperror.Validation(ErrCodeInvalidDiary, "The given data was invalid.", details)
}

func NewInvalidCommentError(details map[string]string) *apperror.Error {
	return apperror.Validation(ErrCodeInvalidComment, "The given data was invalid.", details)
}
