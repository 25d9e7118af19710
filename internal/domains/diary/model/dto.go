package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"diary-backend/internal/shared/apperror"
)

// =====================================================
// REQUEST DTOs
// =====================================================

type CreateDiaryRequest struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Normalize trims free text before validation.
func (r *CreateDiaryRequest) Normalize() {
	r.Message = strings.TrimSpace(r.Message)
	r.Status = strings.TrimSpace(r.Status)
}

func (r CreateDiaryRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Message,
			validation.Required.Error("The message field is required."),
			validation.RuneLength(1, MaxMessageLength).Error("The message may not be greater than 1000 characters."),
		),
		validation.Field(&r.Status,
			validation.Required.Error("The status field is required."),
			validation.In(string(StatusPublic), string(StatusPrivate)).Error("The selected status is invalid."),
		),
	)
	return apperror.FromValidation(ErrCodeInvalidDiary, err)
}

// UpdateDiaryRequest changes only the fields that are present.
type UpdateDiaryRequest struct {
	Message *string `json:"message"`
	Status  *string `json:"status"`
}

func (r *UpdateDiaryRequest) Normalize() {
	if r.Message != nil {
		m := strings.TrimSpace(*r.Message)
		r.Message = &m
	}
	if r.Status != nil {
		s := strings.TrimSpace(*r.Status)
		r.Status = &s
	}
}

func (r UpdateDiaryRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Message,
			validation.When(r.Message != nil,
				validation.Required.Error("The message field is required."),
				validation.RuneLength(1, MaxMessageLength).Error("The message may not be greater than 1000 characters."),
			),
		),
		validation.Field(&r.Status,
			validation.When(r.Status != nil,
				validation.Required.Error("The status field is required."),
				validation.In(string(StatusPublic), string(StatusPrivate)).Error("The selected status is invalid."),
			),
		),
	)
	return apperror.FromValidation(ErrCodeInvalidDiary, err)
}

type AddCommentRequest struct {
	Comment string `json:"comment"`
}

func (r *AddCommentRequest) Normalize() {
	r.Comment = strings.TrimSpace(r.Comment)
}

func (r AddCommentRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Comment,
			validation.Required.Error("The comment field is required."),
			validation.RuneLength(1, MaxCommentLength).Error("The comment may not be greater than 500 characters."),
		),
	)
	return apperror.FromValidation(ErrCodeInvalidComment, err)
}

// FeedQuery is the optional paging on feed endpoints.
type FeedQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Normalize applies defaults and clamps the limit.
func (q *FeedQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultFeedLimit
	}
	if q.Limit > MaxFeedLimit {
		q.Limit = MaxFeedLimit
	}
}

func (q FeedQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// =====================================================
// RESPONSE DTOs
// =====================================================

type UserSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DiaryResponse carries the entry plus aggregates relative to the viewer.
type DiaryResponse struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"user_id"`
	Message       string       `json:"message"`
	Status        Status       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	User          *UserSummary `json:"user,omitempty"`
	LikesCount    int64        `json:"likes_count"`
	CommentsCount int64        `json:"comments_count"`
	IsLikedByUser bool         `json:"is_liked_by_user"`
}

// DiaryWithComments adds the comment list, oldest first.
type DiaryWithComments struct {
	DiaryResponse
	Comments []CommentResponse `json:"comments"`
}

type CommentResponse struct {
	ID        int64       `json:"id"`
	DiaryID   int64       `json:"diary_id"`
	UserID    int64       `json:"user_id"`
	Comment   string      `json:"comment"`
	CreatedAt time.Time   `json:"created_at"`
	User      UserSummary `json:"user"`
}

// ToggleLikeResult reports the viewer's like state after a toggle.
// IsLiked and LikesCount always equal the fields on Diary.
type ToggleLikeResult struct {
	IsLiked    bool               `json:"is_liked"`
	LikesCount int64              `json:"likes_count"`
	Diary      *DiaryWithComments `json:"data"`
}

// FeedPage is one page of a feed.
type FeedPage[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int64
}

// =====================================================
// MAPPERS
// =====================================================

func ToDiaryResponse(v *DiaryView) DiaryResponse {
	resp := DiaryResponse{
		ID:            v.ID,
		UserID:        v.UserID,
		Message:       v.Message,
		Status:        v.Status,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
		LikesCount:    v.LikesCount,
		CommentsCount: v.CommentsCount,
		IsLikedByUser: v.IsLiked,
	}
	if v.OwnerName != "" {
		resp.User = &UserSummary{ID: v.UserID, Name: v.OwnerName}
	}
	return resp
}

func ToCommentResponse(c *CommentView) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		DiaryID:   c.DiaryID,
		UserID:    c.UserID,
		Comment:   c.Comment.Comment,
		CreatedAt: c.CreatedAt,
		User:      UserSummary{ID: c.UserID, Name: c.AuthorName},
	}
}

// WithComments attaches comments; a nil list renders as [].
func WithComments(v *DiaryView, comments []*CommentView) DiaryWithComments {
	out := DiaryWithComments{
		DiaryResponse: ToDiaryResponse(v),
		Comments:      make([]CommentResponse, 0, len(comments)),
	}
	for _, c := range comments {
		out.Comments = append(out.Comments, ToCommentResponse(c))
	}
	return out
}
