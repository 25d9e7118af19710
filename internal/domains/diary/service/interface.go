package service

import (
	"context"

	"diary-backend/internal/domains/diary/model"
	"diary-backend/internal/shared/auth"
)

// =====================================================
// DIARY SERVICE INTERFACE
// =====================================================

// Every operation takes the requesting viewer explicitly.
type ServiceInterface interface {
	// ========================================
	// ENTRIES
	// ========================================

	CreateDiary(ctx context.Context, viewer auth.Viewer, req model.CreateDiaryRequest) (*model.DiaryWithComments, error)
	UpdateDiary(ctx context.Context, viewer auth.Viewer, diaryID int64, req model.UpdateDiaryRequest) (*model.DiaryWithComments, error)
	DeleteDiary(ctx context.Context, viewer auth.Viewer, diaryID int64) error

	// ========================================
	// INTERACTIONS
	// ========================================

	ToggleLike(ctx context.Context, viewer auth.Viewer, diaryID int64) (*model.ToggleLikeResult, error)
	AddComment(ctx context.Context, viewer auth.Viewer, diaryID int64, req model.AddCommentRequest) (*model.CommentResponse, error)
	DeleteComment(ctx context.Context, viewer auth.Viewer, commentID int64) error

	// ========================================
	// FEEDS
	// ========================================

	// OwnFeed returns the viewer's entries of any status, with comments.
	OwnFeed(ctx context.Context, viewer auth.Viewer, q model.FeedQuery) (*model.FeedPage[model.DiaryWithComments], error)
	// PublicFeed returns every public entry, with comments.
	PublicFeed(ctx context.Context, viewer auth.Viewer, q model.FeedQuery) (*model.FeedPage[model.DiaryWithComments], error)
	// UserPublicFeed returns ownerID's public entries without comments.
	UserPublicFeed(ctx context.Context, viewer auth.Viewer, ownerID int64, q model.FeedQuery) (*model.FeedPage[model.DiaryResponse], error)
	// Trending returns the most liked public entries.
	Trending(ctx context.Context, viewer auth.Viewer) ([]model.DiaryResponse, error)
}
