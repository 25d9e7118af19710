package repository

import (
	"context"

	"diary-backend/internal/domains/diary/model"
)

// FeedScope selects which entries a feed query returns.
type FeedScope int

const (
	// ScopeOwn returns every entry of OwnerID regardless of status.
	ScopeOwn FeedScope = iota
	// ScopePublic returns public entries of all users.
	ScopePublic
	// ScopeUserPublic returns public entries of OwnerID.
	ScopeUserPublic
)

type FeedFilter struct {
	Scope   FeedScope
	OwnerID int64
	Limit   int
	Offset  int
}

// =====================================================
// DIARY REPOSITORY INTERFACE
// =====================================================

type Repository interface {
	// WithinTx runs fn against a repository bound to one read-write transaction.
	WithinTx(ctx context.Context, fn func(Repository) error) error
	// WithinSnapshot runs fn against a read-only repeatable-read transaction
	// so every read sees the same committed state.
	WithinSnapshot(ctx context.Context, fn func(Repository) error) error

	// ========================================
	// Entries
	// ========================================

	Create(ctx context.Context, d *model.Diary) error
	// GetByID returns model.ErrDiaryNotFound when absent.
	GetByID(ctx context.Context, id int64) (*model.Diary, error)
	Update(ctx context.Context, d *model.Diary) error
	Delete(ctx context.Context, id int64) error

	// ========================================
	// Views with live aggregates
	// ========================================

	// GetView loads one entry with aggregates relative to viewerID.
	GetView(ctx context.Context, id, viewerID int64) (*model.DiaryView, error)
	// ListFeed returns one page ordered newest first, id descending on ties,
	// plus the total number of entries in scope.
	ListFeed(ctx context.Context, filter FeedFilter, viewerID int64) ([]*model.DiaryView, int64, error)
	// ListTrending orders public entries by like count, then newest.
	ListTrending(ctx context.Context, viewerID int64, limit int) ([]*model.DiaryView, error)
	// CommentsFor groups comments by entry, oldest first.
	CommentsFor(ctx context.Context, diaryIDs []int64) (map[int64][]*model.CommentView, error)

	// ========================================
	// Likes
	// ========================================

	HasLiked(ctx context.Context, diaryID, userID int64) (bool, error)
	// AddLike reports false when the like already existed.
	AddLike(ctx context.Context, diaryID, userID int64) (bool, error)
	RemoveLike(ctx context.Context, diaryID, userID int64) error

	// ========================================
	// Comments
	// ========================================

	CreateComment(ctx context.Context, c *model.Comment) error
	// GetComment returns model.ErrCommentNotFound when absent.
	GetComment(ctx context.Context, id int64) (*model.CommentView, error)
	DeleteComment(ctx context.Context, id int64) error
}
