package service

import (
	"context"

	diarymodel "diary-backend/internal/domains/diary/model"
	"diary-backend/internal/domains/explore/model"
	usermodel "diary-backend/internal/domains/user/model"
	"diary-backend/internal/shared/auth"
)

// UserDirectory is the part of the user service explore reads from.
type UserDirectory interface {
	SearchUsers(ctx context.Context, viewer auth.Viewer, query string) ([]usermodel.SearchUserResponse, error)
	PublicProfile(ctx context.Context, userID int64) (*usermodel.PublicProfile, error)
}

// DiaryFeeds is the part of the diary service explore reads from.
type DiaryFeeds interface {
	UserPublicFeed(ctx context.Context, viewer auth.Viewer, ownerID int64, q diarymodel.FeedQuery) (*diarymodel.FeedPage[diarymodel.DiaryResponse], error)
	Trending(ctx context.Context, viewer auth.Viewer) ([]diarymodel.DiaryResponse, error)
}

type ServiceInterface interface {
	Search(ctx context.Context, viewer auth.Viewer, query string) ([]usermodel.SearchUserResponse, error)
	UserPublicDiaries(ctx context.Context, viewer auth.Viewer, userID int64) (*model.UserPublicDiaries, error)
	Trending(ctx context.Context, viewer auth.Viewer) ([]diarymodel.DiaryResponse, error)
}

type exploreService struct {
	users   UserDirectory
	diaries DiaryFeeds
}

func NewExploreService(users UserDirectory, diaries DiaryFeeds) ServiceInterface {
	return &exploreService{users: users, diaries: diaries}
}

func (s *exploreService) Search(ctx context.Context, viewer auth.Viewer, query string) ([]usermodel.SearchUserResponse, error) {
	return s.users.SearchUsers(ctx, viewer, query)
}

// UserPublicDiaries returns the profile and newest public entries of userID.
// An unknown user is NotFound.
func (s *exploreService) UserPublicDiaries(ctx context.Context, viewer auth.Viewer, userID int64) (*model.UserPublicDiaries, error) {
	profile, err := s.users.PublicProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	page, err := s.diaries.UserPublicFeed(ctx, viewer, userID, diarymodel.FeedQuery{Page: 1, Limit: model.PublicDiariesLimit})
	if err != nil {
		return nil, err
	}

	return &model.UserPublicDiaries{User: *profile, Diaries: page.Items}, nil
}

func (s *exploreService) Trending(ctx context.Context, viewer auth.Viewer) ([]diarymodel.DiaryResponse, error) {
	return s.diaries.Trending(ctx, viewer)
}
