package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"diary-backend/internal/domains/diary/model"
	"diary-backend/internal/domains/diary/repository"
	"diary-backend/internal/infrastructure/telemetry"
	"diary-backend/internal/shared/auth"
)

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

type diaryService struct {
	repo repository.Repository
}

func NewDiaryService(repo repository.Repository) ServiceInterface {
	return &diaryService{repo: repo}
}

// loadAccessible fetches an entry and applies the visibility policy.
// Missing entries are NotFound; private entries of others are Forbidden.
func loadAccessible(ctx context.Context, repo repository.Repository, viewer auth.Viewer, diaryID int64) (*model.Diary, error) {
	d, err := repo.GetByID(ctx, diaryID)
	if err != nil {
		return nil, err
	}
	if !model.CanAccess(viewer, d) {
		return nil, model.ErrDiaryForbidden
	}
	return d, nil
}

func loadOwned(ctx context.Context, repo repository.Repository, viewer auth.Viewer, diaryID int64) (*model.Diary, error) {
	d, err := repo.GetByID(ctx, diaryID)
	if err != nil {
		return nil, err
	}
	if !model.IsOwner(viewer, d) {
		return nil, model.ErrNotDiaryOwner
	}
	return d, nil
}

// =====================================================
// ENTRIES
// =====================================================

func (s *diaryService) CreateDiary(ctx context.Context, viewer auth.Viewer, req model.CreateDiaryRequest) (*model.DiaryWithComments, error) {
	// Step 1: Validate
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Persist and reload with aggregates
	var out *model.DiaryWithComments
	err := s.repo.WithinTx(ctx, func(repo repository.Repository) error {
		d := &model.Diary{
			UserID:  viewer.UserID,
			Message: req.Message,
			Status:  model.Status(req.Status),
		}
		if err := repo.Create(ctx, d); err != nil {
			return err
		}

		view, err := repo.GetView(ctx, d.ID, viewer.UserID)
		if err != nil {
			return err
		}
		resp := model.WithComments(view, nil)
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Int64("diary_id", out.ID).Int64("user_id", viewer.UserID).Msg("diary created")
	return out, nil
}

func (s *diaryService) UpdateDiary(ctx context.Context, viewer auth.Viewer, diaryID int64, req model.UpdateDiaryRequest) (*model.DiaryWithComments, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out *model.DiaryWithComments
	err := s.repo.WithinTx(ctx, func(repo repository.Repository) error {
		d, err := loadOwned(ctx, repo, viewer, diaryID)
		if err != nil {
			return err
		}

		if req.Message != nil {
			d.Message = *req.Message
		}
		if req.Status != nil {
			d.Status = model.Status(*req.Status)
		}
		if err := repo.Update(ctx, d); err != nil {
			return err
		}

		view, err := repo.GetView(ctx, d.ID, viewer.UserID)
		if err != nil {
			return err
		}
		comments, err := repo.CommentsFor(ctx, []int64{d.ID})
		if err != nil {
			return err
		}
		resp := model.WithComments(view, comments[d.ID])
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *diaryService) DeleteDiary(ctx context.Context, viewer auth.Viewer, diaryID int64) error {
	return s.repo.WithinTx(ctx, func(repo repository.Repository) error {
		if _, err := loadOwned(ctx, repo, viewer, diaryID); err != nil {
			return err
		}
		return repo.Delete(ctx, diaryID)
	})
}

// =====================================================
// INTERACTIONS
// =====================================================

// ToggleLike flips the viewer's like on an accessible entry. The like set
// change and the reload of the entry happen in one transaction, so the
// returned count and flag match the returned snapshot.
func (s *diaryService) ToggleLike(ctx context.Context, viewer auth.Viewer, diaryID int64) (*model.ToggleLikeResult, error) {
	var (
		result *model.ToggleLikeResult
		action string
	)

	err := s.repo.WithinTx(ctx, func(repo repository.Repository) error {
		// Step 1: Entry must exist and be visible to the viewer
		if _, err := loadAccessible(ctx, repo, viewer, diaryID); err != nil {
			return err
		}

		// Step 2: Flip the membership of viewer in the like set
		liked, err := repo.HasLiked(ctx, diaryID, viewer.UserID)
		if err != nil {
			return err
		}
		if liked {
			if err := repo.RemoveLike(ctx, diaryID, viewer.UserID); err != nil {
				return err
			}
			action = telemetry.ActionUnlike
		} else {
			// A concurrent duplicate leaves the viewer liked, which is the
			// state this toggle was heading to anyway.
			if _, err := repo.AddLike(ctx, diaryID, viewer.UserID); err != nil {
				return err
			}
			action = telemetry.ActionLike
		}

		// Step 3: Recompute aggregates from the like set
		view, err := repo.GetView(ctx, diaryID, viewer.UserID)
		if err != nil {
			return err
		}
		comments, err := repo.CommentsFor(ctx, []int64{diaryID})
		if err != nil {
			return err
		}

		snapshot := model.WithComments(view, comments[diaryID])
		result = &model.ToggleLikeResult{
			IsLiked:    snapshot.IsLikedByUser,
			LikesCount: snapshot.LikesCount,
			Diary:      &snapshot,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.Interactions.WithLabelValues(action).Inc()
	return result, nil
}

func (s *diaryService) AddComment(ctx context.Context, viewer auth.Viewer, diaryID int64, req model.AddCommentRequest) (*model.CommentResponse, error) {
	// Step 1: Validate text before touching the store
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out *model.CommentResponse
	err := s.repo.WithinTx(ctx, func(repo repository.Repository) error {
		// Step 2: Entry must exist and be visible
		if _, err := loadAccessible(ctx, repo, viewer, diaryID); err != nil {
			return err
		}

		// Step 3: Insert and reload with the author name
		c := &model.Comment{DiaryID: diaryID, UserID: viewer.UserID, Comment: req.Comment}
		if err := repo.CreateComment(ctx, c); err != nil {
			return err
		}
		view, err := repo.GetComment(ctx, c.ID)
		if err != nil {
			return err
		}
		resp := model.ToCommentResponse(view)
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.Interactions.WithLabelValues(telemetry.ActionCommentAdd).Inc()
	return out, nil
}

// DeleteComment is author-only. Owners of the entry cannot remove other
// users' comments.
func (s *diaryService) DeleteComment(ctx context.Context, viewer auth.Viewer, commentID int64) error {
	err := s.repo.WithinTx(ctx, func(repo repository.Repository) error {
		c, err := repo.GetComment(ctx, commentID)
		if err != nil {
			return err
		}
		if c.UserID != viewer.UserID {
			return model.ErrNotCommentAuthor
		}
		return repo.DeleteComment(ctx, commentID)
	})
	if err != nil {
		return err
	}

	telemetry.Interactions.WithLabelValues(telemetry.ActionCommentDelete).Inc()
	return nil
}

// =====================================================
// FEEDS
// =====================================================

func (s *diaryService) OwnFeed(ctx context.Context, viewer auth.Viewer, q model.FeedQuery) (*model.FeedPage[model.DiaryWithComments], error) {
	return s.feedWithComments(ctx, viewer, repository.FeedFilter{Scope: repository.ScopeOwn, OwnerID: viewer.UserID}, q)
}

func (s *diaryService) PublicFeed(ctx context.Context, viewer auth.Viewer, q model.FeedQuery) (*model.FeedPage[model.DiaryWithComments], error) {
	return s.feedWithComments(ctx, viewer, repository.FeedFilter{Scope: repository.ScopePublic}, q)
}

// feedWithComments reads entries, aggregates and comments from one snapshot.
func (s *diaryService) feedWithComments(ctx context.Context, viewer auth.Viewer, filter repository.FeedFilter, q model.FeedQuery) (*model.FeedPage[model.DiaryWithComments], error) {
	q.Normalize()
	filter.Limit = q.Limit
	filter.Offset = q.Offset()

	page := &model.FeedPage[model.DiaryWithComments]{Page: q.Page, Limit: q.Limit}
	err := s.repo.WithinSnapshot(ctx, func(repo repository.Repository) error {
		views, total, err := repo.ListFeed(ctx, filter, viewer.UserID)
		if err != nil {
			return err
		}

		ids := make([]int64, len(views))
		for i, v := range views {
			ids[i] = v.ID
		}
		comments, err := repo.CommentsFor(ctx, ids)
		if err != nil {
			return err
		}

		page.Total = total
		page.Items = make([]model.DiaryWithComments, 0, len(views))
		for _, v := range views {
			page.Items = append(page.Items, model.WithComments(v, comments[v.ID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *diaryService) UserPublicFeed(ctx context.Context, viewer auth.Viewer, ownerID int64, q model.FeedQuery) (*model.FeedPage[model.DiaryResponse], error) {
	q.Normalize()
	filter := repository.FeedFilter{
		Scope:   repository.ScopeUserPublic,
		OwnerID: ownerID,
		Limit:   q.Limit,
		Offset:  q.Offset(),
	}

	page := &model.FeedPage[model.DiaryResponse]{Page: q.Page, Limit: q.Limit}
	err := s.repo.WithinSnapshot(ctx, func(repo repository.Repository) error {
		views, total, err := repo.ListFeed(ctx, filter, viewer.UserID)
		if err != nil {
			return err
		}
		page.Total = total
		page.Items = make([]model.DiaryResponse, 0, len(views))
		for _, v := range views {
			page.Items = append(page.Items, model.ToDiaryResponse(v))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *diaryService) Trending(ctx context.Context, viewer auth.Viewer) ([]model.DiaryResponse, error) {
	views, err := s.repo.ListTrending(ctx, viewer.UserID, model.TrendingLimit)
	if err != nil {
		return nil, err
	}
	out := make([]model.DiaryResponse, 0, len(views))
	for _, v := range views {
		out = append(out, model.ToDiaryResponse(v))
	}
	return out, nil
}
