package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-backend/internal/domains/diary/model"
)

// fakeAPI lets a test inspect the feed while a call is in flight: each call
// waits on gate (when set) before returning.
type fakeAPI struct {
	gate chan struct{}

	likeResult *model.ToggleLikeResult
	likeErr    error

	comment    *model.CommentResponse
	commentErr error

	deleteErr error
}

func (f *fakeAPI) wait() {
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeAPI) ToggleLike(context.Context, Session, int64) (*model.ToggleLikeResult, error) {
	f.wait()
	return f.likeResult, f.likeErr
}

func (f *fakeAPI) AddComment(context.Context, Session, int64, string) (*model.CommentResponse, error) {
	f.wait()
	return f.comment, f.commentErr
}

func (f *fakeAPI) DeleteComment(context.Context, Session, int64) error {
	f.wait()
	return f.deleteErr
}

var bob = Session{Token: "t", UserID: 2}

func entry(id, likes int64, liked bool, comments ...model.CommentResponse) model.DiaryWithComments {
	return model.DiaryWithComments{
		DiaryResponse: model.DiaryResponse{
			ID:            id,
			UserID:        1,
			Message:       "hi",
			Status:        model.StatusPublic,
			LikesCount:    likes,
			IsLikedByUser: liked,
			CommentsCount: int64(len(comments)),
		},
		Comments: comments,
	}
}

func TestFeed_ToggleLikeAppliesBeforeConfirmation(t *testing.T) {
	server := entry(10, 1, true)
	api := &fakeAPI{
		gate:       make(chan struct{}),
		likeResult: &model.ToggleLikeResult{IsLiked: true, LikesCount: 1, Diary: &server},
	}
	feed := NewFeed(api, bob, []model.DiaryWithComments{entry(10, 0, false)})

	done := make(chan error, 1)
	go func() {
		_, err := feed.ToggleLike(context.Background(), 10)
		done <- err
	}()

	// tentative state is visible while the request is pending
	require.Eventually(t, func() bool {
		e, _ := feed.Entry(10)
		return e.IsLikedByUser && e.LikesCount == 1
	}, time.Second, time.Millisecond)

	_, err := feed.ToggleLike(context.Background(), 10)
	assert.ErrorIs(t, err, ErrPending)

	close(api.gate)
	require.NoError(t, <-done)

	e, _ := feed.Entry(10)
	assert.True(t, e.IsLikedByUser)
	assert.Equal(t, int64(1), e.LikesCount)
}

func TestFeed_ToggleLikeRollsBackOnFailure(t *testing.T) {
	api := &fakeAPI{likeErr: &APIError{Status: http.StatusForbidden, Message: "Unauthorized"}}
	feed := NewFeed(api, bob, []model.DiaryWithComments{entry(10, 5, true)})

	_, err := feed.ToggleLike(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusForbidden))

	e, _ := feed.Entry(10)
	assert.True(t, e.IsLikedByUser)
	assert.Equal(t, int64(5), e.LikesCount)
}

func TestFeed_ToggleLikeReconcilesToServerValues(t *testing.T) {
	// another user liked meanwhile: the server count wins over local arithmetic
	server := entry(10, 4, true)
	api := &fakeAPI{likeResult: &model.ToggleLikeResult{IsLiked: true, LikesCount: 4, Diary: &server}}
	feed := NewFeed(api, bob, []model.DiaryWithComments{entry(10, 2, false)})

	res, err := feed.ToggleLike(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.LikesCount)

	e, _ := feed.Entry(10)
	assert.Equal(t, int64(4), e.LikesCount)
}

func TestFeed_ToggleLikeUnknownEntry(t *testing.T) {
	feed := NewFeed(&fakeAPI{}, bob, nil)
	_, err := feed.ToggleLike(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUnknownEntry)
}

func TestFeed_AddCommentSwapsPlaceholder(t *testing.T) {
	stored := &model.CommentResponse{ID: 7, DiaryID: 10, UserID: 2, Comment: "nice"}
	api := &fakeAPI{gate: make(chan struct{}), comment: stored}
	feed := NewFeed(api, bob, []model.DiaryWithComments{entry(10, 0, false)})

	done := make(chan error, 1)
	go func() {
		_, err := feed.AddComment(context.Background(), 10, "nice")
		done <- err
	}()

	require.Eventually(t, func() bool {
		e, _ := feed.Entry(10)
		return len(e.Comments) == 1 && e.Comments[0].ID < 0
	}, time.Second, time.Millisecond)

	close(api.gate)
	require.NoError(t, <-done)

	e, _ := feed.Entry(10)
	require.Len(t, e.Comments, 1)
	assert.Equal(t, int64(7), e.Comments[0].ID)
	assert.Equal(t, int64(1), e.CommentsCount)
}

func TestFeed_AddCommentRollsBackOnFailure(t *testing.T) {
	existing := model.CommentResponse{ID: 3, DiaryID: 10, Comment: "first"}
	api := &fakeAPI{commentErr: errors.New("connection reset")}
	feed := NewFeed(api, bob, []model.DiaryWithComments{entry(10, 0, false, existing)})

	_, err := feed.AddComment(context.Background(), 10, "second")
	require.Error(t, err)

	e, _ := feed.Entry(10)
	require.Len(t, e.Comments, 1)
	assert.Equal(t, int64(3), e.Comments[0].ID)
	assert.Equal(t, int64(1), e.CommentsCount)
}

func TestFeed_DeleteCommentRestoresPositionOnFailure(t *testing.T) {
	c1 := model.CommentResponse{ID: 1, DiaryID: 10}
	c2 := model.CommentResponse{ID: 2, DiaryID: 10}
	c3 := model.CommentResponse{ID: 3, DiaryID: 10}
	api := &fakeAPI{deleteErr: &APIError{Status: http.StatusForbidden}}
	feed := NewFeed(api, bob, []model.DiaryWithComments{entry(10, 0, false, c1, c2, c3)})

	err := feed.DeleteComment(context.Background(), 10, 2)
	require.Error(t, err)

	e, _ := feed.Entry(10)
	require.Len(t, e.Comments, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{e.Comments[0].ID, e.Comments[1].ID, e.Comments[2].ID})
	assert.Equal(t, int64(3), e.CommentsCount)
}

func TestFeed_DeleteCommentAlreadyGoneCountsAsDeleted(t *testing.T) {
	c1 := model.CommentResponse{ID: 1, DiaryID: 10}
	api := &fakeAPI{deleteErr: &APIError{Status: http.StatusNotFound, Code: model.ErrCodeCommentNotFound}}
	feed := NewFeed(api, bob, []model.DiaryWithComments{entry(10, 0, false, c1)})

	require.NoError(t, feed.DeleteComment(context.Background(), 10, 1))

	e, _ := feed.Entry(10)
	assert.Empty(t, e.Comments)
	assert.Zero(t, e.CommentsCount)

	assert.ErrorIs(t, feed.DeleteComment(context.Background(), 10, 1), ErrUnknownComment)
}

func TestFeed_EntriesAreCopies(t *testing.T) {
	feed := NewFeed(&fakeAPI{}, bob, []model.DiaryWithComments{entry(10, 0, false, model.CommentResponse{ID: 1})})

	got := feed.Entries()
	got[0].LikesCount = 100
	got[0].Comments[0].Comment = "mutated"

	e, _ := feed.Entry(10)
	assert.Zero(t, e.LikesCount)
	assert.Empty(t, e.Comments[0].Comment)
}
