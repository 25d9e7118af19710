package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-backend/internal/domains/diary/model"
	"diary-backend/internal/shared/auth"
	"diary-backend/internal/shared/middleware"
)

// stubService implements service.ServiceInterface with overridable funcs.
type stubService struct {
	toggleLike    func(viewer auth.Viewer, id int64) (*model.ToggleLikeResult, error)
	addComment    func(viewer auth.Viewer, id int64, req model.AddCommentRequest) (*model.CommentResponse, error)
	deleteComment func(viewer auth.Viewer, id int64) error
	ownFeed       func(viewer auth.Viewer, q model.FeedQuery) (*model.FeedPage[model.DiaryWithComments], error)
	createDiary   func(viewer auth.Viewer, req model.CreateDiaryRequest) (*model.DiaryWithComments, error)
}

func (s *stubService) CreateDiary(_ context.Context, v auth.Viewer, req model.CreateDiaryRequest) (*model.DiaryWithComments, error) {
	return s.createDiary(v, req)
}
func (s *stubService) UpdateDiary(context.Context, auth.Viewer, int64, model.UpdateDiaryRequest) (*model.DiaryWithComments, error) {
	return nil, nil
}
func (s *stubService) DeleteDiary(context.Context, auth.Viewer, int64) error { return nil }
func (s *stubService) ToggleLike(_ context.Context, v auth.Viewer, id int64) (*model.ToggleLikeResult, error) {
	return s.toggleLike(v, id)
}
func (s *stubService) AddComment(_ context.Context, v auth.Viewer, id int64, req model.AddCommentRequest) (*model.CommentResponse, error) {
	return s.addComment(v, id, req)
}
func (s *stubService) DeleteComment(_ context.Context, v auth.Viewer, id int64) error {
	return s.deleteComment(v, id)
}
func (s *stubService) OwnFeed(_ context.Context, v auth.Viewer, q model.FeedQuery) (*model.FeedPage[model.DiaryWithComments], error) {
	return s.ownFeed(v, q)
}
func (s *stubService) PublicFeed(context.Context, auth.Viewer, model.FeedQuery) (*model.FeedPage[model.DiaryWithComments], error) {
	return &model.FeedPage[model.DiaryWithComments]{Items: []model.DiaryWithComments{}, Page: 1, Limit: 50}, nil
}
func (s *stubService) UserPublicFeed(context.Context, auth.Viewer, int64, model.FeedQuery) (*model.FeedPage[model.DiaryResponse], error) {
	return &model.FeedPage[model.DiaryResponse]{Items: []model.DiaryResponse{}, Page: 1, Limit: 50}, nil
}
func (s *stubService) Trending(context.Context, auth.Viewer) ([]model.DiaryResponse, error) {
	return nil, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(svc *stubService, viewer *auth.Viewer) *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	if viewer != nil {
		api.Use(func(c *gin.Context) {
			middleware.SetViewer(c, *viewer)
			c.Next()
		})
	}
	NewDiaryHandler(svc).RegisterRoutes(api)
	return r
}

func do(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

var bob = auth.Viewer{UserID: 2, Role: auth.RoleClient}

func TestToggleLike_Envelope(t *testing.T) {
	svc := &stubService{
		toggleLike: func(v auth.Viewer, id int64) (*model.ToggleLikeResult, error) {
			assert.Equal(t, bob, v)
			assert.Equal(t, int64(10), id)
			d := model.DiaryWithComments{
				DiaryResponse: model.DiaryResponse{ID: 10, LikesCount: 1, IsLikedByUser: true},
				Comments:      []model.CommentResponse{},
			}
			return &model.ToggleLikeResult{IsLiked: true, LikesCount: 1, Diary: &d}, nil
		},
	}

	w, body := do(newRouter(svc, &bob), http.MethodPost, "/api/diaries/10/like", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Diary liked", body["message"])
	assert.Equal(t, true, body["is_liked"])
	assert.Equal(t, float64(1), body["likes_count"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(10), data["id"])
}

func TestToggleLike_ErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{model.ErrDiaryNotFound, http.StatusNotFound},
		{model.ErrDiaryForbidden, http.StatusForbidden},
	}
	for _, tc := range cases {
		svc := &stubService{
			toggleLike: func(auth.Viewer, int64) (*model.ToggleLikeResult, error) { return nil, tc.err },
		}
		w, body := do(newRouter(svc, &bob), http.MethodPost, "/api/diaries/11/like", "")
		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, false, body["success"])
	}
}

func TestRoutes_RequireViewer(t *testing.T) {
	w, _ := do(newRouter(&stubService{}, nil), http.MethodGet, "/api/diaries", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvalidID(t *testing.T) {
	w, _ := do(newRouter(&stubService{}, &bob), http.MethodPost, "/api/diaries/abc/like", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddComment_ValidationIs422(t *testing.T) {
	svc := &stubService{
		addComment: func(_ auth.Viewer, _ int64, req model.AddCommentRequest) (*model.CommentResponse, error) {
			req.Normalize()
			return nil, req.Validate()
		},
	}

	w, body := do(newRouter(svc, &bob), http.MethodPost, "/api/diaries/10/comment", `{"comment":"   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "comment")
}

func TestAddComment_Created(t *testing.T) {
	svc := &stubService{
		addComment: func(_ auth.Viewer, id int64, req model.AddCommentRequest) (*model.CommentResponse, error) {
			return &model.CommentResponse{ID: 1, DiaryID: id, Comment: req.Comment}, nil
		},
	}

	w, body := do(newRouter(svc, &bob), http.MethodPost, "/api/diaries/10/comment", `{"comment":"nice!"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "nice!", body["data"].(map[string]interface{})["comment"])
}

func TestDeleteComment_SecondDeleteIsNotFound(t *testing.T) {
	deleted := false
	svc := &stubService{
		deleteComment: func(auth.Viewer, int64) error {
			if deleted {
				return model.ErrCommentNotFound
			}
			deleted = true
			return nil
		},
	}
	r := newRouter(svc, &bob)

	w, _ := do(r, http.MethodDelete, "/api/comments/5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, body := do(r, http.MethodDelete, "/api/comments/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, model.ErrCodeCommentNotFound, body["code"])
}

func TestIndex_PagingMeta(t *testing.T) {
	svc := &stubService{
		ownFeed: func(_ auth.Viewer, q model.FeedQuery) (*model.FeedPage[model.DiaryWithComments], error) {
			assert.Equal(t, 2, q.Page)
			assert.Equal(t, model.MaxFeedLimit, q.Limit)
			return &model.FeedPage[model.DiaryWithComments]{Items: []model.DiaryWithComments{}, Page: q.Page, Limit: q.Limit, Total: 150}, nil
		},
	}

	w, body := do(newRouter(svc, &bob), http.MethodGet, "/api/diaries?page=2&limit=1000", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, body["data"])
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["total_pages"])
}

func TestStore_MalformedJSON(t *testing.T) {
	w, _ := do(newRouter(&stubService{}, &bob), http.MethodPost, "/api/diaries", `{"message":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
