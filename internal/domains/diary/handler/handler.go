package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"diary-backend/internal/domains/diary/model"
	"diary-backend/internal/domains/diary/service"
	"diary-backend/internal/shared/response"
	"diary-backend/internal/shared/utils"
)

// =====================================================
// DIARY HANDLER
// =====================================================

type DiaryHandler struct {
	diaryService service.ServiceInterface
}

func NewDiaryHandler(diaryService service.ServiceInterface) *DiaryHandler {
	return &DiaryHandler{diaryService: diaryService}
}

// =====================================================
// HELPER FUNCTIONS
// =====================================================

func bindFeedQuery(c *gin.Context) (model.FeedQuery, bool) {
	var q model.FeedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid paging parameters", nil)
		return q, false
	}
	q.Normalize()
	return q, true
}

// =====================================================
// ENTRIES
// =====================================================

// Index lists the viewer's own entries
// GET /api/diaries
func (h *DiaryHandler) Index(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}
	q, ok := bindFeedQuery(c)
	if !ok {
		return
	}

	page, err := h.diaryService.OwnFeed(c.Request.Context(), viewer, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, page.Items, response.NewMeta(page.Page, page.Limit, page.Total))
}

// PublicDiaries lists every public entry
// GET /api/diaries/public
func (h *DiaryHandler) PublicDiaries(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}
	q, ok := bindFeedQuery(c)
	if !ok {
		return
	}

	page, err := h.diaryService.PublicFeed(c.Request.Context(), viewer, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, page.Items, response.NewMeta(page.Page, page.Limit, page.Total))
}

// UserDiaries lists public entries of one user
// GET /api/diaries/user/:userId
func (h *DiaryHandler) UserDiaries(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}
	ownerID, ok := utils.ParamID(c, "userId")
	if !ok {
		return
	}
	q, ok := bindFeedQuery(c)
	if !ok {
		return
	}

	page, err := h.diaryService.UserPublicFeed(c.Request.Context(), viewer, ownerID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, page.Items, response.NewMeta(page.Page, page.Limit, page.Total))
}

// Store creates an entry
// POST /api/diaries
func (h *DiaryHandler) Store(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}

	var req model.CreateDiaryRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	diary, err := h.diaryService.CreateDiary(c.Request.Context(), viewer, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Diary created successfully", diary)
}

// Update changes message and/or status of an owned entry
// PUT /api/diaries/:id
func (h *DiaryHandler) Update(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateDiaryRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	diary, err := h.diaryService.UpdateDiary(c.Request.Context(), viewer, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Diary updated successfully", diary)
}

// Destroy deletes an owned entry
// DELETE /api/diaries/:id
func (h *DiaryHandler) Destroy(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.diaryService.DeleteDiary(c.Request.Context(), viewer, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Diary deleted successfully", nil)
}

// =====================================================
// INTERACTIONS
// =====================================================

// ToggleLike likes or unlikes an entry
// POST /api/diaries/:id/like
func (h *DiaryHandler) ToggleLike(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.diaryService.ToggleLike(c.Request.Context(), viewer, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Diary unliked"
	if result.IsLiked {
		message = "Diary liked"
	}
	response.JSON(c, http.StatusOK, message, result.Diary, gin.H{
		"is_liked":    result.IsLiked,
		"likes_count": result.LikesCount,
	})
}

// AddComment comments on an accessible entry
// POST /api/diaries/:id/comment
func (h *DiaryHandler) AddComment(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.AddCommentRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	comment, err := h.diaryService.AddComment(c.Request.Context(), viewer, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Comment added successfully", comment)
}

// DeleteComment removes the viewer's own comment
// DELETE /api/comments/:id
func (h *DiaryHandler) DeleteComment(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.diaryService.DeleteComment(c.Request.Context(), viewer, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Comment deleted successfully", nil)
}

// RegisterRoutes mounts the diary endpoints on an authenticated group.
func (h *DiaryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	diaries := rg.Group("/diaries")
	{
		diaries.GET("", h.Index)
		diaries.GET("/public", h.PublicDiaries)
		diaries.GET("/user/:userId", h.UserDiaries)
		diaries.POST("", h.Store)
		diaries.PUT("/:id", h.Update)
		diaries.DELETE("/:id", h.Destroy)
		diaries.POST("/:id/like", h.ToggleLike)
		diaries.POST("/:id/comment", h.AddComment)
	}

	rg.DELETE("/comments/:id", h.DeleteComment)
}
