package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"diary-backend/internal/domains/explore/service"
	"diary-backend/internal/shared/response"
	"diary-backend/internal/shared/utils"
)

// =====================================================
// EXPLORE HANDLER
// =====================================================

type ExploreHandler struct {
	exploreService service.ServiceInterface
}

func NewExploreHandler(exploreService service.ServiceInterface) *ExploreHandler {
	return &ExploreHandler{exploreService: exploreService}
}

// Search finds other users by name, email or bio
// GET /api/explore/search?query=
func (h *ExploreHandler) Search(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}

	query := c.Query("query")
	users, err := h.exploreService.Search(c.Request.Context(), viewer, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Users found successfully"
	if strings.TrimSpace(query) == "" {
		message = "Please provide a search query"
	}
	response.Success(c, http.StatusOK, message, gin.H{"users": users})
}

// UserPublicDiaries
// GET /api/explore/user/:userId/public-diaries
func (h *ExploreHandler) UserPublicDiaries(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}
	userID, ok := utils.ParamID(c, "userId")
	if !ok {
		return
	}

	page, err := h.exploreService.UserPublicDiaries(c.Request.Context(), viewer, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Public diaries retrieved successfully", page)
}

// Trending lists the most liked public entries
// GET /api/explore/trending
func (h *ExploreHandler) Trending(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}

	diaries, err := h.exploreService.Trending(c.Request.Context(), viewer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Trending diaries retrieved successfully", gin.H{"diaries": diaries})
}

func (h *ExploreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	explore := rg.Group("/explore")
	{
		explore.GET("/search", h.Search)
		explore.GET("/user/:userId/public-diaries", h.UserPublicDiaries)
		explore.GET("/trending", h.Trending)
	}
}
