package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"diary-backend/internal/domains/user/model"
	"diary-backend/internal/domains/user/service"
	"diary-backend/internal/shared/auth"
	"diary-backend/internal/shared/middleware"
	"diary-backend/internal/shared/response"
	"diary-backend/internal/shared/utils"
)

// =====================================================
// USER HANDLER
// =====================================================

// UserHandler serves authentication, profile, settings and account management.
type UserHandler struct {
	userService service.ServiceInterface
}

func NewUserHandler(userService service.ServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

type listUsersQuery struct {
	Page int `form:"page"`
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Register creates an account and signs the user in
// POST /api/register
func (h *UserHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	resp, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "User registered successfully", resp)
}

// Login issues an access token
// POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Login successful", resp)
}

// Logout revokes the current token
// POST /api/logout
func (h *UserHandler) Logout(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}

	if err := h.userService.Logout(c.Request.Context(), viewer); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the authenticated account
// GET /api/user, GET /api/profile
func (h *UserHandler) Me(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}

	u, err := h.userService.CurrentUser(c.Request.Context(), viewer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved successfully", gin.H{"user": u})
}

// ========================================
// PROFILE & SETTINGS ENDPOINTS
// ========================================

// GetProfile returns the profile with its edit cooldown state
// GET /api/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), viewer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved successfully", profile)
}

// UpdateProfile edits name, email and bio, at most once per cooldown
// PUT /api/user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}

	var req model.UpdateProfileRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	u, err := h.userService.UpdateProfile(c.Request.Context(), viewer, req)
	if err != nil {
		// 429 carries days_remaining at the top level
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated successfully", u)
}

// ChangePassword
// PUT /api/user/change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}

	var req model.ChangePasswordRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), viewer, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Password changed successfully", nil)
}

// Deactivate
// POST /api/user/deactivate
func (h *UserHandler) Deactivate(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), viewer); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Account deactivated successfully", nil)
}

// DeleteAccount removes the account with all its entries, likes and comments
// DELETE /api/user/delete
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), viewer); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Account deleted successfully", nil)
}

// ========================================
// ACCOUNT MANAGEMENT ENDPOINTS
// ========================================

// ListUsers pages through all accounts
// GET /api/users?page=
func (h *UserHandler) ListUsers(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}

	var q listUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid paging parameters", nil)
		return
	}

	page, err := h.userService.ListUsers(c.Request.Context(), viewer, q.Page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, page.Items, response.NewMeta(page.Page, page.Limit, page.Total))
}

// Show
// GET /api/users/:id
func (h *UserHandler) Show(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}

	u, err := h.userService.GetUser(c.Request.Context(), viewer, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User retrieved successfully", gin.H{"user": u})
}

// Update
// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if !utils.BindJSON(c, &req) {
		return
	}

	u, err := h.userService.UpdateUser(c.Request.Context(), viewer, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User updated successfully", gin.H{"user": u})
}

// Destroy
// DELETE /api/users/:id
func (h *UserHandler) Destroy(c *gin.Context) {
	viewer, ok := utils.ViewerOrAbort(c)
	if !ok {
		return
	}
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), viewer, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User deleted successfully", nil)
}

// ========================================
// ROUTES
// ========================================

// RegisterPublicRoutes mounts the unauthenticated endpoints.
func (h *UserHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
}

// RegisterRoutes mounts the endpoints that need an authenticated viewer.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/user", h.Me)
	rg.GET("/profile", h.Me)
	rg.POST("/logout", h.Logout)

	me := rg.Group("/user")
	{
		me.GET("/profile", h.GetProfile)
		me.PUT("/profile", h.UpdateProfile)
		me.PUT("/change-password", h.ChangePassword)
		me.POST("/deactivate", h.Deactivate)
		me.DELETE("/delete", h.DeleteAccount)
	}

	users := rg.Group("/users")
	{
		users.GET("", middleware.RequireCapability(auth.CapListUsers), h.ListUsers)
		users.GET("/:id", h.Show)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", middleware.RequireCapability(auth.CapDeleteUsers), h.Destroy)
	}
}
