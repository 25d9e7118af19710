package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"diary-backend/internal/shared/auth"
	"diary-backend/internal/shared/middleware"
	"diary-backend/internal/shared/response"
)

// ViewerOrAbort returns the authenticated viewer or writes a 401.
func ViewerOrAbort(c *gin.Context) (auth.Viewer, bool) {
	viewer, ok := middleware.GetViewer(c)
	if !ok {
		response.Error(c, middleware.ErrUnauthenticated)
	}
	return viewer, ok
}

// ParamID parses a positive int64 path parameter or writes a 400.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// BindJSON binds the body or writes a 400.
func BindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.BadRequest(c, "Invalid request body", nil)
		return false
	}
	return true
}
