package middleware

import (
	"github.com/gin-gonic/gin"

	"diary-backend/internal/shared/apperror"
	"diary-backend/internal/shared/auth"
	"diary-backend/internal/shared/response"
)

var errForbidden = apperror.New(apperror.KindForbidden, "AUTH_002", "Unauthorized. Insufficient permissions.")

// RequireCapability lets the request through only if the viewer's role grants c.
// Must run after AuthMiddleware.
func RequireCapability(capability auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, ok := GetViewer(c)
		if !ok {
			response.Abort(c, ErrUnauthenticated)
			return
		}
		if !viewer.Role.Can(capability) {
			response.Abort(c, errForbidden)
			return
		}
		c.Next()
	}
}
