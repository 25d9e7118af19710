package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"diary-backend/internal/shared/apperror"
	"diary-backend/internal/shared/auth"
	"diary-backend/internal/shared/response"
	"diary-backend/pkg/jwt"
)

const viewerKey = "viewer"

// ErrUnauthenticated is returned for missing, invalid or revoked credentials.
var ErrUnauthenticated = apperror.New(apperror.KindUnauthorized, "AUTH_001", "Unauthenticated")

// TokenValidator parses bearer tokens.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// SessionChecker confirms the token was not revoked and the account is still
// active, and returns the account's current role.
type SessionChecker interface {
	CheckSession(ctx context.Context, userID int64, tokenID string) (auth.Role, error)
}

// AuthMiddleware authenticates the bearer token and stores the Viewer.
func AuthMiddleware(tokens TokenValidator, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, ErrUnauthenticated)
			return
		}

		claims, err := tokens.ValidateAccessToken(raw)
		if err != nil {
			response.Abort(c, ErrUnauthenticated)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			response.Abort(c, ErrUnauthenticated)
			return
		}

		role, err := sessions.CheckSession(c.Request.Context(), userID, claims.ID)
		if err != nil {
			response.Abort(c, err)
			return
		}

		SetViewer(c, auth.Viewer{UserID: userID, Role: role, TokenID: claims.ID})

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// SetViewer attaches viewer to the gin context.
func SetViewer(c *gin.Context, viewer auth.Viewer) {
	c.Set(viewerKey, viewer)
}

// GetViewer returns the viewer set by AuthMiddleware.
func GetViewer(c *gin.Context) (auth.Viewer, bool) {
	v, ok := c.Get(viewerKey)
	if !ok {
		return auth.Viewer{}, false
	}
	viewer, ok := v.(auth.Viewer)
	return viewer, ok && !viewer.IsZero()
}
