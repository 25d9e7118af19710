package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-backend/internal/shared/apperror"
	"diary-backend/internal/shared/auth"
	"diary-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type sessionFunc func(ctx context.Context, userID int64, tokenID string) (auth.Role, error)

func (f sessionFunc) CheckSession(ctx context.Context, userID int64, tokenID string) (auth.Role, error) {
	return f(ctx, userID, tokenID)
}

func activeSession(role auth.Role) sessionFunc {
	return func(context.Context, int64, string) (auth.Role, error) { return role, nil }
}

func serve(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func authedRouter(tokens TokenValidator, sessions SessionChecker, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(tokens, sessions)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		v, _ := GetViewer(c)
		c.JSON(http.StatusOK, gin.H{"user_id": v.UserID, "role": v.Role, "token_id": v.TokenID})
	})
	r.GET("/me", handlers...)
	return r
}

// =====================================================
// AUTH
// =====================================================

func TestAuthMiddleware_SetsViewer(t *testing.T) {
	m := jwt.NewManager("secret", time.Hour)
	token, claims, err := m.GenerateAccessToken(7, "client")
	require.NoError(t, err)

	// role comes from the session check, not the token claim
	r := authedRouter(m, activeSession(auth.RoleAdmin))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w, body := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(7), body["user_id"])
	assert.Equal(t, "admin", body["role"])
	assert.Equal(t, claims.ID, body["token_id"])
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	m := jwt.NewManager("secret", time.Hour)
	other := jwt.NewManager("other-secret", time.Hour)
	forged, _, err := other.GenerateAccessToken(7, "admin")
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"empty token":    "Bearer ",
		"bad signature":  "Bearer " + forged,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			r := authedRouter(m, activeSession(auth.RoleClient))
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w, body := serve(r, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "AUTH_001", body["code"])
		})
	}
}

func TestAuthMiddleware_RevokedSession(t *testing.T) {
	m := jwt.NewManager("secret", time.Hour)
	token, _, err := m.GenerateAccessToken(7, "client")
	require.NoError(t, err)

	revoked := apperror.New(apperror.KindUnauthorized, "USR008", "Unauthenticated")
	r := authedRouter(m, sessionFunc(func(context.Context, int64, string) (auth.Role, error) {
		return "", revoked
	}))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer "+token)

	w, body := serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "USR008", body["code"])
}

func TestRequireCapability(t *testing.T) {
	m := jwt.NewManager("secret", time.Hour)
	token, _, err := m.GenerateAccessToken(7, "client")
	require.NoError(t, err)

	for role, want := range map[auth.Role]int{auth.RoleClient: http.StatusForbidden, auth.RoleAdmin: http.StatusOK} {
		r := authedRouter(m, activeSession(role), RequireCapability(auth.CapListUsers))
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w, _ := serve(r, req)
		assert.Equal(t, want, w.Code, role)
	}
}

// =====================================================
// RATE LIMIT
// =====================================================

func TestIPRateLimiter_BurstThenReject(t *testing.T) {
	l := NewIPRateLimiter(1, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	// other clients have their own bucket
	assert.True(t, l.Allow("2.2.2.2"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"))
}

func TestIPRateLimiter_Middleware429(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)
	r := gin.New()
	r.POST("/login", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w, _ := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "AUTH_003", body["code"])
}

// =====================================================
// CORS & REQUEST ID
// =====================================================

func TestCORS_AllowedOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w, _ := serve(r, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w, _ = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORS_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://anything.example")
	w, _ := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://anything.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w, _ := serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w, _ = serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}
