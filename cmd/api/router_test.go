package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-backend/internal/infrastructure/database"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func noStats() *database.PoolStats { return nil }

func health(t *testing.T, db, cache pinger) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/health", healthCheckHandler(db, cache, noStats, "test"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealth_AllUp(t *testing.T) {
	code, body := health(t, fakePinger{}, fakePinger{})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestHealth_CacheDownIsDegradedButServing(t *testing.T) {
	code, body := health(t, fakePinger{}, fakePinger{err: errors.New("refused")})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body["status"])
	services := body["services"].(map[string]interface{})
	assert.Equal(t, "error: refused", services["cache"])
}

func TestHealth_DatabaseDownIs503(t *testing.T) {
	code, body := health(t, fakePinger{err: errors.New("timeout")}, fakePinger{})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
}
