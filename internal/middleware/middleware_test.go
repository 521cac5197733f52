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

	"github.com/pageza/recetario/backend/internal/models"
	"github.com/pageza/recetario/backend/internal/response"
	"github.com/pageza/recetario/backend/internal/session"
	"github.com/pageza/recetario/backend/internal/testhelpers"
)

const cookieName = "test_session"

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newSessionManager(t *testing.T) *session.Manager {
	_, client := testhelpers.SetupRedis(t)
	return session.NewManager(session.NewRedisStore(client), "test-secret", time.Hour)
}

func protectedRouter(m *session.Manager) *gin.Engine {
	r := gin.New()
	r.Use(LoadSession(m, cookieName, testhelpers.Logger()))
	r.GET("/open", func(c *gin.Context) {
		id, ok := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "authenticated": ok})
	})
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		sess := CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{"username": sess.User.Username, "token": SessionToken(c) != ""})
	})
	return r
}

func TestRequireAuthWithoutCookie(t *testing.T) {
	r := protectedRouter(newSessionManager(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, response.MsgUnauthorized, env.Message)
}

func TestRequireAuthWithSession(t *testing.T) {
	m := newSessionManager(t)
	r := protectedRouter(m)
	token, _, err := m.Create(context.Background(), models.PublicUser{ID: 7, Username: "ana"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"ana","token":true}`, w.Body.String())
}

func TestLoadSessionIgnoresInvalidCookie(t *testing.T) {
	r := protectedRouter(newSessionManager(t))

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "forged"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"authenticated":false}`, w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	mr, client := testhelpers.SetupRedis(t)
	rl := NewLoginRateLimiter(client, 2, testhelpers.Logger())
	fixed := time.Date(2026, 1, 1, 12, 5, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	r := gin.New()
	r.POST("/login", rl.Middleware(ByClientIP), func(c *gin.Context) {
		response.Success(c, "ok", nil)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send().Code)

	blocked := send()
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "0", blocked.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "600", blocked.Header().Get("Retry-After"))
	env := decodeEnvelope(t, blocked)
	assert.Equal(t, response.MsgTooManyRequests, env.Message)

	// next window starts fresh
	rl.now = func() time.Time { return fixed.Add(15 * time.Minute) }
	assert.Equal(t, http.StatusOK, send().Code)
	assert.NotEmpty(t, mr.Keys())
}

func TestRateLimiterDisabledAndFailOpen(t *testing.T) {
	mr, client := testhelpers.SetupRedis(t)

	disabled := NewRecipeCreationRateLimiter(client, 0, testhelpers.Logger())
	failing := NewRecipeCreationRateLimiter(client, 1, testhelpers.Logger())
	always := func(*gin.Context) (string, bool) { return "user", true }

	r := gin.New()
	r.GET("/disabled", disabled.Middleware(always), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/failing", failing.Middleware(always), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/disabled", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	mr.Close()
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/failing", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestByUserSkipsAnonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := ByUser(c)
	assert.False(t, ok)

	c.Set(UserIDKey, uint(9))
	key, ok := ByUser(c)
	assert.True(t, ok)
	assert.Equal(t, "9", key)
}

func TestRecoveryRendersEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(testhelpers.Logger()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, response.MsgServerError, env.Message)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDReusesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(testhelpers.Logger()), Metrics())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
