package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/blog-api/internal/database"
	"github.com/thereayou/blog-api/internal/models"
	"github.com/thereayou/blog-api/internal/services"
	"github.com/thereayou/blog-api/pkg/auth"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type authFixture struct {
	router  *gin.Engine
	jwt     *auth.JWTManager
	revoker *auth.MemoryRevoker
	user    *models.User
}

func setupAuthRouter(t *testing.T) *authFixture {
	t.Helper()
	db := &database.Database{}
	require.NoError(t, db.Connect("sqlite://:memory:"))
	t.Cleanup(func() { _ = db.Close() })

	user := &models.User{Username: "test", Email: "test@test.com", PasswordHash: "x"}
	require.NoError(t, db.SaveUser(context.Background(), user))

	jwtMgr := auth.NewJWTManager("test-secret", 24*time.Hour)
	revoker := auth.NewMemoryRevoker()
	svc := services.NewAuthService(db, jwtMgr, revoker, quietLogger())

	r := gin.New()
	r.GET("/private", AuthMiddleware(jwtMgr, svc, revoker, quietLogger()), func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "token": c.GetString(TokenKey)})
	})
	return &authFixture{router: r, jwt: jwtMgr, revoker: revoker, user: user}
}

func doGet(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthMiddleware(t *testing.T) {
	f := setupAuthRouter(t)

	t.Run("Missing header", func(t *testing.T) {
		w := doGet(f.router, "/private", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgMissingToken, errorMessage(t, w))
	})

	t.Run("Valid token", func(t *testing.T) {
		token, err := f.jwt.Generate(f.user.ID)
		require.NoError(t, err)

		w := doGet(f.router, "/private", map[string]string{auth.TokenHeader: token})
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			UserID uint   `json:"user_id"`
			Token  string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, f.user.ID, body.UserID)
		assert.Equal(t, token, body.Token)
	})

	t.Run("Expired token", func(t *testing.T) {
		token, err := auth.NewJWTManager("test-secret", -time.Hour).Generate(f.user.ID)
		require.NoError(t, err)

		w := doGet(f.router, "/private", map[string]string{auth.TokenHeader: token})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgTokenExpired, errorMessage(t, w))
	})

	t.Run("Garbage token", func(t *testing.T) {
		w := doGet(f.router, "/private", map[string]string{auth.TokenHeader: "not-a-token"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgTokenInvalid, errorMessage(t, w))
	})

	t.Run("Foreign secret", func(t *testing.T) {
		token, err := auth.NewJWTManager("other-secret", time.Hour).Generate(f.user.ID)
		require.NoError(t, err)

		w := doGet(f.router, "/private", map[string]string{auth.TokenHeader: token})
		assert.Equal(t, MsgTokenInvalid, errorMessage(t, w))
	})

	t.Run("Unknown user", func(t *testing.T) {
		token, err := f.jwt.Generate(f.user.ID + 100)
		require.NoError(t, err)

		w := doGet(f.router, "/private", map[string]string{auth.TokenHeader: token})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgUnknownUser, errorMessage(t, w))
	})

	t.Run("Revoked token", func(t *testing.T) {
		token, err := f.jwt.Generate(f.user.ID)
		require.NoError(t, err)
		require.NoError(t, f.revoker.Revoke(context.Background(), token, time.Now().Add(time.Hour)))

		w := doGet(f.router, "/private", map[string]string{auth.TokenHeader: token})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgTokenInvalid, errorMessage(t, w))
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	t.Run("Generated", func(t *testing.T) {
		w := doGet(r, "/", nil)
		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("Propagated", func(t *testing.T) {
		w := doGet(r, "/", map[string]string{RequestIDHeader: "abc-123"})
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2)
	r := gin.New()
	r.Use(RateLimit(limiter))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doGet(r, "/", nil).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/", nil).Code)

	w := doGet(r, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, errorMessage(t, w))

	t.Run("Cleanup", func(t *testing.T) {
		assert.Equal(t, 1, limiter.size())
		limiter.Cleanup(0)
		assert.Equal(t, 0, limiter.size())
		assert.Equal(t, http.StatusOK, doGet(r, "/", nil).Code)
	})

	t.Run("Disabled", func(t *testing.T) {
		open := gin.New()
		open.Use(RateLimit(nil))
		open.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, doGet(open, "/", nil).Code)
		}
	})
}

func TestLogger(t *testing.T) {
	logger := logrus.New()
	hook := &captureHook{}
	logger.AddHook(hook)
	logger.SetOutput(io.Discard)

	r := gin.New()
	r.Use(RequestID(), Logger(logger))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	doGet(r, "/boom", map[string]string{RequestIDHeader: "req-1"})
	require.Len(t, hook.entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.entries[0].Level)
	assert.Equal(t, "req-1", hook.entries[0].Data["request_id"])
	assert.Equal(t, http.StatusInternalServerError, hook.entries[0].Data["status"])
}

type captureHook struct {
	entries []*logrus.Entry
}

func (h *captureHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *captureHook) Fire(e *logrus.Entry) error {
	h.entries = append(h.entries, e)
	return nil
}
