package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newBasicAuthRouter(passwords *mockPasswordService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BasicAuthMiddleware(testAdminUser, testAdminHash, passwords, testLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor": c.GetString(gin.AuthUserKey)})
	})
	return router
}

func TestBasicAuthMiddleware(t *testing.T) {
	t.Run("Success_SetsActor", func(t *testing.T) {
		passwords := &mockPasswordService{}
		passwords.On("ComparePassword", testAdminPassword, testAdminHash).Return(true).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.SetBasicAuth(testAdminUser, testAdminPassword)
		newBasicAuthRouter(passwords).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"actor":"admin"}`, w.Body.String())
		passwords.AssertExpectations(t)
	})

	t.Run("Error_MissingCredentials", func(t *testing.T) {
		passwords := &mockPasswordService{}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		newBasicAuthRouter(passwords).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, `Basic realm="fieldvault"`, w.Header().Get("WWW-Authenticate"))
		passwords.AssertNotCalled(t, "ComparePassword", mock.Anything, mock.Anything)
	})

	t.Run("Error_WrongPassword", func(t *testing.T) {
		passwords := &mockPasswordService{}
		passwords.On("ComparePassword", "guess", testAdminHash).Return(false).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.SetBasicAuth(testAdminUser, "guess")
		newBasicAuthRouter(passwords).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		passwords.AssertExpectations(t)
	})

	t.Run("Error_WrongUserStillVerifiesPassword", func(t *testing.T) {
		passwords := &mockPasswordService{}
		passwords.On("ComparePassword", testAdminPassword, testAdminHash).Return(true).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.SetBasicAuth("root", testAdminPassword)
		newBasicAuthRouter(passwords).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		passwords.AssertExpectations(t)
	})
}

func newRateLimitedRouter(ctx context.Context, rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(ctx, rps, burst, testLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newRateLimitedRouter(ctx, 10, 20)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddleware_BlocksRequestsExceedingLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newRateLimitedRouter(ctx, 1, 2)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestRateLimitMiddleware_IndependentPerIP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newRateLimitedRouter(ctx, 0.001, 1)

	first := httptest.NewRequest(http.MethodGet, "/test", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	second := httptest.NewRequest(http.MethodGet, "/test", nil)
	second.RemoteAddr = "10.0.0.2:1234"

	w := httptest.NewRecorder()
	router.ServeHTTP(w, first)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, second)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterStore_EvictBefore(t *testing.T) {
	store := &rateLimiterStore{rps: 1, burst: 1}
	store.getLimiter("10.0.0.1")
	store.getLimiter("10.0.0.2")

	val, ok := store.limiters.Load("10.0.0.1")
	assert.True(t, ok)
	val.(*rateLimiterEntry).lastAccess = time.Now().Add(-2 * time.Hour)

	store.evictBefore(time.Now().Add(-time.Hour))

	_, ok = store.limiters.Load("10.0.0.1")
	assert.False(t, ok)
	_, ok = store.limiters.Load("10.0.0.2")
	assert.True(t, ok)
}
