package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"publicseva-be/apperrors"
	"publicseva-be/models"
	authUtils "publicseva-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRespond(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperrors.HTTPStatus(apperrors.KindOf(err)), gin.H{
		"success": false,
		"kind":    apperrors.KindOf(err),
	})
}

func newContext(auth string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		c.Request.Header.Set("Authorization", auth)
	}
	return c, rec
}

func newTokens(t *testing.T) *authUtils.TokenManager {
	t.Helper()
	tokens, err := authUtils.NewTokenManager("testsecret")
	require.NoError(t, err)
	return tokens
}

func bearer(t *testing.T, tokens *authUtils.TokenManager, role models.Role) string {
	t.Helper()
	tok, _, err := tokens.GenerateToken(models.Identity{UserID: "65a1f0c2e4b0a1b2c3d4e5f6", Role: role})
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestAuthenticate(t *testing.T) {
	tokens := newTokens(t)
	guard := Authenticate(tokens)

	for name, header := range map[string]string{
		"missing":      "",
		"no scheme":    "sometoken",
		"wrong scheme": "Basic abc",
		"empty token":  "Bearer ",
		"garbage":      "Bearer invalid",
	} {
		c, _ := newContext(header)
		err := guard(c)
		require.Error(t, err, name)
		assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err), name)
		_, ok := GetIdentity(c)
		assert.False(t, ok, name)
	}

	c, _ := newContext(bearer(t, tokens, models.RoleCoordinator))
	require.NoError(t, guard(c))
	identity, ok := GetIdentity(c)
	require.True(t, ok)
	assert.Equal(t, models.RoleCoordinator, identity.Role)
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", identity.UserID)
}

func TestRequireRoles(t *testing.T) {
	tokens := newTokens(t)
	staff := RequireRoles(models.StaffRoles...)

	c, _ := newContext("")
	err := staff(c)
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))

	for _, role := range []models.Role{models.RoleAdmin, models.RoleCoordinator} {
		c, _ := newContext(bearer(t, tokens, role))
		require.NoError(t, Authenticate(tokens)(c))
		assert.NoError(t, staff(c), role)
	}

	c, _ = newContext(bearer(t, tokens, models.RoleCitizen))
	require.NoError(t, Authenticate(tokens)(c))
	err = staff(c)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestChain(t *testing.T) {
	tokens := newTokens(t)
	r := gin.New()
	var order []string
	r.GET("/staff",
		Chain(testRespond,
			func(*gin.Context) error { order = append(order, "first"); return nil },
			Authenticate(tokens),
			RequireRoles(models.StaffRoles...),
		),
		func(c *gin.Context) { order = append(order, "handler"); c.Status(http.StatusOK) },
	)

	do := func(auth string) int {
		order = nil
		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, []string{"first"}, order)

	assert.Equal(t, http.StatusForbidden, do(bearer(t, tokens, models.RoleCitizen)))
	assert.Equal(t, []string{"first"}, order)

	assert.Equal(t, http.StatusOK, do(bearer(t, tokens, models.RoleAdmin)))
	assert.Equal(t, []string{"first", "handler"}, order)
}

func TestIssueRateLimiter(t *testing.T) {
	tokens := newTokens(t)

	var expired []string
	counter := NewCountingFake(3 * time.Hour)
	counter.ExpireFn = func(_ context.Context, key string, exp time.Duration) *redis.BoolCmd {
		assert.Equal(t, 24*time.Hour, exp)
		expired = append(expired, key)
		return redis.NewBoolResult(true, nil)
	}
	guard := IssueRateLimiter(counter, "issue-limit", 2)

	c, _ := newContext(bearer(t, tokens, models.RoleCitizen))
	require.NoError(t, Authenticate(tokens)(c))

	require.NoError(t, guard(c))
	require.NoError(t, guard(c))
	err := guard(c)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindRateLimited, apperrors.KindOf(err))

	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 3*time.Hour, rl.RetryAfter)
	assert.Equal(t, []string{"issue-limit:65a1f0c2e4b0a1b2c3d4e5f6"}, expired)
}

func TestIssueRateLimiterRefundsRejectedCreates(t *testing.T) {
	tokens := newTokens(t)
	counter := NewCountingFake(time.Hour)
	status := http.StatusBadRequest

	r := gin.New()
	r.POST("/issues", Chain(testRespond, Authenticate(tokens), IssueRateLimiter(counter, "issue-limit", 1)), func(c *gin.Context) {
		c.Status(status)
	})
	do := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/issues", nil)
		req.Header.Set("Authorization", bearer(t, tokens, models.RoleCitizen))
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusBadRequest, do())
	assert.Equal(t, http.StatusBadRequest, do())

	status = http.StatusCreated
	assert.Equal(t, http.StatusCreated, do())
	assert.Equal(t, http.StatusTooManyRequests, do())

	n, err := counter.Incr(context.Background(), "issue-limit:65a1f0c2e4b0a1b2c3d4e5f6").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestIssueRateLimiterFailures(t *testing.T) {
	tokens := newTokens(t)
	c, _ := newContext(bearer(t, tokens, models.RoleCitizen))
	require.NoError(t, Authenticate(tokens)(c))

	// disabled
	require.NoError(t, IssueRateLimiter(nil, "issue-limit", 1)(c))

	broken := &FakeCounter{IncrFn: func(context.Context, string) *redis.IntCmd {
		return redis.NewIntResult(0, errors.New("connection refused"))
	}}
	err := IssueRateLimiter(broken, "issue-limit", 1)(c)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))

	anon, _ := newContext("")
	err = IssueRateLimiter(NewCountingFake(time.Hour), "issue-limit", 1)(anon)
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}
