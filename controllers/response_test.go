package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"publicseva-be/apperrors"
	"publicseva-be/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondError(c, err)
	assert.True(t, c.IsAborted())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		kind    string
		message string
	}{
		{apperrors.Validation("title is required"), http.StatusBadRequest, "VALIDATION", "title is required"},
		{apperrors.Conflict("User already exists with this email"), http.StatusBadRequest, "CONFLICT", "User already exists with this email"},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"},
		{apperrors.Forbidden("no"), http.StatusForbidden, "FORBIDDEN", "no"},
		{fmt.Errorf("finding issue: %w", apperrors.NotFound("Issue not found")), http.StatusNotFound, "NOT_FOUND", "Issue not found"},
		{apperrors.InvalidTransition("Invalid status transition"), http.StatusBadRequest, "INVALID_TRANSITION", "Invalid status transition"},
		{errors.New("mongo: server selection timeout on 10.0.0.3"), http.StatusInternalServerError, "INTERNAL", "Something went wrong"},
	}
	for _, tc := range cases {
		rec, body := respond(t, tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.kind)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, tc.kind, body["kind"])
		assert.Equal(t, tc.message, body["message"])
	}
}

func TestRespondErrorRateLimited(t *testing.T) {
	err := &middlewares.RateLimitError{
		Err:        apperrors.New(apperrors.KindRateLimited, "Daily limit of 10 issues reached"),
		RetryAfter: 90 * time.Second,
	}
	rec, body := respond(t, err)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", body["kind"])
	assert.Equal(t, float64(90), body["retry_after"])
	assert.Equal(t, "90", rec.Header().Get("Retry-After"))
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var in statusInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	for body, want := range map[string]int{
		`{"status":"IN_PROGRESS"}`: http.StatusOK,
		`{"status":"CLOSED"}`:      http.StatusBadRequest,
		`{}`:                       http.StatusBadRequest,
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, body)
	}
}
