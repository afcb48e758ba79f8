package controllers

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"publicseva-be/apperrors"
	"publicseva-be/middlewares"
	"publicseva-be/models"
	"publicseva-be/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const requestTimeout = 10 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// RespondError writes the error envelope for err and aborts the request.
func RespondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status := apperrors.HTTPStatus(kind)

	if kind == apperrors.KindInternal {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.FullPath()).
			Msg("request failed")
	}

	body := gin.H{
		"success": false,
		"kind":    kind,
		"message": apperrors.MessageOf(err),
	}
	var rl *middlewares.RateLimitError
	if errors.As(err, &rl) {
		seconds := int(math.Ceil(rl.RetryAfter.Seconds()))
		body["retry_after"] = seconds
		c.Header("Retry-After", strconv.Itoa(seconds))
	}
	c.AbortWithStatusJSON(status, body)
}

func respondOK(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// bindJSON decodes the body, mapping malformed JSON to a VALIDATION error.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid request payload", err)
	}
	return nil
}

func pathID(c *gin.Context, param, what string) (primitive.ObjectID, error) {
	return services.ParseID(c.Param(param), what)
}

// currentUser returns the caller's identity and parsed user id.
func currentUser(c *gin.Context) (models.Identity, primitive.ObjectID, error) {
	identity, ok := middlewares.GetIdentity(c)
	if !ok {
		return models.Identity{}, primitive.NilObjectID, apperrors.Unauthenticated("Not authenticated")
	}
	id, err := primitive.ObjectIDFromHex(identity.UserID)
	if err != nil {
		return identity, primitive.NilObjectID, apperrors.Unauthenticated("Invalid token subject")
	}
	return identity, id, nil
}
