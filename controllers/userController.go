package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"publicseva-be/apperrors"
	"publicseva-be/middlewares"
	"publicseva-be/models"

	"github.com/gin-gonic/gin"
)

// GetMe echoes the identity carried by the caller's token.
func GetMe(c *gin.Context) {
	identity, ok := middlewares.GetIdentity(c)
	if !ok {
		RespondError(c, apperrors.Unauthenticated("Not authenticated"))
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": identity})
}

// RoleProbe answers the /test/<role> endpoints used to check a token's role.
func RoleProbe(role models.Role) gin.HandlerFunc {
	message := fmt.Sprintf("%s%s access granted", strings.ToUpper(string(role[:1])), role[1:])
	return func(c *gin.Context) {
		identity, _ := middlewares.GetIdentity(c)
		respondOK(c, http.StatusOK, gin.H{
			"message": message,
			"user":    identity,
		})
	}
}
