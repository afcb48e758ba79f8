package controllers

import (
	"net/http"

	"publicseva-be/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// RegisterUser handles citizen signup
func (ac *AuthController) RegisterUser(c *gin.Context) {
	var input services.SignupRequest
	if err := bindJSON(c, &input); err != nil {
		RespondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ac.auth.Register(ctx, input)
	if err != nil {
		RespondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  user.ID,
	})
}

// LoginUser checks credentials and returns a bearer token
func (ac *AuthController) LoginUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &input); err != nil {
		RespondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := ac.auth.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		RespondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"message":   "Login successful",
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"user": gin.H{
			"id":    result.User.ID,
			"name":  result.User.Name,
			"email": result.User.Email,
			"role":  result.User.Role,
		},
	})
}
