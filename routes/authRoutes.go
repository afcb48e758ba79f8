package routes

import (
	"publicseva-be/controllers"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(api *gin.RouterGroup, ac *controllers.AuthController) {
	auth := api.Group("/auth")
	{
		auth.POST("/signup", ac.RegisterUser)
		auth.POST("/login", ac.LoginUser)
	}
}
