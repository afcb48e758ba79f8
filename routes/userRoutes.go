package routes

import (
	"publicseva-be/controllers"
	"publicseva-be/middlewares"
	"publicseva-be/models"

	"github.com/gin-gonic/gin"
)

// UserRoutes sets up /users/me and the /test role probes
func UserRoutes(api *gin.RouterGroup, g guardSet) {
	api.GET("/users/me", g.authed(), controllers.GetMe)

	test := api.Group("/test")
	for _, role := range []models.Role{models.RoleCitizen, models.RoleCoordinator, models.RoleAdmin} {
		test.GET("/"+string(role), g.authed(middlewares.RequireRoles(role)), controllers.RoleProbe(role))
	}
}
