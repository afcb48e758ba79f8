package routes

import (
	"publicseva-be/controllers"
	"publicseva-be/middlewares"
	"publicseva-be/models"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the public feed and citizen actions
func IssueRoutes(api *gin.RouterGroup, ic *controllers.IssueController, g guardSet) {
	issue := api.Group("/issues")
	{
		issue.GET("", ic.GetAllIssues)
		issue.GET("/nearby", ic.GetNearbyIssues)
		issue.POST("", g.authed(g.issueLimit()), ic.CreateIssue)
		issue.GET("/user/:userId", ic.GetIssuesByUser)
		issue.GET("/:id", ic.GetIssue)
		issue.POST("/:id/like", g.authed(), ic.ToggleLike)
		issue.POST("/:id/comment", g.authed(), ic.AddComment)
	}
}

// AdminRoutes sets up the staff-only moderation routes
func AdminRoutes(api *gin.RouterGroup, ac *controllers.AdminController, g guardSet) {
	admin := api.Group("/admin", g.authed(middlewares.RequireRoles(models.StaffRoles...)))
	{
		admin.GET("/issues", ac.GetAllIssuesAdmin)
		admin.GET("/stats", ac.GetStats)
		admin.PATCH("/issues/:id/status", ac.UpdateIssueStatus)
		admin.PATCH("/issues/:id", ac.UpdateIssue)
		admin.DELETE("/issues/:id", ac.DeleteIssue)
	}
}
