package controllers

import (
	"fmt"
	"net/http"

	"publicseva-be/models"
	"publicseva-be/services"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	admin *services.AdminService
}

func NewAdminController(admin *services.AdminService) *AdminController {
	return &AdminController{admin: admin}
}

// GetAllIssuesAdmin lists every issue with the reporter's contact details
func (ac *AdminController) GetAllIssuesAdmin(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := ac.admin.ListAll(ctx, models.IssueStatus(c.Query("status")))
	if err != nil {
		RespondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"total":  len(issues),
		"issues": issues,
	})
}

// GetStats returns issue counts per status
func (ac *AdminController) GetStats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	counts, err := ac.admin.Stats(ctx)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"stats": counts})
}

type statusInput struct {
	Status models.IssueStatus `json:"status" binding:"required,issuestatus"`
}

// UpdateIssueStatus moves an issue to the next workflow status
func (ac *AdminController) UpdateIssueStatus(c *gin.Context) {
	identity, _, err := currentUser(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	id, err := pathID(c, "id", "issue")
	if err != nil {
		RespondError(c, err)
		return
	}

	var input statusInput
	if err := bindJSON(c, &input); err != nil {
		RespondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ac.admin.UpdateStatus(ctx, id, input.Status, identity.Role)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"message": fmt.Sprintf("Issue status updated to %s", issue.Status),
		"issue": gin.H{
			"id":        issue.ID,
			"status":    issue.Status,
			"updatedAt": issue.UpdatedAt,
		},
	})
}

// UpdateIssue edits an issue's title or description
func (ac *AdminController) UpdateIssue(c *gin.Context) {
	id, err := pathID(c, "id", "issue")
	if err != nil {
		RespondError(c, err)
		return
	}

	var input services.UpdateIssueRequest
	if err := bindJSON(c, &input); err != nil {
		RespondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ac.admin.UpdateDetails(ctx, id, input)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"message": "Issue updated successfully",
		"issue":   models.NewIssueView(*issue),
	})
}

// DeleteIssue removes an issue permanently
func (ac *AdminController) DeleteIssue(c *gin.Context) {
	id, err := pathID(c, "id", "issue")
	if err != nil {
		RespondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ac.admin.Delete(ctx, id); err != nil {
		RespondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}
