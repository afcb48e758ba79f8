package controllers

import (
	"net/http"

	"publicseva-be/apperrors"
	"publicseva-be/models"
	"publicseva-be/services"

	"github.com/gin-gonic/gin"
)

type IssueController struct {
	issues *services.IssueService
}

func NewIssueController(issues *services.IssueService) *IssueController {
	return &IssueController{issues: issues}
}

// CreateIssue handles the creation of a new issue
func (ic *IssueController) CreateIssue(c *gin.Context) {
	_, userID, err := currentUser(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	var input services.CreateIssueRequest
	if err := bindJSON(c, &input); err != nil {
		RespondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.Create(ctx, userID, input)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"issue": models.NewIssueView(*issue)})
}

// GetAllIssues returns the public feed, optionally filtered by ?status=
func (ic *IssueController) GetAllIssues(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := ic.issues.List(ctx, models.IssueStatus(c.Query("status")))
	if err != nil {
		RespondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"issues": issues})
}

type nearbyQuery struct {
	Lng    *float64 `form:"lng" binding:"required,longitude"`
	Lat    *float64 `form:"lat" binding:"required,latitude"`
	Radius float64  `form:"radius" binding:"omitempty,gt=0"`
}

// GetNearbyIssues lists issues around ?lng=&lat= within ?radius= metres
func (ic *IssueController) GetNearbyIssues(c *gin.Context) {
	var q nearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondError(c, apperrors.Wrap(apperrors.KindValidation, "lng and lat query parameters are required", err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := ic.issues.Nearby(ctx, *q.Lng, *q.Lat, q.Radius)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"issues": issues})
}

// GetIssue returns one issue with creator and commenters expanded
func (ic *IssueController) GetIssue(c *gin.Context) {
	id, err := pathID(c, "id", "issue")
	if err != nil {
		RespondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.Get(ctx, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"issue": issue})
}

// GetIssuesByUser lists the issues a user reported, newest first
func (ic *IssueController) GetIssuesByUser(c *gin.Context) {
	userID, err := pathID(c, "userId", "user")
	if err != nil {
		RespondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := ic.issues.ListByUser(ctx, userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"issues": issues})
}

// ToggleLike adds or removes the caller's vote
func (ic *IssueController) ToggleLike(c *gin.Context) {
	_, userID, err := currentUser(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	id, err := pathID(c, "id", "issue")
	if err != nil {
		RespondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := ic.issues.ToggleVote(ctx, id, userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"voted":      result.Voted,
		"totalLikes": result.TotalVotes,
	})
}

// AddComment appends the caller's comment to an issue
func (ic *IssueController) AddComment(c *gin.Context) {
	_, userID, err := currentUser(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	id, err := pathID(c, "id", "issue")
	if err != nil {
		RespondError(c, err)
		return
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := bindJSON(c, &input); err != nil {
		RespondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := ic.issues.AddComment(ctx, id, userID, input.Text)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"comment": comment})
}
