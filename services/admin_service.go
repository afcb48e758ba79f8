package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"publicseva-be/apperrors"
	"publicseva-be/models"
	"publicseva-be/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminService holds the staff-only operations. Route guards already restrict
// these to admins and coordinators; UpdateStatus checks the role again itself.
type AdminService struct {
	issues *IssueService
	repo   repositories.IssueRepository
}

func NewAdminService(issues *IssueService) *AdminService {
	return &AdminService{issues: issues, repo: issues.issues}
}

// ListAll returns every issue newest first with creator contact fields.
func (s *AdminService) ListAll(ctx context.Context, status models.IssueStatus) ([]models.IssueView, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Validation("Invalid status filter")
	}
	issues, err := s.repo.List(ctx, repositories.IssueFilter{Status: status})
	if err != nil {
		return nil, err
	}
	return s.issues.expand(ctx, issues, contactCreator, false)
}

// UpdateStatus moves an issue one step along UNSOLVED -> IN_PROGRESS -> RESOLVED.
func (s *AdminService) UpdateStatus(ctx context.Context, id primitive.ObjectID, target models.IssueStatus, actor models.Role) (*models.Issue, error) {
	if err := models.RequireRole(actor, models.StaffRoles...); err != nil {
		return nil, err
	}
	if target == "" {
		return nil, apperrors.Validation("Status is required")
	}
	if !target.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("Unknown status: %s", target))
	}

	issue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !issue.Status.CanTransitionTo(target) {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("Invalid status transition: %s -> %s", issue.Status, target))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, issue.Status, target)
	if errors.Is(err, repositories.ErrStatusChanged) {
		return nil, apperrors.Wrap(apperrors.KindInvalidTransition, "Issue status changed, reload and try again", err)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type UpdateIssueRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// issueDetailsInput carries the trimmed edits; empty means the field is not edited.
type issueDetailsInput struct {
	Title       string `json:"title" validate:"omitempty,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// UpdateDetails edits title and description; absent fields are kept.
func (s *AdminService) UpdateDetails(ctx context.Context, id primitive.ObjectID, req UpdateIssueRequest) (*models.Issue, error) {
	var (
		details repositories.IssueDetails
		input   issueDetailsInput
	)
	if req.Title != nil {
		input.Title = strings.TrimSpace(*req.Title)
		if input.Title == "" {
			return nil, apperrors.Validation("title cannot be empty")
		}
		details.Title = &input.Title
	}
	if req.Description != nil {
		input.Description = strings.TrimSpace(*req.Description)
		if input.Description == "" {
			return nil, apperrors.Validation("description cannot be empty")
		}
		details.Description = &input.Description
	}
	if details.Title == nil && details.Description == nil {
		return nil, apperrors.Validation("Nothing to update")
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	return s.repo.UpdateDetails(ctx, id, details)
}

func (s *AdminService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

func (s *AdminService) Stats(ctx context.Context) (models.StatusCounts, error) {
	return s.repo.CountByStatus(ctx)
}
