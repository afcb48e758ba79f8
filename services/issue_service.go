package services

import (
	"context"
	"strings"
	"time"

	"publicseva-be/apperrors"
	"publicseva-be/models"
	"publicseva-be/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultNearbyRadius = 5000.0
	MaxNearbyRadius     = 50000.0
	nearbyLimit         = 100
)

type IssueService struct {
	issues repositories.IssueRepository
	users  repositories.UserRepository
}

func NewIssueService(issues repositories.IssueRepository, users repositories.UserRepository) *IssueService {
	return &IssueService{issues: issues, users: users}
}

type LocationInput struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates" validate:"required,lnglat"`
}

type CreateIssueRequest struct {
	Title       string         `json:"title" validate:"required,max=200"`
	Description string         `json:"description" validate:"required,max=2000"`
	Images      []string       `json:"images" validate:"omitempty,dive,required"`
	Location    *LocationInput `json:"location" validate:"required"`
	Address     string         `json:"address" validate:"max=300"`
}

// Create stores a new UNSOLVED issue owned by authorID.
func (s *IssueService) Create(ctx context.Context, authorID primitive.ObjectID, req CreateIssueRequest) (*models.Issue, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}
	now := time.Now()
	issue := &models.Issue{
		Title:       req.Title,
		Description: req.Description,
		Images:      images,
		Location:    models.NewPoint(req.Location.Coordinates[0], req.Location.Coordinates[1]),
		Address:     strings.TrimSpace(req.Address),
		Status:      models.StatusUnsolved,
		CreatedBy:   authorID,
		Votes:       []primitive.ObjectID{},
		Comments:    []models.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// List returns the public feed, newest first, creators expanded to name and role.
func (s *IssueService) List(ctx context.Context, status models.IssueStatus) ([]models.IssueView, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Validation("Invalid status filter")
	}
	issues, err := s.issues.List(ctx, repositories.IssueFilter{Status: status})
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, issues, publicCreator, false)
}

func (s *IssueService) Get(ctx context.Context, id primitive.ObjectID) (*models.IssueView, error) {
	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.expand(ctx, []models.Issue{*issue}, publicCreator, true)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *IssueService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.IssueView, error) {
	issues, err := s.issues.List(ctx, repositories.IssueFilter{CreatedBy: userID})
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, issues, publicCreator, false)
}

// Nearby lists issues within radius metres of (lng, lat), nearest first.
// A zero radius means the default.
func (s *IssueService) Nearby(ctx context.Context, lng, lat, radius float64) ([]models.IssueView, error) {
	point := models.NewPoint(lng, lat)
	if !point.Valid() {
		return nil, apperrors.Validation("Location coordinates must be [longitude, latitude]")
	}
	if radius == 0 {
		radius = DefaultNearbyRadius
	}
	if radius < 0 || radius > MaxNearbyRadius {
		return nil, apperrors.Validation("radius must be between 0 and 50000 metres")
	}

	issues, err := s.issues.Near(ctx, point, radius, nearbyLimit)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, issues, publicCreator, false)
}

// ToggleVote adds the user's vote if absent and removes it otherwise.
func (s *IssueService) ToggleVote(ctx context.Context, issueID, userID primitive.ObjectID) (models.VoteResult, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return models.VoteResult{}, err
	}

	voted := !issue.HasVoted(userID)
	if voted {
		issue, err = s.issues.AddVote(ctx, issueID, userID)
	} else {
		issue, err = s.issues.RemoveVote(ctx, issueID, userID)
	}
	if err != nil {
		return models.VoteResult{}, err
	}
	return models.VoteResult{Voted: voted, TotalVotes: len(issue.Votes)}, nil
}

type commentInput struct {
	Text string `json:"text" validate:"required,max=1000"`
}

func (s *IssueService) AddComment(ctx context.Context, issueID, userID primitive.ObjectID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("Comment text required")
	}
	if err := validateStruct(commentInput{Text: text}); err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.issues.AddComment(ctx, issueID, comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

type creatorFields int

const (
	publicCreator creatorFields = iota
	contactCreator
)

// expand resolves user references with one batched lookup. Creators get name and
// role (plus email for contactCreator); commenters get name when withComments is set.
func (s *IssueService) expand(ctx context.Context, issues []models.Issue, fields creatorFields, withComments bool) ([]models.IssueView, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if _, ok := seen[id]; ok || id.IsZero() {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, issue := range issues {
		add(issue.CreatedBy)
		if withComments {
			for _, c := range issue.Comments {
				add(c.User)
			}
		}
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.IssueView, 0, len(issues))
	for _, issue := range issues {
		view := models.NewIssueView(issue)
		if u, ok := users[issue.CreatedBy]; ok {
			view.CreatedBy.Name = u.Name
			view.CreatedBy.Role = u.Role
			if fields == contactCreator {
				view.CreatedBy.Email = u.Email
			}
		}
		if withComments {
			for i := range view.Comments {
				if u, ok := users[view.Comments[i].User.ID]; ok {
					view.Comments[i].User.Name = u.Name
				}
			}
		}
		views = append(views, view)
	}
	return views, nil
}
