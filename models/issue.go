package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueStatus enum
type IssueStatus string

const (
	StatusUnsolved   IssueStatus = "UNSOLVED"
	StatusInProgress IssueStatus = "IN_PROGRESS"
	StatusResolved   IssueStatus = "RESOLVED"
)

// AllStatuses in workflow order.
var AllStatuses = []IssueStatus{StatusUnsolved, StatusInProgress, StatusResolved}

var statusFlow = map[IssueStatus][]IssueStatus{
	StatusUnsolved:   {StatusInProgress},
	StatusInProgress: {StatusResolved},
	StatusResolved:   {},
}

func (s IssueStatus) Valid() bool {
	_, ok := statusFlow[s]
	return ok
}

// Successors returns the statuses s may move to.
func (s IssueStatus) Successors() []IssueStatus {
	return statusFlow[s]
}

// CanTransitionTo reports whether target is an allowed successor of s.
func (s IssueStatus) CanTransitionTo(target IssueStatus) bool {
	for _, next := range statusFlow[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Comment on an issue
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Issue represents a waste complaint reported by a citizen
type Issue struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Images      []string             `bson:"images" json:"images"`
	Location    GeoPoint             `bson:"location" json:"location"`
	Address     string               `bson:"address,omitempty" json:"address,omitempty"`
	Status      IssueStatus          `bson:"status" json:"status"`
	CreatedBy   primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	Votes       []primitive.ObjectID `bson:"votes" json:"votes"`
	Comments    []Comment            `bson:"comments" json:"comments"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasVoted reports whether userID is in the vote set.
func (i *Issue) HasVoted(userID primitive.ObjectID) bool {
	for _, v := range i.Votes {
		if v == userID {
			return true
		}
	}
	return false
}

// CommentView is a comment with its author expanded.
type CommentView struct {
	ID        primitive.ObjectID `json:"id"`
	User      UserRef            `json:"user"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"createdAt"`
}

// IssueView is an issue with its user references expanded for responses.
type IssueView struct {
	ID          primitive.ObjectID   `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Images      []string             `json:"images"`
	Location    GeoPoint             `json:"location"`
	Address     string               `json:"address,omitempty"`
	Status      IssueStatus          `json:"status"`
	CreatedBy   UserRef              `json:"createdBy"`
	Votes       []primitive.ObjectID `json:"votes"`
	TotalVotes  int                  `json:"totalVotes"`
	Comments    []CommentView        `json:"comments"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// NewIssueView copies an issue into a view with unexpanded references.
func NewIssueView(issue Issue) IssueView {
	votes := issue.Votes
	if votes == nil {
		votes = []primitive.ObjectID{}
	}
	images := issue.Images
	if images == nil {
		images = []string{}
	}
	comments := make([]CommentView, 0, len(issue.Comments))
	for _, c := range issue.Comments {
		comments = append(comments, CommentView{
			ID:        c.ID,
			User:      UserRef{ID: c.User},
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return IssueView{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Images:      images,
		Location:    issue.Location,
		Address:     issue.Address,
		Status:      issue.Status,
		CreatedBy:   UserRef{ID: issue.CreatedBy},
		Votes:       votes,
		TotalVotes:  len(votes),
		Comments:    comments,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}

// StatusCounts summarises issues per status.
type StatusCounts struct {
	Total    int64                 `json:"total"`
	ByStatus map[IssueStatus]int64 `json:"byStatus"`
}
