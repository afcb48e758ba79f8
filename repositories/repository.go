package repositories

import (
	"context"
	"errors"

	"publicseva-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrStatusChanged is returned when a conditional status update finds the issue
// no longer in the expected status.
var ErrStatusChanged = errors.New("issue status changed concurrently")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindByIDs returns the users found, keyed by id. Missing ids are skipped.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
}

// IssueFilter narrows List; zero values mean "any".
type IssueFilter struct {
	Status    models.IssueStatus
	CreatedBy primitive.ObjectID
}

// IssueDetails holds moderation edits; nil fields are left untouched.
type IssueDetails struct {
	Title       *string
	Description *string
}

type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	// List returns matching issues newest first.
	List(ctx context.Context, filter IssueFilter) ([]models.Issue, error)
	// Near returns issues within maxDistance metres of point, nearest first.
	Near(ctx context.Context, point models.GeoPoint, maxDistance float64, limit int64) ([]models.Issue, error)
	AddVote(ctx context.Context, id, userID primitive.ObjectID) (*models.Issue, error)
	RemoveVote(ctx context.Context, id, userID primitive.ObjectID) (*models.Issue, error)
	AddComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error
	// UpdateStatus moves the issue from -> to in one conditional write.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.IssueStatus) (*models.Issue, error)
	UpdateDetails(ctx context.Context, id primitive.ObjectID, details IssueDetails) (*models.Issue, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
}
