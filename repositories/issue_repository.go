package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"publicseva-be/apperrors"
	"publicseva-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoIssueRepository struct {
	collection *mongo.Collection
}

func NewIssueRepository(collection *mongo.Collection) IssueRepository {
	return &mongoIssueRepository{collection: collection}
}

func (r *mongoIssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("inserting issue: %w", err)
	}
	return nil
}

func (r *mongoIssueRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		return nil, notFoundOr(err, "finding issue")
	}
	return &issue, nil
}

func (r *mongoIssueRepository) List(ctx context.Context, filter IssueFilter) ([]models.Issue, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if !filter.CreatedBy.IsZero() {
		query["createdBy"] = filter.CreatedBy
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, query, opts)
}

func (r *mongoIssueRepository) Near(ctx context.Context, point models.GeoPoint, maxDistance float64, limit int64) ([]models.Issue, error) {
	query := bson.M{
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    point,
				"$maxDistance": maxDistance,
			},
		},
	}
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, query, opts)
}

func (r *mongoIssueRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Issue, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("finding issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decoding issues: %w", err)
	}
	return issues, nil
}

func (r *mongoIssueRepository) AddVote(ctx context.Context, id, userID primitive.ObjectID) (*models.Issue, error) {
	return r.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"votes": userID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

func (r *mongoIssueRepository) RemoveVote(ctx context.Context, id, userID primitive.ObjectID) (*models.Issue, error) {
	return r.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"votes": userID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (r *mongoIssueRepository) AddComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("adding comment: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("Issue not found")
	}
	return nil
}

func (r *mongoIssueRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.IssueStatus) (*models.Issue, error) {
	issue, err := r.findAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{
		"$set": bson.M{"status": to, "updatedAt": time.Now()},
	})
	if !apperrors.Is(err, apperrors.KindNotFound) {
		return issue, err
	}
	// Nothing matched: either the issue is gone or its status moved on.
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("checking issue: %w", err)
	}
	if n == 0 {
		return nil, apperrors.NotFound("Issue not found")
	}
	return nil, ErrStatusChanged
}

func (r *mongoIssueRepository) UpdateDetails(ctx context.Context, id primitive.ObjectID, details IssueDetails) (*models.Issue, error) {
	set := bson.M{"updatedAt": time.Now()}
	if details.Title != nil {
		set["title"] = *details.Title
	}
	if details.Description != nil {
		set["description"] = *details.Description
	}
	return r.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *mongoIssueRepository) findAndUpdate(ctx context.Context, filter, update bson.M) (*models.Issue, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&issue)
	if err != nil {
		return nil, notFoundOr(err, "updating issue")
	}
	return &issue, nil
}

func (r *mongoIssueRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting issue: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFound("Issue not found")
	}
	return nil
}

func (r *mongoIssueRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	pipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$status",
				"count": bson.M{"$sum": 1},
			},
		},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return models.StatusCounts{}, fmt.Errorf("aggregating statuses: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Status models.IssueStatus `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return models.StatusCounts{}, fmt.Errorf("decoding status counts: %w", err)
	}

	counts := newStatusCounts()
	for _, g := range groups {
		counts.ByStatus[g.Status] += g.Count
		counts.Total += g.Count
	}
	return counts, nil
}

func newStatusCounts() models.StatusCounts {
	counts := models.StatusCounts{ByStatus: make(map[models.IssueStatus]int64, len(models.AllStatuses))}
	for _, s := range models.AllStatuses {
		counts.ByStatus[s] = 0
	}
	return counts
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NotFound("Issue not found")
	}
	return fmt.Errorf("%s: %w", op, err)
}
