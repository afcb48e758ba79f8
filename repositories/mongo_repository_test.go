package repositories

import (
	"context"
	"testing"
	"time"

	"publicseva-be/apperrors"
	"publicseva-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func toDoc(t *testing.T, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func ns(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &models.User{Name: "Asha", Email: "asha@example.com"}
		require.NoError(mt, NewUserRepository(mt.Coll).Create(context.Background(), u))
		assert.False(mt, u.ID.IsZero())
	})

	mt.Run("duplicate email is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		err := NewUserRepository(mt.Coll).Create(context.Background(), &models.User{Email: "asha@example.com"})
		assert.Equal(mt, apperrors.KindConflict, apperrors.KindOf(err))
	})

	mt.Run("find by email", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		doc := toDoc(mt.T, models.User{ID: id, Name: "Asha", Email: "asha@example.com", Role: models.RoleCitizen})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, doc))

		got, err := NewUserRepository(mt.Coll).FindByEmail(context.Background(), "asha@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, got.ID)
		assert.Equal(mt, models.RoleCitizen, got.Role)
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		_, err := NewUserRepository(mt.Coll).FindByID(context.Background(), primitive.NewObjectID())
		assert.Equal(mt, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	mt.Run("find by ids", func(mt *mtest.T) {
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			toDoc(mt.T, models.User{ID: a, Name: "A"}),
			toDoc(mt.T, models.User{ID: b, Name: "B"}),
		))

		got, err := NewUserRepository(mt.Coll).FindByIDs(context.Background(), []primitive.ObjectID{a, b})
		require.NoError(mt, err)
		assert.Equal(mt, "A", got[a].Name)
		assert.Equal(mt, "B", got[b].Name)
	})
}

func TestMongoIssueRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	sample := func() models.Issue {
		now := time.Now().UTC().Truncate(time.Millisecond)
		return models.Issue{
			ID:        primitive.NewObjectID(),
			Title:     "Overflowing bin",
			Location:  models.NewPoint(72.87, 19.07),
			Status:    models.StatusUnsolved,
			CreatedBy: primitive.NewObjectID(),
			Votes:     []primitive.ObjectID{},
			Comments:  []models.Comment{},
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	mt.Run("list", func(mt *mtest.T) {
		a, b := sample(), sample()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, toDoc(mt.T, a), toDoc(mt.T, b)))

		got, err := NewIssueRepository(mt.Coll).List(context.Background(), IssueFilter{Status: models.StatusUnsolved})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, a.ID, got[0].ID)
	})

	mt.Run("list empty is not nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		got, err := NewIssueRepository(mt.Coll).List(context.Background(), IssueFilter{})
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
	})

	mt.Run("add vote returns updated issue", func(mt *mtest.T) {
		issue := sample()
		voter := primitive.NewObjectID()
		issue.Votes = []primitive.ObjectID{voter}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toDoc(mt.T, issue)}))

		got, err := NewIssueRepository(mt.Coll).AddVote(context.Background(), issue.ID, voter)
		require.NoError(mt, err)
		assert.True(mt, got.HasVoted(voter))
	})

	mt.Run("add vote on missing issue", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewIssueRepository(mt.Coll).AddVote(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		assert.Equal(mt, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	mt.Run("add comment on missing issue", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := NewIssueRepository(mt.Coll).AddComment(context.Background(), primitive.NewObjectID(), models.Comment{Text: "x"})
		assert.Equal(mt, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	mt.Run("update status", func(mt *mtest.T) {
		issue := sample()
		issue.Status = models.StatusInProgress
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toDoc(mt.T, issue)}))

		got, err := NewIssueRepository(mt.Coll).UpdateStatus(context.Background(), issue.ID, models.StatusUnsolved, models.StatusInProgress)
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusInProgress, got.Status)
	})

	mt.Run("update status lost race", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: int32(1)}}),
		)

		_, err := NewIssueRepository(mt.Coll).UpdateStatus(context.Background(), primitive.NewObjectID(), models.StatusUnsolved, models.StatusInProgress)
		assert.ErrorIs(mt, err, ErrStatusChanged)
	})

	mt.Run("update status on deleted issue", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch),
		)

		_, err := NewIssueRepository(mt.Coll).UpdateStatus(context.Background(), primitive.NewObjectID(), models.StatusUnsolved, models.StatusInProgress)
		assert.NotErrorIs(mt, err, ErrStatusChanged)
		assert.Equal(mt, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := NewIssueRepository(mt.Coll).Delete(context.Background(), primitive.NewObjectID())
		assert.Equal(mt, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, NewIssueRepository(mt.Coll).Delete(context.Background(), primitive.NewObjectID()))
	})

	mt.Run("count by status", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "UNSOLVED"}, {Key: "count", Value: int64(4)}},
			bson.D{{Key: "_id", Value: "RESOLVED"}, {Key: "count", Value: int64(1)}},
		))

		counts, err := NewIssueRepository(mt.Coll).CountByStatus(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, int64(5), counts.Total)
		assert.Equal(mt, int64(4), counts.ByStatus[models.StatusUnsolved])
		assert.Equal(mt, int64(0), counts.ByStatus[models.StatusInProgress])
		assert.Equal(mt, int64(1), counts.ByStatus[models.StatusResolved])
	})
}
