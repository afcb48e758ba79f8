package config

import (
	"context"
	"fmt"
	"time"

	"publicseva-be/models"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection  = "users"
	IssuesCollection = "issues"
)

// ConnectDB connects to MongoDB, verifies the connection and ensures indexes.
func ConnectDB(cfg MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("pinging MongoDB: %w", err)
	}
	log.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")

	db := client.Database(cfg.Database)
	if err := models.EnsureUserIndexes(db.Collection(UsersCollection)); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("creating user indexes: %w", err)
	}
	if err := models.EnsureIssueIndexes(db.Collection(IssuesCollection)); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("creating issue indexes: %w", err)
	}
	return client, db, nil
}
