// internal/app/policy/projectpolicy.go
package projectpolicy

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsMember reports whether the user is in the project's members list
// according to the authoritative projects collection.
// Returns an error if the database check fails, allowing callers to
// distinguish between "not authorized" (false, nil) and "database
// error" (false, err).
func IsMember(ctx context.Context, db *mongo.Database, projectID, userID primitive.ObjectID) (bool, error) {
	c := db.Collection("projects")
	n, err := c.CountDocuments(ctx, bson.M{
		"_id":     projectID,
		"members": userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsCreator reports whether the user created the project. Channel
// management and project deletion are creator-only.
func IsCreator(ctx context.Context, db *mongo.Database, projectID, userID primitive.ObjectID) (bool, error) {
	c := db.Collection("projects")
	n, err := c.CountDocuments(ctx, bson.M{
		"_id":     projectID,
		"creator": userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
