// internal/app/store/invites/invitestore.go

// Package invitestore manages project invitations. Invites live embedded
// in the invitee's users.notifications array; each carries a generated
// id so accept/decline address exactly one entry even when duplicate
// invites to the same project exist.
package invitestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/collabhub/internal/app/system/txn"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	db *mongo.Database
	c  *mongo.Collection // users
}

var (
	ErrInviteNotFound = errors.New("invitation not found")
	// ErrProjectGone means the invited-to project was deleted before the
	// invite was accepted. The stale invite is removed as a side effect.
	ErrProjectGone = errors.New("the invited project no longer exists")
)

func New(db *mongo.Database) *Store {
	return &Store{db: db, c: db.Collection("users")}
}

// Invite delivers a project invitation to the invitee's inbox and
// returns it with its generated id.
func (s *Store) Invite(ctx context.Context, inviteeID primitive.ObjectID, projectID primitive.ObjectID, projectName, invitedBy string) (models.Invitation, error) {
	inv := models.Invitation{
		ID:          uuid.NewString(),
		Type:        models.NotificationInvite,
		ProjectID:   projectID,
		ProjectName: projectName,
		InvitedBy:   invitedBy,
		CreatedAt:   time.Now().UTC(),
	}
	res, err := s.c.UpdateByID(ctx, inviteeID, bson.M{
		"$push": bson.M{"notifications": inv},
	})
	if err != nil {
		return models.Invitation{}, err
	}
	if res.MatchedCount == 0 {
		return models.Invitation{}, mongo.ErrNoDocuments
	}
	return inv, nil
}

// ListForUser returns the user's pending invitations, oldest first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Invitation, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
		return nil, err
	}
	if u.Notifications == nil {
		return []models.Invitation{}, nil
	}
	return u.Notifications, nil
}

// find returns the invitation with the given id from the user's inbox.
func (s *Store) find(ctx context.Context, userID primitive.ObjectID, inviteID string) (models.Invitation, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
		return models.Invitation{}, err
	}
	for _, inv := range u.Notifications {
		if inv.ID == inviteID {
			return inv, nil
		}
	}
	return models.Invitation{}, ErrInviteNotFound
}

// Accept joins the user to the invited project and removes the
// invitation, atomically where the deployment supports transactions.
// Membership uses $addToSet and a missing invite id means the accept
// already went through, so a retried accept is a no-op. If the project
// was deleted in the meantime the stale invite is still removed and
// ErrProjectGone is returned.
func (s *Store) Accept(ctx context.Context, userID primitive.ObjectID, inviteID string) error {
	inv, err := s.find(ctx, userID, inviteID)
	if errors.Is(err, ErrInviteNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	projectGone := false
	err = txn.WithTransaction(ctx, s.db.Client(), func(ctx context.Context) error {
		res, err := s.db.Collection("projects").UpdateByID(ctx, inv.ProjectID, bson.M{
			"$addToSet": bson.M{"members": userID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
		if err != nil {
			return err
		}
		projectGone = res.MatchedCount == 0
		_, err = s.c.UpdateByID(ctx, userID, bson.M{
			"$pull": bson.M{"notifications": bson.M{"id": inviteID}},
		})
		return err
	})
	if err != nil {
		return err
	}
	if projectGone {
		return ErrProjectGone
	}
	return nil
}

// Decline removes the invitation without joining. Declining an
// already-removed invite is a no-op.
func (s *Store) Decline(ctx context.Context, userID primitive.ObjectID, inviteID string) error {
	res, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"notifications": bson.M{"id": inviteID}},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
