// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/collabhub/internal/app/system/txn"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	db *mongo.Database
	c  *mongo.Collection
}

var (
	// ErrCreatorCannotLeave means the project creator tried to leave;
	// creators delete the project instead.
	ErrCreatorCannotLeave = errors.New("the project creator cannot leave the project")
)

func New(db *mongo.Database) *Store {
	return &Store{db: db, c: db.Collection("projects")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Create inserts a project. The creator is always a member; rooms start
// unprovisioned and are filled in asynchronously.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	if !p.HasMember(p.Creator) {
		p.Members = append([]primitive.ObjectID{p.Creator}, p.Members...)
	}
	p.Rooms = models.Rooms{}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// ListForUser returns every project the user is a member of, newest
// first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	cur, err := s.c.Find(ctx, bson.M{"members": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// InfoUpdate carries a partial update of a project's descriptive
// fields. Nil fields are left untouched; ClearDeadline removes the
// deadline regardless of Deadline.
type InfoUpdate struct {
	Name          *string
	Description   *string
	Deadline      *time.Time
	ClearDeadline bool
}

func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, upd InfoUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.ClearDeadline {
		unset["deadline"] = ""
	} else if upd.Deadline != nil {
		set["deadline"] = *upd.Deadline
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddMember adds a user to the members set. Adding an existing member
// is a no-op, so retried invite accepts stay safe.
func (s *Store) AddMember(ctx context.Context, projectID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, projectID, bson.M{
		"$addToSet": bson.M{"members": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Leave removes a non-creator member from the project. Leaving twice is
// a no-op. The creator cannot leave; the project would be orphaned.
func (s *Store) Leave(ctx context.Context, projectID, userID primitive.ObjectID) error {
	p, err := s.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.Creator == userID {
		return ErrCreatorCannotLeave
	}
	_, err = s.c.UpdateByID(ctx, projectID, bson.M{
		"$pull": bson.M{"members": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// SetRoom records an externally provisioned room id under rooms.<kind>.
func (s *Store) SetRoom(ctx context.Context, projectID primitive.ObjectID, kind, roomID string) error {
	switch kind {
	case models.RoomDefault, models.RoomTranscript, models.RoomFull:
	default:
		return errors.New("unknown room kind: " + kind)
	}
	res, err := s.c.UpdateByID(ctx, projectID, bson.M{
		"$set": bson.M{"rooms." + kind: roomID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a project and everything hanging off it: tasks, chats,
// messages, sequence counters, file metadata, and any pending invites
// referencing the project. Runs in a transaction where the deployment
// supports one; on standalone Mongo the dependents go first and the
// project document last, so an interrupted cascade can be re-run.
func (s *Store) Delete(ctx context.Context, projectID primitive.ObjectID) error {
	db := s.db
	return txn.WithTransaction(ctx, db.Client(), func(ctx context.Context) error {
		if _, err := db.Collection("tasks").DeleteMany(ctx, bson.M{"project_id": projectID}); err != nil {
			return err
		}
		if _, err := db.Collection("messages").DeleteMany(ctx, bson.M{"project_id": projectID}); err != nil {
			return err
		}
		if _, err := db.Collection("chat_counters").DeleteMany(ctx, bson.M{"project_id": projectID}); err != nil {
			return err
		}
		if _, err := db.Collection("chats").DeleteMany(ctx, bson.M{"project_id": projectID}); err != nil {
			return err
		}
		if _, err := db.Collection("files").DeleteMany(ctx, bson.M{"project_id": projectID}); err != nil {
			return err
		}
		// Withdraw pending invites to the deleted project from every inbox.
		if _, err := db.Collection("users").UpdateMany(ctx,
			bson.M{"notifications.project_id": projectID},
			bson.M{"$pull": bson.M{"notifications": bson.M{"project_id": projectID}}},
		); err != nil {
			return err
		}
		_, err := db.Collection("projects").DeleteOne(ctx, bson.M{"_id": projectID})
		return err
	})
}
