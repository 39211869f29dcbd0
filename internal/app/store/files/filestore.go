// internal/app/store/files/filestore.go
package filestore

import (
	"context"
	"time"

	"github.com/dalemusser/collabhub/internal/app/system/objstore"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Store struct {
	c       *mongo.Collection
	objects objstore.Store
	log     *zap.Logger
}

func New(db *mongo.Database, objects objstore.Store, logger *zap.Logger) *Store {
	return &Store{c: db.Collection("files"), objects: objects, log: logger}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.FileMeta, error) {
	var fm models.FileMeta
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&fm); err != nil {
		return models.FileMeta{}, err
	}
	return fm, nil
}

// Insert records metadata for an object already uploaded to storage.
func (s *Store) Insert(ctx context.Context, fm models.FileMeta) (models.FileMeta, error) {
	fm.ID = primitive.NewObjectID()
	fm.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, fm); err != nil {
		return models.FileMeta{}, err
	}
	return fm, nil
}

// ListForProject returns a project's files, newest first. Records whose
// object has vanished from storage are deleted on the way through and
// never returned; a storage check error keeps the record and includes it,
// so a flaky backend does not eat metadata.
func (s *Store) ListForProject(ctx context.Context, projectID primitive.ObjectID) ([]models.FileMeta, error) {
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var all []models.FileMeta
	if err := cur.All(ctx, &all); err != nil {
		return nil, err
	}

	out := make([]models.FileMeta, 0, len(all))
	for _, fm := range all {
		exists, err := s.objects.Exists(ctx, fm.FileKey)
		if err != nil {
			s.log.Warn("object existence check failed, keeping record",
				zap.String("file_key", fm.FileKey),
				zap.Error(err))
			out = append(out, fm)
			continue
		}
		if !exists {
			s.log.Info("removing dangling file record",
				zap.String("project_id", projectID.Hex()),
				zap.String("file_key", fm.FileKey))
			if _, err := s.c.DeleteOne(ctx, bson.M{"_id": fm.ID}); err != nil {
				s.log.Warn("failed to remove dangling file record", zap.Error(err))
			}
			continue
		}
		out = append(out, fm)
	}
	return out, nil
}

// Delete removes the stored object and its metadata. The object goes
// first; if that fails the record stays so the delete can be retried.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	fm, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, fm.FileKey); err != nil {
		return err
	}
	_, err = s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
