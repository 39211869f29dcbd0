// internal/domain/models/filemeta.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileMeta records an uploaded object belonging to a project. The bytes
// live in object storage under FileKey; this record only carries metadata.
// A record whose object has disappeared from storage is dangling and is
// deleted on the next list (self-heal), never surfaced to callers.
type FileMeta struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`
	FileKey     string             `bson:"file_key" json:"file_key"`
	Name        string             `bson:"name" json:"name"`
	Size        int64              `bson:"size" json:"size"`
	ContentType string             `bson:"content_type" json:"content_type"`
	UploadedBy  primitive.ObjectID `bson:"uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
