// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Room kinds provisioned for every project. Each kind maps to a separate
// template on the call-provisioning service.
const (
	RoomDefault    = "default"
	RoomTranscript = "transcript"
	RoomFull       = "full"
)

// RoomKinds lists every kind in provisioning order.
var RoomKinds = []string{RoomDefault, RoomTranscript, RoomFull}

// Rooms holds the externally provisioned call-room ids for a project.
// Provisioning is asynchronous and per-room failures are tolerated, so any
// field may stay nil for the life of the project. Readers must cope.
type Rooms struct {
	Default    *string `bson:"default" json:"default"`
	Transcript *string `bson:"transcript" json:"transcript"`
	Full       *string `bson:"full" json:"full"`
}

// ByKind returns the room id for a kind, or nil when unprovisioned.
func (r Rooms) ByKind(kind string) *string {
	switch kind {
	case RoomDefault:
		return r.Default
	case RoomTranscript:
		return r.Transcript
	case RoomFull:
		return r.Full
	}
	return nil
}

// Project is the root collaboration entity.
//
// Invariants:
//   - Creator is immutable and always present in Members.
//   - Members is never empty while the project exists.
type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Deadline    *time.Time           `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Creator     primitive.ObjectID   `bson:"creator" json:"creator"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	Rooms       Rooms                `bson:"rooms" json:"rooms"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether uid is in the members set.
func (p Project) HasMember(uid primitive.ObjectID) bool {
	for _, m := range p.Members {
		if m == uid {
			return true
		}
	}
	return false
}
