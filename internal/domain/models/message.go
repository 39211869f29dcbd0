// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is an append-only chat entry. Messages are never edited or
// deleted (they disappear only when the owning project is destroyed).
//
// Ordering: Seq is allocated from a per-chat counter at send time, so
// messages within a chat are totally ordered by Seq and Timestamp is
// non-decreasing along that order. Client-supplied timestamps are never
// trusted; both fields are assigned server-side.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID  primitive.ObjectID `bson:"project_id" json:"project_id"`
	ChatID     string             `bson:"chat_id" json:"chat_id"` // "general" or Chat ObjectID hex
	SenderID   primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	SenderName string             `bson:"sender_name" json:"sender_name"` // denormalized at send time
	Text       string             `bson:"text" json:"text"`
	Seq        int64              `bson:"seq" json:"seq"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}
