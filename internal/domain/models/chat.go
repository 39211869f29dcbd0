// internal/domain/models/chat.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeneralChatID is the fixed id of the implicit per-project "general"
// channel. It is never persisted as a chats row; listing synthesizes it
// and message records reference it by this id.
const GeneralChatID = "general"

// Chat is a named channel inside a project. The "general" channel is
// implicit and permanent; only explicitly created channels live in the
// chats collection.
type Chat struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Channel is the read model returned by channel listings: the synthesized
// "general" entry plus each persisted Chat.
type Channel struct {
	ID        string             `json:"id"` // "general" or a Chat ObjectID hex
	ProjectID primitive.ObjectID `json:"project_id"`
	Name      string             `json:"name"`
	Implicit  bool               `json:"implicit"`
	CreatedAt *time.Time         `json:"created_at,omitempty"`
}
