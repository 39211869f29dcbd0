// internal/domain/models/invitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationInvite is the only notification type carried today.
const NotificationInvite = "invite"

// Invitation is a pending project invite embedded in the invitee's
// notification inbox (users.notifications).
//
// Each invitation carries its own generated id so accept/decline remove
// exactly one entry. Duplicate invites to the same project may coexist;
// they are distinct by id, never matched structurally.
//
// Lifecycle: Pending until accepted (invitee joins members, entry removed)
// or declined (entry removed, no side effect). There is no expiry.
type Invitation struct {
	ID          string             `bson:"id" json:"id"`
	Type        string             `bson:"type" json:"type"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`
	ProjectName string             `bson:"project_name" json:"project_name"`
	InvitedBy   string             `bson:"invited_by" json:"invited_by"` // inviter display name
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
