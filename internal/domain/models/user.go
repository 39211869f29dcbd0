// internal/domain/models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the identity reference record synced from the external identity
// provider. CollabHub never authenticates credentials itself; it only
// resolves users by id or email and reads profile fields.
//
// NOTE:
//   - notifications holds the user's pending invitations (see Invitation).
//     Invitations are embedded here, not a separate collection, matching
//     the per-user notification inbox the rest of the system consumes.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	Email     string             `bson:"email" json:"email"`
	EmailCI   string             `bson:"email_ci" json:"-"` // lowercase, diacritics-stripped

	Notifications []Invitation `bson:"notifications,omitempty" json:"notifications,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// DisplayName is the "First Last" form used for invitations and messages.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
