// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/collabhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the current user's display name, Mongo ObjectID, and a
// found flag. If no user is present in context or the user id is
// malformed, it returns "", NilObjectID, false — so ok=true always means
// a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user id in session; fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}
