// Package authz resolves the authenticated principal for a request.
//
// Harbor has no global user roles: authorization is always a membership
// question, answered by the guard package against the members
// collection. This package only answers "who is calling".
package authz

import (
	"net/http"

	"github.com/harborteam/harbor/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's name, user ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, ok is
// false; callers can trust that ok=true means a valid authenticated user.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session. Fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// UserID is UserCtx for callers that only need the id.
func UserID(r *http.Request) (primitive.ObjectID, bool) {
	_, id, ok := UserCtx(r)
	return id, ok
}
