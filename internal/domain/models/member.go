// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Member binds a user to a workspace with a role. Exactly one document
// exists per (workspace_id, user_id) pair, enforced by a unique index.
//
// Messages, reactions, and conversations reference members (not users)
// so that identity is workspace-scoped, matching how the rest of the
// system authorizes everything through membership.
type Member struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role        string             `bson:"role" json:"role"` // "admin" | "member"
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// IsAdmin reports whether the member holds the admin role.
func (m Member) IsAdmin() bool { return m.Role == RoleAdmin }
