// internal/domain/models/workspace.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workspace is the top-level tenant container. Channels, members,
// conversations, messages, and reactions all belong to exactly one
// workspace via their workspace_id field.
//
// JoinCode is a 6-character lowercase alphanumeric shared secret.
// Regenerating it invalidates the previous code immediately; the code is
// stored in the clear because it grants member (not admin) access and is
// meant to be pasted around by workspace admins.
type Workspace struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	OwnerUserID primitive.ObjectID `bson:"owner_user_id" json:"owner_user_id"`
	JoinCode    string             `bson:"join_code" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
