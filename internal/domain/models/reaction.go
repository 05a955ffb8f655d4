// internal/domain/models/reaction.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reaction is one member's emoji reaction to one message. At most one
// document exists per (message_id, member_id, value); toggling the same
// value again removes it. CreatedAt orders reaction groups by first
// occurrence when summarizing.
type Reaction struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	MessageID   primitive.ObjectID `bson:"message_id" json:"message_id"`
	MemberID    primitive.ObjectID `bson:"member_id" json:"member_id"`
	Value       string             `bson:"value" json:"value"` // emoji token
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
