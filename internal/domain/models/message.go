// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single chat message. Exactly one of ChannelID or
// ConversationID is set (the store rejects anything else). A message
// with ParentMessageID set is a thread reply; thread nesting depth is
// capped at one, so a parent is always a root message.
//
// UpdatedAt is nil until the first edit. CreatedAt never changes, which
// keeps keyset pagination cursors stable across edits.
type Message struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	WorkspaceID     primitive.ObjectID  `bson:"workspace_id" json:"workspace_id"`
	ChannelID       *primitive.ObjectID `bson:"channel_id,omitempty" json:"channel_id,omitempty"`
	ConversationID  *primitive.ObjectID `bson:"conversation_id,omitempty" json:"conversation_id,omitempty"`
	ParentMessageID *primitive.ObjectID `bson:"parent_message_id,omitempty" json:"parent_message_id,omitempty"`
	MemberID        primitive.ObjectID  `bson:"member_id" json:"member_id"`
	Body            string              `bson:"body" json:"body"`
	AttachmentID    string              `bson:"attachment_id,omitempty" json:"attachment_id,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// IsRoot reports whether the message is a root (non-reply) message.
func (m Message) IsRoot() bool { return m.ParentMessageID == nil }
