// internal/domain/models/conversation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is a direct-message thread between exactly two members of
// the same workspace. Identity is a function of the unordered member
// pair: MemberOneID/MemberTwoID are always stored in canonical (hex
// ascending) order and covered by a unique index, so resolving the same
// pair twice returns the same document.
type Conversation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	MemberOneID primitive.ObjectID `bson:"member_one_id" json:"member_one_id"`
	MemberTwoID primitive.ObjectID `bson:"member_two_id" json:"member_two_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Includes reports whether the given member participates in the
// conversation.
func (c Conversation) Includes(memberID primitive.ObjectID) bool {
	return c.MemberOneID == memberID || c.MemberTwoID == memberID
}

// CanonicalPair returns the two member ids in canonical storage order.
func CanonicalPair(a, b primitive.ObjectID) (primitive.ObjectID, primitive.ObjectID) {
	if a.Hex() > b.Hex() {
		return b, a
	}
	return a, b
}
