// internal/app/store/conversations/conversationstore.go
package conversationstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("conversation not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("conversations")}
}

// Resolve returns the conversation for an unordered member pair,
// creating it on first use. The pair is canonicalized before lookup and
// covered by a unique index, so two participants resolving concurrently
// converge on a single document: the insert loser re-reads the winner.
func (s *Store) Resolve(ctx context.Context, workspaceID, memberA, memberB primitive.ObjectID) (models.Conversation, error) {
	one, two := models.CanonicalPair(memberA, memberB)

	filter := bson.M{
		"workspace_id":  workspaceID,
		"member_one_id": one,
		"member_two_id": two,
	}

	var conv models.Conversation
	err := s.c.FindOne(ctx, filter).Decode(&conv)
	if err == nil {
		return conv, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Conversation{}, err
	}

	conv = models.Conversation{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		MemberOneID: one,
		MemberTwoID: two,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, conv); err != nil {
		if wafflemongo.IsDup(err) {
			// Lost the race; the other participant created it first.
			var existing models.Conversation
			if ferr := s.c.FindOne(ctx, filter).Decode(&existing); ferr != nil {
				return models.Conversation{}, ferr
			}
			return existing, nil
		}
		return models.Conversation{}, err
	}
	return conv, nil
}

// GetByID retrieves a conversation by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Conversation, error) {
	var conv models.Conversation
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Conversation{}, ErrNotFound
		}
		return models.Conversation{}, err
	}
	return conv, nil
}

// DeleteByMember removes every conversation a member participates in.
func (s *Store) DeleteByMember(ctx context.Context, memberID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"member_one_id": memberID},
		bson.M{"member_two_id": memberID},
	}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByWorkspace removes all conversations of a workspace.
func (s *Store) DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"workspace_id": workspaceID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the conversations indexes. The unique pair index
// is the convergence point for concurrent first-resolves.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "workspace_id", Value: 1},
				{Key: "member_one_id", Value: 1},
				{Key: "member_two_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_conversation_pair"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
