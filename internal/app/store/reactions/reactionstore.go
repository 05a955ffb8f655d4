// internal/app/store/reactions/reactionstore.go
package reactionstore

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

var ErrNotFound = errors.New("reaction not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reactions")}
}

// Toggle flips one member's reaction of the given value on a message:
// removing it if present, adding it otherwise. The delete-then-insert
// order plus the unique (message_id, member_id, value) index keeps
// concurrent double-taps converging on at most one row.
func (s *Store) Toggle(ctx context.Context, workspaceID, messageID, memberID primitive.ObjectID, value string) (added bool, err error) {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"message_id": messageID,
		"member_id":  memberID,
		"value":      value,
	})
	if err != nil {
		return false, err
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	_, err = s.c.InsertOne(ctx, models.Reaction{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		MessageID:   messageID,
		MemberID:    memberID,
		Value:       value,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			// A concurrent toggle won the insert. Same end state.
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// Summary is the aggregate shown on one message: per distinct value, the
// count and the members who reacted.
type Summary struct {
	Value     string
	Count     int
	MemberIDs []primitive.ObjectID
}

// SummaryFor groups reactions for a batch of messages. Values are
// ordered by first occurrence (oldest reaction first), so an emoji keeps
// its slot in the row as counts change.
func (s *Store) SummaryFor(ctx context.Context, messageIDs []primitive.ObjectID) (map[primitive.ObjectID][]Summary, error) {
	result := make(map[primitive.ObjectID][]Summary)
	if len(messageIDs) == 0 {
		return result, nil
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"message_id": bson.M{"$in": messageIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var r models.Reaction
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		row := result[r.MessageID]
		idx := -1
		for i := range row {
			if row[i].Value == r.Value {
				idx = i
				break
			}
		}
		if idx < 0 {
			row = append(row, Summary{Value: r.Value})
			idx = len(row) - 1
		}
		row[idx].Count++
		row[idx].MemberIDs = append(row[idx].MemberIDs, r.MemberID)
		result[r.MessageID] = row
	}
	return result, cur.Err()
}

// DeleteByMessage removes all reactions on one message.
func (s *Store) DeleteByMessage(ctx context.Context, messageID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"message_id": messageID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByMessages removes reactions on a batch of messages, as when a
// channel is deleted.
func (s *Store) DeleteByMessages(ctx context.Context, messageIDs []primitive.ObjectID) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"message_id": bson.M{"$in": messageIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByMember removes every reaction a member placed.
func (s *Store) DeleteByMember(ctx context.Context, memberID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"member_id": memberID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByWorkspace removes all reactions of a workspace.
func (s *Store) DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"workspace_id": workspaceID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the unique toggle index plus lookups.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "message_id", Value: 1},
				{Key: "member_id", Value: 1},
				{Key: "value", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_reaction_toggle"),
		},
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}},
			Options: options.Index().SetName("idx_reaction_workspace"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
