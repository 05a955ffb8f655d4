// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"errors"
	"time"

	"github.com/harborteam/harbor/internal/app/system/paging"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("message not found")
	// ErrBadScope is returned when a scope names both or neither of a
	// channel and a conversation.
	ErrBadScope = errors.New("exactly one of channel or conversation must be set")
	// ErrBadCursor is returned for continuation tokens this service did
	// not issue.
	ErrBadCursor = errors.New("malformed pagination cursor")
)

// Scope addresses a message timeline: a channel or a conversation,
// never both.
type Scope struct {
	ChannelID      *primitive.ObjectID
	ConversationID *primitive.ObjectID
}

// Validate enforces the XOR invariant.
func (sc Scope) Validate() error {
	if (sc.ChannelID == nil) == (sc.ConversationID == nil) {
		return ErrBadScope
	}
	return nil
}

func (sc Scope) filter() bson.M {
	if sc.ChannelID != nil {
		return bson.M{"channel_id": *sc.ChannelID}
	}
	return bson.M{"conversation_id": *sc.ConversationID}
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages")}
}

// Create inserts a message. The caller has already authorized the author
// and validated scope, parent, and attachment.
func (s *Store) Create(ctx context.Context, m models.Message) (models.Message, error) {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now().UTC()
	m.UpdatedAt = nil
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// GetByID retrieves a message by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Message, error) {
	var m models.Message
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Message{}, ErrNotFound
		}
		return models.Message{}, err
	}
	return m, nil
}

// Edit replaces the body and stamps updated_at. CreatedAt is never
// touched, so pagination cursors stay valid across edits.
func (s *Store) Edit(ctx context.Context, id primitive.ObjectID, body string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"body":       body,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a message. Thread replies are left in place; the
// thread projector simply stops counting a parent that no longer exists.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Page is one timeline page plus its continuation.
type Page struct {
	Messages     []models.Message
	Continuation string // opaque cursor for the next (older) page; "" when exhausted
	HasMore      bool
}

// List returns messages newest-first for a scope. With parentID nil it
// returns root messages (the main timeline); with parentID set it
// returns that message's direct replies (the thread view). The cursor
// anchors a (created_at, _id) position, so inserting newer messages
// never shifts rows onto or off an already-fetched page.
func (s *Store) List(ctx context.Context, scope Scope, parentID *primitive.ObjectID, cursorToken string, pageSize int) (Page, error) {
	if err := scope.Validate(); err != nil {
		return Page{}, err
	}
	pageSize = paging.Clamp(pageSize)

	filter := scope.filter()
	if parentID != nil {
		filter["parent_message_id"] = *parentID
	} else {
		filter["parent_message_id"] = nil // roots: field absent
	}

	if cursorToken != "" {
		cur, ok := paging.Decode(cursorToken)
		if !ok {
			return Page{}, ErrBadCursor
		}
		filter["$or"] = cur.Window()["$or"]
	}

	find := options.Find()
	paging.ApplyToFind(find, pageSize)

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return Page{}, err
	}
	defer cur.Close(ctx)

	var rows []models.Message
	if err := cur.All(ctx, &rows); err != nil {
		return Page{}, err
	}

	page := Page{}
	page.HasMore = paging.Trim(&rows, pageSize)
	page.Messages = rows
	if page.HasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		page.Continuation = paging.Encode(last.CreatedAt, last.ID)
	}
	return page, nil
}

// ThreadMeta is the projection the channel view shows on a root message
// that has replies.
type ThreadMeta struct {
	ReplyCount   int64              `bson:"reply_count"`
	LastReplyAt  time.Time          `bson:"last_reply_at"`
	LastMemberID primitive.ObjectID `bson:"last_member_id"`
}

// ThreadMetaFor computes reply count and latest-reply info for each of
// the given parent ids in one aggregation. Parents with no replies are
// absent from the result.
func (s *Store) ThreadMetaFor(ctx context.Context, parentIDs []primitive.ObjectID) (map[primitive.ObjectID]ThreadMeta, error) {
	result := make(map[primitive.ObjectID]ThreadMeta)
	if len(parentIDs) == 0 {
		return result, nil
	}

	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"parent_message_id": bson.M{"$in": parentIDs}}},
		{"$sort": bson.M{"created_at": 1, "_id": 1}},
		{"$group": bson.M{
			"_id":            "$parent_message_id",
			"reply_count":    bson.M{"$sum": 1},
			"last_reply_at":  bson.M{"$last": "$created_at"},
			"last_member_id": bson.M{"$last": "$member_id"},
		}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID           primitive.ObjectID `bson:"_id"`
			ReplyCount   int64              `bson:"reply_count"`
			LastReplyAt  time.Time          `bson:"last_reply_at"`
			LastMemberID primitive.ObjectID `bson:"last_member_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		result[row.ID] = ThreadMeta{
			ReplyCount:   row.ReplyCount,
			LastReplyAt:  row.LastReplyAt,
			LastMemberID: row.LastMemberID,
		}
	}
	return result, cur.Err()
}

// ListIDsByChannel returns the ids of every message in a channel.
// Used by the channel-delete cascade to also remove reactions.
func (s *Store) ListIDsByChannel(ctx context.Context, channelID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"channel_id": channelID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// DeleteByChannel removes all messages in a channel.
func (s *Store) DeleteByChannel(ctx context.Context, channelID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"channel_id": channelID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByMember removes every message a member authored. Used when a
// member leaves or is removed from a workspace.
func (s *Store) DeleteByMember(ctx context.Context, memberID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"member_id": memberID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByWorkspace removes all messages of a workspace.
func (s *Store) DeleteByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"workspace_id": workspaceID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the messages indexes: one keyset index per scope
// kind, plus the reverse-lookup index the thread projector uses.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "channel_id", Value: 1},
				{Key: "parent_message_id", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("idx_message_channel_keyset"),
		},
		{
			Keys: bson.D{
				{Key: "conversation_id", Value: 1},
				{Key: "parent_message_id", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("idx_message_conversation_keyset"),
		},
		{
			Keys:    bson.D{{Key: "parent_message_id", Value: 1}},
			Options: options.Index().SetName("idx_message_parent"),
		},
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}},
			Options: options.Index().SetName("idx_message_workspace"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
