package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		Email:      email,
		EmailCI:    text.Fold(email),
		Name:       name,
		AuthMethod: "password",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("create test user: %v", err)
	}
	return user
}

// CreateWorkspace inserts a test workspace owned by the given user.
func (f *Fixtures) CreateWorkspace(ctx context.Context, name string, ownerUserID primitive.ObjectID) models.Workspace {
	f.t.Helper()

	now := time.Now().UTC()
	ws := models.Workspace{
		ID:          primitive.NewObjectID(),
		Name:        name,
		OwnerUserID: ownerUserID,
		JoinCode:    "abc123",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("workspaces").InsertOne(ctx, ws); err != nil {
		f.t.Fatalf("create test workspace: %v", err)
	}
	return ws
}

// CreateMember inserts a membership binding the user to the workspace.
func (f *Fixtures) CreateMember(ctx context.Context, workspaceID, userID primitive.ObjectID, role string) models.Member {
	f.t.Helper()

	m := models.Member{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("create test member: %v", err)
	}
	return m
}

// CreateChannel inserts a channel in the workspace.
func (f *Fixtures) CreateChannel(ctx context.Context, workspaceID primitive.ObjectID, name string) models.Channel {
	f.t.Helper()

	now := time.Now().UTC()
	ch := models.Channel{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		Name:        name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("channels").InsertOne(ctx, ch); err != nil {
		f.t.Fatalf("create test channel: %v", err)
	}
	return ch
}

// CreateConversation inserts a DM conversation between two members. The
// pair is stored in canonical order, matching the store's behavior.
func (f *Fixtures) CreateConversation(ctx context.Context, workspaceID, memberA, memberB primitive.ObjectID) models.Conversation {
	f.t.Helper()

	one, two := models.CanonicalPair(memberA, memberB)
	c := models.Conversation{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		MemberOneID: one,
		MemberTwoID: two,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("conversations").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("create test conversation: %v", err)
	}
	return c
}

// CreateChannelMessage inserts a root message in a channel.
func (f *Fixtures) CreateChannelMessage(ctx context.Context, workspaceID, channelID, memberID primitive.ObjectID, body string) models.Message {
	f.t.Helper()
	return f.insertMessage(ctx, models.Message{
		WorkspaceID: workspaceID,
		ChannelID:   &channelID,
		MemberID:    memberID,
		Body:        body,
	})
}

// CreateReply inserts a thread reply to the given root message.
func (f *Fixtures) CreateReply(ctx context.Context, parent models.Message, memberID primitive.ObjectID, body string) models.Message {
	f.t.Helper()
	parentID := parent.ID
	return f.insertMessage(ctx, models.Message{
		WorkspaceID:     parent.WorkspaceID,
		ChannelID:       parent.ChannelID,
		ConversationID:  parent.ConversationID,
		ParentMessageID: &parentID,
		MemberID:        memberID,
		Body:            body,
	})
}

func (f *Fixtures) insertMessage(ctx context.Context, m models.Message) models.Message {
	f.t.Helper()

	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now().UTC()
	if _, err := f.db.Collection("messages").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("create test message: %v", err)
	}
	return m
}
