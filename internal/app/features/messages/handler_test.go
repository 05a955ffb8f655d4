package messages_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/harborteam/harbor/internal/app/features/messages"
	channelstore "github.com/harborteam/harbor/internal/app/store/channels"
	conversationstore "github.com/harborteam/harbor/internal/app/store/conversations"
	memberstore "github.com/harborteam/harbor/internal/app/store/members"
	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	reactionstore "github.com/harborteam/harbor/internal/app/store/reactions"
	uploadstore "github.com/harborteam/harbor/internal/app/store/uploads"
	userstore "github.com/harborteam/harbor/internal/app/store/users"
	"github.com/harborteam/harbor/internal/app/system/blob"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/app/system/realtime"
	"github.com/harborteam/harbor/internal/domain/models"
	"github.com/harborteam/harbor/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type testEnv struct {
	handler  *messages.Handler
	hub      *realtime.Hub
	db       *mongo.Database
	blobs    *blob.DiskStore
	fixtures *testutil.Fixtures

	alice models.User
	bob   models.User

	workspace   models.Workspace
	aliceMember models.Member
	bobMember   models.Member
	channel     models.Channel
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ms := memberstore.New(db)
	hub := realtime.NewHub(zap.NewNop())
	blobs, err := blob.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	h := messages.NewHandler(
		messagestore.New(db),
		reactionstore.New(db),
		ms,
		userstore.New(db),
		channelstore.New(db),
		conversationstore.New(db),
		uploadstore.New(db),
		blobs,
		guard.New(ms),
		hub,
		zap.NewNop(),
	)

	env := &testEnv{handler: h, hub: hub, db: db, blobs: blobs, fixtures: fixtures}
	env.alice = fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	env.bob = fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	env.workspace = fixtures.CreateWorkspace(ctx, "Acme", env.alice.ID)
	env.aliceMember = fixtures.CreateMember(ctx, env.workspace.ID, env.alice.ID, models.RoleAdmin)
	env.bobMember = fixtures.CreateMember(ctx, env.workspace.ID, env.bob.ID, models.RoleMember)
	env.channel = fixtures.CreateChannel(ctx, env.workspace.ID, "general")
	return env
}

func TestHandlePost_ToChannel(t *testing.T) {
	env := newTestEnv(t)

	sub := env.hub.Subscribe(realtime.ChannelTopic(env.channel.ID))
	defer env.hub.Unsubscribe(sub)

	req := testutil.NewJSONRequest(t, "POST", "/api/messages", map[string]string{
		"workspaceId": env.workspace.ID.Hex(),
		"channelId":   env.channel.ID.Hex(),
		"body":        "hello world",
	})
	req = testutil.WithUser(req, env.alice)
	rec := httptest.NewRecorder()
	env.handler.HandlePost(rec, req)

	testutil.AssertStatus(t, rec, http.StatusCreated)

	var resp struct {
		ID   string `json:"id"`
		Body string `json:"body"`
	}
	testutil.DecodeResponse(t, rec, &resp)
	if resp.Body != "hello world" {
		t.Errorf("body: got %q, want %q", resp.Body, "hello world")
	}

	select {
	case ev := <-sub.C:
		if ev.Kind != realtime.KindMessageCreated {
			t.Errorf("event kind: got %q, want %q", ev.Kind, realtime.KindMessageCreated)
		}
	default:
		t.Error("expected a message-created event on the channel topic")
	}
}

func TestHandlePost_RequiresExactlyOneScope(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	conv := env.fixtures.CreateConversation(ctx, env.workspace.ID, env.aliceMember.ID, env.bobMember.ID)

	// Neither scope.
	req := testutil.NewJSONRequest(t, "POST", "/api/messages", map[string]string{
		"workspaceId": env.workspace.ID.Hex(),
		"body":        "homeless message",
	})
	req = testutil.WithUser(req, env.alice)
	rec := httptest.NewRecorder()
	env.handler.HandlePost(rec, req)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	// Both scopes.
	req = testutil.NewJSONRequest(t, "POST", "/api/messages", map[string]string{
		"workspaceId":    env.workspace.ID.Hex(),
		"channelId":      env.channel.ID.Hex(),
		"conversationId": conv.ID.Hex(),
		"body":           "greedy message",
	})
	req = testutil.WithUser(req, env.alice)
	rec = httptest.NewRecorder()
	env.handler.HandlePost(rec, req)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestHandlePost_SanitizesBody(t *testing.T) {
	env := newTestEnv(t)

	req := testutil.NewJSONRequest(t, "POST", "/api/messages", map[string]string{
		"workspaceId": env.workspace.ID.Hex(),
		"channelId":   env.channel.ID.Hex(),
		"body":        `<b>bold</b><script>alert("x")</script>`,
	})
	req = testutil.WithUser(req, env.alice)
	rec := httptest.NewRecorder()
	env.handler.HandlePost(rec, req)

	testutil.AssertStatus(t, rec, http.StatusCreated)

	var resp struct {
		Body string `json:"body"`
	}
	testutil.DecodeResponse(t, rec, &resp)
	if resp.Body != "<b>bold</b>" {
		t.Errorf("body: got %q, want script stripped", resp.Body)
	}
}

func TestHandlePost_ReplyDepthCapped(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	root := env.fixtures.CreateChannelMessage(ctx, env.workspace.ID, env.channel.ID, env.aliceMember.ID, "root")
	reply := env.fixtures.CreateReply(ctx, root, env.bobMember.ID, "reply")

	// Replying to a root message works; the scope comes from the parent.
	req := testutil.NewJSONRequest(t, "POST", "/api/messages", map[string]string{
		"workspaceId":     env.workspace.ID.Hex(),
		"parentMessageId": root.ID.Hex(),
		"body":            "threaded",
	})
	req = testutil.WithUser(req, env.bob)
	rec := httptest.NewRecorder()
	env.handler.HandlePost(rec, req)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	// Replying to a reply is rejected.
	req = testutil.NewJSONRequest(t, "POST", "/api/messages", map[string]string{
		"workspaceId":     env.workspace.ID.Hex(),
		"parentMessageId": reply.ID.Hex(),
		"body":            "too deep",
	})
	req = testutil.WithUser(req, env.bob)
	rec = httptest.NewRecorder()
	env.handler.HandlePost(rec, req)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestHandlePost_NonMemberSees404(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	outsider := env.fixtures.CreateUser(ctx, "Eve", "eve@example.com")

	req := testutil.NewJSONRequest(t, "POST", "/api/messages", map[string]string{
		"workspaceId": env.workspace.ID.Hex(),
		"channelId":   env.channel.ID.Hex(),
		"body":        "let me in",
	})
	req = testutil.WithUser(req, outsider)
	rec := httptest.NewRecorder()
	env.handler.HandlePost(rec, req)

	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestHandlePost_ConversationParticipantOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	carol := env.fixtures.CreateUser(ctx, "Carol", "carol@example.com")
	env.fixtures.CreateMember(ctx, env.workspace.ID, carol.ID, models.RoleMember)
	conv := env.fixtures.CreateConversation(ctx, env.workspace.ID, env.aliceMember.ID, env.bobMember.ID)

	req := testutil.NewJSONRequest(t, "POST", "/api/messages", map[string]string{
		"workspaceId":    env.workspace.ID.Hex(),
		"conversationId": conv.ID.Hex(),
		"body":           "eavesdropping",
	})
	req = testutil.WithUser(req, carol)
	rec := httptest.NewRecorder()
	env.handler.HandlePost(rec, req)

	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestHandleEdit_AuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	msg := env.fixtures.CreateChannelMessage(ctx, env.workspace.ID, env.channel.ID, env.aliceMember.ID, "original")

	// Another member cannot edit.
	req := testutil.NewJSONRequest(t, "PATCH", "/api/messages/"+msg.ID.Hex(), map[string]string{"body": "hijacked"})
	req = testutil.WithUser(req, env.bob)
	req = testutil.WithChiURLParam(req, "messageId", msg.ID.Hex())
	rec := httptest.NewRecorder()
	env.handler.HandleEdit(rec, req)
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	// The author can.
	req = testutil.NewJSONRequest(t, "PATCH", "/api/messages/"+msg.ID.Hex(), map[string]string{"body": "edited"})
	req = testutil.WithUser(req, env.alice)
	req = testutil.WithChiURLParam(req, "messageId", msg.ID.Hex())
	rec = httptest.NewRecorder()
	env.handler.HandleEdit(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	got, err := messagestore.New(env.db).GetByID(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Body != "edited" {
		t.Errorf("body: got %q, want %q", got.Body, "edited")
	}
	if got.UpdatedAt == nil {
		t.Error("expected UpdatedAt after edit")
	}
}

func TestHandleDelete_AuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	msg := env.fixtures.CreateChannelMessage(ctx, env.workspace.ID, env.channel.ID, env.aliceMember.ID, "mine")
	if _, err := reactionstore.New(env.db).Toggle(ctx, env.workspace.ID, msg.ID, env.bobMember.ID, "👍"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	req := testutil.NewRequest("DELETE", "/api/messages/"+msg.ID.Hex())
	req = testutil.WithUser(req, env.bob)
	req = testutil.WithChiURLParam(req, "messageId", msg.ID.Hex())
	rec := httptest.NewRecorder()
	env.handler.HandleDelete(rec, req)
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	req = testutil.NewRequest("DELETE", "/api/messages/"+msg.ID.Hex())
	req = testutil.WithUser(req, env.alice)
	req = testutil.WithChiURLParam(req, "messageId", msg.ID.Hex())
	rec = httptest.NewRecorder()
	env.handler.HandleDelete(rec, req)
	testutil.AssertStatus(t, rec, http.StatusNoContent)

	if _, err := messagestore.New(env.db).GetByID(ctx, msg.ID); err != messagestore.ErrNotFound {
		t.Errorf("expected message gone, got %v", err)
	}
}

func TestServeList_EnrichesThreads(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	root := env.fixtures.CreateChannelMessage(ctx, env.workspace.ID, env.channel.ID, env.aliceMember.ID, "root")
	env.fixtures.CreateReply(ctx, root, env.bobMember.ID, "reply")

	req := testutil.NewRequest("GET", "/api/messages?channelId="+env.channel.ID.Hex())
	req = testutil.WithUser(req, env.alice)
	rec := httptest.NewRecorder()
	env.handler.ServeList(rec, req)

	testutil.AssertStatus(t, rec, http.StatusOK)

	var resp struct {
		Messages []struct {
			ID     string `json:"id"`
			Author struct {
				Name string `json:"name"`
			} `json:"author"`
			Thread *struct {
				Count          int64  `json:"count"`
				LastAuthorName string `json:"lastAuthorName"`
			} `json:"thread"`
		} `json:"messages"`
		HasMore bool `json:"hasMore"`
	}
	testutil.DecodeResponse(t, rec, &resp)

	if len(resp.Messages) != 1 {
		t.Fatalf("expected 1 root message, got %d", len(resp.Messages))
	}
	m := resp.Messages[0]
	if m.Author.Name != "Alice" {
		t.Errorf("author: got %q, want Alice", m.Author.Name)
	}
	if m.Thread == nil {
		t.Fatal("expected thread summary on a root with replies")
	}
	if m.Thread.Count != 1 {
		t.Errorf("thread count: got %d, want 1", m.Thread.Count)
	}
	if m.Thread.LastAuthorName != "Bob" {
		t.Errorf("last author: got %q, want Bob", m.Thread.LastAuthorName)
	}
}

func TestHandleDelete_RemovesAttachment(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uploads := uploadstore.New(env.db)
	up, err := uploads.Issue(ctx)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	size, err := env.blobs.Put(up.StorageID, strings.NewReader("attachment bytes"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := uploads.MarkUploaded(ctx, up.StorageID, "text/plain", size); err != nil {
		t.Fatalf("MarkUploaded failed: %v", err)
	}

	req := testutil.NewJSONRequest(t, "POST", "/api/messages", map[string]string{
		"workspaceId":  env.workspace.ID.Hex(),
		"channelId":    env.channel.ID.Hex(),
		"body":         "with attachment",
		"attachmentId": up.StorageID,
	})
	req = testutil.WithUser(req, env.alice)
	rec := httptest.NewRecorder()
	env.handler.HandlePost(rec, req)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var posted struct {
		ID string `json:"id"`
	}
	testutil.DecodeResponse(t, rec, &posted)

	del := testutil.NewRequest("DELETE", "/api/messages/"+posted.ID)
	del = testutil.WithUser(del, env.alice)
	del = testutil.WithChiURLParam(del, "messageId", posted.ID)
	rec = httptest.NewRecorder()
	env.handler.HandleDelete(rec, del)
	testutil.AssertStatus(t, rec, http.StatusNoContent)

	if _, err := uploads.GetByStorageID(ctx, up.StorageID); err != uploadstore.ErrNotFound {
		t.Errorf("expected upload record gone, got %v", err)
	}
	if _, err := env.blobs.Open(up.StorageID); err != blob.ErrNotFound {
		t.Errorf("expected blob bytes gone, got %v", err)
	}
}

func TestServeList_DegradesWithoutReactionSummaries(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	msg := env.fixtures.CreateChannelMessage(ctx, env.workspace.ID, env.channel.ID, env.aliceMember.ID, "still here")
	reactions := reactionstore.New(env.db)
	if _, err := reactions.Toggle(ctx, env.workspace.ID, msg.ID, env.bobMember.ID, "👍"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	// A reaction store whose client is gone makes every aggregation
	// fail; the page must still deliver the messages.
	dead, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := dead.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	env.handler.Reactions = reactionstore.New(dead.Database("unreachable"))

	req := testutil.NewRequest("GET", "/api/messages?channelId="+env.channel.ID.Hex())
	req = testutil.WithUser(req, env.alice)
	rec := httptest.NewRecorder()
	env.handler.ServeList(rec, req)

	testutil.AssertStatus(t, rec, http.StatusOK)

	var resp struct {
		Messages []struct {
			Body      string `json:"body"`
			Reactions []any  `json:"reactions"`
		} `json:"messages"`
	}
	testutil.DecodeResponse(t, rec, &resp)
	if len(resp.Messages) != 1 {
		t.Fatalf("expected the message despite the summary failure, got %d", len(resp.Messages))
	}
	if resp.Messages[0].Body != "still here" {
		t.Errorf("body: got %q", resp.Messages[0].Body)
	}
	if len(resp.Messages[0].Reactions) != 0 {
		t.Errorf("expected empty reactions on a degraded page, got %d", len(resp.Messages[0].Reactions))
	}
}

func TestServeList_BadCursor(t *testing.T) {
	env := newTestEnv(t)

	req := testutil.NewRequest("GET", "/api/messages?channelId="+env.channel.ID.Hex()+"&cursor=garbage")
	req = testutil.WithUser(req, env.alice)
	rec := httptest.NewRecorder()
	env.handler.ServeList(rec, req)

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}
