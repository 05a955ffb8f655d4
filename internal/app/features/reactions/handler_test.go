package reactions_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/harborteam/harbor/internal/app/features/reactions"
	conversationstore "github.com/harborteam/harbor/internal/app/store/conversations"
	memberstore "github.com/harborteam/harbor/internal/app/store/members"
	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	reactionstore "github.com/harborteam/harbor/internal/app/store/reactions"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/app/system/realtime"
	"github.com/harborteam/harbor/internal/domain/models"
	"github.com/harborteam/harbor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*reactions.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ms := memberstore.New(db)
	h := reactions.NewHandler(
		reactionstore.New(db),
		messagestore.New(db),
		conversationstore.New(db),
		guard.New(ms),
		realtime.NewHub(zap.NewNop()),
		zap.NewNop(),
	)
	return h, db
}

func toggle(t *testing.T, h *reactions.Handler, user models.User, msg models.Message, value string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/api/messages/"+msg.ID.Hex()+"/reactions", map[string]string{"value": value})
	req = testutil.WithUser(req, user)
	req = testutil.WithChiURLParam(req, "messageId", msg.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleToggle(rec, req)
	return rec
}

func TestHandleToggle_AddThenRemove(t *testing.T) {
	h, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Acme", alice.ID)
	member := fixtures.CreateMember(ctx, ws.ID, alice.ID, models.RoleAdmin)
	channel := fixtures.CreateChannel(ctx, ws.ID, "general")
	msg := fixtures.CreateChannelMessage(ctx, ws.ID, channel.ID, member.ID, "hello")

	rec := toggle(t, h, alice, msg, "👍")
	testutil.AssertStatus(t, rec, http.StatusOK)
	var resp struct {
		Added bool `json:"added"`
	}
	testutil.DecodeResponse(t, rec, &resp)
	if !resp.Added {
		t.Error("first toggle should add")
	}

	rec = toggle(t, h, alice, msg, "👍")
	testutil.AssertStatus(t, rec, http.StatusOK)
	testutil.DecodeResponse(t, rec, &resp)
	if resp.Added {
		t.Error("second toggle should remove")
	}

	groups, err := reactionstore.New(db).SummaryFor(ctx, []primitive.ObjectID{msg.ID})
	if err != nil {
		t.Fatalf("SummaryFor failed: %v", err)
	}
	if len(groups[msg.ID]) != 0 {
		t.Errorf("expected no reactions after a double toggle, got %d groups", len(groups[msg.ID]))
	}
}

func TestHandleToggle_RejectsLongValue(t *testing.T) {
	h, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Acme", alice.ID)
	member := fixtures.CreateMember(ctx, ws.ID, alice.ID, models.RoleAdmin)
	channel := fixtures.CreateChannel(ctx, ws.ID, "general")
	msg := fixtures.CreateChannelMessage(ctx, ws.ID, channel.ID, member.ID, "hello")

	rec := toggle(t, h, alice, msg, strings.Repeat("x", 33))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	rec = toggle(t, h, alice, msg, "")
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}

func TestHandleToggle_ConversationParticipantOnly(t *testing.T) {
	h, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	carol := fixtures.CreateUser(ctx, "Carol", "carol@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Acme", alice.ID)
	aliceMember := fixtures.CreateMember(ctx, ws.ID, alice.ID, models.RoleAdmin)
	bobMember := fixtures.CreateMember(ctx, ws.ID, bob.ID, models.RoleMember)
	fixtures.CreateMember(ctx, ws.ID, carol.ID, models.RoleMember)

	conv := fixtures.CreateConversation(ctx, ws.ID, aliceMember.ID, bobMember.ID)
	msg, err := messagestore.New(db).Create(ctx, models.Message{
		WorkspaceID:    ws.ID,
		ConversationID: &conv.ID,
		MemberID:       aliceMember.ID,
		Body:           "private",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A workspace member outside the conversation cannot see the message.
	rec := toggle(t, h, carol, msg, "👀")
	testutil.AssertStatus(t, rec, http.StatusNotFound)

	// A participant can react.
	rec = toggle(t, h, bob, msg, "👀")
	testutil.AssertStatus(t, rec, http.StatusOK)
}

func TestHandleToggle_NonMemberSees404(t *testing.T) {
	h, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	eve := fixtures.CreateUser(ctx, "Eve", "eve@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Acme", alice.ID)
	member := fixtures.CreateMember(ctx, ws.ID, alice.ID, models.RoleAdmin)
	channel := fixtures.CreateChannel(ctx, ws.ID, "general")
	msg := fixtures.CreateChannelMessage(ctx, ws.ID, channel.ID, member.ID, "hello")

	rec := toggle(t, h, eve, msg, "👍")
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}
