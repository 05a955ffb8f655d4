package channels_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harborteam/harbor/internal/app/features/channels"
	channelstore "github.com/harborteam/harbor/internal/app/store/channels"
	memberstore "github.com/harborteam/harbor/internal/app/store/members"
	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	reactionstore "github.com/harborteam/harbor/internal/app/store/reactions"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/domain/models"
	"github.com/harborteam/harbor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*channels.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ms := memberstore.New(db)
	h := channels.NewHandler(
		channelstore.New(db),
		messagestore.New(db),
		reactionstore.New(db),
		guard.New(ms),
		zap.NewNop(),
	)
	return h, db
}

func TestHandleCreate_NormalizesName(t *testing.T) {
	h, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Acme", alice.ID)
	fixtures.CreateMember(ctx, ws.ID, alice.ID, models.RoleAdmin)

	req := testutil.NewJSONRequest(t, "POST", "/api/workspaces/"+ws.ID.Hex()+"/channels",
		map[string]string{"name": "  Release  Planning "})
	req = testutil.WithUser(req, alice)
	req = testutil.WithChiURLParam(req, "id", ws.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	testutil.AssertStatus(t, rec, http.StatusCreated)

	var resp struct {
		Name string `json:"name"`
	}
	testutil.DecodeResponse(t, rec, &resp)
	if resp.Name != "release-planning" {
		t.Errorf("name: got %q, want %q", resp.Name, "release-planning")
	}
}

func TestHandleCreate_MemberForbidden(t *testing.T) {
	h, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Acme", alice.ID)
	fixtures.CreateMember(ctx, ws.ID, alice.ID, models.RoleAdmin)
	fixtures.CreateMember(ctx, ws.ID, bob.ID, models.RoleMember)

	req := testutil.NewJSONRequest(t, "POST", "/api/workspaces/"+ws.ID.Hex()+"/channels",
		map[string]string{"name": "plots"})
	req = testutil.WithUser(req, bob)
	req = testutil.WithChiURLParam(req, "id", ws.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestServeList_MemberAllowed(t *testing.T) {
	h, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Acme", alice.ID)
	fixtures.CreateMember(ctx, ws.ID, alice.ID, models.RoleAdmin)
	fixtures.CreateMember(ctx, ws.ID, bob.ID, models.RoleMember)
	fixtures.CreateChannel(ctx, ws.ID, "general")

	req := testutil.NewRequest("GET", "/api/workspaces/"+ws.ID.Hex()+"/channels")
	req = testutil.WithUser(req, bob)
	req = testutil.WithChiURLParam(req, "id", ws.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	testutil.AssertStatus(t, rec, http.StatusOK)
	testutil.AssertContains(t, rec, "general")
}

func TestHandleDelete_RemovesMessagesAndReactions(t *testing.T) {
	h, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Acme", alice.ID)
	admin := fixtures.CreateMember(ctx, ws.ID, alice.ID, models.RoleAdmin)
	ch := fixtures.CreateChannel(ctx, ws.ID, "doomed")
	other := fixtures.CreateChannel(ctx, ws.ID, "survives")

	msg := fixtures.CreateChannelMessage(ctx, ws.ID, ch.ID, admin.ID, "hello")
	if _, err := reactionstore.New(db).Toggle(ctx, ws.ID, msg.ID, admin.ID, "👍"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	stays := fixtures.CreateChannelMessage(ctx, ws.ID, other.ID, admin.ID, "elsewhere")

	req := testutil.NewRequest("DELETE", "/api/channels/"+ch.ID.Hex())
	req = testutil.WithUser(req, alice)
	req = testutil.WithChiURLParam(req, "channelId", ch.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	testutil.AssertStatus(t, rec, http.StatusNoContent)

	msgs := messagestore.New(db)
	if _, err := msgs.GetByID(ctx, msg.ID); err != messagestore.ErrNotFound {
		t.Errorf("expected channel message deleted, got %v", err)
	}
	if _, err := msgs.GetByID(ctx, stays.ID); err != nil {
		t.Errorf("expected other channel's message to survive, got %v", err)
	}
	summaries, err := reactionstore.New(db).SummaryFor(ctx, []primitive.ObjectID{msg.ID})
	if err != nil {
		t.Fatalf("SummaryFor failed: %v", err)
	}
	if len(summaries[msg.ID]) != 0 {
		t.Error("expected reactions on deleted messages to be gone")
	}
	if _, err := channelstore.New(db).GetByID(ctx, ch.ID); err != channelstore.ErrNotFound {
		t.Errorf("expected channel gone, got %v", err)
	}
}
