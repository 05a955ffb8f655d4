package conversations_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harborteam/harbor/internal/app/features/conversations"
	conversationstore "github.com/harborteam/harbor/internal/app/store/conversations"
	memberstore "github.com/harborteam/harbor/internal/app/store/members"
	"github.com/harborteam/harbor/internal/app/system/guard"
	"github.com/harborteam/harbor/internal/domain/models"
	"github.com/harborteam/harbor/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*conversations.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ms := memberstore.New(db)
	h := conversations.NewHandler(conversationstore.New(db), ms, guard.New(ms), zap.NewNop())
	return h, db
}

func resolve(t *testing.T, h *conversations.Handler, user models.User, wsID, memberID string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/api/workspaces/"+wsID+"/conversations", map[string]string{
		"memberId": memberID,
	})
	req = testutil.WithUser(req, user)
	req = testutil.WithChiURLParam(req, "id", wsID)
	rec := httptest.NewRecorder()
	h.HandleResolve(rec, req)
	return rec
}

func TestHandleResolve_SameConversationBothWays(t *testing.T) {
	h, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Acme", alice.ID)
	aliceMember := fixtures.CreateMember(ctx, ws.ID, alice.ID, models.RoleAdmin)
	bobMember := fixtures.CreateMember(ctx, ws.ID, bob.ID, models.RoleMember)

	rec := resolve(t, h, alice, ws.ID.Hex(), bobMember.ID.Hex())
	testutil.AssertStatus(t, rec, http.StatusOK)
	var first struct {
		ID string `json:"id"`
	}
	testutil.DecodeResponse(t, rec, &first)

	rec = resolve(t, h, bob, ws.ID.Hex(), aliceMember.ID.Hex())
	testutil.AssertStatus(t, rec, http.StatusOK)
	var second struct {
		ID string `json:"id"`
	}
	testutil.DecodeResponse(t, rec, &second)

	if first.ID != second.ID {
		t.Errorf("expected one conversation for the pair, got %q and %q", first.ID, second.ID)
	}
}

func TestHandleResolve_SelfConversation(t *testing.T) {
	h, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Acme", alice.ID)
	member := fixtures.CreateMember(ctx, ws.ID, alice.ID, models.RoleAdmin)

	rec := resolve(t, h, alice, ws.ID.Hex(), member.ID.Hex())
	testutil.AssertStatus(t, rec, http.StatusOK)

	var resp struct {
		MemberOneID string `json:"memberOneId"`
		MemberTwoID string `json:"memberTwoId"`
	}
	testutil.DecodeResponse(t, rec, &resp)
	if resp.MemberOneID != member.ID.Hex() || resp.MemberTwoID != member.ID.Hex() {
		t.Errorf("self conversation should name the member twice: %+v", resp)
	}
}

func TestHandleResolve_OtherWorkspaceMember(t *testing.T) {
	h, db := newTestHandler(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	ws := fixtures.CreateWorkspace(ctx, "Acme", alice.ID)
	other := fixtures.CreateWorkspace(ctx, "Beta", bob.ID)
	fixtures.CreateMember(ctx, ws.ID, alice.ID, models.RoleAdmin)
	strayMember := fixtures.CreateMember(ctx, other.ID, bob.ID, models.RoleAdmin)

	rec := resolve(t, h, alice, ws.ID.Hex(), strayMember.ID.Hex())
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestServeGet_ParticipantsOnly(t *testing.T) {
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

	get := func(user models.User) *httptest.ResponseRecorder {
		req := testutil.NewRequest("GET", "/api/conversations/"+conv.ID.Hex())
		req = testutil.WithUser(req, user)
		req = testutil.WithChiURLParam(req, "conversationId", conv.ID.Hex())
		rec := httptest.NewRecorder()
		h.ServeGet(rec, req)
		return rec
	}

	testutil.AssertStatus(t, get(alice), http.StatusOK)
	testutil.AssertStatus(t, get(bob), http.StatusOK)
	testutil.AssertStatus(t, get(carol), http.StatusNotFound)
}
