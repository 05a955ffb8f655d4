package workspacestore_test

import (
	"testing"

	workspacestore "github.com/harborteam/harbor/internal/app/store/workspaces"
	"github.com/harborteam/harbor/internal/app/system/joincode"
	"github.com/harborteam/harbor/internal/domain/models"
	"github.com/harborteam/harbor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Workspace{
		Name:        "Acme",
		OwnerUserID: owner,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if !joincode.Valid(created.JoinCode) {
		t.Errorf("expected a valid join code, got %q", created.JoinCode)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if created.OwnerUserID != owner {
		t.Errorf("OwnerUserID: got %v, want %v", created.OwnerUserID, owner)
	}
}

func TestStore_GetByJoinCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Workspace{
		Name:        "Acme",
		OwnerUserID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.GetByJoinCode(ctx, created.JoinCode)
	if err != nil {
		t.Fatalf("GetByJoinCode failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID: got %v, want %v", found.ID, created.ID)
	}

	if _, err := store.GetByJoinCode(ctx, "zzzzzz"); err != workspacestore.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown code, got %v", err)
	}
}

func TestStore_RegenerateJoinCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Workspace{
		Name:        "Acme",
		OwnerUserID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newCode, err := store.RegenerateJoinCode(ctx, created.ID)
	if err != nil {
		t.Fatalf("RegenerateJoinCode failed: %v", err)
	}
	if newCode == created.JoinCode {
		t.Error("expected a different join code after regeneration")
	}

	// The old code no longer grants entry.
	if _, err := store.GetByJoinCode(ctx, created.JoinCode); err != workspacestore.ErrNotFound {
		t.Errorf("expected old code to be invalid, got %v", err)
	}
	found, err := store.GetByJoinCode(ctx, newCode)
	if err != nil {
		t.Fatalf("GetByJoinCode with new code failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID: got %v, want %v", found.ID, created.ID)
	}
}

func TestStore_Rename(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Workspace{
		Name:        "Old Name",
		OwnerUserID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Rename(ctx, created.ID, "New Name"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "New Name" {
		t.Errorf("Name: got %q, want %q", got.Name, "New Name")
	}
	if got.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("expected UpdatedAt not to move backwards on rename")
	}

	if err := store.Rename(ctx, primitive.NewObjectID(), "Whatever"); err != workspacestore.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestStore_GetMany_PreservesOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var ids []primitive.ObjectID
	for _, name := range []string{"One", "Two", "Three"} {
		ws, err := store.Create(ctx, models.Workspace{Name: name, OwnerUserID: primitive.NewObjectID()})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, ws.ID)
	}

	// Request in reverse; the result should follow the request order.
	reversed := []primitive.ObjectID{ids[2], ids[1], ids[0]}
	got, err := store.GetMany(ctx, reversed)
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 workspaces, got %d", len(got))
	}
	for i, ws := range got {
		if ws.ID != reversed[i] {
			t.Errorf("position %d: got %v, want %v", i, ws.ID, reversed[i])
		}
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Workspace{
		Name:        "Doomed",
		OwnerUserID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
	if _, err := store.GetByID(ctx, created.ID); err != workspacestore.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
