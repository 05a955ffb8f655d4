package channelstore_test

import (
	"testing"

	channelstore "github.com/harborteam/harbor/internal/app/store/channels"
	"github.com/harborteam/harbor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := channelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := primitive.NewObjectID()
	ch, err := store.Create(ctx, ws, "general")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ch.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if ch.WorkspaceID != ws {
		t.Errorf("WorkspaceID: got %v, want %v", ch.WorkspaceID, ws)
	}
	if ch.CreatedAt.IsZero() || ch.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_ListByWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := channelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := primitive.NewObjectID()
	for _, name := range []string{"general", "random", "dev"} {
		if _, err := store.Create(ctx, ws, name); err != nil {
			t.Fatalf("Create %q failed: %v", name, err)
		}
	}
	// Noise in another workspace.
	if _, err := store.Create(ctx, primitive.NewObjectID(), "general"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	channels, err := store.ListByWorkspace(ctx, ws)
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(channels) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(channels))
	}
	for _, ch := range channels {
		if ch.WorkspaceID != ws {
			t.Errorf("channel %q leaked from workspace %v", ch.Name, ch.WorkspaceID)
		}
	}
}

func TestStore_Rename(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := channelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ch, err := store.Create(ctx, primitive.NewObjectID(), "general")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Rename(ctx, ch.ID, "announcements"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	got, err := store.GetByID(ctx, ch.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "announcements" {
		t.Errorf("Name: got %q, want %q", got.Name, "announcements")
	}

	if err := store.Rename(ctx, primitive.NewObjectID(), "x"); err != channelstore.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown channel, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := channelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ch, err := store.Create(ctx, primitive.NewObjectID(), "doomed")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Delete(ctx, ch.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, ch.ID); err != channelstore.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, ch.ID); err != channelstore.ErrNotFound {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}
