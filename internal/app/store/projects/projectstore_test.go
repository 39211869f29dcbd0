package projectstore_test

import (
	"errors"
	"testing"

	projectstore "github.com/dalemusser/collabhub/internal/app/store/projects"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/dalemusser/collabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Ada", "Lovelace", "ada@example.com")

	created, err := store.Create(ctx, models.Project{
		Name:        "Capstone",
		Description: "Senior capstone project",
		Creator:     creator.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if !created.HasMember(creator.ID) {
		t.Error("creator must be a member")
	}
	if created.Rooms.Default != nil || created.Rooms.Transcript != nil || created.Rooms.Full != nil {
		t.Error("rooms must start unprovisioned")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_ListForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "A", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "B", "bob@example.com")

	fixtures.CreateProject(ctx, "Alice Solo", alice.ID)
	fixtures.CreateProject(ctx, "Shared", alice.ID, bob.ID)
	fixtures.CreateProject(ctx, "Bob Solo", bob.ID)

	got, err := store.ListForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d projects, want 2", len(got))
	}
	for _, p := range got {
		if !p.HasMember(alice.ID) {
			t.Errorf("project %q does not contain alice", p.Name)
		}
	}
}

func TestStore_UpdateInfo_Partial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Ada", "L", "ada2@example.com")
	p := fixtures.CreateProject(ctx, "Before", creator.ID)

	name := "After"
	deadline := testutil.DaysFromNow(7)
	if err := store.UpdateInfo(ctx, p.ID, projectstore.InfoUpdate{
		Name:     &name,
		Deadline: deadline,
	}); err != nil {
		t.Fatalf("UpdateInfo failed: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "After" {
		t.Errorf("name = %q, want After", got.Name)
	}
	if got.Description != p.Description {
		t.Errorf("description changed unexpectedly: %q", got.Description)
	}
	if got.Deadline == nil {
		t.Fatal("expected deadline to be set")
	}

	// Clearing the deadline removes it entirely.
	if err := store.UpdateInfo(ctx, p.ID, projectstore.InfoUpdate{ClearDeadline: true}); err != nil {
		t.Fatalf("UpdateInfo (clear) failed: %v", err)
	}
	got, err = store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Deadline != nil {
		t.Error("expected deadline to be cleared")
	}
}

func TestStore_Leave(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "C", "C", "c@example.com")
	member := fixtures.CreateUser(ctx, "M", "M", "m@example.com")
	p := fixtures.CreateProject(ctx, "Team", creator.ID, member.ID)

	if err := store.Leave(ctx, p.ID, member.ID); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.HasMember(member.ID) {
		t.Error("member should have been removed")
	}

	// Leaving again is a no-op.
	if err := store.Leave(ctx, p.ID, member.ID); err != nil {
		t.Fatalf("second Leave failed: %v", err)
	}

	// The creator cannot leave.
	err = store.Leave(ctx, p.ID, creator.ID)
	if !errors.Is(err, projectstore.ErrCreatorCannotLeave) {
		t.Fatalf("expected ErrCreatorCannotLeave, got %v", err)
	}
}

func TestStore_SetRoom(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "R", "R", "r@example.com")
	p := fixtures.CreateProject(ctx, "Rooms", creator.ID)

	if err := store.SetRoom(ctx, p.ID, models.RoomTranscript, "room-123"); err != nil {
		t.Fatalf("SetRoom failed: %v", err)
	}
	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Rooms.Transcript == nil || *got.Rooms.Transcript != "room-123" {
		t.Errorf("transcript room = %v", got.Rooms.Transcript)
	}
	if got.Rooms.Default != nil {
		t.Error("default room should still be unprovisioned")
	}

	if err := store.SetRoom(ctx, p.ID, "bogus", "x"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestStore_Delete_Cascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "D", "D", "d@example.com")
	invitee := fixtures.CreateUser(ctx, "I", "I", "i@example.com")
	p := fixtures.CreateProject(ctx, "Doomed", creator.ID)
	fixtures.CreateTask(ctx, p.ID, "task", models.StatusTodo, nil)
	fixtures.CreateChat(ctx, p.ID, "design")

	// Pending invite referencing the project.
	if _, err := db.Collection("users").UpdateByID(ctx, invitee.ID, bson.M{
		"$push": bson.M{"notifications": models.Invitation{
			ID:          "inv-1",
			Type:        models.NotificationInvite,
			ProjectID:   p.ID,
			ProjectName: p.Name,
		}},
	}); err != nil {
		t.Fatalf("seed invite: %v", err)
	}

	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.GetByID(ctx, p.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("project should be gone, got %v", err)
	}
	for _, coll := range []string{"tasks", "chats", "messages", "files"} {
		n, err := db.Collection(coll).CountDocuments(ctx, bson.M{"project_id": p.ID})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s: %d documents survived the cascade", coll, n)
		}
	}
	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": invitee.ID}).Decode(&u); err != nil {
		t.Fatalf("reload invitee: %v", err)
	}
	if len(u.Notifications) != 0 {
		t.Errorf("invite should have been withdrawn, got %v", u.Notifications)
	}
}
