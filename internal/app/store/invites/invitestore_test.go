package invitestore_test

import (
	"errors"
	"testing"

	invitestore "github.com/dalemusser/collabhub/internal/app/store/invites"
	projectstore "github.com/dalemusser/collabhub/internal/app/store/projects"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/dalemusser/collabhub/internal/testutil"
)

func TestStore_InviteAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "Ada", "Lovelace", "ada@example.com")
	invitee := fixtures.CreateUser(ctx, "Bob", "Builder", "bob@example.com")
	p := fixtures.CreateProject(ctx, "Capstone", creator.ID)

	inv, err := store.Invite(ctx, invitee.ID, p.ID, p.Name, creator.DisplayName())
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	if inv.ID == "" {
		t.Error("expected invite id to be generated")
	}
	if inv.Type != models.NotificationInvite {
		t.Errorf("type = %q", inv.Type)
	}

	list, err := store.ListForUser(ctx, invitee.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != inv.ID {
		t.Fatalf("list = %v", list)
	}
	if list[0].ProjectName != "Capstone" {
		t.Errorf("project name = %q", list[0].ProjectName)
	}
}

func TestStore_DuplicateInvitesAreDistinct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "C", "C", "c@example.com")
	invitee := fixtures.CreateUser(ctx, "I", "I", "i@example.com")
	p := fixtures.CreateProject(ctx, "Twice", creator.ID)

	first, err := store.Invite(ctx, invitee.ID, p.ID, p.Name, "C C")
	if err != nil {
		t.Fatalf("first Invite failed: %v", err)
	}
	second, err := store.Invite(ctx, invitee.ID, p.ID, p.Name, "C C")
	if err != nil {
		t.Fatalf("second Invite failed: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("duplicate invites must have distinct ids")
	}

	// Declining one leaves the other untouched.
	if err := store.Decline(ctx, invitee.ID, first.ID); err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	list, err := store.ListForUser(ctx, invitee.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != second.ID {
		t.Fatalf("list = %v", list)
	}
}

func TestStore_Accept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitestore.New(db)
	projects := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "A", "A", "a@example.com")
	invitee := fixtures.CreateUser(ctx, "B", "B", "b@example.com")
	p := fixtures.CreateProject(ctx, "Join Me", creator.ID)

	inv, err := store.Invite(ctx, invitee.ID, p.ID, p.Name, "A A")
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	if err := store.Accept(ctx, invitee.ID, inv.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	got, err := projects.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.HasMember(invitee.ID) {
		t.Error("invitee should be a member after accept")
	}

	list, err := store.ListForUser(ctx, invitee.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("invite should be removed after accept, got %v", list)
	}

	// A retried accept (invite already removed) is a no-op: no error,
	// membership unchanged.
	if err := store.Accept(ctx, invitee.ID, inv.ID); err != nil {
		t.Fatalf("retried Accept failed: %v", err)
	}
	again, err := projects.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(again.Members) != len(got.Members) {
		t.Errorf("members changed on retried accept: %v -> %v", got.Members, again.Members)
	}
}

func TestStore_Accept_ProjectDeleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitestore.New(db)
	projects := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "A", "A", "a2@example.com")
	invitee := fixtures.CreateUser(ctx, "B", "B", "b2@example.com")
	p := fixtures.CreateProject(ctx, "Vanishing", creator.ID)

	// Project cascade withdraws pending invites, so delete first and
	// then seed an invite pointing at the missing project.
	if err := projects.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	inv, err := store.Invite(ctx, invitee.ID, p.ID, p.Name, "A A")
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	err = store.Accept(ctx, invitee.ID, inv.ID)
	if !errors.Is(err, invitestore.ErrProjectGone) {
		t.Fatalf("expected ErrProjectGone, got %v", err)
	}
	list, err := store.ListForUser(ctx, invitee.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("stale invite should be removed, got %v", list)
	}
}

func TestStore_Decline_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "A", "A", "a3@example.com")
	invitee := fixtures.CreateUser(ctx, "B", "B", "b3@example.com")
	p := fixtures.CreateProject(ctx, "No Thanks", creator.ID)

	inv, err := store.Invite(ctx, invitee.ID, p.ID, p.Name, "A A")
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	if err := store.Decline(ctx, invitee.ID, inv.ID); err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	// Second decline of the same id is a no-op.
	if err := store.Decline(ctx, invitee.ID, inv.ID); err != nil {
		t.Fatalf("second Decline failed: %v", err)
	}
}
