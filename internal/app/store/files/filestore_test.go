package filestore_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	filestore "github.com/dalemusser/collabhub/internal/app/store/files"
	"github.com/dalemusser/collabhub/internal/app/system/objstore"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/dalemusser/collabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func putObject(t *testing.T, ctx context.Context, objects objstore.Store, key, content string) {
	t.Helper()
	if err := objects.Put(ctx, key, strings.NewReader(content), int64(len(content)), "text/plain"); err != nil {
		t.Fatalf("put object: %v", err)
	}
}

func TestStore_InsertAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	objects := objstore.NewMemStore()
	store := filestore.New(db, objects, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "A", "A", "f@example.com")
	p := fixtures.CreateProject(ctx, "P", creator.ID)

	putObject(t, ctx, objects, "abc-report.pdf", "data")
	fm, err := store.Insert(ctx, models.FileMeta{
		ProjectID:   p.ID,
		FileKey:     "abc-report.pdf",
		Name:        "report.pdf",
		Size:        4,
		ContentType: "application/pdf",
		UploadedBy:  creator.ID,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if fm.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	list, err := store.ListForProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListForProject failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "report.pdf" {
		t.Fatalf("list = %v", list)
	}
}

func TestStore_List_SelfHealsDanglingRecords(t *testing.T) {
	db := testutil.SetupTestDB(t)
	objects := objstore.NewMemStore()
	store := filestore.New(db, objects, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "A", "A", "g@example.com")
	p := fixtures.CreateProject(ctx, "P", creator.ID)

	putObject(t, ctx, objects, "live-key", "x")
	if _, err := store.Insert(ctx, models.FileMeta{ProjectID: p.ID, FileKey: "live-key", Name: "live"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	// Record whose object never made it to storage.
	if _, err := store.Insert(ctx, models.FileMeta{ProjectID: p.ID, FileKey: "gone-key", Name: "gone"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	list, err := store.ListForProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListForProject failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "live" {
		t.Fatalf("list = %v", list)
	}

	// The dangling record is gone for good, not merely filtered.
	list, err = store.ListForProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("second ListForProject failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("second list = %v", list)
	}
	n, err := db.Collection("files").CountDocuments(ctx, map[string]any{"project_id": p.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("files collection has %d records, want 1", n)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	objects := objstore.NewMemStore()
	store := filestore.New(db, objects, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fixtures.CreateUser(ctx, "A", "A", "h@example.com")
	p := fixtures.CreateProject(ctx, "P", creator.ID)

	putObject(t, ctx, objects, "del-key", "x")
	fm, err := store.Insert(ctx, models.FileMeta{ProjectID: p.ID, FileKey: "del-key", Name: "del"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := store.Delete(ctx, fm.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, fm.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
	exists, err := objects.Exists(ctx, "del-key")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("object should have been removed from storage")
	}
}
