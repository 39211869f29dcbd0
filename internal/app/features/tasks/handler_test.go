package tasks

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apierrors "github.com/dalemusser/collabhub/internal/app/features/errors"
	taskstore "github.com/dalemusser/collabhub/internal/app/store/tasks"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/dalemusser/collabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, db *mongo.Database) *Handler {
	t.Helper()
	logger := zap.NewNop()
	return NewHandler(db, taskstore.New(db), apierrors.NewErrorLogger(logger), logger)
}

func taskReq(method, projectID, taskID, body string, user testutil.TestUser) *http.Request {
	target := "/projects/" + projectID + "/tasks"
	if taskID != "" {
		target += "/" + taskID
	}
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req = testutil.WithUser(req, user)
	req = testutil.WithChiURLParam(req, "projectID", projectID)
	if taskID != "" {
		req = testutil.WithChiURLParam(req, "taskID", taskID)
	}
	return req
}

func TestCreate_MemberAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "O", "O", "o@example.com")
	member := fixtures.CreateUser(ctx, "M", "M", "m@example.com")
	p := fixtures.CreateProject(ctx, "P", owner.ID, member.ID)
	h := newHandler(t, db)

	rec := httptest.NewRecorder()
	h.Create(rec, taskReq(http.MethodPost, p.ID.Hex(), "", `{"name":"Write docs"}`, testutil.UserFromModel(member)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreate_EmptyNameRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "O", "O", "e@example.com")
	p := fixtures.CreateProject(ctx, "P", owner.ID)
	h := newHandler(t, db)

	rec := httptest.NewRecorder()
	h.Create(rec, taskReq(http.MethodPost, p.ID.Hex(), "", `{"name":"<i></i>"}`, testutil.UserFromModel(owner)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdate_StatusByMember_MetadataCreatorOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "O", "O", "ow@example.com")
	member := fixtures.CreateUser(ctx, "M", "M", "me@example.com")
	p := fixtures.CreateProject(ctx, "P", owner.ID, member.ID)
	task := fixtures.CreateTask(ctx, p.ID, "Draft", models.StatusTodo, nil)
	h := newHandler(t, db)

	// Member may flip status.
	rec := httptest.NewRecorder()
	h.Update(rec, taskReq(http.MethodPatch, p.ID.Hex(), task.ID.Hex(), `{"status":"in-progress"}`, testutil.UserFromModel(member)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("member status update: %d: %s", rec.Code, rec.Body.String())
	}

	// Member may not rename.
	rec = httptest.NewRecorder()
	h.Update(rec, taskReq(http.MethodPatch, p.ID.Hex(), task.ID.Hex(), `{"name":"Renamed"}`, testutil.UserFromModel(member)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member rename: %d, want 403", rec.Code)
	}

	// Creator may.
	rec = httptest.NewRecorder()
	h.Update(rec, taskReq(http.MethodPatch, p.ID.Hex(), task.ID.Hex(), `{"name":"Renamed"}`, testutil.UserFromModel(owner)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("creator rename: %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDelete_CreatorOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "O", "O", "do@example.com")
	member := fixtures.CreateUser(ctx, "M", "M", "dm@example.com")
	p := fixtures.CreateProject(ctx, "P", owner.ID, member.ID)
	task := fixtures.CreateTask(ctx, p.ID, "Doomed", models.StatusTodo, nil)
	h := newHandler(t, db)

	rec := httptest.NewRecorder()
	h.Delete(rec, taskReq(http.MethodDelete, p.ID.Hex(), task.ID.Hex(), "", testutil.UserFromModel(member)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member delete: %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, taskReq(http.MethodDelete, p.ID.Hex(), task.ID.Hex(), "", testutil.UserFromModel(owner)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("creator delete: %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdate_TaskFromOtherProjectNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "O", "O", "cross@example.com")
	p1 := fixtures.CreateProject(ctx, "P1", owner.ID)
	p2 := fixtures.CreateProject(ctx, "P2", owner.ID)
	task := fixtures.CreateTask(ctx, p2.ID, "Elsewhere", models.StatusTodo, nil)
	h := newHandler(t, db)

	rec := httptest.NewRecorder()
	h.Update(rec, taskReq(http.MethodPatch, p1.ID.Hex(), task.ID.Hex(), `{"status":"done"}`, testutil.UserFromModel(owner)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Update(rec, taskReq(http.MethodPatch, p1.ID.Hex(), primitive.NewObjectID().Hex(), `{"status":"done"}`, testutil.UserFromModel(owner)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
