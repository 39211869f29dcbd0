package projects

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apierrors "github.com/dalemusser/collabhub/internal/app/features/errors"
	projectstore "github.com/dalemusser/collabhub/internal/app/store/projects"
	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/dalemusser/collabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type recordingProvisioner struct {
	enqueued []primitive.ObjectID
}

func (p *recordingProvisioner) Enqueue(id primitive.ObjectID) {
	p.enqueued = append(p.enqueued, id)
}

func newHandler(t *testing.T, db *mongo.Database, rooms Provisioner) *Handler {
	t.Helper()
	logger := zap.NewNop()
	return NewHandler(db, projectstore.New(db), userstore.New(db), rooms,
		apierrors.NewErrorLogger(logger), logger)
}

func postJSON(target, body string, user testutil.TestUser) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return testutil.WithUser(req, user)
}

func TestCreate_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Ada", "L", "ada@example.com")
	h := newHandler(t, db, nil)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"empty name", `{"name":"  ","description":"x"}`, http.StatusBadRequest},
		{"past deadline", `{"name":"Alpha","deadline":"` + time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02") + `"}`, http.StatusBadRequest},
		{"bad deadline", `{"name":"Alpha","deadline":"not-a-date"}`, http.StatusBadRequest},
		{"today deadline", `{"name":"Alpha","deadline":"` + time.Now().UTC().Format("2006-01-02") + `"}`, http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Create(rec, postJSON("/projects", tc.body, testutil.UserFromModel(u)))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestCreate_EnqueuesRoomProvisioning(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Ada", "L", "rooms@example.com")
	rooms := &recordingProvisioner{}
	h := newHandler(t, db, rooms)

	rec := httptest.NewRecorder()
	h.Create(rec, postJSON("/projects", `{"name":"Alpha","description":""}`, testutil.UserFromModel(u)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var created models.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rooms.enqueued) != 1 || rooms.enqueued[0] != created.ID {
		t.Errorf("enqueued = %v, want [%v]", rooms.enqueued, created.ID)
	}
	if !created.HasMember(u.ID) {
		t.Error("creator should be a member")
	}
}

func TestGet_NonMemberForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "O", "O", "o@example.com")
	outsider := fixtures.CreateUser(ctx, "X", "X", "x@example.com")
	p := fixtures.CreateProject(ctx, "Private", owner.ID)

	h := newHandler(t, db, nil)
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/projects/"+p.ID.Hex(), testutil.UserFromModel(outsider))
	req = testutil.WithChiURLParam(req, "projectID", p.ID.Hex())

	rec := httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestLeave_CreatorForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "O", "O", "own@example.com")
	p := fixtures.CreateProject(ctx, "Mine", owner.ID)

	h := newHandler(t, db, nil)
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/projects/"+p.ID.Hex()+"/leave", testutil.UserFromModel(owner))
	req = testutil.WithChiURLParam(req, "projectID", p.ID.Hex())

	rec := httptest.NewRecorder()
	h.Leave(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", rec.Code, rec.Body.String())
	}
}

func TestDelete_CreatorOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "O", "O", "del@example.com")
	member := fixtures.CreateUser(ctx, "M", "M", "mem@example.com")
	p := fixtures.CreateProject(ctx, "Shared", owner.ID, member.ID)
	h := newHandler(t, db, nil)

	req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/projects/"+p.ID.Hex(), testutil.UserFromModel(member))
	req = testutil.WithChiURLParam(req, "projectID", p.ID.Hex())
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member delete: status = %d, want 403", rec.Code)
	}

	req = testutil.NewAuthenticatedRequest(http.MethodDelete, "/projects/"+p.ID.Hex(), testutil.UserFromModel(owner))
	req = testutil.WithChiURLParam(req, "projectID", p.ID.Hex())
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("creator delete: status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
}
