package files

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apierrors "github.com/dalemusser/collabhub/internal/app/features/errors"
	filestore "github.com/dalemusser/collabhub/internal/app/store/files"
	projectstore "github.com/dalemusser/collabhub/internal/app/store/projects"
	"github.com/dalemusser/collabhub/internal/app/system/objstore"
	"github.com/dalemusser/collabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, db *mongo.Database, objects objstore.Store) *Handler {
	t.Helper()
	logger := zap.NewNop()
	return NewHandler(db,
		filestore.New(db, objects, logger),
		projectstore.New(db),
		objects,
		apierrors.NewErrorLogger(logger),
		logger)
}

func uploadRequest(t *testing.T, projectID, filename, content string, user testutil.TestUser) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/projects/"+projectID+"/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = testutil.WithUser(req, user)
	return testutil.WithChiURLParam(req, "projectID", projectID)
}

func TestUploadAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "O", "O", "fo@example.com")
	p := fixtures.CreateProject(ctx, "P", owner.ID)
	mem := objstore.NewMemStore()
	h := newHandler(t, db, mem)

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, p.ID.Hex(), "Notes (final).txt", "hello", testutil.UserFromModel(owner)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: %d: %s", rec.Code, rec.Body.String())
	}
	var fm fileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &fm.FileMeta); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fm.Name != "Notes__final_.txt" {
		t.Errorf("name = %q", fm.Name)
	}
	if !strings.HasSuffix(fm.FileKey, "-"+fm.Name) {
		t.Errorf("key = %q, want uuid prefix then name", fm.FileKey)
	}
	if ok, _ := mem.Exists(ctx, fm.FileKey); !ok {
		t.Error("object missing from storage")
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/projects/"+p.ID.Hex()+"/files", testutil.UserFromModel(owner))
	req = testutil.WithChiURLParam(req, "projectID", p.ID.Hex())
	rec = httptest.NewRecorder()
	h.List(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d: %s", rec.Code, rec.Body.String())
	}
	var listed []fileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].URL == "" {
		t.Fatalf("listed = %+v", listed)
	}
}

func TestDelete_UploaderOrCreatorOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "O", "O", "do@example.com")
	uploader := fixtures.CreateUser(ctx, "U", "U", "du@example.com")
	other := fixtures.CreateUser(ctx, "X", "X", "dx@example.com")
	p := fixtures.CreateProject(ctx, "P", owner.ID, uploader.ID, other.ID)
	mem := objstore.NewMemStore()
	h := newHandler(t, db, mem)

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, p.ID.Hex(), "a.txt", "x", testutil.UserFromModel(uploader)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: %d", rec.Code)
	}
	var fm fileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &fm.FileMeta); err != nil {
		t.Fatalf("decode: %v", err)
	}

	del := func(user testutil.TestUser) *httptest.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/projects/"+p.ID.Hex()+"/files/"+fm.ID.Hex(), user)
		req = testutil.WithChiURLParam(req, "projectID", p.ID.Hex())
		req = testutil.WithChiURLParam(req, "fileID", fm.ID.Hex())
		rec := httptest.NewRecorder()
		h.Delete(rec, req)
		return rec
	}

	if rec := del(testutil.UserFromModel(other)); rec.Code != http.StatusForbidden {
		t.Fatalf("other member delete: %d, want 403", rec.Code)
	}
	if rec := del(testutil.UserFromModel(uploader)); rec.Code != http.StatusNoContent {
		t.Fatalf("uploader delete: %d", rec.Code)
	}
	if ok, _ := mem.Exists(ctx, fm.FileKey); ok {
		t.Error("object still in storage after delete")
	}
	if rec := del(testutil.UserFromModel(uploader)); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d, want 404", rec.Code)
	}
}

func TestTranscripts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "O", "O", "to@example.com")
	p := fixtures.CreateProject(ctx, "P", owner.ID)
	mem := objstore.NewMemStore()
	h := newHandler(t, db, mem)

	projects := projectstore.New(db)
	if err := projects.SetRoom(ctx, p.ID, "transcript", "room-t"); err != nil {
		t.Fatalf("set room: %v", err)
	}

	for key, body := range map[string]string{
		"transcription/room-t/Transcript-20260828.txt": "text",
		"transcription/room-t/Summary-20260828.json":   "{}",
		"transcription/room-t/chunk-000.webm":          "noise",
		"transcription/other/Transcript-x.txt":         "wrong room",
	} {
		if err := mem.Put(ctx, key, strings.NewReader(body), int64(len(body)), "text/plain"); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/projects/"+p.ID.Hex()+"/transcripts", testutil.UserFromModel(owner))
	req = testutil.WithChiURLParam(req, "projectID", p.ID.Hex())
	rec := httptest.NewRecorder()
	h.Transcripts(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("transcripts: %d: %s", rec.Code, rec.Body.String())
	}

	var entries []transcriptEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	kinds := map[string]bool{}
	for _, e := range entries {
		kinds[e.Kind] = true
		if e.URL == "" {
			t.Errorf("entry %q has no URL", e.Key)
		}
	}
	if !kinds["transcript"] || !kinds["summary"] {
		t.Errorf("kinds = %v", kinds)
	}
}
