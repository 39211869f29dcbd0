// internal/app/features/files/handler.go
package files

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	apierrors "github.com/dalemusser/collabhub/internal/app/features/errors"
	"github.com/dalemusser/collabhub/internal/app/features/shared"
	"github.com/dalemusser/collabhub/internal/app/policy/projectpolicy"
	filestore "github.com/dalemusser/collabhub/internal/app/store/files"
	projectstore "github.com/dalemusser/collabhub/internal/app/store/projects"
	"github.com/dalemusser/collabhub/internal/app/system/authz"
	"github.com/dalemusser/collabhub/internal/app/system/limits"
	"github.com/dalemusser/collabhub/internal/app/system/objstore"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SignedURLTTL is how long a download link stays valid.
const SignedURLTTL = time.Hour

type Handler struct {
	DB       *mongo.Database
	Files    *filestore.Store
	Projects *projectstore.Store
	Objects  objstore.Store
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, files *filestore.Store, projects *projectstore.Store, objects objstore.Store, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Files:    files,
		Projects: projects,
		Objects:  objects,
		ErrLog:   errLog,
		Log:      logger,
	}
}

func (h *Handler) memberGate(w http.ResponseWriter, r *http.Request) (uid, projectID primitive.ObjectID, ok bool) {
	_, uid, signedIn := authz.UserCtx(r)
	if !signedIn {
		apierrors.RenderUnauthorized(w)
		return uid, projectID, false
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		apierrors.RenderNotFound(w, "Project not found.")
		return uid, projectID, false
	}
	member, err := projectpolicy.IsMember(r.Context(), h.DB, projectID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "membership check failed", err)
		return uid, projectID, false
	}
	if !member {
		apierrors.RenderForbidden(w, "You are not a member of this project.")
		return uid, projectID, false
	}
	return uid, projectID, true
}

// cleanFilename keeps only the base name and replaces characters that are
// awkward in object keys.
func cleanFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// Upload handles POST /projects/{projectID}/files (multipart form, field
// "file"). Bytes go to object storage first; the metadata record follows.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	uid, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxUploadSize)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		apierrors.RenderValidation(w, "Upload must be a multipart form no larger than 64 MB.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.RenderValidation(w, "A \"file\" form field is required.")
		return
	}
	defer file.Close()

	name := cleanFilename(header.Filename)
	if name == "" {
		apierrors.RenderValidation(w, "File name must not be empty.")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := uuid.NewString() + "-" + name
	if err := h.Objects.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		apierrors.RenderUpstream(w, "File storage is unavailable.")
		h.Log.Error("object upload failed", zap.String("key", key), zap.Error(err))
		return
	}

	fm, err := h.Files.Insert(r.Context(), models.FileMeta{
		ProjectID:   projectID,
		FileKey:     key,
		Name:        name,
		Size:        header.Size,
		ContentType: contentType,
		UploadedBy:  uid,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "file record insert failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, fm)
}

type fileResponse struct {
	models.FileMeta
	URL string `json:"url"`
}

// List handles GET /projects/{projectID}/files. Every entry carries a
// signed download URL; records whose object is gone are healed away by
// the store and never appear.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}

	metas, err := h.Files.ListForProject(r.Context(), projectID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "file list failed", err)
		return
	}

	out := make([]fileResponse, 0, len(metas))
	for _, fm := range metas {
		url, err := h.Objects.SignedURL(r.Context(), fm.FileKey, SignedURLTTL)
		if err != nil {
			h.Log.Warn("signing download URL failed", zap.String("key", fm.FileKey), zap.Error(err))
			continue
		}
		out = append(out, fileResponse{FileMeta: fm, URL: url})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /projects/{projectID}/files/{fileID}. The uploader
// or the project creator may delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}
	fileID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "fileID"))
	if err != nil {
		apierrors.RenderNotFound(w, "File not found.")
		return
	}

	fm, err := h.Files.GetByID(r.Context(), fileID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierrors.RenderNotFound(w, "File not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "file lookup failed", err)
		return
	}
	if fm.ProjectID != projectID {
		apierrors.RenderNotFound(w, "File not found.")
		return
	}

	if fm.UploadedBy != uid {
		creator, err := projectpolicy.IsCreator(r.Context(), h.DB, projectID, uid)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "creator check failed", err)
			return
		}
		if !creator {
			apierrors.RenderForbidden(w, "Only the uploader or the project creator can delete a file.")
			return
		}
	}

	if err := h.Files.Delete(r.Context(), fileID); err != nil {
		h.ErrLog.LogServerError(w, r, "file delete failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transcriptEntry struct {
	Key  string    `json:"key"`
	Name string    `json:"name"`
	Kind string    `json:"kind"` // "transcript" or "summary"
	Size int64     `json:"size"`
	At   time.Time `json:"at"`
	URL  string    `json:"url"`
}

// Transcripts handles GET /projects/{projectID}/transcripts. It lists
// the recording artifacts the call service wrote for the project's
// transcript and full rooms: Transcript-*.txt files and Summary-*.json
// files under transcription/<roomID>/.
func (h *Handler) Transcripts(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}

	p, err := h.Projects.GetByID(r.Context(), projectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierrors.RenderNotFound(w, "Project not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project lookup failed", err)
		return
	}

	entries := []transcriptEntry{}
	for _, kind := range []string{models.RoomTranscript, models.RoomFull} {
		roomID := p.Rooms.ByKind(kind)
		if roomID == nil {
			continue
		}
		objects, err := h.Objects.List(r.Context(), "transcription/"+*roomID+"/")
		if err != nil {
			h.Log.Warn("transcript listing failed",
				zap.String("room_id", *roomID),
				zap.Error(err))
			continue
		}
		for _, obj := range objects {
			base := obj.Key[strings.LastIndex(obj.Key, "/")+1:]
			var artifactKind string
			switch {
			case strings.HasPrefix(base, "Transcript-") && strings.HasSuffix(base, ".txt"):
				artifactKind = "transcript"
			case strings.HasPrefix(base, "Summary-") && strings.HasSuffix(base, ".json"):
				artifactKind = "summary"
			default:
				continue
			}
			url, err := h.Objects.SignedURL(r.Context(), obj.Key, SignedURLTTL)
			if err != nil {
				h.Log.Warn("signing transcript URL failed", zap.String("key", obj.Key), zap.Error(err))
				continue
			}
			entries = append(entries, transcriptEntry{
				Key:  obj.Key,
				Name: base,
				Kind: artifactKind,
				Size: obj.Size,
				At:   obj.LastModified,
				URL:  url,
			})
		}
	}
	shared.WriteJSON(w, http.StatusOK, entries)
}
