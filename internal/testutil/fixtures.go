package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()

	user := models.User{
		ID:        primitive.NewObjectID(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		EmailCI:   text.Fold(email),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateProject creates a test project owned by creator. Extra members
// are appended after the creator.
func (f *Fixtures) CreateProject(ctx context.Context, name string, creator primitive.ObjectID, members ...primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	project := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: "Test project",
		Creator:     creator,
		Members:     append([]primitive.ObjectID{creator}, members...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, project); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// CreateTask creates a test task in the given project.
func (f *Fixtures) CreateTask(ctx context.Context, projectID primitive.ObjectID, name, status string, dueDate *time.Time) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Name:      name,
		Status:    status,
		DueDate:   dueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// CreateChat creates a named channel in the given project.
func (f *Fixtures) CreateChat(ctx context.Context, projectID primitive.ObjectID, name string) models.Chat {
	f.t.Helper()

	chat := models.Chat{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("chats").InsertOne(ctx, chat); err != nil {
		f.t.Fatalf("failed to create test chat: %v", err)
	}
	return chat
}

// DaysFromNow returns a pointer to a timestamp n days from now (UTC).
// Negative n gives a date in the past.
func DaysFromNow(n int) *time.Time {
	ts := time.Now().UTC().AddDate(0, 0, n)
	return &ts
}
