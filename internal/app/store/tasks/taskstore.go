// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrInvalidStatus = errors.New("status must be todo, in-progress, or done")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	if t.Status == "" {
		t.Status = models.StatusTodo
	}
	if !models.ValidStatus(t.Status) {
		return models.Task{}, ErrInvalidStatus
	}
	if t.AssignedTo == nil {
		t.AssignedTo = []primitive.ObjectID{}
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Update carries a partial task update. Nil fields are untouched;
// ClearDueDate removes the due date.
type Update struct {
	Name         *string
	Status       *string
	DueDate      *time.Time
	ClearDueDate bool
	AssignedTo   *[]primitive.ObjectID
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Status != nil {
		if !models.ValidStatus(*upd.Status) {
			return ErrInvalidStatus
		}
		set["status"] = *upd.Status
	}
	if upd.ClearDueDate {
		unset["due_date"] = ""
	} else if upd.DueDate != nil {
		set["due_date"] = *upd.DueDate
	}
	if upd.AssignedTo != nil {
		set["assigned_to"] = *upd.AssignedTo
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a task by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListForProject returns all of a project's tasks in creation order.
// Callers apply presentation sorts via Sort.
func (s *Store) ListForProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Task
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats summarizes a project's tasks. A task is overdue when it is not
// done and its due date falls on a calendar day before today (UTC); a
// task due today is not overdue.
type Stats struct {
	Total      int64 `json:"total"`
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"in_progress"`
	Done       int64 `json:"done"`
	Overdue    int64 `json:"overdue"`
}

func (s *Store) Stats(ctx context.Context, projectID primitive.ObjectID) (Stats, error) {
	var st Stats
	var err error
	if st.Total, err = s.c.CountDocuments(ctx, bson.M{"project_id": projectID}); err != nil {
		return Stats{}, err
	}
	for status, dst := range map[string]*int64{
		models.StatusTodo:       &st.Todo,
		models.StatusInProgress: &st.InProgress,
		models.StatusDone:       &st.Done,
	} {
		n, err := s.c.CountDocuments(ctx, bson.M{"project_id": projectID, "status": status})
		if err != nil {
			return Stats{}, err
		}
		*dst = n
	}

	now := time.Now().UTC()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	st.Overdue, err = s.c.CountDocuments(ctx, bson.M{
		"project_id": projectID,
		"status":     bson.M{"$ne": models.StatusDone},
		"due_date":   bson.M{"$lt": startOfToday},
	})
	if err != nil {
		return Stats{}, err
	}
	return st, nil
}

// Sort keys for task listings.
const (
	SortByName   = "name"
	SortByDue    = "due"
	SortByStatus = "status"
)

// Sort orders tasks in place for presentation. Name sorts are
// case-insensitive; due-date sorts always push tasks without a due date
// to the end regardless of direction; the status sort groups by
// progress (in-progress, then todo, then done). Ties break by creation
// order, which ListForProject already provides, so the sort is stable.
func Sort(tasks []models.Task, key string, descending bool) {
	less := func(a, b models.Task) int { return 0 }
	switch key {
	case SortByName:
		less = func(a, b models.Task) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case SortByDue:
		less = func(a, b models.Task) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1 // missing due date sorts last
			case b.DueDate == nil:
				return -1
			case a.DueDate.Before(*b.DueDate):
				return -1
			case b.DueDate.Before(*a.DueDate):
				return 1
			}
			return 0
		}
	case SortByStatus:
		less = func(a, b models.Task) int {
			return models.StatusRank(a.Status) - models.StatusRank(b.Status)
		}
	default:
		return
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		cmp := less(tasks[i], tasks[j])
		if key == SortByDue && (tasks[i].DueDate == nil || tasks[j].DueDate == nil) {
			// Missing-last is absolute; direction does not flip it.
			return cmp < 0
		}
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})
}
