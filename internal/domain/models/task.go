// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task status values. These are the only legal values; stores reject
// anything else before writing.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// ValidStatus reports whether s is one of the enumerated task statuses.
func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// StatusRank orders statuses for the "by progress" sort:
// in-progress < todo < done. Unknown statuses sort last.
func StatusRank(s string) int {
	switch s {
	case StatusInProgress:
		return 1
	case StatusTodo:
		return 2
	case StatusDone:
		return 3
	}
	return 4
}

// Task belongs to exactly one project. AssignedTo is a free set of user
// ids; assignees are not required to be project members and no referential
// check is enforced.
type Task struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ProjectID  primitive.ObjectID   `bson:"project_id" json:"project_id"`
	Name       string               `bson:"name" json:"name"`
	Status     string               `bson:"status" json:"status"`
	DueDate    *time.Time           `bson:"due_date,omitempty" json:"due_date,omitempty"`
	AssignedTo []primitive.ObjectID `bson:"assigned_to" json:"assigned_to"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
