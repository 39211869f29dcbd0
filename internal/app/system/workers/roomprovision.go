// internal/app/system/workers/roomprovision.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/collabhub/internal/app/system/rooms"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RoomSetter persists a provisioned room id onto a project.
type RoomSetter interface {
	SetRoom(ctx context.Context, projectID primitive.ObjectID, kind, roomID string) error
}

// RoomProvision is a background worker that provisions call rooms for
// newly created projects. Provisioning happens off the request path;
// a failed room leaves the project usable without calls of that kind.
type RoomProvision struct {
	provisioner rooms.Provisioner
	projects    RoomSetter
	log         *zap.Logger
	jobs        chan primitive.ObjectID
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewRoomProvision creates a room provisioning worker with a bounded
// job queue.
func NewRoomProvision(p rooms.Provisioner, projects RoomSetter, logger *zap.Logger) *RoomProvision {
	return &RoomProvision{
		provisioner: p,
		projects:    projects,
		log:         logger,
		jobs:        make(chan primitive.ObjectID, 64),
		stopCh:      make(chan struct{}),
	}
}

// Enqueue schedules room provisioning for a project. It never blocks;
// if the queue is full the job is dropped and logged, and the project
// simply has no rooms until re-provisioned.
func (w *RoomProvision) Enqueue(projectID primitive.ObjectID) {
	select {
	case w.jobs <- projectID:
	default:
		w.log.Warn("room provisioning queue full, dropping job",
			zap.String("project_id", projectID.Hex()))
	}
}

// Start begins the background provisioning loop.
func (w *RoomProvision) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("room provisioning worker started")
}

// Stop signals the worker to stop and waits for it to finish. Queued
// jobs are abandoned.
func (w *RoomProvision) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("room provisioning worker stopped")
}

func (w *RoomProvision) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		case projectID := <-w.jobs:
			w.provision(projectID)
		}
	}
}

// provision creates the three room kinds independently. One kind
// failing does not stop the others.
func (w *RoomProvision) provision(projectID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, kind := range models.RoomKinds {
		roomID, err := w.provisioner.CreateRoom(ctx, kind)
		if err != nil {
			w.log.Error("failed to provision room",
				zap.String("project_id", projectID.Hex()),
				zap.String("kind", kind),
				zap.Error(err))
			continue
		}
		if err := w.projects.SetRoom(ctx, projectID, kind, roomID); err != nil {
			w.log.Error("failed to record room id",
				zap.String("project_id", projectID.Hex()),
				zap.String("kind", kind),
				zap.String("room_id", roomID),
				zap.Error(err))
			continue
		}
		w.log.Info("room provisioned",
			zap.String("project_id", projectID.Hex()),
			zap.String("kind", kind),
			zap.String("room_id", roomID))
	}
}
