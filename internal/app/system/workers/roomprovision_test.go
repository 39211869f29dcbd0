package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeProvisioner struct {
	mu      sync.Mutex
	created []string
	failOn  string
}

func (f *fakeProvisioner) CreateRoom(_ context.Context, kind string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if kind == f.failOn {
		return "", errors.New("upstream down")
	}
	f.created = append(f.created, kind)
	return "room-" + kind, nil
}

func (f *fakeProvisioner) StartRecording(context.Context, string) error { return nil }
func (f *fakeProvisioner) StopRecording(context.Context, string) error  { return nil }
func (f *fakeProvisioner) JoinToken(_, _, _ string) (string, error)     { return "", nil }

type fakeSetter struct {
	mu   sync.Mutex
	sets map[string]string // kind -> room id
	done chan struct{}
	want int
}

func newFakeSetter(want int) *fakeSetter {
	return &fakeSetter{sets: make(map[string]string), done: make(chan struct{}), want: want}
}

func (f *fakeSetter) SetRoom(_ context.Context, _ primitive.ObjectID, kind, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets[kind] = roomID
	if len(f.sets) == f.want {
		close(f.done)
	}
	return nil
}

func TestProvisionAllKinds(t *testing.T) {
	prov := &fakeProvisioner{}
	setter := newFakeSetter(len(models.RoomKinds))

	w := NewRoomProvision(prov, setter, zap.NewNop())
	w.Start()
	defer w.Stop()

	w.Enqueue(primitive.NewObjectID())

	select {
	case <-setter.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for provisioning")
	}

	setter.mu.Lock()
	defer setter.mu.Unlock()
	for _, kind := range models.RoomKinds {
		if setter.sets[kind] != "room-"+kind {
			t.Errorf("kind %s: got %q", kind, setter.sets[kind])
		}
	}
}

func TestProvisionPartialFailure(t *testing.T) {
	prov := &fakeProvisioner{failOn: models.RoomTranscript}
	setter := newFakeSetter(len(models.RoomKinds) - 1)

	w := NewRoomProvision(prov, setter, zap.NewNop())
	w.Start()
	defer w.Stop()

	w.Enqueue(primitive.NewObjectID())

	select {
	case <-setter.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for provisioning")
	}

	setter.mu.Lock()
	defer setter.mu.Unlock()
	if _, ok := setter.sets[models.RoomTranscript]; ok {
		t.Error("transcript room should not have been recorded")
	}
	if len(setter.sets) != len(models.RoomKinds)-1 {
		t.Errorf("sets = %v", setter.sets)
	}
}
