// internal/app/system/rooms/rooms.go

// Package rooms talks to the external call-provisioning service (100ms).
// The core consumes it through the Provisioner interface; per-room
// failures during project creation are tolerated by callers, never
// surfaced to the user.
package rooms

import (
	"context"
	"errors"
)

// ErrUpstream wraps any provisioning-service failure so callers can map
// it to the upstream error taxonomy without knowing transport details.
var ErrUpstream = errors.New("call provisioning service unavailable")

// IsUpstream reports whether err came from the provisioning service.
func IsUpstream(err error) bool { return errors.Is(err, ErrUpstream) }

// Provisioner is the narrow surface the core needs from the call
// service. Room ids are opaque.
type Provisioner interface {
	// CreateRoom provisions a room of the given kind
	// (models.RoomDefault/RoomTranscript/RoomFull) and returns its id.
	CreateRoom(ctx context.Context, kind string) (string, error)

	// StartRecording and StopRecording toggle recording on a room.
	StartRecording(ctx context.Context, roomID string) error
	StopRecording(ctx context.Context, roomID string) error

	// JoinToken mints a short-lived credential for a user to join a room.
	JoinToken(roomID, userID, role string) (string, error)
}
