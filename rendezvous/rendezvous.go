// Package rendezvous implements the two-party join protocol: two
// independently connected players must agree their room is ready, and
// exactly one of the two connections must start the simulation worker.
//
// The agreement runs through a room-scoped join marker in a shared
// store. The first player to join claims the marker and waits; the
// second consumes it and reports ready. Claim and consume are a single
// atomic store operation, so two concurrent joins can never both claim
// or both consume.
package rendezvous

import (
	"context"
	"errors"
	"fmt"

	"github.com/pongarena/pongarena-backend/models"
	"github.com/pongarena/pongarena-backend/repository"
)

// ErrDuplicateJoin means the identity already holds the room's join
// marker, i.e. the same user connected twice.
var ErrDuplicateJoin = errors.New("identity already joined this room")

// MarkerStore holds the per-room join markers.
type MarkerStore interface {
	// Exchange runs the join step atomically. If no marker exists it is
	// set to identity and "" is returned. If the marker is held by
	// identity itself it is left in place and identity is returned. If
	// it is held by another identity the marker is deleted and the
	// holder is returned.
	Exchange(ctx context.Context, roomID, identity string) (holder string, err error)
	// Delete removes any residual marker for the room.
	Delete(ctx context.Context, roomID string) error
}

// Result is the outcome of a join attempt.
type Result struct {
	// Ready is true when both participants are now present. The caller
	// that observes Ready is responsible for starting the room's one
	// simulation worker.
	Ready    bool
	Opponent string
}

// Coordinator runs the join protocol and advances the room status
// alongside it.
type Coordinator struct {
	markers MarkerStore
	rooms   repository.RoomStore
}

func New(markers MarkerStore, rooms repository.RoomStore) *Coordinator {
	return &Coordinator{markers: markers, rooms: rooms}
}

// Join registers username as present in the room. Exactly one of two
// distinct joiners observes Ready; joining twice with the same identity
// returns ErrDuplicateJoin.
func (c *Coordinator) Join(ctx context.Context, roomID, username string) (Result, error) {
	holder, err := c.markers.Exchange(ctx, roomID, username)
	if err != nil {
		return Result{}, fmt.Errorf("exchange join marker: %w", err)
	}

	switch holder {
	case "":
		if err := c.advanceStatus(ctx, roomID, models.StatusWaiting); err != nil {
			return Result{}, fmt.Errorf("mark room waiting: %w", err)
		}
		return Result{}, nil
	case username:
		return Result{}, ErrDuplicateJoin
	default:
		if err := c.advanceStatus(ctx, roomID, models.StatusRunning); err != nil {
			return Result{}, fmt.Errorf("mark room running: %w", err)
		}
		return Result{Ready: true, Opponent: holder}, nil
	}
}

// advanceStatus moves the room status forward. The status never goes
// backward: a join against a room that already progressed past the
// target state leaves the record untouched.
func (c *Coordinator) advanceStatus(ctx context.Context, roomID string, status models.RoomStatus) error {
	room, err := c.rooms.Room(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.Status.Precedes(status) {
		return nil
	}
	return c.rooms.UpdateStatus(ctx, roomID, status)
}

// Clear removes any residual join marker, called on room teardown.
func (c *Coordinator) Clear(ctx context.Context, roomID string) error {
	return c.markers.Delete(ctx, roomID)
}
