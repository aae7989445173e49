// Package access decides whether a user may enter a room. Ownership,
// membership and the guarded-join password flow all go through here so
// handlers never duplicate the checks.
package access

import (
	"errors"
	"fmt"

	"github.com/chetan-code/taskrooms/internal/credential"
	"github.com/chetan-code/taskrooms/internal/models"
	"github.com/chetan-code/taskrooms/internal/repository"
)

// RoomStore is the slice of the room repository the controller needs.
type RoomStore interface {
	ByID(id int) (models.Room, error)
}

// MembershipStore records standing access for non-owners. Add must be
// idempotent - concurrent joins for the same pair collapse to one row.
type MembershipStore interface {
	Exists(roomID, userID int) (bool, error)
	Add(roomID, userID int) error
}

// Level is the single "has access" predicate result.
type Level int

const (
	LevelNone Level = iota
	LevelMember
	LevelOwner
)

// Outcome of one join/access attempt, consumed by the HTTP layer.
type Outcome int

const (
	// Granted - proceed to the task list.
	Granted Outcome = iota
	// Challenge - room is guarded and no password was submitted yet.
	Challenge
	// Denied - wrong password, re-render the challenge with an error.
	Denied
	// NotFound - no such room.
	NotFound
)

type Controller struct {
	rooms   RoomStore
	members MembershipStore
}

func New(rooms RoomStore, members MembershipStore) *Controller {
	return &Controller{rooms: rooms, members: members}
}

// Level reports how the user stands to an already-loaded room. The
// owner is always a member by identity, never by membership row.
func (c *Controller) Level(room models.Room, userID int) (Level, error) {
	if room.OwnerID == userID {
		return LevelOwner, nil
	}
	member, err := c.members.Exists(room.ID, userID)
	if err != nil {
		return LevelNone, fmt.Errorf("membership lookup: %w", err)
	}
	if member {
		return LevelMember, nil
	}
	return LevelNone, nil
}

// LevelByID is Level for callers that only hold a room id, such as the
// task handlers re-checking the parent room before a mutation.
func (c *Controller) LevelByID(roomID, userID int) (Level, error) {
	room, err := c.rooms.ByID(roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return LevelNone, err
	}
	if err != nil {
		return LevelNone, fmt.Errorf("room lookup: %w", err)
	}
	return c.Level(room, userID)
}

// Authorize evaluates one access attempt. password nil means nothing
// was submitted yet (a plain visit); non-nil is a submitted candidate,
// checked exactly once and never stored.
//
// Owner and existing members are granted without touching the password
// at all. An open room grants on first visit and records a membership;
// a guarded room challenges until the right password arrives.
func (c *Controller) Authorize(roomID, userID int, password *string) (Outcome, error) {
	room, err := c.rooms.ByID(roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound, nil
	}
	if err != nil {
		return NotFound, fmt.Errorf("room lookup: %w", err)
	}

	level, err := c.Level(room, userID)
	if err != nil {
		return Denied, err
	}
	if level != LevelNone {
		// owner or member - grant, nothing to write
		return Granted, nil
	}

	if !room.Guarded() {
		// open room: first visit joins. Add is idempotent so a
		// concurrent join for the same pair still leaves one row.
		if err := c.members.Add(room.ID, userID); err != nil {
			return Denied, err
		}
		return Granted, nil
	}

	if password == nil {
		return Challenge, nil
	}

	if !credential.Verify(room.PasswordHash, *password) {
		return Denied, nil
	}

	if err := c.members.Add(room.ID, userID); err != nil {
		return Denied, err
	}
	return Granted, nil
}
