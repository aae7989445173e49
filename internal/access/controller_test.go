package access_test

import (
	"sync"
	"testing"

	"github.com/chetan-code/taskrooms/internal/access"
	"github.com/chetan-code/taskrooms/internal/credential"
	"github.com/chetan-code/taskrooms/internal/models"
	"github.com/chetan-code/taskrooms/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRooms struct {
	rooms map[int]models.Room
}

func (f *fakeRooms) ByID(id int) (models.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return models.Room{}, repository.ErrNotFound
	}
	return room, nil
}

// fakeMembers mirrors the storage uniqueness constraint: Add under a
// lock never produces a second row for the same pair.
type fakeMembers struct {
	mu    sync.Mutex
	pairs map[[2]int]int // (roomID, userID) -> row count
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{pairs: make(map[[2]int]int)}
}

func (f *fakeMembers) Exists(roomID, userID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pairs[[2]int{roomID, userID}] > 0, nil
}

func (f *fakeMembers) Add(roomID, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int{roomID, userID}
	if f.pairs[key] == 0 {
		f.pairs[key] = 1
	}
	return nil
}

func (f *fakeMembers) count(roomID, userID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pairs[[2]int{roomID, userID}]
}

const (
	alice = 1
	bob   = 2
	carol = 3
)

func guardedRoom(t *testing.T, id int, title, password string, owner int) models.Room {
	t.Helper()
	hash, err := credential.Set(password)
	require.NoError(t, err)
	return models.Room{ID: id, Title: title, OwnerID: owner, PasswordHash: hash}
}

func TestAuthorizeOwner(t *testing.T) {
	rooms := &fakeRooms{rooms: map[int]models.Room{
		1: guardedRoom(t, 1, "Sprint Planning", "wombat42", alice),
		2: {ID: 2, Title: "Standup Notes", OwnerID: alice},
	}}
	members := newFakeMembers()
	ctrl := access.New(rooms, members)

	t.Run("guarded room, no password needed", func(t *testing.T) {
		outcome, err := ctrl.Authorize(1, alice, nil)
		require.NoError(t, err)
		assert.Equal(t, access.Granted, outcome)
		assert.Zero(t, members.count(1, alice), "owner must never get a membership row")
	})

	t.Run("open room, no membership written", func(t *testing.T) {
		outcome, err := ctrl.Authorize(2, alice, nil)
		require.NoError(t, err)
		assert.Equal(t, access.Granted, outcome)
		assert.Zero(t, members.count(2, alice))
	})
}

func TestAuthorizeGuardedJoin(t *testing.T) {
	rooms := &fakeRooms{rooms: map[int]models.Room{
		1: guardedRoom(t, 1, "Sprint Planning", "wombat42", alice),
	}}
	members := newFakeMembers()
	ctrl := access.New(rooms, members)

	t.Run("plain visit yields challenge", func(t *testing.T) {
		outcome, err := ctrl.Authorize(1, bob, nil)
		require.NoError(t, err)
		assert.Equal(t, access.Challenge, outcome)
		assert.Zero(t, members.count(1, bob))
	})

	t.Run("wrong password denied, nothing written", func(t *testing.T) {
		wrong := "wrong"
		outcome, err := ctrl.Authorize(1, bob, &wrong)
		require.NoError(t, err)
		assert.Equal(t, access.Denied, outcome)
		assert.Zero(t, members.count(1, bob))
	})

	t.Run("correct password grants and records membership", func(t *testing.T) {
		right := "wombat42"
		outcome, err := ctrl.Authorize(1, bob, &right)
		require.NoError(t, err)
		assert.Equal(t, access.Granted, outcome)
		assert.Equal(t, 1, members.count(1, bob))
	})

	t.Run("revisit grants as member without a prompt", func(t *testing.T) {
		outcome, err := ctrl.Authorize(1, bob, nil)
		require.NoError(t, err)
		assert.Equal(t, access.Granted, outcome)
		assert.Equal(t, 1, members.count(1, bob), "no second membership row")
	})
}

func TestAuthorizeOpenRoom(t *testing.T) {
	rooms := &fakeRooms{rooms: map[int]models.Room{
		2: {ID: 2, Title: "Standup Notes", OwnerID: alice},
	}}
	members := newFakeMembers()
	ctrl := access.New(rooms, members)

	outcome, err := ctrl.Authorize(2, carol, nil)
	require.NoError(t, err)
	assert.Equal(t, access.Granted, outcome)
	assert.Equal(t, 1, members.count(2, carol), "joined on first visit")

	// second visit goes through the member path, still one row
	outcome, err = ctrl.Authorize(2, carol, nil)
	require.NoError(t, err)
	assert.Equal(t, access.Granted, outcome)
	assert.Equal(t, 1, members.count(2, carol))
}

func TestAuthorizeConcurrentJoins(t *testing.T) {
	rooms := &fakeRooms{rooms: map[int]models.Room{
		2: {ID: 2, Title: "Standup Notes", OwnerID: alice},
	}}
	members := newFakeMembers()
	ctrl := access.New(rooms, members)

	const n = 16
	var wg sync.WaitGroup
	outcomes := make([]access.Outcome, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcome, err := ctrl.Authorize(2, bob, nil)
			assert.NoError(t, err)
			outcomes[i] = outcome
		}(i)
	}
	wg.Wait()

	for _, outcome := range outcomes {
		assert.Equal(t, access.Granted, outcome)
	}
	assert.Equal(t, 1, members.count(2, bob), "racing joins must collapse to one membership")
}

func TestAuthorizeNotFound(t *testing.T) {
	ctrl := access.New(&fakeRooms{rooms: map[int]models.Room{}}, newFakeMembers())

	outcome, err := ctrl.Authorize(99, bob, nil)
	require.NoError(t, err)
	assert.Equal(t, access.NotFound, outcome)
}

func TestLevel(t *testing.T) {
	room := guardedRoom(t, 1, "Sprint Planning", "wombat42", alice)
	rooms := &fakeRooms{rooms: map[int]models.Room{1: room}}
	members := newFakeMembers()
	require.NoError(t, members.Add(1, bob))
	ctrl := access.New(rooms, members)

	t.Run("owner by identity", func(t *testing.T) {
		level, err := ctrl.Level(room, alice)
		require.NoError(t, err)
		assert.Equal(t, access.LevelOwner, level)
	})

	t.Run("member by record", func(t *testing.T) {
		level, err := ctrl.Level(room, bob)
		require.NoError(t, err)
		assert.Equal(t, access.LevelMember, level)
	})

	t.Run("stranger has none", func(t *testing.T) {
		level, err := ctrl.Level(room, carol)
		require.NoError(t, err)
		assert.Equal(t, access.LevelNone, level)
	})

	t.Run("by id, missing room", func(t *testing.T) {
		_, err := ctrl.LevelByID(99, bob)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("by id, member", func(t *testing.T) {
		level, err := ctrl.LevelByID(1, bob)
		require.NoError(t, err)
		assert.Equal(t, access.LevelMember, level)
	})
}
