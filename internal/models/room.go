package models

// Room is a shared task list. PasswordHash is nil for open rooms -
// anyone authenticated may join without a challenge.
type Room struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	OwnerID      int     `json:"owner_id"`
	PasswordHash *string `json:"-"`
}

// Guarded reports whether joining requires a password.
func (r Room) Guarded() bool {
	return r.PasswordHash != nil
}

// Membership records that a non-owner user has standing access to a room.
// The owner never gets a membership row - ownership is checked by identity.
type Membership struct {
	ID     int `json:"id"`
	RoomID int `json:"room_id"`
	UserID int `json:"user_id"`
}
