package models

import "time"

type Task struct {
	ID          int        `json:"id"`
	RoomID      int        `json:"room_id"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `json:"completed"`
}
