package repository

import (
	"database/sql"
	"fmt"
)

type MembershipRepo struct {
	db *sql.DB
}

func NewMembershipRepo(db *sql.DB) (*MembershipRepo, error) {
	repo := &MembershipRepo{db: db}

	err := repo.createTable()
	if err != nil {
		return nil, fmt.Errorf("could not initialize memberships table: %w", err)
	}

	return repo, nil
}

func (r *MembershipRepo) createTable() error {
	// the unique constraint is what keeps concurrent joins from creating
	// duplicate rows - Add relies on it instead of check-then-insert
	query := `CREATE TABLE IF NOT EXISTS memberships(
		id SERIAL PRIMARY KEY,
		room_id INTEGER NOT NULL REFERENCES rooms(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		UNIQUE (room_id, user_id)
	);`
	_, err := r.db.Exec(query)
	return err
}

func (r *MembershipRepo) Exists(roomID, userID int) (bool, error) {
	query := "SELECT 1 FROM memberships WHERE room_id = $1 AND user_id = $2"
	var one int
	err := r.db.QueryRow(query, roomID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Add records a membership. Adding an existing pair is a silent no-op,
// never a duplicate row and never an error.
func (r *MembershipRepo) Add(roomID, userID int) error {
	query := `INSERT INTO memberships (room_id, user_id) VALUES ($1, $2)
		ON CONFLICT (room_id, user_id) DO NOTHING`
	_, err := r.db.Exec(query, roomID, userID)
	if err != nil {
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}
