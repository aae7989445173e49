package repository

import (
	"database/sql"
	"fmt"

	"github.com/chetan-code/taskrooms/internal/models"
)

type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) (*RoomRepo, error) {
	repo := &RoomRepo{db: db}

	err := repo.createTable()
	if err != nil {
		return nil, fmt.Errorf("could not initialize rooms table: %w", err)
	}

	return repo, nil
}

func (r *RoomRepo) createTable() error {
	query := `CREATE TABLE IF NOT EXISTS rooms(
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		owner_id INTEGER NOT NULL REFERENCES users(id),
		password_hash TEXT
	);`
	_, err := r.db.Exec(query)
	return err
}

// Create stores a new room. passwordHash nil means an open room.
func (r *RoomRepo) Create(title string, ownerID int, passwordHash *string) (models.Room, error) {
	query := `INSERT INTO rooms (title, owner_id, password_hash)
		VALUES ($1, $2, $3) RETURNING id`
	room := models.Room{Title: title, OwnerID: ownerID, PasswordHash: passwordHash}
	err := r.db.QueryRow(query, title, ownerID, passwordHash).Scan(&room.ID)
	if err != nil {
		return models.Room{}, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

func (r *RoomRepo) ByID(id int) (models.Room, error) {
	query := "SELECT id, title, owner_id, password_hash FROM rooms WHERE id = $1"
	var room models.Room
	err := r.db.QueryRow(query, id).Scan(&room.ID, &room.Title, &room.OwnerID, &room.PasswordHash)
	if err == sql.ErrNoRows {
		return models.Room{}, ErrNotFound
	}
	if err != nil {
		return models.Room{}, err
	}
	return room, nil
}

func (r *RoomRepo) ListByOwner(ownerID int) ([]models.Room, error) {
	query := `SELECT id, title, owner_id, password_hash FROM rooms
		WHERE owner_id = $1 ORDER BY id`
	return r.scanRooms(r.db.Query(query, ownerID))
}

// ListJoined returns rooms the user reached through a membership row.
func (r *RoomRepo) ListJoined(userID int) ([]models.Room, error) {
	query := `SELECT r.id, r.title, r.owner_id, r.password_hash FROM rooms r
		JOIN memberships m ON m.room_id = r.id
		WHERE m.user_id = $1 ORDER BY r.id`
	return r.scanRooms(r.db.Query(query, userID))
}

// SearchByTitle matches a case insensitive substring of the title.
func (r *RoomRepo) SearchByTitle(keyword string) ([]models.Room, error) {
	query := `SELECT id, title, owner_id, password_hash FROM rooms
		WHERE title ILIKE '%' || $1 || '%' ORDER BY id`
	return r.scanRooms(r.db.Query(query, keyword))
}

func (r *RoomRepo) scanRooms(rows *sql.Rows, err error) ([]models.Room, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close() //close the connection in the end
	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		err := rows.Scan(&room.ID, &room.Title, &room.OwnerID, &room.PasswordHash)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}
