package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/chetan-code/taskrooms/internal/models"
)

type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) (*TaskRepo, error) {
	repo := &TaskRepo{db: db}

	err := repo.createTable()
	if err != nil {
		return nil, fmt.Errorf("could not initialize tasks table: %w", err)
	}

	return repo, nil
}

func (r *TaskRepo) createTable() error {
	query := `CREATE TABLE IF NOT EXISTS tasks(
		id SERIAL PRIMARY KEY,
		room_id INTEGER NOT NULL REFERENCES rooms(id),
		description TEXT NOT NULL,
		due_date DATE,
		completed BOOLEAN NOT NULL DEFAULT FALSE
	);`
	_, err := r.db.Exec(query)
	return err
}

func (r *TaskRepo) Create(roomID int, description string, dueDate *time.Time) (models.Task, error) {
	query := `INSERT INTO tasks (room_id, description, due_date)
		VALUES ($1, $2, $3) RETURNING id`
	task := models.Task{RoomID: roomID, Description: description, DueDate: dueDate}
	err := r.db.QueryRow(query, roomID, description, dueDate).Scan(&task.ID)
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (r *TaskRepo) ByID(id int) (models.Task, error) {
	query := "SELECT id, room_id, description, due_date, completed FROM tasks WHERE id = $1"
	var t models.Task
	err := r.db.QueryRow(query, id).Scan(&t.ID, &t.RoomID, &t.Description, &t.DueDate, &t.Completed)
	if err == sql.ErrNoRows {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Complete marks the task done. Already-done tasks stay done; a missing
// id is reported as ErrNotFound so the handler can redirect gracefully.
func (r *TaskRepo) Complete(id int) error {
	query := "UPDATE tasks SET completed = TRUE WHERE id = $1"
	return r.expectOne(r.db.Exec(query, id))
}

func (r *TaskRepo) Delete(id int) error {
	query := "DELETE FROM tasks WHERE id = $1"
	return r.expectOne(r.db.Exec(query, id))
}

func (r *TaskRepo) ListByRoom(roomID int) ([]models.Task, error) {
	query := `SELECT id, room_id, description, due_date, completed FROM tasks
		WHERE room_id = $1 ORDER BY id`
	rows, err := r.db.Query(query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //close the connection in the end
	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		err := rows.Scan(&t.ID, &t.RoomID, &t.Description, &t.DueDate, &t.Completed)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
